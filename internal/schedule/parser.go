// Package schedule converts human-readable slot notation into absolute UTC
// instants using real zone-database rules, so daylight-saving transitions
// resolve the way the platform expects.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrParse tags all slot and date parsing failures.
var ErrParse = errors.New("schedule parse error")

// Short timezone aliases accepted in slot notation.
var tzAliases = map[string]string{
	"ET":  "America/New_York",
	"EST": "America/New_York",
	"EDT": "America/New_York",
	"UTC": "UTC",
}

// SlotTime is a wall-clock time of day without a date.
type SlotTime struct {
	Hour   int
	Minute int
}

// ParseSlot parses "HH:MM" optionally followed by whitespace and a timezone
// token. The token may be a short alias or a full IANA zone name; when
// omitted, defaultTZ applies.
func ParseSlot(slot, defaultTZ string) (SlotTime, *time.Location, error) {
	trimmed := strings.TrimSpace(slot)
	if trimmed == "" {
		return SlotTime{}, nil, fmt.Errorf("%w: empty slot", ErrParse)
	}

	parts := strings.Fields(trimmed)
	hhmm := parts[0]
	tzToken := ""
	if len(parts) > 1 {
		tzToken = parts[1]
	}

	hourStr, minuteStr, ok := strings.Cut(hhmm, ":")
	if !ok {
		return SlotTime{}, nil, fmt.Errorf("%w: slot %q must be in HH:MM [TZ] form", ErrParse, slot)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return SlotTime{}, nil, fmt.Errorf("%w: slot %q must be in HH:MM [TZ] form", ErrParse, slot)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return SlotTime{}, nil, fmt.Errorf("%w: slot %q must be in HH:MM [TZ] form", ErrParse, slot)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return SlotTime{}, nil, fmt.Errorf("%w: slot %q hour/minute out of range", ErrParse, slot)
	}

	loc, err := resolveTimezone(tzToken, defaultTZ)
	if err != nil {
		return SlotTime{}, nil, err
	}
	return SlotTime{Hour: hour, Minute: minute}, loc, nil
}

// CombineDateSlot combines a YYYY-MM-DD date with a slot definition into an
// instant in the resolved zone. Callers convert to UTC for storage.
func CombineDateSlot(dateStr, slot, defaultTZ string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be in YYYY-MM-DD form", ErrParse, dateStr)
	}
	slotTime, loc, err := ParseSlot(slot, defaultTZ)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), slotTime.Hour, slotTime.Minute, 0, 0, loc), nil
}

// ToUTCISO converts a date and slot to the canonical stored representation:
// RFC 3339 in UTC with a trailing Z.
func ToUTCISO(dateStr, slot, defaultTZ string) (string, error) {
	combined, err := CombineDateSlot(dateStr, slot, defaultTZ)
	if err != nil {
		return "", err
	}
	return combined.UTC().Format(time.RFC3339), nil
}

func resolveTimezone(token, defaultTZ string) (*time.Location, error) {
	candidate := strings.TrimSpace(token)
	if candidate == "" {
		candidate = strings.TrimSpace(defaultTZ)
	}
	if alias, ok := tzAliases[strings.ToUpper(candidate)]; ok {
		candidate = alias
	}
	loc, err := time.LoadLocation(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrParse, candidate)
	}
	return loc, nil
}
