package upload

import (
	"strings"

	"clipforge/internal/services"
)

const (
	titleLimit       = 100
	descriptionLimit = 4900
	maxTags          = 3
	minTags          = 1
)

// Metadata is the sanitized payload ready for the platform call.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	Hashtags    []string
}

// NormalizeMetadata sanitizes a title, description, and tag set, enforcing
// the platform's Shorts constraints.
func NormalizeMetadata(title, description string, tags []string) (Metadata, error) {
	normalizedTags := make([]string, 0, maxTags)
	seen := make(map[string]struct{}, maxTags)
	for _, tag := range tags {
		cleaned := cleanTag(tag)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		normalizedTags = append(normalizedTags, cleaned)
		if len(normalizedTags) >= maxTags {
			break
		}
	}
	if len(normalizedTags) < minTags {
		return Metadata{}, services.Wrap(services.ErrValidation, "upload", "metadata", "at least one usable tag is required", nil)
	}

	hashtags := make([]string, 0, len(normalizedTags))
	for _, tag := range normalizedTags {
		hashtags = append(hashtags, "#"+tag)
	}

	normalizedTitle := strings.Join(strings.Fields(title), " ")
	if len(normalizedTitle) > titleLimit {
		normalizedTitle = strings.TrimRight(normalizedTitle[:titleLimit], " ")
	}
	if normalizedTitle == "" {
		return Metadata{}, services.Wrap(services.ErrValidation, "upload", "metadata", "title must not be empty", nil)
	}

	normalizedDescription := normalizeDescription(description, hashtags)

	return Metadata{
		Title:       normalizedTitle,
		Description: normalizedDescription,
		Tags:        normalizedTags,
		Hashtags:    hashtags,
	}, nil
}

func normalizeDescription(description string, hashtags []string) string {
	normalized := strings.TrimSpace(description)
	if len(hashtags) > 0 {
		block := strings.Join(hashtags, " ")
		if !strings.Contains(normalized, block) {
			if normalized != "" {
				normalized = normalized + "\n\n" + block
			} else {
				normalized = block
			}
		}
	}
	if len(normalized) > descriptionLimit {
		normalized = strings.TrimRight(normalized[:descriptionLimit], " ")
	}
	return normalized
}

// cleanTag lowercases a tag and strips everything outside [0-9a-z].
func cleanTag(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MergeTags concatenates tag sources, collapsing duplicates while
// preserving first-seen order.
func MergeTags(sources ...[]string) []string {
	merged := make([]string, 0, 8)
	seen := make(map[string]struct{}, 8)
	for _, source := range sources {
		for _, tag := range source {
			normalized := strings.TrimSpace(tag)
			if normalized == "" {
				continue
			}
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			merged = append(merged, normalized)
		}
	}
	return merged
}
