// Package upload normalizes per-item metadata and drives the authenticated
// platform upload with bounded retry.
//
// The orchestrator walks a render manifest entry by entry: tags are merged
// with configured defaults, the stored schedule becomes an absolute UTC
// publish time (clamped forward out of the platform's minimum safety
// window), and a publish time forces private-until-publish semantics. Each
// entry's failure is isolated; local render artifacts are removed best-effort
// after every entry. A small sqlite ledger records successful uploads so a
// regenerated manifest does not publish the same item twice.
package upload
