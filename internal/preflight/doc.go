// Package preflight provides readiness checks for the external commands,
// directories, and credentials a production run depends on.
//
// These checks run in two contexts:
//   - The run and daemon commands call RunAll before processing so a doomed
//     run fails fast instead of partway through a batch.
//   - The CLI "clipforge status" command uses the individual check functions
//     to display environment health.
package preflight
