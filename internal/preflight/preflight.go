package preflight

import (
	"context"

	"clipforge/internal/config"
	"clipforge/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects which optional checks apply to the coming run.
type Options struct {
	// Upload adds the credential check when the run will push to the
	// platform.
	Upload bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, cfg.Renderer.MinFreeGiB))

	for _, status := range deps.CheckBinaries(commandRequirements(cfg)) {
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available,
			Detail: commandDetail(status),
		})
	}

	if opts.Upload {
		results = append(results, CheckCredentials(cfg))
	}

	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

func commandRequirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "Render command",
			Command:     cfg.Renderer.VideoCommand,
			Description: "Required to produce videos",
		},
		{
			Name:        "Narration command",
			Command:     cfg.Renderer.NarrationCommand,
			Description: "Required to produce narration audio",
		},
	}
}

func commandDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	return status.Detail
}
