package cmd

import (
	"fmt"

	"github.com/magroup/magnus/internal/config"
	"github.com/magroup/magnus/internal/retrieval"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// retrievalOptions maps the config section onto retrieval options,
// falling back to defaults for unset fields.
func retrievalOptions(rc config.RetrievalConfig) retrieval.Options {
	opts := retrieval.DefaultOptions()
	if rc.MaxCandidates > 0 {
		opts.MaxCandidates = rc.MaxCandidates
	}
	if rc.FallbackCandidates > 0 {
		opts.FallbackCandidates = rc.FallbackCandidates
	}
	if rc.SnippetMaxLen > 0 {
		opts.SnippetMaxLen = rc.SnippetMaxLen
	}
	if rc.Window > 0 {
		opts.Window = rc.Window
	}
	if rc.TotalBudget > 0 {
		opts.TotalBudget = rc.TotalBudget
	}
	return opts
}
