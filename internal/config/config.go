// Package config defines service configuration and its loader.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataFile is the YAML dataset loaded into the copy pool at startup.
	// Empty starts with an empty pool.
	DataFile string `koanf:"data_file"`

	// DefaultExamModel is used by suggestion requests that omit one.
	DefaultExamModel string `koanf:"default_exam_model"`

	// MaxSuggestions caps proposals per suggestion response. Zero is unbounded.
	MaxSuggestions int `koanf:"max_suggestions"`

	// MaxPlanSwaps caps accepted swaps per global plan. Zero is unbounded.
	MaxPlanSwaps int `koanf:"max_plan_swaps"`

	// ExploreConcurrency bounds how many exam models are explored at once.
	ExploreConcurrency int `koanf:"explore_concurrency"`

	// DonorMaxRankDrop rejects swaps that cost the donor more ranks. Zero disables.
	DonorMaxRankDrop int `koanf:"donor_max_rank_drop"`

	// DonorMaxAverageDrop rejects swaps that cost the donor more average. Zero disables.
	DonorMaxAverageDrop float64 `koanf:"donor_max_average_drop"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		MaxSuggestions:     50,
		MaxPlanSwaps:       0,
		ExploreConcurrency: runtime.NumCPU(),
	}
}
