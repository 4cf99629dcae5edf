package search

import (
	"github.com/XiaoConstantine/mosa-go/pkg/archive"
	"github.com/XiaoConstantine/mosa-go/pkg/config"
	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/errors"
	"github.com/XiaoConstantine/mosa-go/pkg/logging"
)

// NewEngineFromConfig builds an engine from a loaded configuration. The
// search and archive sections become engine options and the logging section
// replaces the global logger. Report sinks keep taking their paths from
// cfg.Report via the report package constructors and attach through
// WithObserver. Extra options are applied last and override the
// configuration.
func NewEngineFromConfig(cfg *config.Config, inventory []core.Goal, evaluator core.Evaluator, factory core.Factory, variation core.Variation, extra ...EngineOption) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := configureLogging(cfg.Logging); err != nil {
		return nil, err
	}

	opts := append(OptionsFromConfig(cfg), extra...)
	return NewEngine(inventory, evaluator, factory, variation, opts...)
}

// OptionsFromConfig translates the search and archive sections into engine
// options.
func OptionsFromConfig(cfg *config.Config) []EngineOption {
	opts := []EngineOption{
		WithPopulationSize(cfg.Search.PopulationSize),
		WithMaxGenerations(cfg.Search.MaxGenerations),
	}
	if cfg.Search.MaxGoroutines > 0 {
		opts = append(opts, WithMaxGoroutines(cfg.Search.MaxGoroutines))
	}
	if cfg.Archive.Preference == "first" {
		opts = append(opts, WithArchive(archive.New(archive.WithPreference(archive.FirstWins))))
	}
	return opts
}

// configureLogging replaces the global logger per the logging section:
// console output at the configured level, plus a file output when a path is
// set.
func configureLogging(cfg config.LoggingConfig) error {
	outputs := []logging.Output{logging.NewConsoleOutput(false)}
	if cfg.File != "" {
		fileOut, err := logging.NewFileOutput(cfg.File)
		if err != nil {
			return errors.Wrap(err, errors.InvalidInput, "failed to open log file")
		}
		outputs = append(outputs, fileOut)
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Level),
		Outputs:  outputs,
	}))
	return nil
}
