package configuration

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
)

const (
	DefaultK              = 2
	DefaultSuppression    = "count < k"
	DefaultHistoryLength  = 16
	DefaultHistoryTtl     = 10 * time.Minute
	DefaultResultsSize    = 100
	DefaultResultsAmount  = 20
	DefaultServiceName    = "precision"
	DefaultInputDelimiter = ","
)

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger — logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server — HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Input — dataset and hierarchies to score
	Input InputConfig `mapstructure:"input"`
	// Anonymization — privacy model parameters used to flag outliers
	Anonymization AnonymizationConfig `mapstructure:"anonymization"`
	// Evaluation — candidate schemes and scorer parameters
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	// Results — evaluation results file
	Results ResultsConfig `mapstructure:"results"`
	// Telemetry — OpenTelemetry export
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level — log level: debug, info, warn, warning, error.
	// Value is case-insensitive.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address — address and port to listen on (e.g., ":8080").
	// Empty disables the HTTP API.
	Address string `mapstructure:"address"`
}

// InputConfig points to the data being anonymized.
type InputConfig struct {
	// Data — path to the CSV file, first line is the header
	Data string `mapstructure:"data"`
	// Hierarchies — path to the YAML hierarchies file (optional)
	Hierarchies string `mapstructure:"hierarchies"`
	// Delimiter — CSV field delimiter, a single character (default ",")
	Delimiter string `mapstructure:"delimiter"`
}

type AnonymizationConfig struct {
	// K — minimal equivalence class size (default 2)
	K int `mapstructure:"k"`
	// Suppress — CEL condition over count, k and records that marks a class as outlier
	Suppress string `mapstructure:"suppress"`
}

// EvaluationConfig defines the schemes to score and how.
type EvaluationConfig struct {
	// Schemes — generalization levels per attribute, one list per candidate
	Schemes [][]int `mapstructure:"schemes"`
	// Workers — number of schemes scored in parallel (default: number of CPUs)
	Workers int `mapstructure:"workers"`
	// HistoryLength — evaluations kept per scheme for the API
	HistoryLength int `mapstructure:"history_length"`
	// HistoryTtl — idle time after which a scheme's history is dropped. Example: "5m", "1h".
	HistoryTtl time.Duration `mapstructure:"history_ttl"`
}

// ResultsConfig defines the results file.
type ResultsConfig struct {
	// File — results file path (optional)
	File string `mapstructure:"file"`
	// Size — maximal file size in MB (default 100)
	Size int `mapstructure:"size"`
	// Amount — number of rotated files to keep (default 20)
	Amount int `mapstructure:"amount"`
}

type TelemetryConfig struct {
	// Enabled — export traces and metrics over OTLP
	Enabled bool `mapstructure:"enabled"`
	// Service — service name reported to the collector
	Service string `mapstructure:"service"`
}

// Validate checks the whole configuration and fills in defaults.
// Returns the first error found.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Input.Validate(); err != nil {
		return err
	}

	if err := c.Anonymization.Validate(); err != nil {
		return err
	}

	if err := c.Evaluation.Validate(); err != nil {
		return err
	}

	if err := c.Results.Validate(); err != nil {
		return err
	}

	return c.Telemetry.Validate()
}

// Validate checks the log level. Supported values: debug, info, warn, warning, error.
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// Validate checks that the data file is set and the delimiter is one character.
func (i *InputConfig) Validate() error {
	if i.Data == "" {
		return errors.New("input.data: must be specified")
	}

	if i.Delimiter == "" {
		i.Delimiter = DefaultInputDelimiter
	}
	if utf8.RuneCountInString(i.Delimiter) != 1 {
		return fmt.Errorf("input.delimiter: must be a single character, got '%s'", i.Delimiter)
	}

	return nil
}

// DelimiterRune returns the delimiter as a rune.
func (i *InputConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(i.Delimiter)
	return r
}

func (a *AnonymizationConfig) Validate() error {
	if a.K == 0 {
		a.K = DefaultK
	}
	if a.K < 1 {
		return fmt.Errorf("anonymization.k: must be positive, got %d", a.K)
	}

	if strings.TrimSpace(a.Suppress) == "" {
		a.Suppress = DefaultSuppression
	}

	return nil
}

func (e *EvaluationConfig) Validate() error {
	if e.Workers == 0 {
		e.Workers = runtime.NumCPU()
	}
	if e.Workers < 0 {
		return fmt.Errorf("evaluation.workers: must be positive, got %d", e.Workers)
	}

	if e.HistoryLength == 0 {
		e.HistoryLength = DefaultHistoryLength
	}
	if e.HistoryLength < 0 {
		return fmt.Errorf("evaluation.history_length: must be positive, got %d", e.HistoryLength)
	}

	if e.HistoryTtl == 0 {
		e.HistoryTtl = DefaultHistoryTtl
	}

	for i, scheme := range e.Schemes {
		if len(scheme) == 0 {
			return fmt.Errorf("evaluation.schemes[%d]: must not be empty", i)
		}
		for _, level := range scheme {
			if level < 0 {
				return fmt.Errorf("evaluation.schemes[%d]: negative level %d", i, level)
			}
		}
	}

	return nil
}

// Validate fills in the results file defaults.
func (r *ResultsConfig) Validate() error {
	if r.Amount == 0 {
		r.Amount = DefaultResultsAmount
	}

	if r.Size == 0 {
		r.Size = DefaultResultsSize
	}

	return nil
}

func (t *TelemetryConfig) Validate() error {
	if t.Service == "" {
		t.Service = DefaultServiceName
	}
	return nil
}

// LoadConfig loads configuration from a YAML file. Environment variables override
// file values, with dots replaced by underscores (e.g. LOGGER_LEVEL).
//
// Returns an error if the file cannot be read, has an invalid format, or one of
// the sections fails validation.
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
