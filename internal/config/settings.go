package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Log format constants
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults
const (
	DefaultCorpusRoot     = "."
	DefaultExtension      = ".xml"
	DefaultMaxVocabulary  = 200
	DefaultProgressEvery  = 100
	DefaultMaxValueLength = 100
	DefaultLogLevel       = "info"
)

// ReportSettings configuration for report filtering
type ReportSettings struct {
	MinValues      int `mapstructure:"min_values"`
	MinOccurrences int `mapstructure:"min_occurrences"`
	MaxLength      int `mapstructure:"max_length"`
	TopN           int `mapstructure:"top_n"`
}

// Settings application settings
type Settings struct {
	CorpusRoot    string         `mapstructure:"corpus_root"`
	Extension     string         `mapstructure:"extension"`
	Exclude       []string       `mapstructure:"exclude"`
	MaxVocabulary int            `mapstructure:"max_vocabulary"`
	Workers       int            `mapstructure:"workers"`
	ProgressEvery int            `mapstructure:"progress_every"`
	OutputDir     string         `mapstructure:"output_dir"`
	LogLevel      string         `mapstructure:"log_level"`
	LogFormat     string         `mapstructure:"log_format"`
	Report        ReportSettings `mapstructure:"report"`
}

// flagBindings maps setting keys to the CLI flags that override them.
// Commands register only the flags they use; missing flags are skipped.
var flagBindings = map[string]string{
	"corpus_root":            "corpus-root",
	"extension":              "extension",
	"exclude":                "exclude",
	"max_vocabulary":         "max-vocabulary",
	"workers":                "workers",
	"progress_every":         "progress-every",
	"output_dir":             "output-dir",
	"log_level":              "log-level",
	"log_format":             "log-format",
	"report.min_values":      "values",
	"report.min_occurrences": "occurrences",
	"report.max_length":      "length",
	"report.top_n":           "top",
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("corpus_root", DefaultCorpusRoot)
	v.SetDefault("extension", DefaultExtension)
	v.SetDefault("exclude", []string{})
	v.SetDefault("max_vocabulary", DefaultMaxVocabulary)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("progress_every", DefaultProgressEvery)
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", LogFormatText)

	// Report defaults
	v.SetDefault("report.min_values", 0)
	v.SetDefault("report.min_occurrences", 0)
	v.SetDefault("report.max_length", DefaultMaxValueLength)
	v.SetDefault("report.top_n", 0)

	// Environment variables
	v.SetEnvPrefix("EML_VOCAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("report.min_values", "EML_VOCAB_REPORT_MIN_VALUES")
	_ = v.BindEnv("report.min_occurrences", "EML_VOCAB_REPORT_MIN_OCCURRENCES")
	_ = v.BindEnv("report.max_length", "EML_VOCAB_REPORT_MAX_LENGTH")
	_ = v.BindEnv("report.top_n", "EML_VOCAB_REPORT_TOP_N")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of exclusions if provided via env var as comma-separated string
	excludeEnv := os.Getenv("EML_VOCAB_EXCLUDE")
	if excludeEnv != "" {
		if len(settings.Exclude) == 0 || (len(settings.Exclude) == 1 && strings.Contains(settings.Exclude[0], ",")) {
			settings.Exclude = strings.Split(excludeEnv, ",")
		}
	}

	// Trim spaces from exclusions
	for i := range settings.Exclude {
		settings.Exclude[i] = strings.TrimSpace(settings.Exclude[i])
	}
	settings.Exclude = filterEmptyStrings(settings.Exclude)

	settings.CorpusRoot = expandHomeDir(settings.CorpusRoot)
	settings.OutputDir = expandHomeDir(settings.OutputDir)
	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))
	settings.LogFormat = strings.ToLower(strings.TrimSpace(settings.LogFormat))

	return &settings, nil
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for values the collectors and report cannot work with.
func ValidateSettings(s *Settings) error {
	if strings.TrimSpace(s.Extension) == "" {
		return errors.New("extension cannot be empty")
	}
	if s.MaxVocabulary <= 0 {
		return errors.New("max-vocabulary must be positive")
	}
	if s.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if s.ProgressEvery <= 0 {
		return errors.New("progress-every must be positive")
	}

	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	switch s.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("log-format must be '%s' or '%s', got: %s", LogFormatText, LogFormatJSON, s.LogFormat)
	}

	return validateReportSettings(&s.Report)
}

// validateReportSettings validates the report thresholds.
// Max length and top N accept any value; zero or less means unlimited.
func validateReportSettings(r *ReportSettings) error {
	if r.MinValues < 0 {
		return errors.New("values must not be negative")
	}
	if r.MinOccurrences < 0 {
		return errors.New("occurrences must not be negative")
	}
	return nil
}
