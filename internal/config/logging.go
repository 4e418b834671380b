package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("log-level must be one of debug, info, warn, error, got: %s", name)
	}
	return level, nil
}

// NewLogger creates a logger writing to w with the configured level and format.
func NewLogger(w io.Writer, s *Settings) (*slog.Logger, error) {
	level := slog.LevelInfo
	if s.LogLevel != "" {
		var err error
		if level, err = ParseLevel(s.LogLevel); err != nil {
			return nil, err
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch s.LogFormat {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case LogFormatText, "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log-format: %s", s.LogFormat)
	}
	return slog.New(handler), nil
}

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: corpus_root", "value", s.CorpusRoot)
	logger.InfoContext(ctx, "Config: extension", "value", s.Extension)
	if len(s.Exclude) > 0 {
		logger.InfoContext(ctx, "Config: exclude", "value", strings.Join(s.Exclude, ","))
	}
	logger.InfoContext(ctx, "Config: max_vocabulary", "value", s.MaxVocabulary)
	logger.InfoContext(ctx, "Config: workers", "value", s.Workers)
	logger.DebugContext(ctx, "Config: progress_every", "value", s.ProgressEvery)
	logger.DebugContext(ctx, "Config: log", "level", s.LogLevel, "format", s.LogFormat)
}

// ReportSettingsLogValue returns a slog.Value for ReportSettings
func ReportSettingsLogValue(r ReportSettings) slog.Value {
	return slog.GroupValue(
		slog.Int("min_values", r.MinValues),
		slog.Int("min_occurrences", r.MinOccurrences),
		slog.Int("max_length", r.MaxLength),
		slog.Int("top_n", r.TopN),
	)
}

// SettingsLogValue returns a slog.Value for Settings
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("corpus_root", s.CorpusRoot),
		slog.String("extension", s.Extension),
		slog.Any("exclude", s.Exclude),
		slog.Int("max_vocabulary", s.MaxVocabulary),
		slog.Int("workers", s.Workers),
		slog.Any("report", ReportSettingsLogValue(s.Report)),
	)
}
