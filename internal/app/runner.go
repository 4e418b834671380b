package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/eml-vocab/internal/config"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the run functions
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	CreateServer      func(artifacts []string, version string) (*mcp.Server, func(), error)
	Stdout            io.Writer     // Optional: report and query output, defaults to os.Stdout
	Stderr            io.Writer     // Optional: log output, defaults to os.Stderr
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		CreateServer:  CreateMCPServer,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
	}
}

func (p RunParams) stdout() io.Writer {
	if p.Stdout == nil {
		return os.Stdout
	}
	return p.Stdout
}

func (p RunParams) stderr() io.Writer {
	if p.Stderr == nil {
		return os.Stderr
	}
	return p.Stderr
}

// setup loads and validates settings and installs the default logger.
// Logs always go to stderr so stdout carries only command output.
func setup(params RunParams, flags *pflag.FlagSet) (*config.Settings, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := config.NewLogger(params.stderr(), settings)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	slog.SetDefault(logger)

	return settings, nil
}
