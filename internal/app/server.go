package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	mcputil "github.com/sha1n/eml-vocab/internal/mcp"
	"github.com/spf13/pflag"
)

// RunServe serves the vocabulary tools for the given artifacts over stdio
func RunServe(ctx context.Context, params RunParams, flags *pflag.FlagSet, artifacts []string, version string) error {
	if _, err := setup(params, flags); err != nil {
		return err
	}

	slog.Info("Starting eml-vocab MCP server", "version", version, "artifacts", len(artifacts))

	server, cleanup, err := params.CreateServer(artifacts, version)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Use custom transport if provided (for testing), otherwise use stdio
	transport := params.CustomIOTransport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return server.Run(ctx, transport)
}

// CreateMCPServer loads the artifacts and creates the MCP server with registered tools
func CreateMCPServer(artifacts []string, version string) (*mcp.Server, func(), error) {
	catalog, err := mcputil.LoadCatalog(artifacts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	for _, e := range catalog.Entries() {
		slog.Info("Loaded artifact", "name", e.Name, "path", e.Path, "tags", len(e.Stats.Tags), "values", e.Index.Len())
	}

	cleanup := func() {
		if err := catalog.Close(); err != nil {
			slog.Error("Failed to close artifact indexes", "error", err)
		}
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:    "eml-vocab",
		Version: version,
		Catalog: catalog,
	})

	return server, cleanup, nil
}
