package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/eml-vocab/internal/domain"
	"github.com/sha1n/eml-vocab/internal/lookup"
	"github.com/sha1n/eml-vocab/internal/report"
)

// ListTagsArgument defines list_tags parameters.
type ListTagsArgument struct {
	Artifact string `json:"artifact,omitempty" jsonschema_description:"Artifact name; all artifacts when omitted"`
}

// ReportArgument defines vocabulary_report parameters.
type ReportArgument struct {
	Artifact       string `json:"artifact,omitempty" jsonschema_description:"Artifact name; may be omitted when a single artifact is loaded"`
	Tag            string `json:"tag,omitempty" jsonschema_description:"Only report this tag"`
	MinValues      int    `json:"min_values,omitempty" jsonschema_description:"Only report tags with at least this many distinct values"`
	MinOccurrences int    `json:"min_occurrences,omitempty" jsonschema_description:"Only report values seen at least this many times"`
	MaxLength      *int   `json:"max_length,omitempty" jsonschema_description:"Only report values with at most this many characters (default 100, 0 for no limit)"`
	TopN           int    `json:"top_n,omitempty" jsonschema_description:"Only report the N most frequent values per tag"`
}

// LookupArgument defines lookup_value parameters.
type LookupArgument struct {
	Query    string `json:"query" jsonschema_description:"Value text to search for (words or word prefixes)"`
	Tag      string `json:"tag,omitempty" jsonschema_description:"Only return values of this tag"`
	Artifact string `json:"artifact,omitempty" jsonschema_description:"Artifact name; all artifacts when omitted"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum number of values per artifact (default 20)"`
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ListTagsHandler handles the list_tags MCP tool.
type ListTagsHandler struct {
	catalog *Catalog
}

// NewListTagsHandler creates a new list_tags handler.
func NewListTagsHandler(catalog *Catalog) *ListTagsHandler {
	return &ListTagsHandler{catalog: catalog}
}

// Handle lists the tags of one or all artifacts with their counts.
func (h *ListTagsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListTagsArgument) (*mcp.CallToolResult, any, error) {
	entries := h.catalog.Entries()
	if args.Artifact != "" {
		e, err := h.catalog.Resolve(args.Artifact)
		if err != nil {
			return errorResult("%s", err), nil, nil
		}
		entries = []*Entry{e}
	}
	if len(entries) == 0 {
		return errorResult("No artifacts are loaded"), nil, nil
	}

	var sb strings.Builder
	for _, e := range entries {
		md := e.Stats.Metadata
		sb.WriteString(fmt.Sprintf("## %s\n", e.Name))
		sb.WriteString(fmt.Sprintf("selector: %s\n", md.Selector))
		sb.WriteString(fmt.Sprintf("documents: %s processed, %s failed\n",
			humanize.Comma(int64(md.DocumentsProcessed)), humanize.Comma(int64(md.DocumentsFailed))))
		if len(md.BlockedTags) > 0 {
			sb.WriteString(fmt.Sprintf("blocked (over %d values): %s\n", md.MaxVocabulary, strings.Join(md.BlockedTags, ", ")))
		}
		sb.WriteString("\n")
		for _, t := range e.Stats.Tags {
			sb.WriteString(fmt.Sprintf("- %s: %d occurrences, %d distinct values\n", t.Tag, t.OccurrenceCount(), t.UniqueCount()))
		}
		sb.WriteString("\n")
	}
	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *ListTagsHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_tags",
		Description: "List the tags of the loaded vocabulary artifacts with occurrence and distinct value counts",
	}
}

// ReportHandler handles the vocabulary_report MCP tool.
type ReportHandler struct {
	catalog *Catalog
}

// NewReportHandler creates a new vocabulary_report handler.
func NewReportHandler(catalog *Catalog) *ReportHandler {
	return &ReportHandler{catalog: catalog}
}

// Handle renders the filtered report of one artifact.
func (h *ReportHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReportArgument) (*mcp.CallToolResult, any, error) {
	e, err := h.catalog.Resolve(args.Artifact)
	if err != nil {
		return errorResult("%s", err), nil, nil
	}
	if args.MinValues < 0 || args.MinOccurrences < 0 {
		return errorResult("min_values and min_occurrences must not be negative"), nil, nil
	}

	opts := report.Options{
		MinUniqueValues: args.MinValues,
		MinOccurrences:  args.MinOccurrences,
		MaxValueLength:  report.DefaultMaxValueLength,
		TopN:            args.TopN,
	}
	if args.MaxLength != nil {
		opts.MaxValueLength = *args.MaxLength
	}

	stats := e.Stats
	if args.Tag != "" {
		t, ok := stats.Tag(args.Tag)
		if !ok {
			return errorResult("Tag %q not found in %s", args.Tag, e.Name), nil, nil
		}
		stats = &domain.CorpusStats{Metadata: stats.Metadata, Tags: []domain.TagStats{t}}
	}

	lines := report.Render(stats, opts)
	if len(lines) == 0 {
		return textResult(fmt.Sprintf("No values in %s pass the filters", e.Name)), nil, nil
	}
	text := strings.Join(append(report.Provenance(stats.Metadata), lines...), "\n")
	return textResult(text + "\n"), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *ReportHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vocabulary_report",
		Description: "Report the most frequent values per tag of a vocabulary artifact, with optional thresholds",
	}
}

// LookupHandler handles the lookup_value MCP tool.
type LookupHandler struct {
	catalog *Catalog
}

// NewLookupHandler creates a new lookup_value handler.
func NewLookupHandler(catalog *Catalog) *LookupHandler {
	return &LookupHandler{catalog: catalog}
}

// Handle searches the value indexes for tags using the queried text.
func (h *LookupHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args LookupArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	entries := h.catalog.Entries()
	if args.Artifact != "" {
		e, err := h.catalog.Resolve(args.Artifact)
		if err != nil {
			return errorResult("%s", err), nil, nil
		}
		entries = []*Entry{e}
	}

	var sb strings.Builder
	found := 0
	for _, e := range entries {
		hits, total, err := e.Index.Search(ctx, lookup.Query{Text: args.Query, Tag: args.Tag, Limit: args.Limit})
		if err != nil {
			return errorResult("Search failed: %s", err), nil, nil
		}
		if total == 0 {
			continue
		}
		found += int(total)

		sb.WriteString(fmt.Sprintf("## %s (%d matches)\n", e.Name, total))
		for _, hit := range hits {
			sb.WriteString(fmt.Sprintf("%8d %s: %s\n", hit.Count, hit.Tag, hit.Text))
		}
		if total > uint64(len(hits)) {
			sb.WriteString(fmt.Sprintf("... and %d more\n", total-uint64(len(hits))))
		}
		sb.WriteString("\n")
	}

	if found == 0 {
		return textResult(fmt.Sprintf("No values found for query: %s", args.Query)), nil, nil
	}
	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *LookupHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_value",
		Description: "Find which tags use a value, with occurrence counts, using full-text search over the loaded artifacts",
	}
}

// RegisterTools registers all vocabulary tools with an MCP server.
func RegisterTools(server *mcp.Server, catalog *Catalog) {
	listTags := NewListTagsHandler(catalog)
	mcp.AddTool(server, listTags.GetToolDefinition(), listTags.Handle)

	rep := NewReportHandler(catalog)
	mcp.AddTool(server, rep.GetToolDefinition(), rep.Handle)

	lk := NewLookupHandler(catalog)
	mcp.AddTool(server, lk.GetToolDefinition(), lk.Handle)
}
