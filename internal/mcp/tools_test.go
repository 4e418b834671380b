package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestListTagsHandler(t *testing.T) {
	handler := NewListTagsHandler(testCatalog(t))

	result, _, err := handler.Handle(context.Background(), nil, ListTagsArgument{})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Unexpected error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{
		"## units",
		"documents: 1,500 processed, 1 failed",
		"- standardUnit: 45 occurrences, 3 distinct values",
		"## types",
		"blocked (over 2 values): attributeName",
		"- numberType: 13 occurrences, 2 distinct values",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestListTagsHandler_SingleArtifact(t *testing.T) {
	handler := NewListTagsHandler(testCatalog(t))

	result, _, _ := handler.Handle(context.Background(), nil, ListTagsArgument{Artifact: "types"})
	text := resultText(t, result)
	if strings.Contains(text, "## units") || !strings.Contains(text, "## types") {
		t.Errorf("Expected only types:\n%s", text)
	}

	result, _, _ = handler.Handle(context.Background(), nil, ListTagsArgument{Artifact: "nope"})
	if !result.IsError {
		t.Error("Expected error result for unknown artifact")
	}
}

func TestListTagsHandler_EmptyCatalog(t *testing.T) {
	handler := NewListTagsHandler(NewCatalog())

	result, _, _ := handler.Handle(context.Background(), nil, ListTagsArgument{})
	if !result.IsError {
		t.Error("Expected error result for empty catalog")
	}
}

func TestReportHandler(t *testing.T) {
	handler := NewReportHandler(testCatalog(t))

	result, _, err := handler.Handle(context.Background(), nil, ReportArgument{Artifact: "units", MinOccurrences: 10})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "# selector:    .//standardUnit") {
		t.Errorf("Expected provenance block:\n%s", text)
	}
	if !strings.Contains(text, "      45 standardUnit::") {
		t.Errorf("Expected tag header:\n%s", text)
	}
	if !strings.Contains(text, "          30 celsius") || !strings.Contains(text, "          12 meter") {
		t.Errorf("Expected frequent values:\n%s", text)
	}
	if strings.Contains(text, "dimensionless") {
		t.Errorf("Expected rare value to be filtered:\n%s", text)
	}
}

func TestReportHandler_TagAndMaxLength(t *testing.T) {
	handler := NewReportHandler(testCatalog(t))
	maxLength := 5

	result, _, _ := handler.Handle(context.Background(), nil, ReportArgument{Artifact: "types", Tag: "unit", MaxLength: &maxLength})
	text := resultText(t, result)
	if !strings.Contains(text, "No values in types pass the filters") {
		t.Errorf("Expected long value to be filtered:\n%s", text)
	}

	unlimited := 0
	result, _, _ = handler.Handle(context.Background(), nil, ReportArgument{Artifact: "types", Tag: "unit", MaxLength: &unlimited})
	text = resultText(t, result)
	if !strings.Contains(text, "meter per second") || strings.Contains(text, "numberType") {
		t.Errorf("Expected only the unit tag:\n%s", text)
	}
}

func TestReportHandler_Errors(t *testing.T) {
	handler := NewReportHandler(testCatalog(t))

	tests := []struct {
		name string
		args ReportArgument
		want string
	}{
		{"ambiguous artifact", ReportArgument{}, "artifact name required"},
		{"unknown tag", ReportArgument{Artifact: "units", Tag: "title"}, "not found"},
		{"negative threshold", ReportArgument{Artifact: "units", MinOccurrences: -1}, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := handler.Handle(context.Background(), nil, tt.args)
			if err != nil {
				t.Fatalf("Handle returned error: %v", err)
			}
			if !result.IsError {
				t.Fatal("Expected error result")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, text)
			}
		})
	}
}

func TestLookupHandler(t *testing.T) {
	handler := NewLookupHandler(testCatalog(t))

	result, _, err := handler.Handle(context.Background(), nil, LookupArgument{Query: "meter"})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "## units (1 matches)") || !strings.Contains(text, "      12 standardUnit: meter") {
		t.Errorf("Expected units hit:\n%s", text)
	}
	if !strings.Contains(text, "## types (1 matches)") || !strings.Contains(text, "       2 unit: meter per second") {
		t.Errorf("Expected types hit:\n%s", text)
	}
}

func TestLookupHandler_Filters(t *testing.T) {
	handler := NewLookupHandler(testCatalog(t))

	result, _, _ := handler.Handle(context.Background(), nil, LookupArgument{Query: "meter", Tag: "standardUnit"})
	text := resultText(t, result)
	if strings.Contains(text, "## types") {
		t.Errorf("Expected tag filter to exclude types:\n%s", text)
	}

	result, _, _ = handler.Handle(context.Background(), nil, LookupArgument{Query: "meter", Artifact: "types"})
	text = resultText(t, result)
	if strings.Contains(text, "## units") {
		t.Errorf("Expected artifact filter to exclude units:\n%s", text)
	}
}

func TestLookupHandler_NoResultsAndErrors(t *testing.T) {
	handler := NewLookupHandler(testCatalog(t))

	result, _, _ := handler.Handle(context.Background(), nil, LookupArgument{Query: "volcano"})
	if result.IsError || !strings.Contains(resultText(t, result), "No values found") {
		t.Errorf("Expected no-results message, got %q", resultText(t, result))
	}

	result, _, _ = handler.Handle(context.Background(), nil, LookupArgument{Query: " "})
	if !result.IsError {
		t.Error("Expected error result for empty query")
	}

	result, _, _ = handler.Handle(context.Background(), nil, LookupArgument{Query: "meter", Artifact: "nope"})
	if !result.IsError {
		t.Error("Expected error result for unknown artifact")
	}
}

func TestToolDefinitions(t *testing.T) {
	c := testCatalog(t)
	names := []string{
		NewListTagsHandler(c).GetToolDefinition().Name,
		NewReportHandler(c).GetToolDefinition().Name,
		NewLookupHandler(c).GetToolDefinition().Name,
	}
	want := []string{"list_tags", "vocabulary_report", "lookup_value"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Tool %d name = %q, want %q", i, names[i], want[i])
		}
	}
}
