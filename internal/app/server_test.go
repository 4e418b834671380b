package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestRunServe_CallTools(t *testing.T) {
	path := collectArtifact(t, "numberType")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	params := testParams(testSettings("."), io.Discard)
	params.CustomIOTransport = serverTransport

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- RunServe(ctx, params, nil, []string{path}, "test")
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_tags", "vocabulary_report", "lookup_value"} {
		if !names[want] {
			t.Errorf("Tool %s not registered", want)
		}
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "vocabulary_report",
		Arguments: map[string]any{"top_n": 1},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	if !strings.Contains(text.Text, "           3 real") || strings.Contains(text.Text, "integer") {
		t.Errorf("Unexpected report:\n%s", text.Text)
	}

	_ = session.Close()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not stop")
	}
}

func TestRunServe_CreateServerError(t *testing.T) {
	params := testParams(testSettings("."), io.Discard)
	params.CreateServer = func([]string, string) (*mcp.Server, func(), error) {
		return nil, nil, errors.New("create server error")
	}

	err := RunServe(context.Background(), params, nil, nil, "test")
	if err == nil || !strings.Contains(err.Error(), "create server error") {
		t.Errorf("Expected create server error, got %v", err)
	}
}

func TestRunServe_Cleanup(t *testing.T) {
	cleanupCalled := false
	params := testParams(testSettings("."), io.Discard)
	params.CreateServer = func([]string, string) (*mcp.Server, func(), error) {
		impl := &mcp.Implementation{Name: "test", Version: "1.0"}
		return mcp.NewServer(impl, nil), func() { cleanupCalled = true }, nil
	}
	params.CustomIOTransport = &mockTransport{}

	_ = RunServe(context.Background(), params, nil, nil, "test")

	if !cleanupCalled {
		t.Error("Cleanup was not called")
	}
}

func TestRunServe_CustomTransport(t *testing.T) {
	transportUsed := false
	params := testParams(testSettings("."), io.Discard)
	params.CreateServer = func([]string, string) (*mcp.Server, func(), error) {
		impl := &mcp.Implementation{Name: "test", Version: "1.0"}
		return mcp.NewServer(impl, nil), nil, nil
	}
	params.CustomIOTransport = &mockTransport{connectCalled: &transportUsed}

	// Use a cancelled context to avoid hanging
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = RunServe(ctx, params, nil, nil, "test")

	if !transportUsed {
		t.Error("Custom transport Connect was not called")
	}
}

func TestCreateMCPServer_MissingArtifact(t *testing.T) {
	_, _, err := CreateMCPServer([]string{"/nonexistent/stats.json"}, "test")
	if err == nil || !strings.Contains(err.Error(), "failed to load artifacts") {
		t.Errorf("Expected load error, got %v", err)
	}
}

func TestCreateMCPServer(t *testing.T) {
	path := collectArtifact(t, "keyword")

	server, cleanup, err := CreateMCPServer([]string{path}, "test")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if server == nil {
		t.Error("Expected server to be created")
	}
	if cleanup != nil {
		cleanup()
	}
}

// mockTransport implements mcp.Transport for testing
type mockTransport struct {
	connectCalled *bool
}

func (m *mockTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	if m.connectCalled != nil {
		*m.connectCalled = true
	}
	return nil, errors.New("mock transport - no real connection")
}
