package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sreejagatab/linkedin-qbot/internal/pipeline"
)

// --- helpers ---

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func testMCPDeps() (MCPDeps, *mockProcessor) {
	deps, proc, profiles := testDeps()
	return MCPDeps{Processor: deps.Processor, Profiles: profiles}, proc
}

// --- tests ---

func TestMCPTool_QueryProfile(t *testing.T) {
	deps, proc := testMCPDeps()
	handler := mcpQueryProfile(deps)

	req := makeCallToolRequest("query_profile", map[string]interface{}{
		"query": "What is Alice Smith's current job?",
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if proc.lastUser != "mcp" {
		t.Errorf("userID = %q, want mcp", proc.lastUser)
	}

	var got pipeline.Result
	if err := json.Unmarshal([]byte(toolText(t, result)), &got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !got.Success || got.ProfileID != "asmith" {
		t.Errorf("result = %+v", got)
	}
}

func TestMCPTool_QueryProfile_MissingQuery(t *testing.T) {
	deps, _ := testMCPDeps()
	handler := mcpQueryProfile(deps)

	result, err := handler(context.Background(), makeCallToolRequest("query_profile", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing query")
	}
}

func TestMCPTool_ListProfiles(t *testing.T) {
	deps, _ := testMCPDeps()
	handler := mcpListProfiles(deps)

	result, err := handler(context.Background(), makeCallToolRequest("list_profiles", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var summaries []profileSummary
	if err := json.Unmarshal([]byte(toolText(t, result)), &summaries); err != nil {
		t.Fatalf("decoding summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ProfileID != "asmith" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestMCPTool_GetProfile(t *testing.T) {
	deps, _ := testMCPDeps()
	handler := mcpGetProfile(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_profile", map[string]interface{}{
		"profile_id": "asmith",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if !strings.Contains(toolText(t, result), "Alice Smith") {
		t.Errorf("result = %s", toolText(t, result))
	}

	result, err = handler(context.Background(), makeCallToolRequest("get_profile", map[string]interface{}{
		"profile_id": "nobody",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown profile")
	}
}

func TestMCPResource_Profiles(t *testing.T) {
	deps, _ := testMCPDeps()
	handler := mcpResourceProfiles(deps)

	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "profiles://list"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if !strings.Contains(tc.Text, "asmith") {
		t.Errorf("resource text = %s", tc.Text)
	}
}
