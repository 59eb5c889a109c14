package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Processor QueryProcessor
	Profiles  ProfileStore
}

// NewMCPServer creates an MCP server exposing the query pipeline and the
// profile directory as tools and resources.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"qbot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("qbot — answers natural-language questions about stored professional profiles."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("query_profile",
			mcp.WithDescription("Answer a natural-language question about a stored profile, e.g. \"What is Alice Smith's current job?\""),
			mcp.WithString("query", mcp.Description("The question to answer"), mcp.Required()),
		),
		mcpQueryProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("list_profiles",
			mcp.WithDescription("List the identifiers and names of all loaded profiles."),
		),
		mcpListProfiles(deps),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return the full record for one profile identifier."),
			mcp.WithString("profile_id", mcp.Description("Profile identifier, e.g. asmith"), mcp.Required()),
		),
		mcpGetProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"profiles://list",
			"Profile Directory",
			mcp.WithResourceDescription("Summaries of all loaded profiles as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(deps),
	)

	return s
}

func mcpQueryProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		result := deps.Processor.ProcessFrom(ctx, query, "mcp")
		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListProfiles(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records := deps.Profiles.All()
		summaries := make([]profileSummary, len(records))
		for i, rec := range records {
			summaries[i] = profileSummary{
				ProfileID: rec.Identifier,
				Name:      rec.Basics.Name,
				Headline:  rec.Basics.Headline,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profiles: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("profile_id")
		if err != nil {
			return mcpError("profile_id is required"), nil
		}

		rec, ok := deps.Profiles.Get(id)
		if !ok {
			return mcpError(fmt.Sprintf("profile %s not found", id)), nil
		}

		b, err := json.Marshal(rec)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfiles(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records := deps.Profiles.All()
		summaries := make([]profileSummary, len(records))
		for i, rec := range records {
			summaries[i] = profileSummary{
				ProfileID: rec.Identifier,
				Name:      rec.Basics.Name,
				Headline:  rec.Basics.Headline,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profiles: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
