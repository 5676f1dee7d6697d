package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "search_history_prompt",
		Description: "Create a prompt to search command history",
		Arguments: []*mcp.PromptArgument{{
			Name:        "query",
			Description: "Search term to look for",
			Required:    true,
		}},
	}, searchHistoryPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "recent_history_prompt",
		Description: "Create a prompt to show recent command history",
	}, recentHistoryPrompt)
}

func searchHistoryPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query, ok := req.Params.Arguments["query"]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", "query")
	}
	text := fmt.Sprintf("Please search my command history for '%s' and show me the results.\n"+
		"    \n"+
		"You can use the search_commands tool to find matching commands.\n", query)
	return userPrompt("Create a prompt to search command history", text), nil
}

func recentHistoryPrompt(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Please show me my most recent shell commands.\n" +
		"    \n" +
		"You can use the get_recent_commands tool to retrieve my command history.\n"
	return userPrompt("Create a prompt to show recent command history", text), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}
}
