package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/runger/histmcp/internal/history"
)

// DefaultRecentLimit is used by get_recent_commands when no limit is given.
const DefaultRecentLimit = 10

// SearchCommandsInput is the argument object of search_commands.
type SearchCommandsInput struct {
	Query string `json:"query" jsonschema:"Search term to find in command history"`
}

// RecentCommandsInput is the argument object of get_recent_commands.
type RecentCommandsInput struct {
	Limit *int `json:"limit,omitempty" jsonschema:"Maximum number of commands to return (default 10)"`
}

// GetCommandInput is the argument object of get_command.
type GetCommandInput struct {
	CommandID int `json:"command_id" jsonschema:"ID of the command to retrieve"`
}

// CommandsOutput is returned by the list-valued tools.
type CommandsOutput struct {
	Commands []history.Record `json:"commands" jsonschema:"Matching commands with their IDs, oldest first"`
}

// GetCommandOutput is returned by get_command. Command is omitted when
// Found is false.
type GetCommandOutput struct {
	Found   bool            `json:"found" jsonschema:"Whether a command with the ID exists"`
	Command *history.Record `json:"command,omitempty" jsonschema:"The command, when found"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_commands",
		Description: "Search for commands in shell history. Matching is a case-insensitive substring match; an empty query returns the most recent commands.",
	}, s.searchCommands)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_recent_commands",
		Description: "Get the most recent commands from history, oldest first.",
	}, s.getRecentCommands)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_command",
		Description: "Get a specific command by ID.",
	}, s.getCommand)
}

func (s *Server) searchCommands(_ context.Context, _ *mcp.CallToolRequest, in SearchCommandsInput) (*mcp.CallToolResult, CommandsOutput, error) {
	records := s.store().Search(in.Query)
	s.logger.Debug("tool call", "tool", "search_commands", "query", in.Query, "results", len(records))
	return nil, CommandsOutput{Commands: s.present(records)}, nil
}

func (s *Server) getRecentCommands(_ context.Context, _ *mcp.CallToolRequest, in RecentCommandsInput) (*mcp.CallToolResult, CommandsOutput, error) {
	limit := DefaultRecentLimit
	if in.Limit != nil {
		limit = *in.Limit
	}
	records := s.store().Recent(limit)
	s.logger.Debug("tool call", "tool", "get_recent_commands", "limit", limit, "results", len(records))
	return nil, CommandsOutput{Commands: s.present(records)}, nil
}

func (s *Server) getCommand(_ context.Context, _ *mcp.CallToolRequest, in GetCommandInput) (*mcp.CallToolResult, GetCommandOutput, error) {
	rec, ok := s.store().Get(in.CommandID)
	s.logger.Debug("tool call", "tool", "get_command", "command_id", in.CommandID, "found", ok)
	if !ok {
		return nil, GetCommandOutput{}, nil
	}
	rec = s.present([]history.Record{rec})[0]
	return nil, GetCommandOutput{Found: true, Command: &rec}, nil
}
