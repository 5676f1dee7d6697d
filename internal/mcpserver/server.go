// Package mcpserver exposes a history.Source over the Model Context Protocol
// as resources, tools and prompts.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/redact"
)

// Name is the implementation name reported to MCP clients.
const Name = "Shell History Explorer"

const instructions = "Read-only access to the user's shell command history. " +
	"Use search_commands for case-insensitive substring search, get_recent_commands " +
	"for the newest commands, and get_command to fetch one command by its ID."

// Server binds a history source to an MCP server. Every request reads the
// source's current store, so a reload is visible to the next request.
type Server struct {
	source   *history.Source
	logger   *slog.Logger
	server   *mcp.Server
	redactor *redact.Redactor
}

// Option configures a Server.
type Option func(*Server)

// WithRedactor masks secrets in every command the server returns. Matching
// still runs against the unredacted text.
func WithRedactor(r *redact.Redactor) Option {
	return func(s *Server) {
		s.redactor = r
	}
}

// New builds a server with all resources, tools and prompts registered.
func New(source *history.Source, logger *slog.Logger, version string, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source: source,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    Name,
			Version: version,
		}, &mcp.ServerOptions{
			Instructions: instructions,
			Logger:       logger,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// MCP returns the underlying SDK server, for callers that need a transport
// other than stdio.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) store() *history.Store {
	return s.source.Store()
}

// present masks records on their way out. At debug level it also logs
// which rules fired, never the secret itself.
func (s *Server) present(records []history.Record) []history.Record {
	if s.redactor != nil && s.logger.Enabled(context.Background(), slog.LevelDebug) {
		for _, r := range records {
			if rules := s.redactor.Matches(r.Command); len(rules) > 0 {
				s.logger.Debug("redacted command", "id", r.ID, "rules", rules)
			}
		}
	}
	return s.redactor.Records(records)
}
