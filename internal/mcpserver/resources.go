package mcpserver

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

const (
	recentTemplate = "history://recent/{limit}"
	searchTemplate = "history://search/{query}"
)

var (
	recentURI = uritemplate.MustNew(recentTemplate)
	searchURI = uritemplate.MustNew(searchTemplate)
)

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "recent_history",
		URITemplate: recentTemplate,
		Description: "Get the most recent commands from history",
		MIMEType:    "text/plain",
	}, s.readRecent)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "search_history",
		URITemplate: searchTemplate,
		Description: "Search for commands in history",
		MIMEType:    "text/plain",
	}, s.readSearch)
}

func (s *Server) readRecent(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	values := recentURI.Match(uri)
	if values == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	limit, err := strconv.Atoi(values.Get("limit").String())
	if err != nil {
		s.logger.Debug("recent resource with non-integer limit", "uri", uri)
		return nil, mcp.ResourceNotFoundError(uri)
	}

	records := s.store().Recent(limit)
	s.logger.Debug("resource read", "uri", uri, "results", len(records))
	return textResource(uri, FormatRecent(s.present(records))), nil
}

func (s *Server) readSearch(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	values := searchURI.Match(uri)
	if values == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	query := values.Get("query").String()

	records := s.store().Search(query)
	s.logger.Debug("resource read", "uri", uri, "results", len(records))
	return textResource(uri, FormatSearch(query, s.present(records))), nil
}

func textResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}
}
