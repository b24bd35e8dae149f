// Package mcp provides the Model Context Protocol server for PureStream.
//
// The server exposes the offline dashboard and cache state to MCP clients.
// It only reads the local stores; curation and catalog sync stay on the CLI.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/purestream711/PureStream-sub004/internal/cache"
	"github.com/purestream711/PureStream-sub004/internal/catalog"
	"github.com/purestream711/PureStream-sub004/internal/dashboard"
	"github.com/purestream711/PureStream-sub004/internal/db"
	"github.com/purestream711/PureStream-sub004/internal/telemetry"
	"github.com/purestream711/PureStream-sub004/pkg/version"
)

// Server wraps the MCP server with PureStream-specific functionality.
type Server struct {
	db        *db.DB
	catalog   *catalog.Service
	dashboard *dashboard.Service
	policy    cache.Policy
	server    *server.MCPServer
	telemetry telemetry.Client
}

// NewServer creates a new MCP server over the local stores.
func NewServer(database *db.DB, store *catalog.Store, tc telemetry.Client) *Server {
	svc := catalog.NewService(store, nil, database, nil, nil)
	s := &Server{
		db:        database,
		catalog:   svc,
		dashboard: dashboard.NewService(database, svc),
		policy:    cache.NewPolicy(),
		telemetry: tc,
	}

	s.server = server.NewMCPServer(
		"purestream",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// WithPolicy swaps the freshness policy used by every handler.
func (s *Server) WithPolicy(p cache.Policy) *Server {
	s.policy = p
	s.dashboard.WithPolicy(p)
	s.catalog.WithPolicy(p)
	return s
}

// Serve starts the MCP server over stdio.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.server)
}

func (s *Server) registerTools() {
	s.server.AddTool(getDashboardTool(), s.handleGetDashboard)
	s.server.AddTool(getCollectionTool(), s.handleGetCollection)
	s.server.AddTool(cacheStatusTool(), s.handleCacheStatus)
	s.server.AddTool(listProfilesTool(), s.handleListProfiles)
}

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		mcp.NewResourceTemplate(
			resourcePrefix+"profile/{id}/dashboard",
			"Profile dashboard",
			mcp.WithTemplateDescription("JSON dashboard of a profile: collections, featured item and staleness"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleDashboardResource,
	)
}
