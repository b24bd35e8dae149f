package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

// resourcePrefix is the URI scheme for PureStream resources.
const resourcePrefix = "purestream://"

// parseDashboardURI extracts the profile id from purestream://profile/{id}/dashboard.
func parseDashboardURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, resourcePrefix+"profile/") {
		return "", fmt.Errorf("invalid URI scheme: %s", uri)
	}
	path := strings.TrimPrefix(uri, resourcePrefix+"profile/")
	id, ok := strings.CutSuffix(path, "/dashboard")
	if !ok {
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid profile id in URI: %s", uri)
	}
	return id, nil
}

// handleDashboardResource handles purestream://profile/{id}/dashboard resources.
func (s *Server) handleDashboardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	profileID, err := parseDashboardURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	resp, err := s.buildDashboard(ctx, profileID)
	if err != nil {
		return nil, errors.New(profileError(profileID, err))
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dashboard: %v", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
