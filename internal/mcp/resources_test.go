package mcp

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDashboardURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantID  string
		wantErr bool
	}{
		{name: "valid", uri: "purestream://profile/alice/dashboard", wantID: "alice"},
		{name: "dashes", uri: "purestream://profile/kids-room/dashboard", wantID: "kids-room"},
		{name: "invalid scheme", uri: "http://profile/alice/dashboard", wantErr: true},
		{name: "empty id", uri: "purestream://profile//dashboard", wantErr: true},
		{name: "unknown resource", uri: "purestream://profile/alice/settings", wantErr: true},
		{name: "nested id", uri: "purestream://profile/a/b/dashboard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := parseDashboardURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestHandleDashboardResource(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	seedProfile(t, s)
	ctx := context.Background()

	t.Run("returns dashboard JSON", func(t *testing.T) {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = "purestream://profile/alice/dashboard"

		contents, err := s.handleDashboardResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, contents, 1)

		text, ok := contents[0].(mcp.TextResourceContents)
		require.True(t, ok)
		assert.Equal(t, "application/json", text.MIMEType)

		var resp DashboardResponse
		require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
		assert.Equal(t, "alice", resp.ProfileID)
		assert.Len(t, resp.Collections, 3)
	})

	t.Run("unknown profile", func(t *testing.T) {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = "purestream://profile/bob/dashboard"

		_, err := s.handleDashboardResource(ctx, req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "profile not found")
	})

	t.Run("invalid URI", func(t *testing.T) {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = "http://invalid/uri"

		_, err := s.handleDashboardResource(ctx, req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid URI scheme")
	})
}
