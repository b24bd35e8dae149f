package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/purestream711/PureStream-sub004/internal/cache"
	"github.com/purestream711/PureStream-sub004/internal/db"
	"github.com/purestream711/PureStream-sub004/internal/models"
)

const (
	defaultCollectionLimit = 50
	maxCollectionLimit     = 200
)

// parseLimit extracts and validates a limit parameter from MCP tool arguments.
// Returns defaultVal if not present, caps at maxVal if exceeded.
func parseLimit(arguments map[string]interface{}, defaultVal, maxVal int) int {
	if l, ok := arguments["limit"].(float64); ok && l > 0 {
		limit := int(l)
		if limit > maxVal {
			return maxVal
		}
		return limit
	}
	return defaultVal
}

func (s *Server) trackToolCall(toolName string, start time.Time, success bool) {
	if s.telemetry != nil {
		s.telemetry.TrackMCPToolCalled(toolName, time.Since(start).Milliseconds(), success)
	}
}

// ItemResponse is a catalog title in tool responses.
type ItemResponse struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Year   *int             `json:"year,omitempty"`
	Type   models.MediaType `json:"type"`
	Rating float64          `json:"rating,omitempty"`
}

// DashboardResponse is the purestream_get_dashboard payload.
type DashboardResponse struct {
	ProfileID    string                       `json:"profile_id"`
	Collections  []models.DashboardCollection `json:"collections"`
	Featured     *ItemResponse                `json:"featured,omitempty"`
	LastCuration *time.Time                   `json:"last_curation,omitempty"`
	Stale        bool                         `json:"stale"`
}

// CollectionResponse is the purestream_get_collection payload.
type CollectionResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Items     []ItemResponse `json:"items"`
	Total     int            `json:"total"`
	Missing   int            `json:"missing"`
	Truncated bool           `json:"truncated,omitempty"`
}

// CacheEntryResponse is one metadata row in purestream_cache_status.
type CacheEntryResponse struct {
	Key           string           `json:"key"`
	Type          models.CacheType `json:"type"`
	ProfileID     string           `json:"profile_id"`
	LastRefreshed time.Time        `json:"last_refreshed"`
	AgeSeconds    int64            `json:"age_seconds"`
	TTLSeconds    int64            `json:"ttl_seconds"`
	ItemCount     int              `json:"item_count"`
	Complete      bool             `json:"complete"`
	Stale         bool             `json:"stale"`
}

// ProfileResponse is one profile in purestream_list_profiles.
type ProfileResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	SelectedLibraries []string   `json:"selected_libraries"`
	LastCurationAt    *time.Time `json:"last_curation_at,omitempty"`
}

func toItemResponse(item models.CatalogItem) ItemResponse {
	return ItemResponse{ID: item.ID, Title: item.Title, Year: item.Year, Type: item.Type, Rating: item.Rating}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) buildDashboard(ctx context.Context, profileID string) (*DashboardResponse, error) {
	view, err := s.dashboard.Dashboard(ctx, profileID)
	if err != nil {
		return nil, err
	}
	resp := &DashboardResponse{
		ProfileID:    view.ProfileID,
		Collections:  view.Collections,
		LastCuration: view.LastCuration,
		Stale:        view.Stale,
	}
	if view.Featured != nil {
		item := toItemResponse(*view.Featured)
		resp.Featured = &item
	}
	return resp, nil
}

// handleGetDashboard handles the purestream_get_dashboard tool.
func (s *Server) handleGetDashboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	profileID, ok := req.Params.Arguments["profile_id"].(string)
	if !ok || profileID == "" {
		s.trackToolCall("purestream_get_dashboard", start, false)
		return mcp.NewToolResultError("profile_id parameter is required"), nil
	}

	resp, err := s.buildDashboard(ctx, profileID)
	if err != nil {
		s.trackToolCall("purestream_get_dashboard", start, false)
		return mcp.NewToolResultError(profileError(profileID, err)), nil
	}

	if s.telemetry != nil {
		s.telemetry.TrackDashboardViewed(len(resp.Collections), resp.Stale)
	}
	s.trackToolCall("purestream_get_dashboard", start, true)
	return jsonResult(resp)
}

// handleGetCollection handles the purestream_get_collection tool.
func (s *Server) handleGetCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	profileID, _ := req.Params.Arguments["profile_id"].(string)
	collectionID, _ := req.Params.Arguments["collection_id"].(string)
	if profileID == "" || collectionID == "" {
		s.trackToolCall("purestream_get_collection", start, false)
		return mcp.NewToolResultError("profile_id and collection_id parameters are required"), nil
	}
	limit := parseLimit(req.Params.Arguments, defaultCollectionLimit, maxCollectionLimit)

	view, err := s.dashboard.Collection(ctx, profileID, collectionID)
	if err != nil {
		s.trackToolCall("purestream_get_collection", start, false)
		return mcp.NewToolResultError(profileError(profileID, err)), nil
	}

	resp := CollectionResponse{
		ID:      view.Collection.ID,
		Title:   view.Collection.Title,
		Type:    string(view.Collection.Type),
		Total:   len(view.Items),
		Missing: view.Missing,
		Items:   make([]ItemResponse, 0, min(limit, len(view.Items))),
	}
	for i, item := range view.Items {
		if i == limit {
			resp.Truncated = true
			break
		}
		resp.Items = append(resp.Items, toItemResponse(item))
	}

	s.trackToolCall("purestream_get_collection", start, true)
	return jsonResult(resp)
}

// handleCacheStatus handles the purestream_cache_status tool.
func (s *Server) handleCacheStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	profileID, _ := req.Params.Arguments["profile_id"].(string)
	rows, err := s.db.ListMetadata(profileID)
	if err != nil {
		s.trackToolCall("purestream_cache_status", start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to list cache metadata: %v", err)), nil
	}

	entries := make([]CacheEntryResponse, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		entries = append(entries, CacheEntryResponse{
			Key:           m.Key,
			Type:          m.CacheType,
			ProfileID:     m.ProfileID,
			LastRefreshed: m.LastRefreshed,
			AgeSeconds:    int64(s.policy.Age(m.LastRefreshed).Seconds()),
			TTLSeconds:    int64(cache.TTLFor(m.CacheType).Seconds()),
			ItemCount:     m.ItemCount,
			Complete:      m.IsComplete,
			Stale:         s.policy.MetadataNeedsRefresh(m, false),
		})
	}

	s.trackToolCall("purestream_cache_status", start, true)
	return jsonResult(entries)
}

// handleListProfiles handles the purestream_list_profiles tool.
func (s *Server) handleListProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	profiles, err := s.db.ListProfiles()
	if err != nil {
		s.trackToolCall("purestream_list_profiles", start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to list profiles: %v", err)), nil
	}

	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileResponse{
			ID:                p.ID,
			Name:              p.Name,
			SelectedLibraries: p.SelectedLibraries,
			LastCurationAt:    p.LastCurationAt,
		})
	}

	s.trackToolCall("purestream_list_profiles", start, true)
	return jsonResult(out)
}

func profileError(profileID string, err error) string {
	if errors.Is(err, db.ErrProfileNotFound) {
		return fmt.Sprintf("profile not found: %s", profileID)
	}
	return err.Error()
}
