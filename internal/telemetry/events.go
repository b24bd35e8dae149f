package telemetry

import (
	"runtime"
	"strings"

	"github.com/purestream711/PureStream-sub004/pkg/version"
)

// Event names - CLI
const (
	EventAppStarted         = "app_started"
	EventCLICommandExecuted = "cli_command_executed"
	EventCLIErrorOccurred   = "cli_error_occurred"
	EventCLIHelpViewed      = "cli_help_viewed"
)

// Event names - curation and cache
const (
	EventCurationCompleted = "curation_completed"
	EventCurationFailed    = "curation_failed"
	EventCatalogSynced     = "catalog_synced"
	EventCacheCleared      = "cache_cleared"
	EventDashboardViewed   = "dashboard_viewed"
)

// Event names - MCP
const (
	EventMCPToolCalled = "mcp_tool_called"
)

// baseProperties returns common properties for all events.
func baseProperties() map[string]interface{} {
	return map[string]interface{}{
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
		"version": version.Short(),
		"channel": version.Channel(),
	}
}

// TrackAppStarted tracks application startup.
func (c *posthogClient) TrackAppStarted(mode string, profileCount int) {
	props := baseProperties()
	props["mode"] = mode
	props["profile_count"] = profileCount
	c.Track(EventAppStarted, props)
}

// TrackCLICommandExecuted tracks CLI command execution.
func (c *posthogClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {
	props := baseProperties()
	props["command_name"] = commandName
	props["has_flags"] = hasFlags
	props["execution_duration_ms"] = durationMs
	c.Track(EventCLICommandExecuted, props)
}

// TrackCLIError tracks CLI errors.
func (c *posthogClient) TrackCLIError(commandName, errorType string) {
	props := baseProperties()
	props["command_name"] = commandName
	props["error_type"] = errorType
	c.Track(EventCLIErrorOccurred, props)
}

// TrackCLIHelpViewed tracks help command usage.
func (c *posthogClient) TrackCLIHelpViewed(commandName string, cliArgs []string) {
	props := baseProperties()
	props["command_name"] = commandName
	props["cli_args"] = strings.Join(cliArgs, " ")
	c.Track(EventCLIHelpViewed, props)
}

// TrackCurationCompleted tracks a committed curation run.
func (c *posthogClient) TrackCurationCompleted(categoryCount, matchCount int, policy string, durationMs int64) {
	props := baseProperties()
	props["category_count"] = categoryCount
	props["match_count"] = matchCount
	props["failure_policy"] = policy
	props["duration_ms"] = durationMs
	c.Track(EventCurationCompleted, props)
}

// TrackCurationFailed tracks a run that ended in Failed.
func (c *posthogClient) TrackCurationFailed(kind, stage string, durationMs int64) {
	props := baseProperties()
	props["error_kind"] = kind
	props["stage"] = stage
	props["duration_ms"] = durationMs
	c.Track(EventCurationFailed, props)
}

// TrackCatalogSynced tracks a catalog refresh or import.
func (c *posthogClient) TrackCatalogSynced(itemCount, evicted int, fromCache bool) {
	props := baseProperties()
	props["item_count"] = itemCount
	props["evicted"] = evicted
	props["from_cache"] = fromCache
	c.Track(EventCatalogSynced, props)
}

// TrackCacheCleared tracks cache invalidation.
func (c *posthogClient) TrackCacheCleared(scope string) {
	props := baseProperties()
	props["scope"] = scope
	c.Track(EventCacheCleared, props)
}

// TrackDashboardViewed tracks dashboard reads.
func (c *posthogClient) TrackDashboardViewed(collectionCount int, stale bool) {
	props := baseProperties()
	props["collection_count"] = collectionCount
	props["stale"] = stale
	c.Track(EventDashboardViewed, props)
}

// TrackMCPToolCalled tracks MCP tool invocations.
func (c *posthogClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool) {
	props := baseProperties()
	props["tool_name"] = toolName
	props["duration_ms"] = durationMs
	props["success"] = success
	c.Track(EventMCPToolCalled, props)
}

func (c *noopClient) TrackAppStarted(mode string, profileCount int) {}
func (c *noopClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {}
func (c *noopClient) TrackCLIError(commandName, errorType string) {}
func (c *noopClient) TrackCLIHelpViewed(commandName string, cliArgs []string) {}
func (c *noopClient) TrackCurationCompleted(categoryCount, matchCount int, policy string, durationMs int64) {}
func (c *noopClient) TrackCurationFailed(kind, stage string, durationMs int64) {}
func (c *noopClient) TrackCatalogSynced(itemCount, evicted int, fromCache bool) {}
func (c *noopClient) TrackCacheCleared(scope string) {}
func (c *noopClient) TrackDashboardViewed(collectionCount int, stale bool) {}
func (c *noopClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool) {}
