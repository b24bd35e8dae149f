package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func getDashboardTool() mcp.Tool {
	return mcp.NewTool("purestream_get_dashboard",
		mcp.WithDescription("Get a profile's dashboard from the local cache: enabled collections in order, the featured title, the last curation time and whether the dashboard is stale."),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("The profile id"),
		),
	)
}

func getCollectionTool() mcp.Tool {
	return mcp.NewTool("purestream_get_collection",
		mcp.WithDescription("List the cached titles of one dashboard collection in display order."),
		mcp.WithString("profile_id",
			mcp.Required(),
			mcp.Description("The profile id"),
		),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("Collection id, e.g. ai:trending"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of titles to return (default: 50, max: 200)"),
		),
	)
}

func cacheStatusTool() mcp.Tool {
	return mcp.NewTool("purestream_cache_status",
		mcp.WithDescription("Show cache metadata rows with their TTL and freshness."),
		mcp.WithString("profile_id",
			mcp.Description("Restrict to one profile (optional)"),
		),
	)
}

func listProfilesTool() mcp.Tool {
	return mcp.NewTool("purestream_list_profiles",
		mcp.WithDescription("List viewer profiles with their selected libraries and last curation time."),
	)
}
