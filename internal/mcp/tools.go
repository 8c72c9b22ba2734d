package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/claude/murph/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// --- Tool definitions ---

var toolGetMurphs = mcp.NewTool("get_murphs",
	mcp.WithDescription("Retrieve the athlete's Murph session history, newest first. Each session includes run distances, rep counts, the completeness tier (FULL, THREE_QUARTER, HALF, QUARTER, INCOMPLETE), and duration."),
	mcp.WithString("limit", mcp.Description("Maximum number of sessions to return. Defaults to 20.")),
)

var toolGetMetrics = mcp.NewTool("get_murph_metrics",
	mcp.WithDescription("Aggregate performance metrics: total distance and reps, weighted murph count, fastest and average FULL murph time, and the longest consecutive-day FULL streak."),
)

var toolGetLeaderboard = mcp.NewTool("get_leaderboard",
	mcp.WithDescription("This month's top-10 fastest FULL murphs across all athletes."),
)

var toolGetFeed = mcp.NewTool("get_feed",
	mcp.WithDescription("Recent sessions from all athletes, newest first."),
)

// --- Tool handlers ---

func (h *handlers) getMurphs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if raw := req.GetString("limit", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = n
	}

	murphs, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp get_murphs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if len(murphs) > limit {
		murphs = murphs[:limit]
	}

	result, err := mcp.NewToolResultJSON(murphs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.Metrics(ctx)
	if err != nil {
		h.log.Error("mcp get_murph_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	// Give the model readable times alongside the raw milliseconds.
	out := map[string]any{"report": report}
	if report.FastestMurph != nil {
		out["fastest_murph"] = session.FormatElapsed(msToDuration(*report.FastestMurph))
	}
	if report.AverageMurph != nil {
		out["average_murph"] = session.FormatElapsed(msToDuration(*report.AverageMurph))
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLeaderboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.ds.Leaderboard(ctx)
	if err != nil {
		h.log.Error("mcp get_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getFeed(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.ds.Feed(ctx)
	if err != nil {
		h.log.Error("mcp get_feed", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
