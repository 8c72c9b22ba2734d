// Package mcp exposes murph history, metrics, and the leaderboard as MCP
// tools. The binary runs locally over stdio and reaches the data through
// the server's REST API.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Murph", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Murph workout log. Query the athlete's session history, aggregate metrics (totals, fastest time, streak), the shared feed, and this month's leaderboard."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetMurphs, Handler: h.getMurphs},
		server.ServerTool{Tool: toolGetMetrics, Handler: h.getMetrics},
		server.ServerTool{Tool: toolGetLeaderboard, Handler: h.getLeaderboard},
		server.ServerTool{Tool: toolGetFeed, Handler: h.getFeed},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentMurphs, Handler: h.recentMurphs},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resRecentMurphs = mcp.NewResource(
	"murph://recent",
	"Recent Murphs",
	mcp.WithResourceDescription("The athlete's most recent Murph sessions with tier, reps, and duration"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) recentMurphs(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	murphs, err := h.ds.History(ctx)
	if err != nil {
		return nil, err
	}
	if len(murphs) > 10 {
		murphs = murphs[:10]
	}

	data, err := json.Marshal(murphs)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
