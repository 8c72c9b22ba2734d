package mcp

import (
	"context"

	"github.com/claude/murph/internal/client"
	"github.com/claude/murph/internal/metrics"
	"github.com/claude/murph/internal/models"
)

// DataSource abstracts where session data comes from. The REST client is
// the production implementation; tests substitute a fake.
type DataSource interface {
	History(ctx context.Context) ([]models.MurphRow, error)
	Feed(ctx context.Context) ([]models.MurphRow, error)
	Metrics(ctx context.Context) (*metrics.Report, error)
	Leaderboard(ctx context.Context) ([]models.MurphRow, error)
}

// Compile-time check: *client.Client satisfies DataSource.
var _ DataSource = (*client.Client)(nil)
