package engine

import (
	"context"

	"ataxx/experiments/metrics"
)

type Engine interface {
	// Run plays a game till it is over or the context is cancelled
	Run(ctx context.Context) (winner string, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
