package searcher

import (
	"fmt"

	"ataxx/experiments/metrics"
	"ataxx/meta"
)

type Option func(s *Searcher)

// Searcher picks moves with an alternating greedy rollout and positional tie-breaks.
// It keeps per-call metrics, so a Searcher must not be shared between goroutines.
type Searcher struct {
	depth       int
	cornerBonus int
	edgeBonus   int
	metrics     metrics.Collector
	last        metrics.SearchMetric
}

// WithDepth sets the number of rollout plies, the candidate move included.
func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithCornerBonus(bonus int) Option {
	return func(s *Searcher) {
		if bonus >= 0 {
			s.cornerBonus = bonus
		}
	}
}

func WithEdgeBonus(bonus int) Option {
	return func(s *Searcher) {
		if bonus >= 0 {
			s.edgeBonus = bonus
		}
	}
}

func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = metrics.NewCollector()
	}
}

func NewSearcher(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		depth:       meta.DEFAULT_DEPTH,
		cornerBonus: meta.CORNER_BONUS,
		edgeBonus:   meta.EDGE_BONUS,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	if s.depth > meta.MAX_DEPTH {
		panic(fmt.Sprintf("rollout depth %d exceeds maximum %d", s.depth, meta.MAX_DEPTH))
	}
	return s
}

func (s *Searcher) Depth() int {
	return s.depth
}

// Metrics returns the metrics of the last SelectMove call. They are zero unless WithMetrics was given.
func (s *Searcher) Metrics() metrics.SearchMetric {
	return s.last
}
