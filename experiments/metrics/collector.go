package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Depth      int
	Duration   time.Duration
	Candidates int // Moves scored after the endgame filter
	Plies      int // Rollout plies simulated across all candidates
	Score      int // Rollout score of the chosen move
	Passed     bool
}

type MoveMetric struct {
	Step   int
	Player string // Side symbol
	SearchMetric
}

type GameMetric struct {
	StartingPlayer string
	Winner         string // "" on a tie
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	FirstScore     int
	SecondScore    int
}

type Collector interface {
	Start(depth int)
	AddCandidate()
	AddPly()
	SetChoice(score int, passed bool)
	Complete() SearchMetric
}

type collector struct {
	depth      int
	startTime  time.Time
	candidates atomic.Int32
	plies      atomic.Int32
	score      atomic.Int32
	passed     atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(depth int) {
	m.startTime = time.Now()
	m.depth = depth
	m.candidates.Store(0)
	m.plies.Store(0)
	m.score.Store(0)
	m.passed.Store(false)
}

func (m *collector) AddCandidate() {
	m.candidates.Add(1)
}

func (m *collector) AddPly() {
	m.plies.Add(1)
}

func (m *collector) SetChoice(score int, passed bool) {
	m.score.Store(int32(score))
	m.passed.Store(passed)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Depth:      m.depth,
		Duration:   time.Since(m.startTime),
		Candidates: int(m.candidates.Load()),
		Plies:      int(m.plies.Load()),
		Score:      int(m.score.Load()),
		Passed:     m.passed.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(depth int)                  {}
func (m *dummyCollector) AddCandidate()                    {}
func (m *dummyCollector) AddPly()                          {}
func (m *dummyCollector) SetChoice(score int, passed bool) {}
func (m *dummyCollector) Complete() SearchMetric           { return SearchMetric{} }
