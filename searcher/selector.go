package searcher

import (
	"cmp"
	"slices"

	"ataxx/game"

	"github.com/rs/zerolog/log"
)

// Candidate is a legal move with its evaluation for the current turn.
type Candidate struct {
	game.Move
	Score  int
	Class  Class
	Friend int
}

// compareCandidates orders best first: score descending, class ascending,
// friend bonus descending, then destination and origin row-major.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Class, b.Class); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Friend, a.Friend); c != 0 {
		return c
	}
	if c := comparePositions(a.To, b.To); c != 0 {
		return c
	}
	return comparePositions(a.From, b.From)
}

func comparePositions(a, b game.Position) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// Rank evaluates every move side may consider on b and returns them best first.
// With a single empty cell left only clones are considered.
func (s *Searcher) Rank(b game.Board, side game.Side) []Candidate {
	moves := game.LegalMoves(b, side)
	if b.IsFullToOneEmpty() {
		moves = slices.DeleteFunc(moves, func(m game.Move) bool {
			return m.Kind == game.Jump
		})
	}

	candidates := make([]Candidate, 0, len(moves))
	for _, m := range moves {
		s.metrics.AddCandidate()
		after := game.Apply(b, m, side)
		candidates = append(candidates, Candidate{
			Move:   m,
			Score:  s.Rollout(b, m, side),
			Class:  Classify(b, m, side),
			Friend: s.FriendBonus(after, m.To, side),
		})
	}
	slices.SortFunc(candidates, compareCandidates)
	return candidates
}

// SelectMove returns the best move of side on b, or false when side has to pass.
func (s *Searcher) SelectMove(b game.Board, side game.Side) (game.Move, bool) {
	s.metrics.Start(s.depth)
	ranked := s.Rank(b, side)
	if len(ranked) == 0 {
		s.metrics.SetChoice(0, true)
		s.last = s.metrics.Complete()
		log.Debug().Stringer("side", side).Msg("no legal move, passing")
		return game.Move{}, false
	}

	best := ranked[0]
	s.metrics.SetChoice(best.Score, false)
	s.last = s.metrics.Complete()
	log.Debug().
		Stringer("side", side).
		Stringer("move", best.Move).
		Int("score", best.Score).
		Stringer("class", best.Class).
		Int("friend", best.Friend).
		Int("candidates", len(ranked)).
		Msg("selected move")
	return best.Move, true
}
