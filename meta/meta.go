// meta/meta.go
package meta

// BOARD_SIZE is the side length of the square board.
const BOARD_SIZE = 8

// DEFAULT_DEPTH is the number of plies of the alternating greedy rollout,
// counting the candidate move itself.
const DEFAULT_DEPTH = 5

// MAX_DEPTH bounds the rollout so a reply always fits well inside a server timeout.
const MAX_DEPTH = 9

// CORNER_BONUS is added to the friend count of a move landing on a corner.
// Older snapshots of the evaluator used 5.
const CORNER_BONUS = 3

// EDGE_BONUS is added to the friend count of a move landing on a single edge.
const EDGE_BONUS = 1

// MAX_TURNS ends a refereed match that has not finished on its own.
const MAX_TURNS = 300

// MAX_INVALID is the number of illegal submissions a player may make before its turn is forfeited.
const MAX_INVALID = 3
