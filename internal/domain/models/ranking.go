package models

import "time"

// RankingRow is one symbol's scoring breakdown in a ranking table.
type RankingRow struct {
	Symbol  string       `json:"symbol"`
	Rank    int          `json:"rank"`
	Score   float64      `json:"score"`        // raw weighted composite
	ZScore  float64      `json:"zscore_total"` // weighted z-score composite
	Factors FactorVector `json:"factors"`
	ZScores FactorVector `json:"factor_zscores"`
}

// SkippedSymbol records a symbol excluded from a ranking run and why.
// Skips are expected operating conditions (thin history, missing
// data), not errors.
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// RankingResult is the full cross-sectional ranking for one date.
// Rows are ordered best first (rank 1 = highest z-score composite).
// An empty Rows slice is a valid terminal state, not an error.
type RankingResult struct {
	Date    time.Time       `json:"date"`
	Weights FactorWeights   `json:"weights"`
	Rows    []RankingRow    `json:"rows"`
	Skipped []SkippedSymbol `json:"skipped,omitempty"`
}

// Empty reports whether no symbol had sufficient data.
func (r *RankingResult) Empty() bool { return len(r.Rows) == 0 }

// TopSymbols returns the first n symbols in rank order (all of them
// when the table is shorter than n).
func (r *RankingResult) TopSymbols(n int) []string {
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	out := make([]string, 0, n)
	for _, row := range r.Rows[:n] {
		out = append(out, row.Symbol)
	}
	return out
}

// SelectionEvent is the message published after a selection run.
type SelectionEvent struct {
	Date    string        `json:"date"`
	Symbols []string      `json:"symbols"`
	Weights FactorWeights `json:"weights"`
}
