// Package score turns derived signals into a clamped risk total with a full
// per-signal breakdown. The engine is deliberately transparent: nothing
// affects the total without appearing in the breakdown.
package score

import (
	"fmt"
	"math"

	"phonescope/pkg/types"
)

// Compute multiplies each signal value by its configured weight and sums the
// contributions, clamped to [floor, ceiling] and rounded to a whole point.
// Breakdown order follows signal order; a signal without a configured weight
// appears with weight zero.
func Compute(signals []types.Signal, weights map[string]float64, floor, ceiling float64) types.ScoreResult {
	res := types.ScoreResult{
		Floor:     floor,
		Ceiling:   ceiling,
		Breakdown: make([]types.ScoreEntry, 0, len(signals)),
	}

	var raw float64
	for _, s := range signals {
		weight := weights[s.Name]
		contribution := weight * s.Value
		raw += contribution
		res.Breakdown = append(res.Breakdown, types.ScoreEntry{
			Signal:       s.Name,
			Weight:       weight,
			Value:        s.Value,
			Contribution: contribution,
			Explanation:  explain(s, weight),
		})
	}

	res.Total = math.Round(clamp(raw, floor, ceiling))
	return res
}

func explain(s types.Signal, weight float64) string {
	if weight == 0 {
		return fmt.Sprintf("%s carries no configured weight", s.Name)
	}
	if s.Numeric {
		return fmt.Sprintf("%s: %s (%.2f x weight %.1f)", s.Name, s.Rationale, s.Value, weight)
	}
	if !s.Bool {
		return fmt.Sprintf("%s not present: %s", s.Name, s.Rationale)
	}
	return fmt.Sprintf("%s: %s", s.Name, s.Rationale)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
