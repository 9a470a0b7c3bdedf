package validator

import (
	"math"
	"slices"
)

// ScoreVector maps a unique identity to its raw score
type ScoreVector map[string]float64

// Normalize clamps non-positive scores to zero and scales the rest to sum to 1.
// When nothing is positive every weight is zero. Non-finite scores count as zero.
func Normalize(scores []float64) []float64 {
	weights := make([]float64, len(scores))

	var total, peak float64
	for i, s := range scores {
		if s > 0 && !math.IsInf(s, 0) {
			weights[i] = s
			total += s
			peak = max(peak, s)
		}
	}
	if total <= 0 {
		return weights
	}

	// finite scores whose sum overflows are rescaled by the largest first
	if math.IsInf(total, 0) {
		total = 0
		for i := range weights {
			weights[i] /= peak
			total += weights[i]
		}
	}

	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// Normalize returns the normalized weight of every identity in the vector
func (v ScoreVector) Normalize() map[string]float64 {
	coldkeys := make([]string, 0, len(v))
	for ck := range v {
		coldkeys = append(coldkeys, ck)
	}
	slices.Sort(coldkeys)

	scores := make([]float64, len(coldkeys))
	for i, ck := range coldkeys {
		scores[i] = v[ck]
	}

	normalized := Normalize(scores)
	weights := make(map[string]float64, len(coldkeys))
	for i, ck := range coldkeys {
		weights[ck] = normalized[i]
	}
	return weights
}

// Project spreads identity weights over the snapshot slots. An identity owning
// k slots gets weight/k on each, so its total mass is unchanged. Identities
// missing from weights get zero.
func Project(weights map[string]float64, snapshot NetworkSnapshot) []float64 {
	slotsPerColdkey := make(map[string]int, len(snapshot.Coldkeys))
	for _, ck := range snapshot.Coldkeys {
		slotsPerColdkey[ck]++
	}

	projected := make([]float64, len(snapshot.Coldkeys))
	for i, ck := range snapshot.Coldkeys {
		projected[i] = weights[ck] / float64(slotsPerColdkey[ck])
	}
	return projected
}
