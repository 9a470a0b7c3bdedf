package subtensor

import (
	"errors"
	"fmt"
	"math"
)

// U16Max is the on-chain scale of a single weight
const U16Max = math.MaxUint16

var (
	ErrLengthMismatch = errors.New("uids and weights differ in length")
	ErrInvalidWeight  = errors.New("weight must be a finite non-negative number")
)

// EmitWeights scales float weights so the largest becomes U16Max and drops
// the zero entries, which is how the chain stores a weight row.
// An all-zero vector yields empty slices.
func EmitWeights(uids []uint16, weights []float64) ([]uint16, []uint16, error) {
	if len(uids) != len(weights) {
		return nil, nil, fmt.Errorf("%w: %d uids, %d weights", ErrLengthMismatch, len(uids), len(weights))
	}

	var maxWeight float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, nil, fmt.Errorf("%w: uid %d has %v", ErrInvalidWeight, uids[i], w)
		}
		maxWeight = max(maxWeight, w)
	}

	dests := []uint16{}
	values := []uint16{}
	if maxWeight == 0 {
		return dests, values, nil
	}

	for i, w := range weights {
		v := math.Round(w / maxWeight * U16Max)
		if v == 0 {
			continue
		}
		dests = append(dests, uids[i])
		values = append(values, uint16(v))
	}
	return dests, values, nil
}
