package validator

import (
	"slices"
	"strings"
	"time"
)

// IdentityWeight is the per-identity outcome of a cycle
type IdentityWeight struct {
	Coldkey string
	Score   float64
	Weight  float64
	Slots   int
}

// SlotWeight is one entry of the submitted vector
type SlotWeight struct {
	UID     uint16
	Coldkey string
	Weight  float64
}

// CycleReport describes one computed weight vector and its submission
type CycleReport struct {
	Netuid         uint16
	Block          uint64
	StartBlock     uint64
	Tempo          uint64
	TotalScore     float64
	Identities     []IdentityWeight // sorted by coldkey
	Slots          []SlotWeight     // aligned with the snapshot
	Submitted      bool
	SubmittedBlock uint64
	ExtrinsicHash  string
	Duration       time.Duration
}

func newCycleReport(snapshot NetworkSnapshot, scores ScoreVector, weights map[string]float64, projected []float64) CycleReport {
	slots := make([]SlotWeight, len(projected))
	slotCount := make(map[string]int, len(scores))
	for i, w := range projected {
		ck := snapshot.Coldkeys[i]
		slots[i] = SlotWeight{UID: snapshot.UIDs[i], Coldkey: ck, Weight: w}
		slotCount[ck]++
	}

	var total float64
	identities := make([]IdentityWeight, 0, len(scores))
	for ck, score := range scores {
		identities = append(identities, IdentityWeight{
			Coldkey: ck,
			Score:   score,
			Weight:  weights[ck],
			Slots:   slotCount[ck],
		})
		if score > 0 {
			total += score
		}
	}
	slices.SortFunc(identities, func(a, b IdentityWeight) int {
		return strings.Compare(a.Coldkey, b.Coldkey)
	})

	return CycleReport{
		Netuid:     snapshot.Netuid,
		Block:      snapshot.Block,
		StartBlock: snapshot.LastStepBlock,
		Tempo:      snapshot.Tempo,
		TotalScore: total,
		Identities: identities,
		Slots:      slots,
	}
}

// Weights returns the slot weights in snapshot order
func (r CycleReport) Weights() []float64 {
	weights := make([]float64, len(r.Slots))
	for i, s := range r.Slots {
		weights[i] = s.Weight
	}
	return weights
}
