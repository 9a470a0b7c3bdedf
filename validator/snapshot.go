package validator

import (
	"fmt"

	"github.com/screwyprof/unstaker/pkg/subtensor"
)

// NetworkSnapshot is a read-only view of the registry for one cycle.
// UIDs and Coldkeys are parallel; a coldkey may own several slots.
type NetworkSnapshot struct {
	Netuid        uint16
	Block         uint64
	Tempo         uint64
	LastStepBlock uint64
	UIDs          []uint16
	Coldkeys      []string
}

// BlocksSinceLastStep is the distance from the last weight step to Block
func (s NetworkSnapshot) BlocksSinceLastStep() uint64 {
	if s.Block < s.LastStepBlock {
		return 0
	}
	return s.Block - s.LastStepBlock
}

// DueForUpdate reports whether the next tempo boundary is at most lookahead blocks away
func (s NetworkSnapshot) DueForUpdate(lookahead uint64) bool {
	return s.BlocksSinceLastStep()+lookahead >= s.Tempo
}

// TargetBoundary is the tempo boundary a cycle started at Block would serve.
// It stays fixed across the lookahead window, so it identifies the window.
func (s NetworkSnapshot) TargetBoundary(lookahead uint64) uint64 {
	return s.LastStepBlock + s.Tempo*((s.BlocksSinceLastStep()+lookahead)/s.Tempo)
}

// UniqueColdkeys lists every identity once, in slot order of first appearance
func (s NetworkSnapshot) UniqueColdkeys() []string {
	seen := make(map[string]struct{}, len(s.Coldkeys))
	unique := make([]string, 0, len(s.Coldkeys))
	for _, ck := range s.Coldkeys {
		if _, ok := seen[ck]; ok {
			continue
		}
		seen[ck] = struct{}{}
		unique = append(unique, ck)
	}
	return unique
}

func (s NetworkSnapshot) Validate() error {
	if len(s.UIDs) != len(s.Coldkeys) {
		return fmt.Errorf("%w: %d uids, %d coldkeys", ErrInvalidSnapshot, len(s.UIDs), len(s.Coldkeys))
	}
	if s.Tempo == 0 {
		return fmt.Errorf("%w: tempo must be positive", ErrInvalidSnapshot)
	}
	return nil
}

// CheckTempoOverride rejects an override the trigger could never reach:
// blocks since the last step reset every chain tempo.
func CheckTempoOverride(override, chainTempo uint64) error {
	if override > chainTempo {
		return fmt.Errorf("%w: %d > %d", ErrTempoOverride, override, chainTempo)
	}
	return nil
}

// convertMetagraph builds a snapshot from the gateway metagraph.
// A positive tempoOverride replaces the chain tempo.
func convertMetagraph(mg subtensor.Metagraph, tempoOverride uint64) (NetworkSnapshot, error) {
	if mg.BlocksSinceLastStep == nil {
		return NetworkSnapshot{}, fmt.Errorf("%w: blocks since last step missing", ErrInvalidSnapshot)
	}
	since := *mg.BlocksSinceLastStep

	uids := mg.UIDs
	if len(uids) == 0 && len(mg.Coldkeys) > 0 {
		uids = make([]uint16, len(mg.Coldkeys))
		for i := range uids {
			uids[i] = uint16(i)
		}
	}

	tempo := mg.Tempo
	if tempoOverride > 0 {
		if err := CheckTempoOverride(tempoOverride, mg.Tempo); err != nil {
			return NetworkSnapshot{}, err
		}
		tempo = tempoOverride
	}

	var lastStep uint64
	if mg.Block > since {
		lastStep = mg.Block - since
	}

	snapshot := NetworkSnapshot{
		Netuid:        mg.Netuid,
		Block:         mg.Block,
		Tempo:         tempo,
		LastStepBlock: lastStep,
		UIDs:          uids,
		Coldkeys:      mg.Coldkeys,
	}
	if err := snapshot.Validate(); err != nil {
		return NetworkSnapshot{}, err
	}
	return snapshot, nil
}
