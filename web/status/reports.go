package status

import (
	"context"
	"sync"
	"time"

	"github.com/screwyprof/unstaker/validator"
)

// Reports keeps the most recent cycle report and chain height in memory
type Reports struct {
	mu         sync.RWMutex
	latest     *validator.CycleReport
	block      uint64
	observedAt time.Time
}

func NewReports() *Reports {
	return &Reports{}
}

// Publish replaces the latest report
func (r *Reports) Publish(report validator.CycleReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &report
}

// Latest returns the last published report, if any
func (r *Reports) Latest() (validator.CycleReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return validator.CycleReport{}, false
	}
	return *r.latest, true
}

// ObserveBlock records the latest height seen by the controller
func (r *Reports) ObserveBlock(block uint64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block = block
	r.observedAt = at
}

func (r *Reports) Health(_ context.Context) Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := Health{Block: r.block, ObservedAt: r.observedAt}
	if r.latest != nil {
		h.LastCycleBlock = r.latest.Block
		h.LastSubmitted = r.latest.Submitted
	}
	return h
}

// FindWeights pages through the slots of the latest report
func (r *Reports) FindWeights(_ context.Context, criteria WeightsCriteria) (*WeightsPage, error) {
	report, ok := r.Latest()
	if !ok {
		return nil, ErrNoReport
	}

	matched := report.Slots
	if criteria.Coldkey != "" {
		matched = make([]validator.SlotWeight, 0)
		for _, s := range report.Slots {
			if s.Coldkey == criteria.Coldkey {
				matched = append(matched, s)
			}
		}
	}

	if criteria.Size == 0 {
		criteria.Size = DefaultPerPage
	}
	size := criteria.Size.Uint64()
	total := uint64(len(matched))

	// pages far past the end would overflow ItemsToSkip
	start := total
	if criteria.Page.Uint64()-1 <= total/size {
		start = min(criteria.ItemsToSkip(), total)
	}
	end := min(start+size, total)

	header := report
	header.Slots = nil
	header.Identities = nil

	return &WeightsPage{
		Cycle:   header,
		Slots:   matched[start:end],
		HasMore: end < total,
		Number:  criteria.Page,
		Size:    criteria.Size,
	}, nil
}
