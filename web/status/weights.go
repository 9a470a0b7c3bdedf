package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/screwyprof/unstaker/validator"
)

var (
	ErrNoReport       = errors.New("no cycle has completed yet")
	ErrInvalidPerPage = errors.New("invalid per_page")
)

// WeightsFinder serves slot weights of the latest cycle
type WeightsFinder interface {
	FindWeights(ctx context.Context, criteria WeightsCriteria) (*WeightsPage, error)
}

// WeightsCriteria selects slot weights. An empty Coldkey matches every slot.
type WeightsCriteria struct {
	Coldkey string
	Page    Page
	Size    PerPage
}

// NewWeightsCriteria creates WeightsCriteria from raw values with validation
func NewWeightsCriteria(coldkey string, page, perPage uint64) (WeightsCriteria, error) {
	pp, err := ParsePerPage(perPage)
	if err != nil {
		return WeightsCriteria{}, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
	}

	return WeightsCriteria{
		Coldkey: coldkey,
		Page:    ParsePage(page),
		Size:    pp,
	}, nil
}

// ItemsToSkip returns the number of slots before the requested page
func (c WeightsCriteria) ItemsToSkip() uint64 {
	return (c.Page.Uint64() - 1) * c.Size.Uint64()
}

// WeightsPage is one page of slot weights with the cycle it belongs to
type WeightsPage struct {
	Cycle   validator.CycleReport // Slots and Identities are not copied
	Slots   []validator.SlotWeight
	HasMore bool
	Number  Page
	Size    PerPage
}

func (p *WeightsPage) HasNext() bool     { return p.HasMore }
func (p *WeightsPage) HasPrevious() bool { return p.Number > 1 }
