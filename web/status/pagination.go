package status

import (
	"errors"
	"fmt"
)

// Default pagination values
const (
	DefaultPage    = 1
	DefaultPerPage = 64
	MaxPerPage     = 256
)

// Page is a 1-based page number
type Page uint64

// PerPage is the number of slots per page
type PerPage uint64

var ErrPerPageTooLarge = errors.New("per_page exceeds maximum limit")

// ParsePage maps zero to the first page
func ParsePage(page uint64) Page {
	if page == 0 {
		return Page(DefaultPage)
	}
	return Page(page)
}

// ParsePerPage maps zero to the default size and rejects oversized pages
func ParsePerPage(perPage uint64) (PerPage, error) {
	if perPage == 0 {
		return PerPage(DefaultPerPage), nil
	}
	if perPage > MaxPerPage {
		return 0, fmt.Errorf("%w: must be between 1 and %d", ErrPerPageTooLarge, MaxPerPage)
	}
	return PerPage(perPage), nil
}

func (p Page) Uint64() uint64 { return uint64(p) }

func (pp PerPage) Uint64() uint64 { return uint64(pp) }
