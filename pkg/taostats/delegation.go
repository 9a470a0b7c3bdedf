package taostats

import (
	"encoding/json"
	"fmt"
)

// Raw action labels used by the ledger
const (
	ActionDelegate   = "DELEGATE"
	ActionUndelegate = "UNDELEGATE"
)

// Account is a nested ss58 identity
type Account struct {
	SS58 string `json:"ss58"`
}

// Delegation is one ledger record as returned by the API.
// Numeric fields are kept as json.Number because the ledger
// sends them either as JSON numbers or as numeric strings.
type Delegation struct {
	BlockNumber     json.Number `json:"block_number"`
	Timestamp       string      `json:"timestamp"`
	Action          string      `json:"action"`
	Nominator       *Account    `json:"nominator"`
	Delegate        *Account    `json:"delegate"`
	Amount          json.Number `json:"amount"`
	AlphaPriceInTao json.Number `json:"alpha_price_in_tao"`
}

// DecodeDelegation decodes a single raw record
func DecodeDelegation(raw json.RawMessage) (Delegation, error) {
	var d Delegation
	if err := json.Unmarshal(raw, &d); err != nil {
		return Delegation{}, fmt.Errorf("%w: %w", ErrDecodingResponse, err)
	}
	return d, nil
}
