package validator

import (
	"fmt"
	"strconv"

	"github.com/screwyprof/unstaker/pkg/taostats"
)

// RaoPerUnit converts raw ledger amounts into base units
const RaoPerUnit = 1e10

// Action is the direction of a delegation event
type Action int

const (
	ActionBuy Action = iota + 1
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseAction maps a raw ledger label. Unknown labels are not actions.
func ParseAction(label string) (Action, bool) {
	switch label {
	case taostats.ActionUndelegate:
		return ActionSell, true
	case taostats.ActionDelegate:
		return ActionBuy, true
	default:
		return 0, false
	}
}

// DelegationEvent is one validated ledger record
type DelegationEvent struct {
	Block     uint64
	Timestamp string
	Action    Action
	Coldkey   string
	Hotkey    string
	Amount    float64
	Price     float64
}

// Value is the event's worth at the recorded exchange rate
func (e DelegationEvent) Value() float64 {
	return e.Amount * e.Price
}

// errSkipAction marks records whose label is neither buy nor sell
var errSkipAction = fmt.Errorf("%w: unrecognized action", ErrInvalidEvent)

// convertTaostatsDelegation validates a raw record into a DelegationEvent
func convertTaostatsDelegation(d taostats.Delegation) (DelegationEvent, error) {
	action, ok := ParseAction(d.Action)
	if !ok {
		return DelegationEvent{}, fmt.Errorf("%w %q", errSkipAction, d.Action)
	}

	block, err := strconv.ParseUint(d.BlockNumber.String(), 10, 64)
	if err != nil {
		return DelegationEvent{}, fmt.Errorf("%w: block_number: %w", ErrInvalidEvent, err)
	}

	if d.Nominator == nil || d.Nominator.SS58 == "" {
		return DelegationEvent{}, fmt.Errorf("%w: missing nominator", ErrInvalidEvent)
	}
	if d.Delegate == nil || d.Delegate.SS58 == "" {
		return DelegationEvent{}, fmt.Errorf("%w: missing delegate", ErrInvalidEvent)
	}

	rawAmount, err := d.Amount.Float64()
	if err != nil {
		return DelegationEvent{}, fmt.Errorf("%w: amount: %w", ErrInvalidEvent, err)
	}

	price, err := d.AlphaPriceInTao.Float64()
	if err != nil {
		return DelegationEvent{}, fmt.Errorf("%w: alpha_price_in_tao: %w", ErrInvalidEvent, err)
	}

	return DelegationEvent{
		Block:     block,
		Timestamp: d.Timestamp,
		Action:    action,
		Coldkey:   d.Nominator.SS58,
		Hotkey:    d.Delegate.SS58,
		Amount:    rawAmount / RaoPerUnit,
		Price:     price,
	}, nil
}
