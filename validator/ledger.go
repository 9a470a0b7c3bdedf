package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/screwyprof/unstaker/pkg/taostats"
)

// LedgerOption configures the Ledger
type LedgerOption func(*Ledger)

// WithLedgerLogger injects the logger used to report absorbed failures
func WithLedgerLogger(log *slog.Logger) LedgerOption {
	return func(l *Ledger) { l.log = log }
}

// Ledger turns raw ledger pages into DelegationEvents.
//
// Only the first page of taostats.DefaultPageSize records is read; older
// history of very active identities is not scored.
type Ledger struct {
	api    LedgerAPI
	netuid uint16
	log    *slog.Logger
}

// NewLedger creates a Ledger scoped to one subnet
func NewLedger(api LedgerAPI, netuid uint16, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		api:    api,
		netuid: netuid,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FetchEvents returns every parseable buy/sell event of coldkey.
// Transport and decoding failures are logged and yield no events.
func (l *Ledger) FetchEvents(ctx context.Context, coldkey string) []DelegationEvent {
	records, err := l.api.GetDelegations(ctx, taostats.DelegationsRequest{
		Nominator: coldkey,
		Netuid:    l.netuid,
		Action:    taostats.ActionAll,
		Page:      1,
		Limit:     taostats.DefaultPageSize,
	})
	if err != nil {
		l.log.WarnContext(ctx, "Ledger query failed, treating as no events",
			slog.String("coldkey", coldkey),
			slog.Any("error", err),
		)
		return nil
	}

	events := make([]DelegationEvent, 0, len(records))
	for i, raw := range records {
		event, err := parseRecord(raw)
		if err == nil {
			events = append(events, event)
			continue
		}

		// other actions are expected and not worth a warning
		level := slog.LevelWarn
		if errors.Is(err, errSkipAction) {
			level = slog.LevelDebug
		}
		l.log.Log(ctx, level, "Skipping ledger record",
			slog.String("coldkey", coldkey),
			slog.Int("index", i),
			slog.Any("error", err),
		)
	}

	l.log.DebugContext(ctx, "Ledger events fetched",
		slog.String("coldkey", coldkey),
		slog.Int("records", len(records)),
		slog.Int("events", len(events)),
	)
	return events
}

func parseRecord(raw json.RawMessage) (DelegationEvent, error) {
	d, err := taostats.DecodeDelegation(raw)
	if err != nil {
		return DelegationEvent{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return convertTaostatsDelegation(d)
}
