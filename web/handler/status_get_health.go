package handler

import (
	"net/http"
	"time"

	"github.com/screwyprof/unstaker/pkg/httpkit"
	"github.com/screwyprof/unstaker/web/api"
	"github.com/screwyprof/unstaker/web/status"
)

const GetHealthRoute = http.MethodGet + " " + "/healthz"

// DefaultMaxBlockAge is how stale the last observed block may be while live
const DefaultMaxBlockAge = 5 * time.Minute

type StatusGetHealth struct {
	reader status.HealthReader
	maxAge time.Duration
	now    func() time.Time
}

func NewStatusGetHealth(reader status.HealthReader, maxAge time.Duration, now func() time.Time) *StatusGetHealth {
	return &StatusGetHealth{reader: reader, maxAge: maxAge, now: now}
}

func (h *StatusGetHealth) AddRoutes(m *http.ServeMux) {
	m.Handle(GetHealthRoute, httpkit.HandlerFunc(h.GetHealth))
}

func (h *StatusGetHealth) GetHealth(_ http.ResponseWriter, r *http.Request) http.HandlerFunc {
	health := h.reader.Health(r.Context())
	live := health.Live(h.now(), h.maxAge)

	resp := api.HealthResponse{
		Live:           live,
		Block:          health.Block,
		LastCycleBlock: health.LastCycleBlock,
		LastSubmitted:  health.LastSubmitted,
	}
	if !health.ObservedAt.IsZero() {
		resp.ObservedAt = health.ObservedAt.UTC().Format(time.RFC3339)
	}

	if !live {
		return httpkit.JSONStatus(http.StatusServiceUnavailable, resp)
	}
	return httpkit.JSON(resp)
}
