package api

// WeightsRequest represents the query parameters for GET /v1/weights
type WeightsRequest struct {
	Coldkey string `query:"coldkey"`  // Optional identity filter
	Page    uint64 `query:"page"`     // 1-based page number (default: 1)
	PerPage uint64 `query:"per_page"` // Slots per page (default: 64, max: 256)
}

// Weight is one slot of the last computed vector
type Weight struct {
	UID     uint16  `json:"uid"`
	Coldkey string  `json:"coldkey"`
	Weight  float64 `json:"weight"`
}

// Cycle summarizes the cycle the weights belong to
type Cycle struct {
	Netuid         uint16  `json:"netuid"`
	Block          uint64  `json:"block"`
	StartBlock     uint64  `json:"start_block"`
	Tempo          uint64  `json:"tempo"`
	TotalScore     float64 `json:"total_score"`
	Submitted      bool    `json:"submitted"`
	SubmittedBlock uint64  `json:"submitted_block,omitempty"`
	ExtrinsicHash  string  `json:"extrinsic_hash,omitempty"`
	DurationMillis int64   `json:"duration_ms"`
}

// WeightsResponse represents the API response format for GET /v1/weights
type WeightsResponse struct {
	Cycle Cycle    `json:"cycle"`
	Data  []Weight `json:"data"`
}

// HealthResponse represents the API response format for GET /healthz
type HealthResponse struct {
	Live           bool   `json:"live"`
	Block          uint64 `json:"block"`
	ObservedAt     string `json:"observed_at,omitempty"`
	LastCycleBlock uint64 `json:"last_cycle_block,omitempty"`
	LastSubmitted  bool   `json:"last_submitted"`
}
