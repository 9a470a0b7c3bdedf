package subtensor

// Response is the envelope every gateway endpoint answers with
type Response[T any] struct {
	StatusCode int            `json:"statusCode"`
	Success    bool           `json:"success"`
	Data       T              `json:"data"`
	Error      map[string]any `json:"error"`
}

func (r Response[T]) message() string {
	if r.Error == nil {
		return "no error details"
	}
	if msg, ok := r.Error["message"].(string); ok && msg != "" {
		return msg
	}
	return "no error details"
}

type LatestBlock struct {
	ParentHash  string `json:"parentHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// Metagraph is the registry snapshot of one subnet at Block.
// Slices are parallel and indexed by position.
type Metagraph struct {
	Netuid              uint16   `json:"netuid"`
	Block               uint64   `json:"block"`
	Tempo               uint64   `json:"tempo"`
	BlocksSinceLastStep *uint64  `json:"blocksSinceLastStep"` // nil when the gateway omits it
	UIDs                []uint16 `json:"uids"`
	Hotkeys             []string `json:"hotkeys"`
	Coldkeys            []string `json:"coldkeys"`
	Active              []bool   `json:"active"`
	LastUpdate          []uint64 `json:"lastUpdate"`
}

type Hyperparams struct {
	Tempo                      uint64 `json:"tempo"`
	WeightsVersion             uint64 `json:"weightsVersion"`
	WeightsRateLimit           uint64 `json:"weightsRateLimit"`
	MaxValidators              uint64 `json:"maxValidators"`
	ImmunityPeriod             uint64 `json:"immunityPeriod"`
	CommitRevealWeightsEnabled bool   `json:"commitRevealWeightsEnabled"`
}

type KeyringPair struct {
	Address  string `json:"address"`
	Type     string `json:"type"`
	IsLocked bool   `json:"isLocked"`
}

// KeyringPairInfo describes the key the gateway signs extrinsics with
type KeyringPairInfo struct {
	KeyringPair   KeyringPair `json:"keyringPair"`
	WalletColdkey string      `json:"walletColdkey"`
}

// SetWeightsRequest carries normalized float weights aligned with UIDs.
// The client converts them to the u16 form the chain expects.
type SetWeightsRequest struct {
	Netuid     uint16
	Hotkey     string
	UIDs       []uint16
	Weights    []float64
	VersionKey uint64
}

type setWeightsParams struct {
	Netuid     uint16   `json:"netuid"`
	Hotkey     string   `json:"hotkey"`
	Dests      []uint16 `json:"dests"`
	Weights    []uint16 `json:"weights"`
	VersionKey uint64   `json:"versionKey"`
}
