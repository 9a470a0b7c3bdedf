package subtensor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/unstaker/pkg/subtensor"
)

func TestClientReadsChainState(t *testing.T) {
	t.Parallel()

	t.Run("it returns the latest block height", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := gatewayServing(t, map[string]string{
			"GET /chain/latest-block": ok(`{"blockNumber":4242,"parentHash":"0x01"}`),
		})
		client := newTestClient(server)

		// Act
		height, err := client.LatestBlock(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(4242), height)
	})

	t.Run("it returns the subnet metagraph", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := gatewayServing(t, map[string]string{
			"GET /subnets/18/metagraph": ok(`{"netuid":18,"block":1000,"tempo":360,"blocksSinceLastStep":358,
				"uids":[0,1,2],"hotkeys":["h0","h1","h2"],"coldkeys":["A","B","A"]}`),
		})
		client := newTestClient(server)

		// Act
		mg, err := client.Metagraph(t.Context(), 18)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint16(18), mg.Netuid)
		assert.Equal(t, uint64(1000), mg.Block)
		assert.Equal(t, uint64(360), mg.Tempo)
		require.NotNil(t, mg.BlocksSinceLastStep)
		assert.Equal(t, uint64(358), *mg.BlocksSinceLastStep)
		assert.Equal(t, []uint16{0, 1, 2}, mg.UIDs)
		assert.Equal(t, []string{"A", "B", "A"}, mg.Coldkeys)
	})

	t.Run("it leaves blocks since the last step nil when omitted", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := gatewayServing(t, map[string]string{
			"GET /subnets/18/metagraph": ok(`{"netuid":18,"block":1000,"tempo":360,"coldkeys":["A"]}`),
		})
		client := newTestClient(server)

		// Act
		mg, err := client.Metagraph(t.Context(), 18)

		// Assert
		require.NoError(t, err)
		assert.Nil(t, mg.BlocksSinceLastStep)
	})

	t.Run("it returns hyperparameters and keyring", func(t *testing.T) {
		t.Parallel()

		// Arrange
		server := gatewayServing(t, map[string]string{
			"GET /subnets/18/hyperparameters": ok(`{"tempo":360,"weightsVersion":2013}`),
			"GET /keyring":                    ok(`{"keyringPair":{"address":"5Hot","type":"sr25519"},"walletColdkey":"5Cold"}`),
		})
		client := newTestClient(server)

		// Act
		hp, hpErr := client.Hyperparams(t.Context(), 18)
		kp, kpErr := client.KeyringPair(t.Context())

		// Assert
		require.NoError(t, hpErr)
		require.NoError(t, kpErr)
		assert.Equal(t, uint64(2013), hp.WeightsVersion)
		assert.Equal(t, "5Hot", kp.KeyringPair.Address)
		assert.Equal(t, "5Cold", kp.WalletColdkey)
	})
}

func TestClientFailures(t *testing.T) {
	t.Parallel()

	t.Run("it reports envelopes that are not successful", func(t *testing.T) {
		t.Parallel()

		server := gatewayServing(t, map[string]string{
			"GET /chain/latest-block": `{"statusCode":200,"success":false,"error":{"message":"node syncing"}}`,
		})
		client := newTestClient(server)

		_, err := client.LatestBlock(t.Context())

		assert.ErrorIs(t, err, subtensor.ErrGatewayRejected)
		assert.ErrorContains(t, err, "node syncing")
	})

	t.Run("it retries reads on server errors", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"statusCode":502,"success":false,"error":{"message":"upstream"}}`))
				return
			}
			_, _ = w.Write([]byte(ok(`{"blockNumber":7}`)))
		}))
		t.Cleanup(server.Close)
		client := subtensor.NewClient(server.URL,
			subtensor.WithHTTPClient(server.Client()),
			subtensor.WithRetries(2, time.Millisecond),
		)

		// Act
		height, err := client.LatestBlock(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(7), height)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("it reports status errors after retries are exhausted", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"statusCode":503,"success":false,"error":{"message":"down"}}`))
		}))
		t.Cleanup(server.Close)
		client := newTestClient(server)

		_, err := client.LatestBlock(t.Context())

		assert.ErrorIs(t, err, subtensor.ErrUnexpectedStatus)
	})
}

func TestClientSetWeights(t *testing.T) {
	t.Parallel()

	t.Run("it posts u16 weights without zero entries", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var calls atomic.Int32
		bodies := make(chan map[string]any, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/subnets/18/weights", r.URL.Path)

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			bodies <- body

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(ok(`"0xfeed"`)))
		}))
		t.Cleanup(server.Close)
		client := newTestClient(server)

		// Act
		hash, err := client.SetWeights(t.Context(), subtensor.SetWeightsRequest{
			Netuid:     18,
			Hotkey:     "5Hot",
			UIDs:       []uint16{0, 1, 2, 3},
			Weights:    []float64{0.25, 0.5, 0.25, 0},
			VersionKey: 2013,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "0xfeed", hash)

		body := <-bodies
		assert.Equal(t, "5Hot", body["hotkey"])
		assert.Equal(t, []any{0.0, 1.0, 2.0}, body["dests"])
		assert.Equal(t, []any{32768.0, 65535.0, 32768.0}, body["weights"])
		assert.Equal(t, 2013.0, body["versionKey"])
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("it does not retry rejected submissions", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"statusCode":500,"success":false,"error":{"message":"rate limited"}}`))
		}))
		t.Cleanup(server.Close)
		client := newTestClient(server)

		// Act
		_, err := client.SetWeights(t.Context(), subtensor.SetWeightsRequest{
			Netuid:  18,
			UIDs:    []uint16{0},
			Weights: []float64{1},
		})

		// Assert
		assert.ErrorIs(t, err, subtensor.ErrUnexpectedStatus)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("it refuses misaligned vectors before calling the gateway", func(t *testing.T) {
		t.Parallel()

		client := subtensor.NewClient("http://127.0.0.1:0")

		_, err := client.SetWeights(t.Context(), subtensor.SetWeightsRequest{
			UIDs:    []uint16{0, 1},
			Weights: []float64{1},
		})

		assert.ErrorIs(t, err, subtensor.ErrLengthMismatch)
	})
}

func TestClientWaitForNextBlock(t *testing.T) {
	t.Parallel()

	t.Run("it polls until the height advances", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var height atomic.Uint64
		height.Store(100)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			h := height.Add(1) - 1 // 100, 101, ...
			_, _ = w.Write([]byte(ok(`{"blockNumber":` + jsonUint(h) + `}`)))
		}))
		t.Cleanup(server.Close)

		clk := &instantClock{}
		client := subtensor.NewClient(server.URL,
			subtensor.WithHTTPClient(server.Client()),
			subtensor.WithClock(clk),
		)

		// Act
		next, err := client.WaitForNextBlock(t.Context(), 100)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(101), next)
		assert.Equal(t, int32(2), clk.waits.Load())
	})

	t.Run("it stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		// Arrange
		client := subtensor.NewClient("http://127.0.0.1:0", subtensor.WithClock(blockedClock{}))
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		// Act
		_, err := client.WaitForNextBlock(ctx, 1)

		// Assert
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// Test helpers

func ok(data string) string {
	return `{"statusCode":200,"success":true,"data":` + data + `}`
}

func jsonUint(v uint64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func gatewayServing(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, found := routes[r.Method+" "+r.URL.Path]
		w.Header().Set("Content-Type", "application/json")
		if !found {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"statusCode":404,"success":false,"error":{"message":"not found"}}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server) *subtensor.Client {
	return subtensor.NewClient(server.URL,
		subtensor.WithHTTPClient(server.Client()),
		subtensor.WithRetries(1, time.Millisecond),
	)
}

// instantClock fires immediately and counts waits
type instantClock struct {
	waits atomic.Int32
}

func (c *instantClock) After(time.Duration) <-chan time.Time {
	c.waits.Add(1)
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// blockedClock never fires
type blockedClock struct{}

func (blockedClock) After(time.Duration) <-chan time.Time {
	return nil
}
