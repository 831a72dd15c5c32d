package rpc

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	internalcommon "github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"github.com/stretchr/testify/require"
)

type jsonrpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type handlerFunc func(req jsonrpcRequest) (any, *jsonrpcError)

// fakeNode is a minimal JSON-RPC endpoint that supports batches.
type fakeNode struct {
	mu       sync.Mutex
	handle   handlerFunc
	batches  []int
	requests atomic.Int64
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	trimmed := strings.TrimSpace(string(body))

	answer := func(req jsonrpcRequest) jsonrpcResponse {
		f.requests.Add(1)
		result, rpcErr := f.handle(req)
		return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
	}

	w.Header().Set("Content-Type", "application/json")
	if strings.HasPrefix(trimmed, "[") {
		var reqs []jsonrpcRequest
		_ = json.Unmarshal(body, &reqs)
		f.mu.Lock()
		f.batches = append(f.batches, len(reqs))
		f.mu.Unlock()
		out := make([]jsonrpcResponse, len(reqs))
		for i, req := range reqs {
			out[i] = answer(req)
		}
		_ = json.NewEncoder(w).Encode(out)
		return
	}

	var req jsonrpcRequest
	_ = json.Unmarshal(body, &req)
	_ = json.NewEncoder(w).Encode(answer(req))
}

func newTestClient(t *testing.T, node *fakeNode, mutate func(cfg *config.RPCConfig)) *Client {
	t.Helper()

	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	cfg := &config.RPCConfig{
		URL:          srv.URL,
		MaxBatchSize: 2,
		Retry: &config.RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    internalcommon.NewDuration(time.Millisecond),
			MaxBackoff:        internalcommon.NewDuration(10 * time.Millisecond),
			BackoffMultiplier: 2.0,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.ApplyDefaults()

	c, err := NewClient(context.Background(), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}

func callData(t *testing.T, raw json.RawMessage) []byte {
	t.Helper()
	var msg struct {
		Data hexutil.Bytes `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg.Data
}

func TestClient_HeadBlock(t *testing.T) {
	tests := []struct {
		name     string
		finality string
		lag      uint64
		wantTag  string
		want     uint64
	}{
		{name: "latest with lag", finality: "latest", lag: 12, wantTag: `"latest"`, want: 988},
		{name: "finalized", finality: "finalized", lag: 12, wantTag: `"finalized"`, want: 1000},
		{name: "safe", finality: "safe", wantTag: `"safe"`, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTag string
			node := &fakeNode{handle: func(req jsonrpcRequest) (any, *jsonrpcError) {
				require.Equal(t, "eth_getBlockByNumber", req.Method)
				gotTag = string(req.Params[0])
				return &types.Header{Number: big.NewInt(1000), Difficulty: big.NewInt(0)}, nil
			}}

			c := newTestClient(t, node, func(cfg *config.RPCConfig) {
				cfg.Finality = tt.finality
				cfg.FinalizedLag = tt.lag
			})

			head, err := c.HeadBlock(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.want, head)
			require.Equal(t, tt.wantTag, gotTag)
		})
	}
}

func TestClient_GetLogs(t *testing.T) {
	contract := common.HexToAddress("0x1000000000000000000000000000000000000001")
	want := types.Log{
		Address:     contract,
		Topics:      []common.Hash{contracts.TransferEventSignature},
		Data:        []byte{},
		BlockNumber: 1200,
		Index:       3,
	}

	node := &fakeNode{handle: func(req jsonrpcRequest) (any, *jsonrpcError) {
		require.Equal(t, "eth_getLogs", req.Method)
		var filter map[string]any
		require.NoError(t, json.Unmarshal(req.Params[0], &filter))
		require.Equal(t, "0x3e9", filter["fromBlock"])
		require.Equal(t, "0x5dc", filter["toBlock"])
		return []types.Log{want}, nil
	}}

	c := newTestClient(t, node, nil)
	logs, err := c.GetLogs(context.Background(), ethereum.FilterQuery{
		FromBlock: big.NewInt(1001),
		ToBlock:   big.NewInt(1500),
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{contracts.TransferEventSignature}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, uint64(1200), logs[0].BlockNumber)
	require.Equal(t, uint(3), logs[0].Index)
}

func TestClient_GetLogs_TooManyResultsIsNotRetried(t *testing.T) {
	node := &fakeNode{handle: func(req jsonrpcRequest) (any, *jsonrpcError) {
		return nil, &jsonrpcError{
			Code:    -32005,
			Message: "query returned more than 10000 results",
			Data:    "Query returned more than 10000 results. Try with this block range [0x3e9, 0x44c].",
		}
	}}

	c := newTestClient(t, node, nil)
	_, err := c.GetLogs(context.Background(), ethereum.FilterQuery{FromBlock: big.NewInt(1001), ToBlock: big.NewInt(1500)})
	require.Error(t, err)

	ok, data := IsTooManyResultsError(err)
	require.True(t, ok)
	from, to, ok := ParseSuggestedBlockRange(data)
	require.True(t, ok)
	require.Equal(t, uint64(1001), from)
	require.Equal(t, uint64(1100), to)
	require.Equal(t, int64(1), node.requests.Load())
}

func TestClient_GetLogs_RateLimited(t *testing.T) {
	node := &fakeNode{handle: func(req jsonrpcRequest) (any, *jsonrpcError) {
		return nil, &jsonrpcError{Code: 429, Message: "rate limit exceeded"}
	}}

	c := newTestClient(t, node, nil)
	_, err := c.GetLogs(context.Background(), ethereum.FilterQuery{FromBlock: big.NewInt(1), ToBlock: big.NewInt(2)})
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, int64(3), node.requests.Load())
}

func TestClient_ReadContract(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	contract := common.HexToAddress("0x1000000000000000000000000000000000000001")

	node := &fakeNode{handle: func(req jsonrpcRequest) (any, *jsonrpcError) {
		require.Equal(t, "eth_call", req.Method)
		data := callData(t, req.Params[0])
		require.Equal(t, contracts.ERC721.Methods[contracts.MethodOwnerOf].ID, data[:4])
		out, err := contracts.ERC721.Methods[contracts.MethodOwnerOf].Outputs.Pack(owner)
		require.NoError(t, err)
		return hexutil.Bytes(out), nil
	}}

	c := newTestClient(t, node, nil)
	values, err := c.ReadContract(context.Background(), pkgrpc.Call{
		To:     contract,
		ABI:    contracts.ERC721,
		Method: contracts.MethodOwnerOf,
		Args:   []any{big.NewInt(7)},
	})
	require.NoError(t, err)

	got, err := contracts.Address(values)
	require.NoError(t, err)
	require.Equal(t, owner, got)
}

func TestClient_BatchCall(t *testing.T) {
	contract := common.HexToAddress("0x1000000000000000000000000000000000000001")
	method := contracts.Tier.Methods[contracts.MethodGetTier]

	var flaky atomic.Int64
	node := &fakeNode{handle: func(req jsonrpcRequest) (any, *jsonrpcError) {
		args, err := method.Inputs.Unpack(callData(t, req.Params[0])[4:])
		require.NoError(t, err)
		tokenID := args[0].(*big.Int).Int64()

		switch tokenID {
		case 2:
			return nil, &jsonrpcError{Code: 3, Message: "execution reverted: nonexistent token"}
		case 3:
			if flaky.Add(1) == 1 {
				return nil, &jsonrpcError{Code: -32005, Message: "rate limit exceeded"}
			}
		}

		out, err := method.Outputs.Pack(uint8(tokenID % 3))
		require.NoError(t, err)
		return hexutil.Bytes(out), nil
	}}

	c := newTestClient(t, node, nil)

	calls := make([]pkgrpc.Call, 0, 5)
	for id := int64(1); id <= 5; id++ {
		calls = append(calls, pkgrpc.Call{
			To:     contract,
			ABI:    contracts.Tier,
			Method: contracts.MethodGetTier,
			Args:   []any{big.NewInt(id)},
		})
	}
	calls = append(calls, pkgrpc.Call{To: contract, ABI: contracts.Tier, Method: "missing"})

	results := c.BatchCall(context.Background(), calls)
	require.Len(t, results, 6)

	for i, id := range []uint64{1, 2, 3, 4, 5} {
		if id == 2 {
			require.ErrorContains(t, results[i].Err, "execution reverted")
			continue
		}
		require.NoError(t, results[i].Err, "token %d", id)
		tier, err := contracts.Uint64(results[i].Values)
		require.NoError(t, err)
		require.Equal(t, id%3, tier)
	}
	require.ErrorContains(t, results[5].Err, "failed to pack")

	// chunks of two; the rate limited element of the second chunk is re-sent alone
	node.mu.Lock()
	defer node.mu.Unlock()
	require.Equal(t, []int{2, 2, 1, 1}, node.batches)
}
