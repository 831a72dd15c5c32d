package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	internaltypes "github.com/goran-ethernal/HolderIndexor/internal/types"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"golang.org/x/time/rate"
)

// Compile-time check to ensure Client implements pkgrpc.ChainReader interface.
var _ pkgrpc.ChainReader = (*Client)(nil)

const (
	methodGetLogs     = "eth_getLogs"
	methodCall        = "eth_call"
	methodBatchCall   = "eth_call_batch"
	methodBlockNumber = "eth_getBlockByNumber"
)

// Client wraps the Ethereum RPC client with the rate limiting, retries and batching
// the indexer needs. It implements the pkgrpc.ChainReader interface.
type Client struct {
	eth *ethclient.Client
	rpc *rpc.Client

	limiter      *rate.Limiter
	retry        *RetryPolicy
	finality     internaltypes.BlockFinality
	finalizedLag uint64
	callTimeout  time.Duration
	maxBatchSize int

	log *logger.Logger
}

// NewClient creates a new RPC client connected to the configured endpoint.
func NewClient(ctx context.Context, cfg *config.RPCConfig, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	return newClient(rpcClient, cfg, log)
}

func newClient(rpcClient *rpc.Client, cfg *config.RPCConfig, log *logger.Logger) (*Client, error) {
	finality, err := internaltypes.ParseBlockFinality(cfg.Finality)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		eth:          ethclient.NewClient(rpcClient),
		rpc:          rpcClient,
		limiter:      rate.NewLimiter(limit, max(cfg.Burst, 1)),
		retry:        NewRetryPolicy(cfg.Retry),
		finality:     finality,
		finalizedLag: cfg.FinalizedLag,
		callTimeout:  cfg.CallTimeout.Duration,
		maxBatchSize: max(cfg.MaxBatchSize, 1),
		log:          log,
	}, nil
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
}

// do runs one upstream request under the limiter, the per call timeout and the retry policy.
func (c *Client) do(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	return c.retry.Do(ctx, method, func() error {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
		RPCLimiterWait.Observe(time.Since(waitStart).Seconds())

		callCtx := ctx
		if c.callTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
			defer cancel()
		}

		start := time.Now()
		RPCMethodInc(method)
		err := fn(callCtx)
		RPCMethodDuration(method, time.Since(start))
		if err != nil {
			RPCMethodError(method, classifyError(err))
		}
		return err
	})
}

// HeadBlock returns the head block honouring the configured finality mode.
func (c *Client) HeadBlock(ctx context.Context) (uint64, error) {
	var header *types.Header
	err := c.do(ctx, methodBlockNumber, func(ctx context.Context) error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, big.NewInt(int64(c.finality.BlockNumber())))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get %s block header: %w", c.finality, err)
	}
	if header == nil {
		return 0, fmt.Errorf("no %s block header returned", c.finality)
	}

	return c.finality.ApplyLag(header.Number.Uint64(), c.finalizedLag), nil
}

// GetLogs retrieves logs matching the given filter query.
// Provider log size limit errors are returned unwrapped from retries so callers can narrow the range.
func (c *Client) GetLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.do(ctx, methodGetLogs, func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &logs, methodGetLogs, toFilterArg(query))
	})
	return logs, err
}

// ReadContract executes one eth_call against the latest state.
func (c *Client) ReadContract(ctx context.Context, call pkgrpc.Call) ([]any, error) {
	if call.ABI == nil {
		return nil, fmt.Errorf("no ABI for %s call", call.Method)
	}

	data, err := call.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", call.Method, err)
	}

	var out []byte
	err = c.do(ctx, methodCall, func(ctx context.Context) error {
		var err error
		out, err = c.eth.CallContract(ctx, ethereum.CallMsg{To: &call.To, Data: data}, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", call.Method, call.To.Hex(), err)
	}

	values, err := call.ABI.Unpack(call.Method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", call.Method, err)
	}

	return values, nil
}

// BatchCall executes eth_calls in JSON-RPC batches of at most max_batch_size elements.
// Elements failing with a transient error are re-sent until the retry budget runs out;
// other element errors are returned in place.
func (c *Client) BatchCall(ctx context.Context, calls []pkgrpc.Call) []pkgrpc.CallResult {
	results := make([]pkgrpc.CallResult, len(calls))

	for start := 0; start < len(calls); start += c.maxBatchSize {
		end := min(start+c.maxBatchSize, len(calls))
		c.batchChunk(ctx, calls[start:end], results[start:end])
	}

	return results
}

func (c *Client) batchChunk(ctx context.Context, calls []pkgrpc.Call, results []pkgrpc.CallResult) {
	inputs := make([]hexutil.Bytes, len(calls))
	outputs := make([]hexutil.Bytes, len(calls))
	done := make([]bool, len(calls))
	pending := make([]int, 0, len(calls))

	for i, call := range calls {
		if call.ABI == nil {
			results[i].Err = fmt.Errorf("no ABI for %s call", call.Method)
			continue
		}
		data, err := call.ABI.Pack(call.Method, call.Args...)
		if err != nil {
			results[i].Err = fmt.Errorf("failed to pack %s: %w", call.Method, err)
			continue
		}
		inputs[i] = data
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return
	}

	err := c.do(ctx, methodBatchCall, func(ctx context.Context) error {
		batch := make([]rpc.BatchElem, len(pending))
		replies := make([]hexutil.Bytes, len(pending))
		for j, i := range pending {
			batch[j] = rpc.BatchElem{
				Method: methodCall,
				Args: []any{
					map[string]any{"to": calls[i].To, "data": inputs[i]},
					"latest",
				},
				Result: &replies[j],
			}
		}
		RPCBatchCalls.Observe(float64(len(batch)))

		if err := c.rpc.BatchCallContext(ctx, batch); err != nil {
			return err
		}

		var retry []int
		var lastErr error
		for j, i := range pending {
			elemErr := batch[j].Error
			switch {
			case elemErr == nil:
				outputs[i] = replies[j]
				done[i] = true
			case retryableError(elemErr):
				retry = append(retry, i)
				lastErr = elemErr
			default:
				results[i].Err = fmt.Errorf("%s on %s: %w", calls[i].Method, calls[i].To.Hex(), elemErr)
			}
		}

		pending = retry
		if lastErr != nil {
			return fmt.Errorf("%d batch elements failed: %w", len(retry), lastErr)
		}
		return nil
	})
	if err != nil {
		c.log.Debugf("batch of %d calls left %d unresolved: %v", len(calls), len(pending), err)
		for _, i := range pending {
			results[i].Err = fmt.Errorf("%s on %s: %w", calls[i].Method, calls[i].To.Hex(), err)
		}
	}

	for i := range calls {
		if results[i].Err != nil || !done[i] {
			continue
		}
		values, err := calls[i].ABI.Unpack(calls[i].Method, outputs[i])
		if err != nil {
			results[i].Err = fmt.Errorf("failed to unpack %s: %w", calls[i].Method, err)
			continue
		}
		results[i].Values = values
	}
}

// classifyError buckets an error for the errors metric.
func classifyError(err error) string {
	switch {
	case isRateLimitError(err):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case retryableError(err):
		return "transient"
	default:
		if ok, _ := IsTooManyResultsError(err); ok {
			return "too_many_results"
		}
		return "other"
	}
}

// toFilterArg converts ethereum.FilterQuery to the format expected by eth_getLogs.
func toFilterArg(q ethereum.FilterQuery) any {
	arg := map[string]any{
		"topics": q.Topics,
	}

	if q.BlockHash != nil {
		arg["blockHash"] = *q.BlockHash
	} else {
		if q.FromBlock != nil {
			arg["fromBlock"] = toBlockNumArg(q.FromBlock.Uint64())
		}
		if q.ToBlock != nil {
			arg["toBlock"] = toBlockNumArg(q.ToBlock.Uint64())
		}
	}

	if len(q.Addresses) > 0 {
		if len(q.Addresses) == 1 {
			arg["address"] = q.Addresses[0]
		} else {
			arg["address"] = q.Addresses
		}
	}

	return arg
}

// toBlockNumArg converts a block number to hex format.
func toBlockNumArg(blockNum uint64) string {
	return fmt.Sprintf("0x%x", blockNum)
}
