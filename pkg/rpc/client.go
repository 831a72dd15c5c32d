package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Call describes one read-only contract call.
type Call struct {
	// To is the contract address
	To common.Address

	// ABI is the contract ABI used to pack the input and unpack the output
	ABI *abi.ABI

	// Method is the ABI method name
	Method string

	// Args are the method arguments in ABI order
	Args []any
}

// CallResult is the outcome of one element of a batch call.
// Values holds the unpacked outputs when Err is nil.
type CallResult struct {
	Values []any
	Err    error
}

// ChainReader defines the chain access needed by the holder indexer.
// This abstraction allows for easier testing and alternative implementations.
type ChainReader interface {
	// Close closes the RPC client connection.
	Close()

	// HeadBlock returns the newest block usable for indexing, honouring the configured finality.
	HeadBlock(ctx context.Context) (uint64, error)

	// GetLogs retrieves logs matching the given filter query.
	GetLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// ReadContract executes one eth_call and returns the unpacked outputs.
	ReadContract(ctx context.Context, call Call) ([]any, error)

	// BatchCall executes many eth_calls in JSON-RPC batches.
	// The result slice matches calls index for index; failures are reported per element.
	BatchCall(ctx context.Context, calls []Call) []CallResult
}
