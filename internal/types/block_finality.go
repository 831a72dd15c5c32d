package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// BlockFinality selects which block the chain reader reports as head.
type BlockFinality string

const (
	// FinalityFinalized reads the finalized block tag
	FinalityFinalized BlockFinality = "finalized"

	// FinalitySafe reads the safe block tag
	FinalitySafe BlockFinality = "safe"

	// FinalityLatest reads the latest block minus a configured lag
	FinalityLatest BlockFinality = "latest"
)

// String returns the string representation of BlockFinality.
func (f BlockFinality) String() string {
	return string(f)
}

// IsValid checks if the BlockFinality value is valid.
func (f BlockFinality) IsValid() bool {
	switch f {
	case FinalityFinalized, FinalitySafe, FinalityLatest:
		return true
	default:
		return false
	}
}

// BlockNumber returns the JSON-RPC block tag for this finality mode.
func (f BlockFinality) BlockNumber() rpc.BlockNumber {
	switch f {
	case FinalityFinalized:
		return rpc.FinalizedBlockNumber
	case FinalitySafe:
		return rpc.SafeBlockNumber
	default:
		return rpc.LatestBlockNumber
	}
}

// ApplyLag returns the usable head for a reported block number.
// The lag only applies to the latest tag; tagged modes are already final.
func (f BlockFinality) ApplyLag(reported, lag uint64) uint64 {
	if f != FinalityLatest {
		return reported
	}
	if reported < lag {
		return 0
	}
	return reported - lag
}

// ParseBlockFinality parses a string into a BlockFinality type.
func ParseBlockFinality(s string) (BlockFinality, error) {
	f := BlockFinality(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid block finality: %s (must be one of: finalized, safe, latest)", s)
	}
	return f, nil
}
