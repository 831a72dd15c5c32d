package fetcher

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
)

// transferTopics is the number of topics of an ERC-721 Transfer (signature, from, to, tokenId).
// ERC-20 transfers carry three and are rejected.
const transferTopics = 4

// DecodeTransfer turns an ERC-721 Transfer log into an EventDelta.
// Transfers to any address in burnAddresses are classified as burns.
func DecodeTransfer(log types.Log, burnAddresses map[ethcommon.Address]struct{}) (holders.EventDelta, error) {
	if len(log.Topics) != transferTopics || log.Topics[0] != contracts.TransferEventSignature {
		return holders.EventDelta{}, fmt.Errorf("log %d in block %d is not an ERC-721 Transfer", log.Index, log.BlockNumber)
	}

	tokenID := log.Topics[3].Big()
	if !tokenID.IsUint64() {
		return holders.EventDelta{}, fmt.Errorf("token id %s in block %d overflows uint64", tokenID, log.BlockNumber)
	}

	delta := holders.EventDelta{
		Kind:     holders.EventTransfer,
		TokenID:  tokenID.Uint64(),
		To:       ethcommon.BytesToAddress(log.Topics[2].Bytes()),
		Block:    log.BlockNumber,
		LogIndex: log.Index,
	}

	if from := ethcommon.BytesToAddress(log.Topics[1].Bytes()); from != (ethcommon.Address{}) {
		delta.From = &from
	}

	if _, burned := burnAddresses[delta.To]; burned {
		delta.Kind = holders.EventBurn
	}

	return delta, nil
}
