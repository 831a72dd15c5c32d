package rpc

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	pkgrpc "github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"github.com/stretchr/testify/require"
)

var (
	transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	collection    = common.HexToAddress("0x1234567890123456789012345678901234567890")
)

func TestClientImplementsInterface(t *testing.T) {
	var _ pkgrpc.ChainReader = (*Client)(nil)
}

func TestToBlockNumArg(t *testing.T) {
	for blockNum, want := range map[uint64]string{
		0:        "0x0",
		1:        "0x1",
		1000:     "0x3e8",
		18000000: "0x112a880",
	} {
		require.Equal(t, want, toBlockNumArg(blockNum))
	}
}

func TestToFilterArg(t *testing.T) {
	other := common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	blockHash := common.HexToHash("0xdeadbeef")

	tests := []struct {
		name  string
		query ethereum.FilterQuery
		want  map[string]any
	}{
		{
			name: "transfer window of one collection",
			query: ethereum.FilterQuery{
				FromBlock: big.NewInt(1001),
				ToBlock:   big.NewInt(1500),
				Addresses: []common.Address{collection},
				Topics:    [][]common.Hash{{transferTopic}},
			},
			want: map[string]any{
				"fromBlock": "0x3e9",
				"toBlock":   "0x5dc",
				"address":   collection,
				"topics":    [][]common.Hash{{transferTopic}},
			},
		},
		{
			name: "several addresses stay a list",
			query: ethereum.FilterQuery{
				FromBlock: big.NewInt(1),
				ToBlock:   big.NewInt(2),
				Addresses: []common.Address{collection, other},
			},
			want: map[string]any{
				"fromBlock": "0x1",
				"toBlock":   "0x2",
				"address":   []common.Address{collection, other},
				"topics":    [][]common.Hash(nil),
			},
		},
		{
			name: "block hash wins over range",
			query: ethereum.FilterQuery{
				BlockHash: &blockHash,
				FromBlock: big.NewInt(100),
				ToBlock:   big.NewInt(200),
				Topics:    [][]common.Hash{{transferTopic}},
			},
			want: map[string]any{
				"blockHash": blockHash,
				"topics":    [][]common.Hash{{transferTopic}},
			},
		},
		{
			name:  "open range omits bounds",
			query: ethereum.FilterQuery{Addresses: []common.Address{collection}},
			want: map[string]any{
				"address": collection,
				"topics":  [][]common.Hash(nil),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, ok := toFilterArg(tt.query).(map[string]any)
			require.True(t, ok)
			require.Equal(t, tt.want, arg)
		})
	}
}
