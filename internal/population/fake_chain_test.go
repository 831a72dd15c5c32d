package population

import (
	"context"
	"errors"
	"math/big"
	"slices"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	rpcmocks "github.com/goran-ethernal/HolderIndexor/internal/rpc/mocks"
	istore "github.com/goran-ethernal/HolderIndexor/internal/store"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"github.com/stretchr/testify/mock"
)

var (
	contractAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	vaultAddr    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	dead         = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	alice        = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol        = common.HexToAddress("0x00000000000000000000000000000000000ca201")
)

// fakeChain is a minimal enumerable ERC-721 with a tier contract and a pool vault.
type fakeChain struct {
	mu       sync.Mutex
	head     uint64
	headErr  error
	order    []uint64
	owners   map[uint64]common.Address
	tiers    map[uint64]uint64
	logs     []types.Log
	logIndex uint
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		owners: map[uint64]common.Address{},
		tiers:  map[uint64]uint64{},
	}
}

func (f *fakeChain) emit(from, to common.Address, id, block uint64) {
	f.logs = append(f.logs, types.Log{
		Address: contractAddr,
		Topics: []common.Hash{
			contracts.TransferEventSignature,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(new(big.Int).SetUint64(id)),
		},
		BlockNumber: block,
		Index:       f.logIndex,
	})
	f.logIndex++
	f.head = max(f.head, block)
}

func (f *fakeChain) mint(id uint64, to common.Address, tier, block uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, id)
	f.owners[id] = to
	f.tiers[id] = tier
	f.emit(common.Address{}, to, id, block)
}

func (f *fakeChain) transfer(id uint64, to common.Address, block uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	from := f.owners[id]
	f.owners[id] = to
	f.emit(from, to, id, block)
}

func (f *fakeChain) burn(id uint64, block uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	from := f.owners[id]
	delete(f.owners, id)
	f.order = slices.DeleteFunc(f.order, func(x uint64) bool { return x == id })
	f.emit(from, common.Address{}, id, block)
}

func (f *fakeChain) setHead(head uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func (f *fakeChain) call(c rpc.Call) rpc.CallResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	reverted := rpc.CallResult{Err: errors.New("execution reverted")}
	arg := func() uint64 { return c.Args[0].(*big.Int).Uint64() }

	switch c.Method {
	case contracts.MethodTotalSupply:
		return rpc.CallResult{Values: []any{big.NewInt(int64(len(f.order)))}}
	case contracts.MethodTokenByIndex:
		i := arg()
		if i >= uint64(len(f.order)) {
			return reverted
		}
		return rpc.CallResult{Values: []any{new(big.Int).SetUint64(f.order[i])}}
	case contracts.MethodOwnerOf:
		owner, ok := f.owners[arg()]
		if !ok {
			return reverted
		}
		return rpc.CallResult{Values: []any{owner}}
	case contracts.MethodGetTier:
		tier, ok := f.tiers[arg()]
		if !ok {
			return reverted
		}
		return rpc.CallResult{Values: []any{uint8(tier)}}
	case contracts.MethodGetRewards:
		ids := c.Args[0].([]*big.Int)
		return rpc.CallResult{Values: []any{big.NewInt(int64(100 * len(ids)))}}
	}
	return reverted
}

func (f *fakeChain) reader(t *testing.T) *rpcmocks.ChainReader {
	t.Helper()

	reader := rpcmocks.NewChainReader(t)
	reader.EXPECT().HeadBlock(mock.Anything).RunAndReturn(func(context.Context) (uint64, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.head, f.headErr
	}).Maybe()
	reader.EXPECT().GetLogs(mock.Anything, mock.Anything).RunAndReturn(
		func(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			var out []types.Log
			for _, l := range f.logs {
				if l.BlockNumber >= q.FromBlock.Uint64() && l.BlockNumber <= q.ToBlock.Uint64() {
					out = append(out, l)
				}
			}
			return out, nil
		}).Maybe()
	reader.EXPECT().ReadContract(mock.Anything, mock.Anything).RunAndReturn(
		func(_ context.Context, c rpc.Call) ([]any, error) {
			res := f.call(c)
			return res.Values, res.Err
		}).Maybe()
	reader.EXPECT().BatchCall(mock.Anything, mock.Anything).RunAndReturn(
		func(_ context.Context, calls []rpc.Call) []rpc.CallResult {
			out := make([]rpc.CallResult, len(calls))
			for i, c := range calls {
				out[i] = f.call(c)
			}
			return out
		}).Maybe()

	return reader
}

func testConfig() *config.Config {
	disabled := false
	cfg := &config.Config{
		Sync: config.SyncConfig{FastForward: config.FastForwardNone},
		Population: config.PopulationConfig{
			BatchSize:   2,
			Concurrency: 2,
		},
		Collections: []config.CollectionConfig{
			{
				Name:           "alpha",
				Address:        contractAddr.Hex(),
				VaultAddress:   vaultAddr.Hex(),
				Tiers:          []config.TierConfig{{ID: 1, Name: "Gold", Multiplier: 10}, {ID: 2, Name: "Diamond", Multiplier: 25}},
				RewardStrategy: config.RewardStrategyPool,
				BurnAddresses:  []string{dead.Hex()},
			},
			{
				Name:         "beta",
				Address:      contractAddr.Hex(),
				VaultAddress: vaultAddr.Hex(),
				Tiers:        []config.TierConfig{{ID: 1, Name: "Gold", Multiplier: 10}},
				Enabled:      &disabled,
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

type testEnv struct {
	cfg   *config.Config
	chain *fakeChain
	store *istore.MemoryStore
	orch  *Orchestrator
}

func newTestEnv(t *testing.T, chain *fakeChain, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := logger.NewNopLogger()

	st := istore.NewMemoryStore(log)
	orch := NewOrchestrator(cfg, chain.reader(t), st, st, log)
	t.Cleanup(func() {
		orch.Close()
		st.Close()
	})

	return &testEnv{cfg: cfg, chain: chain, store: st, orch: orch}
}
