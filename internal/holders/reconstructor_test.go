package holders

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	rpcmocks "github.com/goran-ethernal/HolderIndexor/internal/rpc/mocks"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	contractAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	alice        = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol        = common.HexToAddress("0x00000000000000000000000000000000000ca201")
	dead         = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

func testCollection() config.CollectionConfig {
	return config.CollectionConfig{
		Name:         "alpha",
		Address:      contractAddr.Hex(),
		VaultAddress: "0x2222222222222222222222222222222222222222",
		Tiers: []config.TierConfig{
			{ID: 1, Name: "Gold", Multiplier: 10},
			{ID: 2, Name: "Diamond", Multiplier: 25},
		},
		BurnAddresses: []string{dead.Hex()},
	}
}

func newTestReconstructor(t *testing.T) (*Reconstructor, *rpcmocks.ChainReader) {
	t.Helper()

	reader := rpcmocks.NewChainReader(t)
	cfg := config.PopulationConfig{BatchSize: 2, Concurrency: 2}

	return NewReconstructor(cfg, reader, logger.NewNopLogger()), reader
}

func mint(id uint64, to common.Address, block uint64) holders.EventDelta {
	return holders.EventDelta{Kind: holders.EventTransfer, TokenID: id, To: to, Block: block}
}

func transfer(id uint64, from, to common.Address, block uint64) holders.EventDelta {
	return holders.EventDelta{Kind: holders.EventTransfer, TokenID: id, From: &from, To: to, Block: block}
}

func burn(id uint64, from common.Address, block uint64) holders.EventDelta {
	return holders.EventDelta{Kind: holders.EventBurn, TokenID: id, From: &from, Block: block}
}

func snapshotOf(owned map[common.Address][]uint64) *holders.Snapshot {
	s := &holders.Snapshot{Collection: "alpha"}
	for wallet, ids := range owned {
		h := holders.NewHolder(wallet, 2)
		for _, id := range ids {
			h.AddToken(id)
		}
		s.Holders = append(s.Holders, h)
	}
	return s
}

// assertDisjoint checks that no token is held twice.
func assertDisjoint(t *testing.T, state *State) {
	t.Helper()

	seen := map[uint64]common.Address{}
	for wallet, h := range state.Holders {
		require.NotEmpty(t, h.TokenIDs, "empty holder %s must be removed", wallet.Hex())
		for _, id := range h.TokenIDs {
			prev, dup := seen[id]
			require.False(t, dup, "token %d held by %s and %s", id, prev.Hex(), wallet.Hex())
			seen[id] = wallet
		}
	}
}

func TestIncremental_MintTransferBurn(t *testing.T) {
	r, _ := newTestReconstructor(t)

	prior := snapshotOf(map[common.Address][]uint64{alice: {5, 9}})
	deltas := []holders.EventDelta{
		mint(10, bob, 100),
		transfer(5, alice, carol, 101),
		burn(9, alice, 102),
	}

	state := r.Incremental(prior, deltas, testCollection())
	assertDisjoint(t, state)

	require.NotContains(t, state.Holders, alice, "alice lost every token")
	require.Equal(t, []uint64{10}, state.Holders[bob].TokenIDs)
	require.Equal(t, []uint64{5}, state.Holders[carol].TokenIDs)
	require.Equal(t, uint64(1), state.BurnsReplayed)
	require.ElementsMatch(t, []common.Address{bob, carol}, state.TouchedWallets())

	// prior snapshot is untouched
	require.Equal(t, []uint64{5, 9}, prior.Holders[0].TokenIDs)
}

func TestIncremental_BurnOfOneTokenKeepsHolder(t *testing.T) {
	r, _ := newTestReconstructor(t)

	prior := snapshotOf(map[common.Address][]uint64{alice: {5, 9}})
	state := r.Incremental(prior, []holders.EventDelta{burn(9, alice, 10)}, testCollection())

	require.Equal(t, []uint64{5}, state.Holders[alice].TokenIDs)
	require.Contains(t, state.Touched, alice)
}

func TestIncremental_BurnThenTransferInSameBatch(t *testing.T) {
	r, _ := newTestReconstructor(t)
	prior := snapshotOf(map[common.Address][]uint64{alice: {7}})

	orders := map[string][]holders.EventDelta{
		"burn first":     {burn(7, bob, 20), transfer(7, alice, bob, 10)},
		"transfer first": {transfer(7, alice, bob, 10), burn(7, bob, 20)},
	}

	for name, deltas := range orders {
		t.Run(name, func(t *testing.T) {
			state := r.Incremental(prior, deltas, testCollection())
			_, owned := state.OwnerOf(7)
			require.False(t, owned, "burned token must not be owned by anyone")
			require.Empty(t, state.Holders)
		})
	}
}

func TestIncremental_UnknownBurnIsIgnored(t *testing.T) {
	r, _ := newTestReconstructor(t)
	prior := snapshotOf(map[common.Address][]uint64{alice: {1}})

	state := r.Incremental(prior, []holders.EventDelta{burn(99, bob, 5)}, testCollection())
	require.Equal(t, []uint64{1}, state.Holders[alice].TokenIDs)
	require.Empty(t, state.Touched)
	require.Zero(t, state.BurnsReplayed, "an unowned burn is already reflected in the prior totals")
}

func TestIncremental_MintAndBurnInSameBatchIsCounted(t *testing.T) {
	r, _ := newTestReconstructor(t)
	prior := snapshotOf(map[common.Address][]uint64{alice: {1}})

	state := r.Incremental(prior, []holders.EventDelta{
		mint(2, bob, 10),
		burn(2, bob, 11),
		burn(2, bob, 11),
	}, testCollection())

	require.Equal(t, uint64(1), state.BurnsReplayed)
	_, owned := state.OwnerOf(2)
	require.False(t, owned)
	require.NotContains(t, state.Holders, bob)
}

func TestIncremental_TransferFromStaleSender(t *testing.T) {
	r, _ := newTestReconstructor(t)
	prior := snapshotOf(map[common.Address][]uint64{alice: {3}})

	// bob never appeared as owner, the token is still taken away from alice
	state := r.Incremental(prior, []holders.EventDelta{transfer(3, bob, carol, 5)}, testCollection())
	assertDisjoint(t, state)
	require.NotContains(t, state.Holders, alice)
	require.Equal(t, []uint64{3}, state.Holders[carol].TokenIDs)
}

func TestIncremental_EmptyDeltasNoPrior(t *testing.T) {
	r, _ := newTestReconstructor(t)

	state := r.Incremental(nil, nil, testCollection())
	require.Empty(t, state.Holders)
	require.Zero(t, state.TokenCount())
}

func TestNewStateFromSnapshot_ResizedTierTable(t *testing.T) {
	prior := snapshotOf(map[common.Address][]uint64{alice: {1}})
	prior.Holders[0].Tiers = []uint64{1}

	state := NewStateFromSnapshot(prior, 2, logger.NewNopLogger())
	require.Len(t, state.Holders[alice].Tiers, 2)
	require.Contains(t, state.Touched, alice)
}

func TestFetchSupply(t *testing.T) {
	r, reader := newTestReconstructor(t)
	ctx := context.Background()

	collection := testCollection()
	collection.HasBurnCounter = true

	reader.EXPECT().ReadContract(ctx, mock.MatchedBy(func(c rpc.Call) bool {
		return c.Method == contracts.MethodTotalSupply && c.To == contractAddr
	})).Return([]any{big.NewInt(40)}, nil).Once()
	reader.EXPECT().ReadContract(ctx, mock.MatchedBy(func(c rpc.Call) bool {
		return c.Method == contracts.MethodTotalBurned
	})).Return([]any{big.NewInt(2)}, nil).Once()

	supply, err := r.FetchSupply(ctx, collection)
	require.NoError(t, err)
	require.Equal(t, uint64(40), supply.Live)
	require.NotNil(t, supply.Burned)
	require.Equal(t, uint64(2), *supply.Burned)
}

func TestFetchSupply_Errors(t *testing.T) {
	r, reader := newTestReconstructor(t)
	ctx := context.Background()

	reader.EXPECT().ReadContract(ctx, mock.Anything).Return(nil, errors.New("boom")).Once()
	_, err := r.FetchSupply(ctx, testCollection())
	require.ErrorContains(t, err, "failed to read totalSupply of alpha")

	reader.EXPECT().ReadContract(ctx, mock.Anything).Return([]any{"x"}, nil).Once()
	_, err = r.FetchSupply(ctx, testCollection())
	require.ErrorContains(t, err, "malformed totalSupply")
}

// chain answers tokenByIndex(i) = 100+i and ownerOf from the owners table.
func chain(owners map[uint64]common.Address) func(context.Context, []rpc.Call) []rpc.CallResult {
	return func(_ context.Context, calls []rpc.Call) []rpc.CallResult {
		out := make([]rpc.CallResult, len(calls))
		for i, c := range calls {
			arg := c.Args[0].(*big.Int).Uint64()
			switch c.Method {
			case contracts.MethodTokenByIndex:
				out[i] = rpc.CallResult{Values: []any{new(big.Int).SetUint64(100 + arg)}}
			case contracts.MethodOwnerOf:
				owner, ok := owners[arg]
				if !ok {
					out[i] = rpc.CallResult{Err: errors.New("execution reverted: invalid token")}
					continue
				}
				out[i] = rpc.CallResult{Values: []any{owner}}
			}
		}
		return out
	}
}

func TestFullRebuild(t *testing.T) {
	r, reader := newTestReconstructor(t)
	ctx := context.Background()

	owners := map[uint64]common.Address{
		100: alice,
		101: bob,
		102: alice,
		103: dead,
		104: carol,
	}
	reader.EXPECT().BatchCall(mock.Anything, mock.Anything).RunAndReturn(chain(owners))

	var (
		mu                  sync.Mutex
		lastDone, lastTotal int
	)
	got, err := r.FetchOwners(ctx, testCollection(), 5, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		lastDone, lastTotal = max(lastDone, done), total
	})
	require.NoError(t, err)
	require.Equal(t, owners, got)
	require.Equal(t, 10, lastTotal)
	require.Equal(t, 10, lastDone)

	state, heldByBurn := r.BuildFromOwners(got, testCollection())
	assertDisjoint(t, state)
	require.Equal(t, uint64(1), heldByBurn)
	require.Equal(t, uint64(4), state.TokenCount())
	require.Equal(t, []uint64{100, 102}, state.Holders[alice].TokenIDs)
	require.NotContains(t, state.Holders, dead)
	require.Len(t, state.TouchedWallets(), 3)

	burned, minted := Totals(state.TokenCount(), nil, 0, heldByBurn)
	require.Equal(t, uint64(1), burned)
	require.Equal(t, uint64(5), minted)
}

func TestFullRebuild_OwnerLookupFailure(t *testing.T) {
	r, reader := newTestReconstructor(t)

	// token 101 has no owner entry, so ownerOf fails
	reader.EXPECT().BatchCall(mock.Anything, mock.Anything).RunAndReturn(chain(map[uint64]common.Address{100: alice}))

	_, err := r.FetchOwners(context.Background(), testCollection(), 2, nil)
	require.ErrorContains(t, err, "ownerOf(101) of alpha")
}

func TestTotals(t *testing.T) {
	counter := uint64(7)

	burned, minted := Totals(10, &counter, 3, 2)
	require.Equal(t, uint64(7), burned)
	require.Equal(t, uint64(17), minted)

	burned, minted = Totals(10, nil, 3, 2)
	require.Equal(t, uint64(5), burned)
	require.Equal(t, uint64(15), minted)
}
