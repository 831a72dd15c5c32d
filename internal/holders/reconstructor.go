package holders

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/HolderIndexor/internal/batch"
	icommon "github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
)

// Supply is the on-chain supply information of a collection.
type Supply struct {
	// Live is totalSupply(), the number of existing tokens
	Live uint64
	// Burned is totalBurned() when the collection has a burn counter
	Burned *uint64
}

// Reconstructor rebuilds holder state from deltas or from live on-chain ownership.
type Reconstructor struct {
	reader rpc.ChainReader
	caller *batch.Caller
	log    *logger.Logger
}

// NewReconstructor creates a new Reconstructor.
func NewReconstructor(cfg config.PopulationConfig, reader rpc.ChainReader, log *logger.Logger) *Reconstructor {
	return &Reconstructor{
		reader: reader,
		caller: batch.NewCaller(reader, cfg.BatchSize, cfg.Concurrency),
		log:    log.WithComponent(icommon.ComponentReconstructor),
	}
}

// Incremental copies prior and applies the delta batch: burns first, then transfers in event order.
func (r *Reconstructor) Incremental(
	prior *holders.Snapshot,
	deltas []holders.EventDelta,
	collection config.CollectionConfig,
) *State {
	state := r.NewState(prior, collection)
	state.ApplyBurns(deltas)
	state.ApplyTransfers(deltas)

	r.log.Infow("applied deltas",
		"collection", collection.Name,
		"deltas", len(deltas),
		"burns", state.BurnsReplayed,
		"holders", len(state.Holders),
		"touched", len(state.Touched),
	)

	return state
}

// NewState prepares a state from prior for step-by-step delta application.
func (r *Reconstructor) NewState(prior *holders.Snapshot, collection config.CollectionConfig) *State {
	return NewStateFromSnapshot(prior, len(collection.Tiers), r.log)
}

// FetchSupply reads totalSupply and, when configured, the burn counter.
func (r *Reconstructor) FetchSupply(ctx context.Context, collection config.CollectionConfig) (Supply, error) {
	address := collection.ContractAddress()

	values, err := r.reader.ReadContract(ctx, rpc.Call{
		To:     address,
		ABI:    contracts.ERC721,
		Method: contracts.MethodTotalSupply,
	})
	if err != nil {
		return Supply{}, fmt.Errorf("failed to read totalSupply of %s: %w", collection.Name, err)
	}

	live, err := contracts.Uint64(values)
	if err != nil {
		return Supply{}, fmt.Errorf("malformed totalSupply of %s: %w", collection.Name, err)
	}

	supply := Supply{Live: live}
	if !collection.HasBurnCounter {
		return supply, nil
	}

	values, err = r.reader.ReadContract(ctx, rpc.Call{
		To:     address,
		ABI:    contracts.ERC721,
		Method: contracts.MethodTotalBurned,
	})
	if err != nil {
		return Supply{}, fmt.Errorf("failed to read totalBurned of %s: %w", collection.Name, err)
	}

	burned, err := contracts.Uint64(values)
	if err != nil {
		return Supply{}, fmt.Errorf("malformed totalBurned of %s: %w", collection.Name, err)
	}
	supply.Burned = &burned

	return supply, nil
}

// FetchOwners enumerates live tokens with tokenByIndex and resolves their owners with ownerOf.
// Any failed lookup is fatal: a partial enumeration would not cover the live supply.
func (r *Reconstructor) FetchOwners(
	ctx context.Context,
	collection config.CollectionConfig,
	liveSupply uint64,
	progress batch.Progress,
) (map[uint64]common.Address, error) {
	address := collection.ContractAddress()

	indexCalls := make([]rpc.Call, liveSupply)
	for i := range indexCalls {
		indexCalls[i] = rpc.Call{
			To:     address,
			ABI:    contracts.ERC721,
			Method: contracts.MethodTokenByIndex,
			Args:   []any{new(big.Int).SetUint64(uint64(i))},
		}
	}

	// each token needs two lookups
	total := 2 * len(indexCalls)
	indexProgress := func(done, _ int) {
		if progress != nil {
			progress(done, total)
		}
	}

	tokenIDs := make([]uint64, len(indexCalls))
	for i, res := range r.caller.Call(ctx, indexCalls, indexProgress) {
		if res.Err != nil {
			return nil, fmt.Errorf("tokenByIndex(%d) of %s: %w", i, collection.Name, res.Err)
		}
		id, err := contracts.Uint64(res.Values)
		if err != nil {
			return nil, fmt.Errorf("malformed tokenByIndex(%d) of %s: %w", i, collection.Name, err)
		}
		tokenIDs[i] = id
	}

	ownerCalls := make([]rpc.Call, len(tokenIDs))
	for i, id := range tokenIDs {
		ownerCalls[i] = rpc.Call{
			To:     address,
			ABI:    contracts.ERC721,
			Method: contracts.MethodOwnerOf,
			Args:   []any{new(big.Int).SetUint64(id)},
		}
	}

	ownerProgress := func(done, _ int) {
		if progress != nil {
			progress(len(indexCalls)+done, total)
		}
	}

	owners := make(map[uint64]common.Address, len(tokenIDs))
	for i, res := range r.caller.Call(ctx, ownerCalls, ownerProgress) {
		if res.Err != nil {
			return nil, fmt.Errorf("ownerOf(%d) of %s: %w", tokenIDs[i], collection.Name, res.Err)
		}
		owner, err := contracts.Address(res.Values)
		if err != nil {
			return nil, fmt.Errorf("malformed ownerOf(%d) of %s: %w", tokenIDs[i], collection.Name, err)
		}
		owners[tokenIDs[i]] = owner
	}

	r.log.Infof("resolved owners of %d tokens of %s", len(owners), collection.Name)

	return owners, nil
}

// BuildFromOwners creates holders from scratch. Tokens held by burn addresses are
// excluded and returned as the burned count.
func (r *Reconstructor) BuildFromOwners(
	owners map[uint64]common.Address,
	collection config.CollectionConfig,
) (*State, uint64) {
	burnSet := collection.BurnAddressSet()
	state := newState(len(collection.Tiers), r.log)

	var heldByBurn uint64
	for id, owner := range owners {
		if _, burned := burnSet[owner]; burned {
			heldByBurn++
			continue
		}
		state.SetOwner(id, owner)
	}

	r.log.Infow("built holders from live ownership",
		"collection", collection.Name,
		"tokens", len(owners),
		"holders", len(state.Holders),
		"heldByBurnAddresses", heldByBurn,
	)

	return state, heldByBurn
}

// Totals computes totalBurned and totalMinted from the live token count.
// The on-chain counter wins when available; otherwise replayed burns are added to prior.
func Totals(liveTokens uint64, burnCounter *uint64, priorBurned, replayedBurns uint64) (totalBurned, totalMinted uint64) {
	totalBurned = priorBurned + replayedBurns
	if burnCounter != nil {
		totalBurned = *burnCounter
	}
	return totalBurned, liveTokens + totalBurned
}
