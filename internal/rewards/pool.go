package rewards

import (
	"context"
	"math/big"

	"github.com/goran-ethernal/HolderIndexor/internal/batch"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
)

func init() {
	Register(config.RewardStrategyPool, NewPoolStrategy)
}

// PoolStrategy reads the rewards of each holder from a vault that pays per token.
type PoolStrategy struct {
	caller *batch.Caller
	log    *logger.Logger
}

// NewPoolStrategy creates a PoolStrategy.
func NewPoolStrategy(_ rpc.ChainReader, caller *batch.Caller, log *logger.Logger) Strategy {
	return &PoolStrategy{caller: caller, log: log}
}

// Globals has nothing to read for pool based vaults.
func (s *PoolStrategy) Globals(context.Context, config.CollectionConfig) (map[string]holders.Amount, []holders.ErrorLogEntry) {
	return nil, nil
}

func (s *PoolStrategy) CallsPerHolder() int { return 1 }

// HolderRewards calls getRewards(tokenIds, wallet) once per holder.
func (s *PoolStrategy) HolderRewards(
	ctx context.Context,
	collection config.CollectionConfig,
	hs []*holders.Holder,
	progress batch.Progress,
) []holders.ErrorLogEntry {
	vault := collection.VaultContractAddress()

	calls := make([]rpc.Call, len(hs))
	for i, h := range hs {
		ids := make([]*big.Int, len(h.TokenIDs))
		for j, id := range h.TokenIDs {
			ids[j] = new(big.Int).SetUint64(id)
		}
		calls[i] = rpc.Call{
			To:     vault,
			ABI:    contracts.PoolVault,
			Method: contracts.MethodGetRewards,
			Args:   []any{ids, h.Wallet},
		}
	}

	return assign(hs, s.caller.Call(ctx, calls, progress), FigureRewards, contracts.MethodGetRewards)
}

func (s *PoolStrategy) Derive([]*holders.Holder, map[string]holders.Amount, uint64) {}
