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
	Register(config.RewardStrategyCycle, NewCycleStrategy)
}

// CycleStrategy reads a contract that distributes a reward amount per cycle.
type CycleStrategy struct {
	reader rpc.ChainReader
	caller *batch.Caller
	log    *logger.Logger
}

// NewCycleStrategy creates a CycleStrategy.
func NewCycleStrategy(reader rpc.ChainReader, caller *batch.Caller, log *logger.Logger) Strategy {
	return &CycleStrategy{reader: reader, caller: caller, log: log}
}

func (s *CycleStrategy) Globals(
	ctx context.Context,
	collection config.CollectionConfig,
) (map[string]holders.Amount, []holders.ErrorLogEntry) {
	vault := collection.VaultContractAddress()
	globals := make(map[string]holders.Amount)
	var errLog []holders.ErrorLogEntry

	cycle, err := readGlobal(ctx, s.reader, vault, contracts.Cycle, contracts.MethodCurrentCycle)
	if err != nil {
		s.log.Warnf("failed to read currentCycle of %s: %v", collection.Name, err)
		errLog = append(errLog, globalEntry(err))
		globals[FigureCurrentCycle] = holders.ZeroAmount()
		globals[FigureCycleRewards] = holders.ZeroAmount()
		return globals, errLog
	}
	globals[FigureCurrentCycle] = holders.NewAmount(cycle)

	cycleRewards, err := readGlobal(ctx, s.reader, vault, contracts.Cycle, contracts.MethodCycleRewards, cycle)
	if err != nil {
		s.log.Warnf("failed to read cycleRewards(%s) of %s: %v", cycle, collection.Name, err)
		errLog = append(errLog, globalEntry(err))
	}
	globals[FigureCycleRewards] = holders.NewAmount(cycleRewards)

	return globals, errLog
}

func (s *CycleStrategy) CallsPerHolder() int { return 1 }

// HolderRewards reads claimable(wallet).
func (s *CycleStrategy) HolderRewards(
	ctx context.Context,
	collection config.CollectionConfig,
	hs []*holders.Holder,
	progress batch.Progress,
) []holders.ErrorLogEntry {
	calls := walletCalls(collection.VaultContractAddress(), contracts.Cycle, contracts.MethodClaimable, hs)
	return assign(hs, s.caller.Call(ctx, calls, progress), FigureClaimable, contracts.MethodClaimable)
}

// Derive estimates each holder's share of the current cycle: cycleRewards * multiplierSum / pool.
func (s *CycleStrategy) Derive(hs []*holders.Holder, globals map[string]holders.Amount, pool uint64) {
	cycleRewards := globals[FigureCycleRewards].Big()
	denominator := new(big.Int).SetUint64(pool)

	for _, h := range hs {
		if h.Rewards == nil {
			h.Rewards = make(map[string]holders.Amount)
		}
		share := mulDiv(cycleRewards, new(big.Int).SetUint64(h.MultiplierSum), denominator)
		h.Rewards[FigureEstimatedCycleShare] = holders.NewAmount(share)
	}
}
