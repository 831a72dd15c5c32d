package rewards

import (
	"context"

	"github.com/goran-ethernal/HolderIndexor/internal/batch"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
)

func init() {
	Register(config.RewardStrategyShareVested, NewShareVestedStrategy)
}

// ShareVestedStrategy reads a share based vesting contract with several maturities.
//
// Pending amounts are derived from the holder shares and the per share amount
// still to be distributed for each maturity, scaled by 1e18.
type ShareVestedStrategy struct {
	reader rpc.ChainReader
	caller *batch.Caller
	log    *logger.Logger
}

// NewShareVestedStrategy creates a ShareVestedStrategy.
func NewShareVestedStrategy(reader rpc.ChainReader, caller *batch.Caller, log *logger.Logger) Strategy {
	return &ShareVestedStrategy{reader: reader, caller: caller, log: log}
}

func (s *ShareVestedStrategy) Globals(
	ctx context.Context,
	collection config.CollectionConfig,
) (map[string]holders.Amount, []holders.ErrorLogEntry) {
	vault := collection.VaultContractAddress()
	globals := make(map[string]holders.Amount)
	var errLog []holders.ErrorLogEntry

	totalShares, err := readGlobal(ctx, s.reader, vault, contracts.ShareVesting, contracts.MethodTotalShares)
	if err != nil {
		s.log.Warnf("failed to read totalShares of %s: %v", collection.Name, err)
		errLog = append(errLog, globalEntry(err))
	}
	globals[FigureTotalShares] = holders.NewAmount(totalShares)

	for _, m := range Maturities {
		toDistribute, err := readGlobal(ctx, s.reader, vault, contracts.ShareVesting, contracts.MethodToDistribute, m)
		if err != nil {
			s.log.Warnf("failed to read toDistribute(%d) of %s: %v", m, collection.Name, err)
			errLog = append(errLog, globalEntry(err))
		}
		globals[MaturityFigure(FigureToDistribute, m)] = holders.NewAmount(toDistribute)

		pps := mulDiv(toDistribute, wad, totalShares)
		globals[MaturityFigure(FigurePendingPerShare, m)] = holders.NewAmount(pps)
	}

	return globals, errLog
}

func (s *ShareVestedStrategy) CallsPerHolder() int { return 2 }

// HolderRewards reads claimableAmount(wallet) and shares(wallet).
func (s *ShareVestedStrategy) HolderRewards(
	ctx context.Context,
	collection config.CollectionConfig,
	hs []*holders.Holder,
	progress batch.Progress,
) []holders.ErrorLogEntry {
	vault := collection.VaultContractAddress()
	total := 2 * len(hs)

	claimable := s.caller.Call(ctx,
		walletCalls(vault, contracts.ShareVesting, contracts.MethodClaimableAmount, hs),
		offset(progress, 0, total))
	shares := s.caller.Call(ctx,
		walletCalls(vault, contracts.ShareVesting, contracts.MethodShares, hs),
		offset(progress, len(hs), total))

	errLog := assign(hs, claimable, FigureClaimable, contracts.MethodClaimableAmount)
	return append(errLog, assign(hs, shares, FigureShares, contracts.MethodShares)...)
}

// Derive sets pending{m} = shares * pendingPerShare{m} / 1e18.
func (s *ShareVestedStrategy) Derive(hs []*holders.Holder, globals map[string]holders.Amount, _ uint64) {
	for _, h := range hs {
		if h.Rewards == nil {
			h.Rewards = make(map[string]holders.Amount)
		}
		shares := h.Rewards[FigureShares].Big()
		for _, m := range Maturities {
			pps := globals[MaturityFigure(FigurePendingPerShare, m)].Big()
			h.Rewards[MaturityFigure(FigurePending, m)] = holders.NewAmount(mulDiv(shares, pps, wad))
		}
	}
}

