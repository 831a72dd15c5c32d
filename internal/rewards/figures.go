package rewards

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
)

// Reward and global figure names.
const (
	FigureRewards             = "rewards"
	FigureClaimable           = "claimable"
	FigureShares              = "shares"
	FigurePending             = "pending"
	FigureTotalShares         = "totalShares"
	FigureToDistribute        = "toDistribute"
	FigurePendingPerShare     = "pendingPerShare"
	FigureCurrentCycle        = "currentCycle"
	FigureCycleRewards        = "cycleRewards"
	FigureEstimatedCycleShare = "estimatedCycleShare"
)

// Maturities are the vesting horizons of the share vesting contract.
var Maturities = []uint8{0, 1, 2}

// wad is 1e18, the fixed point scale of per share figures.
var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// MaturityFigure names a per maturity figure, e.g. pending1.
func MaturityFigure(name string, maturity uint8) string {
	return fmt.Sprintf("%s%d", name, maturity)
}

var now = func() time.Time { return time.Now().UTC() }

func walletEntry(phase string, wallet common.Address, err error) holders.ErrorLogEntry {
	return holders.ErrorLogEntry{
		Phase:     phase,
		Wallet:    &wallet,
		Message:   err.Error(),
		Timestamp: now(),
	}
}

func tokenEntry(phase string, tokenID uint64, err error) holders.ErrorLogEntry {
	return holders.ErrorLogEntry{
		Phase:     phase,
		TokenID:   &tokenID,
		Message:   err.Error(),
		Timestamp: now(),
	}
}

func globalEntry(err error) holders.ErrorLogEntry {
	return holders.ErrorLogEntry{
		Phase:     holders.PhaseFetchGlobals,
		Message:   err.Error(),
		Timestamp: now(),
	}
}

// readGlobal reads one integer figure, zero on failure.
func readGlobal(
	ctx context.Context,
	reader rpc.ChainReader,
	to common.Address,
	contract *abi.ABI,
	method string,
	args ...any,
) (*big.Int, error) {
	values, err := reader.ReadContract(ctx, rpc.Call{To: to, ABI: contract, Method: method, Args: args})
	if err != nil {
		return new(big.Int), fmt.Errorf("%s: %w", method, err)
	}

	v, err := contracts.BigInt(values)
	if err != nil {
		return new(big.Int), fmt.Errorf("malformed %s: %w", method, err)
	}
	return v, nil
}

// walletCalls builds one call per holder with the wallet as the only argument.
func walletCalls(to common.Address, contract *abi.ABI, method string, hs []*holders.Holder) []rpc.Call {
	calls := make([]rpc.Call, len(hs))
	for i, h := range hs {
		calls[i] = rpc.Call{To: to, ABI: contract, Method: method, Args: []any{h.Wallet}}
	}
	return calls
}

// assign stores result i into holder i under name, zero and an error log entry on failure.
func assign(hs []*holders.Holder, results []rpc.CallResult, name, method string) []holders.ErrorLogEntry {
	var errLog []holders.ErrorLogEntry
	for i, res := range results {
		h := hs[i]
		if h.Rewards == nil {
			h.Rewards = make(map[string]holders.Amount)
		}

		v, err := figure(res)
		if err != nil {
			errLog = append(errLog, walletEntry(holders.PhaseFetchRewards, h.Wallet, fmt.Errorf("%s: %w", method, err)))
		}
		h.Rewards[name] = holders.NewAmount(v)
	}
	return errLog
}

func figure(res rpc.CallResult) (*big.Int, error) {
	if res.Err != nil {
		return new(big.Int), res.Err
	}
	v, err := contracts.BigInt(res.Values)
	if err != nil {
		return new(big.Int), err
	}
	return v, nil
}

// mulDiv returns a*b/c, zero when c is zero.
func mulDiv(a, b, c *big.Int) *big.Int {
	if c.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, c)
}

// offset shifts a progress callback past done calls of a larger total.
func offset(progress func(done, total int), done, total int) func(int, int) {
	return func(n, _ int) {
		if progress != nil {
			progress(done+n, total)
		}
	}
}
