// Package contracts holds the ABIs of the contracts the indexer reads and the
// helpers that turn their raw outputs into Go values.
package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const erc721JSON = `[
  {"anonymous":false,"type":"event","name":"Transfer","inputs":[
    {"indexed":true,"name":"from","type":"address"},
    {"indexed":true,"name":"to","type":"address"},
    {"indexed":true,"name":"tokenId","type":"uint256"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenByIndex","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"totalBurned","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const tierJSON = `[
  {"type":"function","name":"getTier","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"uint8"}]}
]`

const poolVaultJSON = `[
  {"type":"function","name":"getRewards","stateMutability":"view",
   "inputs":[{"name":"tokenIds","type":"uint256[]"},{"name":"wallet","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const shareVestingJSON = `[
  {"type":"function","name":"claimableAmount","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"shares","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalShares","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"toDistribute","stateMutability":"view","inputs":[{"name":"maturity","type":"uint8"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

const cycleJSON = `[
  {"type":"function","name":"currentCycle","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"cycleRewards","stateMutability":"view","inputs":[{"name":"cycle","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"claimable","stateMutability":"view","inputs":[{"name":"wallet","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

var (
	// ERC721 covers the enumerable ERC-721 surface plus an optional burn counter.
	ERC721 = mustParse(erc721JSON)
	// Tier is the per token tier lookup.
	Tier = mustParse(tierJSON)
	// PoolVault is the vault used by pool based reward collections.
	PoolVault = mustParse(poolVaultJSON)
	// ShareVesting is the share based vesting reward contract.
	ShareVesting = mustParse(shareVestingJSON)
	// Cycle is the cycle based reward contract.
	Cycle = mustParse(cycleJSON)

	// TransferEventSignature is topic[0] of the ERC-721 Transfer event.
	TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
)

// Method names.
const (
	MethodTotalSupply     = "totalSupply"
	MethodTokenByIndex    = "tokenByIndex"
	MethodOwnerOf         = "ownerOf"
	MethodTotalBurned     = "totalBurned"
	MethodGetTier         = "getTier"
	MethodGetRewards      = "getRewards"
	MethodClaimableAmount = "claimableAmount"
	MethodShares          = "shares"
	MethodTotalShares     = "totalShares"
	MethodToDistribute    = "toDistribute"
	MethodCurrentCycle    = "currentCycle"
	MethodCycleRewards    = "cycleRewards"
	MethodClaimable       = "claimable"
)

func mustParse(def string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid contract ABI: %v", err))
	}
	return &parsed
}

// BigInt returns the first output as a big integer.
func BigInt(values []any) (*big.Int, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty call result")
	}

	switch v := values[0].(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer result")
		}
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unexpected integer result type %T", values[0])
	}
}

// Uint64 returns the first output as a uint64.
func Uint64(values []any) (uint64, error) {
	v, err := BigInt(values)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("integer result %s overflows uint64", v)
	}
	return v.Uint64(), nil
}

// Address returns the first output as an address.
func Address(values []any) (common.Address, error) {
	if len(values) == 0 {
		return common.Address{}, fmt.Errorf("empty call result")
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected address result type %T", values[0])
	}
	return addr, nil
}
