package contracts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestABIs(t *testing.T) {
	require.Equal(t, ERC721.Events["Transfer"].ID, TransferEventSignature)

	for _, m := range []string{MethodTotalSupply, MethodTokenByIndex, MethodOwnerOf, MethodTotalBurned} {
		require.Contains(t, ERC721.Methods, m)
	}
	require.Contains(t, Tier.Methods, MethodGetTier)
	require.Contains(t, PoolVault.Methods, MethodGetRewards)
	for _, m := range []string{MethodClaimableAmount, MethodShares, MethodTotalShares, MethodToDistribute} {
		require.Contains(t, ShareVesting.Methods, m)
	}
	for _, m := range []string{MethodCurrentCycle, MethodCycleRewards, MethodClaimable} {
		require.Contains(t, Cycle.Methods, m)
	}
}

func TestRoundTripGetRewards(t *testing.T) {
	wallet := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	_, err := PoolVault.Pack(MethodGetRewards, []*big.Int{big.NewInt(5), big.NewInt(9)}, wallet)
	require.NoError(t, err)

	out, err := PoolVault.Methods[MethodGetRewards].Outputs.Pack(big.NewInt(1234))
	require.NoError(t, err)

	values, err := PoolVault.Unpack(MethodGetRewards, out)
	require.NoError(t, err)

	v, err := BigInt(values)
	require.NoError(t, err)
	require.Equal(t, int64(1234), v.Int64())
}

func TestConverters(t *testing.T) {
	tests := []struct {
		name    string
		values  []any
		want    uint64
		wantErr bool
	}{
		{name: "uint8", values: []any{uint8(3)}, want: 3},
		{name: "uint64", values: []any{uint64(77)}, want: 77},
		{name: "big int", values: []any{big.NewInt(42)}, want: 42},
		{name: "empty", values: nil, wantErr: true},
		{name: "wrong type", values: []any{"x"}, wantErr: true},
		{name: "overflow", values: []any{new(big.Int).Lsh(big.NewInt(1), 70)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Uint64(tt.values)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	addr := common.HexToAddress("0x01")
	got, err := Address([]any{addr})
	require.NoError(t, err)
	require.Equal(t, addr, got)

	_, err = Address([]any{uint8(1)})
	require.Error(t, err)
}
