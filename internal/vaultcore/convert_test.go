package vaultcore_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

func i64(v int64) sdkmath.Int { return sdkmath.NewInt(v) }

func TestBootstrapConvertsOneToOne(t *testing.T) {
	zero := sdkmath.ZeroInt()
	for _, amount := range []int64{0, 1, 7, 1000, 1_000_000_000_000} {
		shares, err := vaultcore.ConvertToShares(i64(amount), zero, zero)
		require.NoError(t, err)
		require.True(t, shares.Equal(i64(amount)), "assets %d", amount)

		assets, err := vaultcore.ConvertToAssets(i64(amount), zero, i64(5000))
		require.NoError(t, err)
		require.True(t, assets.Equal(i64(amount)), "shares %d", amount)
	}
}

func TestConversionRoundingDirections(t *testing.T) {
	// 3 assets per share and change: totalAssets=1000, totalShares=300.
	totalShares := i64(300)
	totalAssets := i64(1000)

	shares, err := vaultcore.ConvertToShares(i64(10), totalShares, totalAssets)
	require.NoError(t, err)
	require.True(t, shares.Equal(i64(3)), "floor(10*300/1000) = 3, got %s", shares)

	assets, err := vaultcore.ConvertToAssets(i64(3), totalShares, totalAssets)
	require.NoError(t, err)
	require.True(t, assets.Equal(i64(10)), "floor(3*1000/300) = 10, got %s", assets)

	// previewMint rounds up against the minter.
	charged, err := vaultcore.PreviewMint(i64(1), totalShares, totalAssets)
	require.NoError(t, err)
	require.True(t, charged.Equal(i64(4)), "ceil(1*1000/300) = 4, got %s", charged)

	// previewWithdraw rounds up against the withdrawer.
	burned, err := vaultcore.PreviewWithdraw(i64(1), totalShares, totalAssets)
	require.NoError(t, err)
	require.True(t, burned.Equal(i64(1)), "ceil(1*300/1000) = 1, got %s", burned)

	// previewDeposit / previewRedeem are the floor conversions.
	quoted, err := vaultcore.PreviewDeposit(i64(10), totalShares, totalAssets)
	require.NoError(t, err)
	require.True(t, quoted.Equal(shares))

	released, err := vaultcore.PreviewRedeem(i64(3), totalShares, totalAssets)
	require.NoError(t, err)
	require.True(t, released.Equal(assets))
}

func TestRoundTripNeverFavorsCaller(t *testing.T) {
	cases := []struct {
		totalShares, totalAssets int64
	}{
		{1, 1000},
		{300, 1000},
		{1000, 300},
		{1250, 2500},
		{999_999, 1_000_003},
	}
	amounts := []int64{1, 2, 3, 10, 99, 1000, 123456, 99_999_999}

	for _, tc := range cases {
		for _, a := range amounts {
			shares, err := vaultcore.ConvertToShares(i64(a), i64(tc.totalShares), i64(tc.totalAssets))
			require.NoError(t, err)
			back, err := vaultcore.ConvertToAssets(shares, i64(tc.totalShares), i64(tc.totalAssets))
			require.NoError(t, err)
			require.True(t, back.LTE(i64(a)),
				"round trip of %d at %d/%d returned %s", a, tc.totalAssets, tc.totalShares, back)
		}
	}
}

func TestMintThenRedeemNeverProfits(t *testing.T) {
	totalShares := i64(1250)
	totalAssets := i64(2501)

	for _, s := range []int64{1, 3, 7, 100, 1249} {
		charged, err := vaultcore.PreviewMint(i64(s), totalShares, totalAssets)
		require.NoError(t, err)
		released, err := vaultcore.PreviewRedeem(i64(s), totalShares, totalAssets)
		require.NoError(t, err)
		require.True(t, released.LTE(charged),
			"minting %d shares charged %s but redeeming releases %s", s, charged, released)
	}
}

func TestConversionOverflowRejected(t *testing.T) {
	_, err := vaultcore.ConvertToShares(types.MaxAmount, types.MaxAmount, sdkmath.OneInt())
	require.ErrorIs(t, err, vaultcore.ErrArithmeticOverflow)

	_, err = vaultcore.PreviewMint(types.MaxAmount, sdkmath.OneInt(), types.MaxAmount)
	require.ErrorIs(t, err, vaultcore.ErrArithmeticOverflow)
}

func TestConversionRejectsInvalidAmounts(t *testing.T) {
	_, err := vaultcore.ConvertToShares(sdkmath.Int{}, i64(10), i64(10))
	require.ErrorIs(t, err, vaultcore.ErrInvalidAmount)

	_, err = vaultcore.ConvertToAssets(i64(-1), i64(10), i64(10))
	require.ErrorIs(t, err, vaultcore.ErrInvalidAmount)
}

func TestConversionZeroTotalAssetsRejected(t *testing.T) {
	// Nonzero supply with zero assets has no defined rate; conversion must
	// fail rather than divide by zero.
	_, err := vaultcore.ConvertToShares(i64(10), i64(100), sdkmath.ZeroInt())
	require.ErrorIs(t, err, vaultcore.ErrArithmeticOverflow)
}
