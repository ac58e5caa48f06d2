package bank_test

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/svm/internal/bank"
	"github.com/sharevault/svm/internal/types"
)

const pool types.PoolID = 42

func newBank(t *testing.T) *bank.MemoryBank {
	t.Helper()
	b := bank.NewMemoryBank()
	require.NoError(t, b.RegisterPool(pool, types.PoolAsset{Denom: "uusdc", Decimals: 6}))
	return b
}

func TestRegisterPool(t *testing.T) {
	b := newBank(t)

	asset, err := b.Asset(pool)
	require.NoError(t, err)
	require.Equal(t, "uusdc", asset.Denom)
	require.Equal(t, uint8(6), asset.Decimals)

	err = b.RegisterPool(pool, types.PoolAsset{Denom: "uatom", Decimals: 6})
	require.ErrorIs(t, err, bank.ErrPoolAlreadyExists)

	_, err = b.Asset(pool + 1)
	require.ErrorIs(t, err, bank.ErrPoolNotRegistered)

	err = b.RegisterPool(pool+1, types.PoolAsset{Denom: "!", Decimals: 6})
	require.ErrorIs(t, err, bank.ErrInvalidAsset)
}

func TestPullAndPushMoveCustody(t *testing.T) {
	b := newBank(t)
	ctx := context.Background()

	require.NoError(t, b.Fund("alice", sdk.NewCoin("uusdc", sdkmath.NewInt(1000))))

	require.NoError(t, b.PullFrom(ctx, "alice", pool, sdkmath.NewInt(600)))
	require.True(t, b.TotalAssets(pool).Equal(sdkmath.NewInt(600)))
	require.True(t, b.Balance("alice", "uusdc").Amount.Equal(sdkmath.NewInt(400)))

	require.NoError(t, b.PushTo(ctx, "bob", pool, sdkmath.NewInt(250)))
	require.True(t, b.TotalAssets(pool).Equal(sdkmath.NewInt(350)))
	require.True(t, b.Balance("bob", "uusdc").Amount.Equal(sdkmath.NewInt(250)))
}

func TestPullBeyondHoldingsFails(t *testing.T) {
	b := newBank(t)
	ctx := context.Background()

	require.NoError(t, b.Fund("alice", sdk.NewCoin("uusdc", sdkmath.NewInt(100))))
	err := b.PullFrom(ctx, "alice", pool, sdkmath.NewInt(101))
	require.ErrorIs(t, err, bank.ErrInsufficientFunds)
	require.True(t, b.TotalAssets(pool).IsZero())
}

func TestPushBeyondCustodyFails(t *testing.T) {
	b := newBank(t)
	ctx := context.Background()

	err := b.PushTo(ctx, "bob", pool, sdkmath.NewInt(1))
	require.ErrorIs(t, err, bank.ErrInsufficientCustody)
}

func TestCreditYieldGrowsTotalAssetsOnly(t *testing.T) {
	b := newBank(t)
	ctx := context.Background()

	require.NoError(t, b.Fund("alice", sdk.NewCoin("uusdc", sdkmath.NewInt(1000))))
	require.NoError(t, b.PullFrom(ctx, "alice", pool, sdkmath.NewInt(1000)))

	require.NoError(t, b.CreditYield(pool, sdkmath.NewInt(500)))
	require.True(t, b.TotalAssets(pool).Equal(sdkmath.NewInt(1500)))

	require.Error(t, b.CreditYield(pool, sdkmath.NewInt(-1)))
	require.ErrorIs(t, b.CreditYield(pool+9, sdkmath.NewInt(1)), bank.ErrPoolNotRegistered)
}

func TestTransfersOnUnknownPoolFail(t *testing.T) {
	b := newBank(t)
	ctx := context.Background()

	require.ErrorIs(t, b.PullFrom(ctx, "alice", pool+1, sdkmath.NewInt(1)), bank.ErrPoolNotRegistered)
	require.ErrorIs(t, b.PushTo(ctx, "alice", pool+1, sdkmath.NewInt(1)), bank.ErrPoolNotRegistered)
}
