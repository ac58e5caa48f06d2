package ledger_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/svm/internal/ledger"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

const (
	poolA types.PoolID = 1
	poolB types.PoolID = 2

	owner   types.AccountID = "owner"
	spender types.AccountID = "spender"
)

func TestMintAndBurnMoveSupplyWithBalance(t *testing.T) {
	l := ledger.New()

	record, err := l.Mint(owner, poolA, sdkmath.NewInt(100))
	require.NoError(t, err)
	require.True(t, record.IsMint())
	require.Equal(t, owner, record.To)
	require.True(t, record.Shares.Equal(sdkmath.NewInt(100)))

	require.True(t, l.BalanceOf(owner, poolA).Equal(sdkmath.NewInt(100)))
	require.True(t, l.TotalSupply(poolA).Equal(sdkmath.NewInt(100)))

	record, err = l.Burn(owner, poolA, sdkmath.NewInt(40))
	require.NoError(t, err)
	require.True(t, record.IsBurn())
	require.Equal(t, owner, record.From)

	require.True(t, l.BalanceOf(owner, poolA).Equal(sdkmath.NewInt(60)))
	require.True(t, l.TotalSupply(poolA).Equal(sdkmath.NewInt(60)))
}

func TestPoolsAreIndependent(t *testing.T) {
	l := ledger.New()

	_, err := l.Mint(owner, poolA, sdkmath.NewInt(100))
	require.NoError(t, err)
	_, err = l.Mint(owner, poolB, sdkmath.NewInt(7))
	require.NoError(t, err)

	require.True(t, l.TotalSupply(poolA).Equal(sdkmath.NewInt(100)))
	require.True(t, l.TotalSupply(poolB).Equal(sdkmath.NewInt(7)))
	require.True(t, l.BalanceOf(owner, poolB).Equal(sdkmath.NewInt(7)))
}

func TestBurnBeyondBalanceFails(t *testing.T) {
	l := ledger.New()

	_, err := l.Mint(owner, poolA, sdkmath.NewInt(10))
	require.NoError(t, err)

	_, err = l.Burn(owner, poolA, sdkmath.NewInt(11))
	require.ErrorIs(t, err, vaultcore.ErrInsufficientBalance)

	// Nothing changed.
	require.True(t, l.BalanceOf(owner, poolA).Equal(sdkmath.NewInt(10)))
	require.True(t, l.TotalSupply(poolA).Equal(sdkmath.NewInt(10)))
}

func TestBurnFromUntouchedAccountFails(t *testing.T) {
	l := ledger.New()

	_, err := l.Burn(owner, poolA, sdkmath.NewInt(1))
	require.ErrorIs(t, err, vaultcore.ErrInsufficientBalance)
}

func TestMintOverflowFailsClosed(t *testing.T) {
	l := ledger.New()

	_, err := l.Mint(owner, poolA, types.MaxAmount)
	require.NoError(t, err)

	_, err = l.Mint(owner, poolA, sdkmath.OneInt())
	require.ErrorIs(t, err, vaultcore.ErrArithmeticOverflow)

	// Supply still at the pre-overflow value.
	require.True(t, l.TotalSupply(poolA).Equal(types.MaxAmount))
}

func TestAllowanceStorage(t *testing.T) {
	l := ledger.New()

	require.True(t, l.Allowance(owner, spender, poolA).IsZero())

	require.NoError(t, l.SetAllowance(owner, spender, poolA, sdkmath.NewInt(100)))
	require.True(t, l.Allowance(owner, spender, poolA).Equal(sdkmath.NewInt(100)))

	// Scoped per pool and per spender.
	require.True(t, l.Allowance(owner, spender, poolB).IsZero())
	require.True(t, l.Allowance(spender, owner, poolA).IsZero())

	require.Error(t, l.SetAllowance(owner, spender, poolA, sdkmath.NewInt(-1)))
	require.NoError(t, l.SetAllowance(owner, spender, poolA, types.UnlimitedAllowance))
	require.True(t, l.Allowance(owner, spender, poolA).Equal(types.UnlimitedAllowance))
}

func TestNegativeMintRejected(t *testing.T) {
	l := ledger.New()

	_, err := l.Mint(owner, poolA, sdkmath.NewInt(-5))
	require.ErrorIs(t, err, vaultcore.ErrInvalidAmount)
	_, err = l.Burn(owner, poolA, sdkmath.NewInt(-5))
	require.ErrorIs(t, err, vaultcore.ErrInvalidAmount)
}
