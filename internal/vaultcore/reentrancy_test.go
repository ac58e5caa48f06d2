package vaultcore_test

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/svm/internal/bank"
	"github.com/sharevault/svm/internal/ledger"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

// reentrantAgent delegates transfers to the bank but, like a malicious
// token contract, calls back into the core mid-transfer. It records what
// the reentrant call observed so the test can assert it saw no
// exploitable intermediate state.
type reentrantAgent struct {
	*bank.MemoryBank
	core   *vaultcore.Core
	ledger *ledger.MemoryLedger

	attacker types.AccountID
	pool     types.PoolID

	reenterOnPull bool
	reenterOnPush bool

	observedSupplyDuringPull sdkmath.Int
	reentrantErrs            []error
}

func (a *reentrantAgent) PullFrom(ctx context.Context, caller types.AccountID, pool types.PoolID, amount sdkmath.Int) error {
	if a.reenterOnPull {
		a.reenterOnPull = false
		// A reentrant call during the pull runs against pre-mint state:
		// the attacker holds no shares yet and cannot redeem any.
		a.observedSupplyDuringPull = a.ledger.TotalSupply(pool)
		_, err := a.core.Redeem(ctx, pool, amount, a.attacker, a.attacker, a.attacker)
		a.reentrantErrs = append(a.reentrantErrs, err)
	}
	return a.MemoryBank.PullFrom(ctx, caller, pool, amount)
}

func (a *reentrantAgent) PushTo(ctx context.Context, receiver types.AccountID, pool types.PoolID, amount sdkmath.Int) error {
	if a.reenterOnPush {
		a.reenterOnPush = false
		// A reentrant call during the push runs against post-burn state:
		// the attacker's shares are already gone and cannot be spent again.
		_, err := a.core.Withdraw(ctx, pool, amount, a.attacker, a.attacker, a.attacker)
		a.reentrantErrs = append(a.reentrantErrs, err)
	}
	return a.MemoryBank.PushTo(ctx, receiver, pool, amount)
}

func fundAccounts(t *testing.T, assetBank *bank.MemoryBank) {
	t.Helper()
	for _, account := range []types.AccountID{alice, bob} {
		require.NoError(t, assetBank.Fund(account, sdk.NewCoin("uusdc", sdkmath.NewInt(1_000_000))))
	}
}

func TestReentrantDepositCannotSpendUnmintedShares(t *testing.T) {
	shareLedger := ledger.New()
	assetBank := bank.NewMemoryBank()
	require.NoError(t, assetBank.RegisterPool(poolUSDC, types.PoolAsset{Denom: "uusdc", Decimals: 6}))
	fundAccounts(t, assetBank)

	agent := &reentrantAgent{
		MemoryBank: assetBank,
		ledger:     shareLedger,
		attacker:   bob,
		pool:       poolUSDC,
	}
	core, err := vaultcore.New(vaultcore.Config{
		Ledger: shareLedger,
		Assets: agent,
		Source: assetBank,
	})
	require.NoError(t, err)
	agent.core = core

	ctx := context.Background()
	_, err = core.Deposit(ctx, poolUSDC, i64(1000), alice, alice)
	require.NoError(t, err)

	// Bob deposits, re-entering during the pull to redeem shares he has
	// not been minted yet.
	agent.reenterOnPull = true
	shares, err := core.Deposit(ctx, poolUSDC, i64(500), bob, bob)
	require.NoError(t, err)
	require.True(t, shares.Equal(i64(500)))

	// The reentrant redeem observed pre-mint supply and failed against
	// bob's zero balance.
	require.True(t, agent.observedSupplyDuringPull.Equal(i64(1000)))
	require.Len(t, agent.reentrantErrs, 1)
	require.ErrorIs(t, agent.reentrantErrs[0], vaultcore.ErrInsufficientBalance)

	// No value was conjured: supply matches the two honest deposits.
	require.True(t, shareLedger.TotalSupply(poolUSDC).Equal(i64(1500)))
	require.True(t, assetBank.TotalAssets(poolUSDC).Equal(i64(1500)))
}

func TestReentrantWithdrawCannotDoubleSpend(t *testing.T) {
	shareLedger := ledger.New()
	assetBank := bank.NewMemoryBank()
	require.NoError(t, assetBank.RegisterPool(poolUSDC, types.PoolAsset{Denom: "uusdc", Decimals: 6}))
	fundAccounts(t, assetBank)

	agent := &reentrantAgent{
		MemoryBank: assetBank,
		ledger:     shareLedger,
		attacker:   bob,
		pool:       poolUSDC,
	}
	core, err := vaultcore.New(vaultcore.Config{
		Ledger: shareLedger,
		Assets: agent,
		Source: assetBank,
	})
	require.NoError(t, err)
	agent.core = core

	ctx := context.Background()
	_, err = core.Deposit(ctx, poolUSDC, i64(1000), alice, alice)
	require.NoError(t, err)
	_, err = core.Deposit(ctx, poolUSDC, i64(500), bob, bob)
	require.NoError(t, err)

	// Bob withdraws his entire position, re-entering during the push to
	// withdraw the same shares a second time.
	agent.reenterOnPush = true
	shares, err := core.Withdraw(ctx, poolUSDC, i64(500), bob, bob, bob)
	require.NoError(t, err)
	require.True(t, shares.Equal(i64(500)))

	// The reentrant withdraw saw bob's balance already burned and failed.
	require.Len(t, agent.reentrantErrs, 1)
	require.ErrorIs(t, agent.reentrantErrs[0], vaultcore.ErrInsufficientBalance)

	// Bob got paid exactly once.
	require.True(t, assetBank.Balance(bob, "uusdc").Amount.Equal(i64(1_000_000)))
	require.True(t, shareLedger.BalanceOf(bob, poolUSDC).IsZero())
	require.True(t, shareLedger.TotalSupply(poolUSDC).Equal(i64(1000)))
}
