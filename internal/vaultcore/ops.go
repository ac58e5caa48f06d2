/*

This file contains the four entry point operations. Each call follows the
same state machine: Validate -> Quote -> Transfer/Burn-or-Mint ->
Ledger-Mutate -> Hook -> Emit, with the external asset transfer ordered
against the ledger mutations so that a reentrant call triggered inside the
transfer cannot double-spend:

  - deposit/mint pull assets strictly before minting shares, so reentrant
    code running during the pull observes pre-mint state;
  - withdraw/redeem run the pre-withdraw hook and burn shares strictly
    before pushing assets, so reentrant code running during the push
    observes post-burn state.

Withdraw and redeem use one consistent step ordering: allowance charge ->
quote -> hook -> burn -> transfer -> emit (the quote happens first since
the allowance is charged in shares).

Every ledger mutation is recorded in an undo journal and every audit
record in a pending buffer; on failure the journal unwinds in reverse and
the buffer is discarded, so a failed call leaves no observable trace.

*/

package vaultcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/sharevault/svm/internal/types"
)

// call accumulates the undo journal and pending audit records of one entry
// point invocation.
type call struct {
	core    *Core
	undo    []func() error
	pending []types.TransferRecord
}

func (c *Core) begin() *call {
	return &call{core: c}
}

// onFailure unwinds the journal in reverse order. Undo steps themselves
// failing is a bookkeeping bug severe enough to log loudly; there is
// nothing further to fall back to.
func (cl *call) onFailure() {
	for i := len(cl.undo) - 1; i >= 0; i-- {
		if err := cl.undo[i](); err != nil {
			cl.core.log.Error().Err(err).Msg("failed to unwind ledger mutation after aborted operation")
		}
	}
	cl.undo = nil
	cl.pending = nil
}

func (cl *call) stageTransfer(record types.TransferRecord) {
	cl.pending = append(cl.pending, record)
}

// commit flushes buffered transfer records to the sink. Sink errors are
// logged only: ledger state is already final at this point.
func (cl *call) commit() {
	for _, record := range cl.pending {
		if err := cl.core.sink.RecordTransfer(record); err != nil {
			cl.core.log.Warn().Err(err).Msg("failed to record transfer audit event")
		}
	}
	cl.pending = nil
}

func validateAccount(name string, account types.AccountID) error {
	if account == types.Null {
		return errors.Join(ErrInvalidAccount, fmt.Errorf("%s cannot be the null account", name))
	}
	return nil
}

// Deposit pulls an exact asset amount from the caller and mints the
// corresponding shares to receiver. Fails with ErrZeroShares when the
// quote rounds to zero, so assets can never be donated for no claim.
func (c *Core) Deposit(ctx context.Context, pool types.PoolID, assets sdkmath.Int, caller, receiver types.AccountID) (sdkmath.Int, error) {
	if err := validateAccount("caller", caller); err != nil {
		return sdkmath.Int{}, err
	}
	if err := validateAccount("receiver", receiver); err != nil {
		return sdkmath.Int{}, err
	}

	shares, err := c.PreviewDeposit(pool, assets)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if shares.IsZero() {
		return sdkmath.Int{}, fmt.Errorf("%w: depositing %s to pool %d", ErrZeroShares, assets, pool)
	}

	if err := c.executeDeposit(ctx, pool, assets, shares, caller, receiver); err != nil {
		return sdkmath.Int{}, err
	}
	return shares, nil
}

// Mint mints an exact share count to receiver and pulls the corresponding
// assets from the caller. Minting zero shares charges zero assets and is
// accepted.
func (c *Core) Mint(ctx context.Context, pool types.PoolID, shares sdkmath.Int, caller, receiver types.AccountID) (sdkmath.Int, error) {
	if err := validateAccount("caller", caller); err != nil {
		return sdkmath.Int{}, err
	}
	if err := validateAccount("receiver", receiver); err != nil {
		return sdkmath.Int{}, err
	}

	assets, err := c.PreviewMint(pool, shares)
	if err != nil {
		return sdkmath.Int{}, err
	}

	if err := c.executeDeposit(ctx, pool, assets, shares, caller, receiver); err != nil {
		return sdkmath.Int{}, err
	}
	return assets, nil
}

// executeDeposit is the shared tail of Deposit and Mint: pull assets,
// mint shares, run the after-deposit hook, emit.
func (c *Core) executeDeposit(ctx context.Context, pool types.PoolID, assets, shares sdkmath.Int, caller, receiver types.AccountID) error {
	cl := c.begin()

	// Custody of the assets must be taken before any shares exist, so a
	// reentrant call during the pull observes pre-mint state.
	if err := c.assets.PullFrom(ctx, caller, pool, assets); err != nil {
		return errors.Join(ErrAssetTransferFailed, err)
	}
	cl.undo = append(cl.undo, func() error {
		return c.assets.PushTo(ctx, caller, pool, assets)
	})

	record, err := c.ledger.Mint(receiver, pool, shares)
	if err != nil {
		cl.onFailure()
		return err
	}
	cl.undo = append(cl.undo, func() error {
		_, err := c.ledger.Burn(receiver, pool, shares)
		return err
	})
	cl.stageTransfer(record)

	if err := c.hooks.AfterDeposit(ctx, pool, assets, shares); err != nil {
		cl.onFailure()
		return errors.Join(ErrHookRejected, err)
	}

	cl.commit()
	deposit := types.DepositRecord{
		Pool:      pool,
		Caller:    caller,
		Owner:     receiver,
		Assets:    assets,
		Shares:    shares,
		Timestamp: time.Now().UTC(),
	}
	if err := c.sink.RecordDeposit(deposit); err != nil {
		c.log.Warn().Err(err).Msg("failed to record deposit audit event")
	}
	c.log.Debug().
		Uint64("pool", uint64(pool)).
		Str("caller", string(caller)).
		Str("receiver", string(receiver)).
		Str("assets", assets.String()).
		Str("shares", shares.String()).
		Msg("deposit settled")
	return nil
}

// Withdraw burns the shares needed to release an exact asset amount to
// receiver. When caller differs from owner the burned share count is
// charged against the (owner, caller, pool) allowance.
func (c *Core) Withdraw(ctx context.Context, pool types.PoolID, assets sdkmath.Int, caller, receiver, owner types.AccountID) (sdkmath.Int, error) {
	if err := validateWithdrawAccounts(caller, receiver, owner); err != nil {
		return sdkmath.Int{}, err
	}

	shares, err := c.PreviewWithdraw(pool, assets)
	if err != nil {
		return sdkmath.Int{}, err
	}

	if err := c.executeWithdraw(ctx, pool, assets, shares, caller, receiver, owner); err != nil {
		return sdkmath.Int{}, err
	}
	return shares, nil
}

// Redeem burns an exact share count from owner and releases the
// corresponding assets to receiver. Fails with ErrZeroAssets when the
// quote rounds to zero.
func (c *Core) Redeem(ctx context.Context, pool types.PoolID, shares sdkmath.Int, caller, receiver, owner types.AccountID) (sdkmath.Int, error) {
	if err := validateWithdrawAccounts(caller, receiver, owner); err != nil {
		return sdkmath.Int{}, err
	}

	assets, err := c.PreviewRedeem(pool, shares)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if assets.IsZero() {
		return sdkmath.Int{}, fmt.Errorf("%w: redeeming %s shares from pool %d", ErrZeroAssets, shares, pool)
	}

	if err := c.executeWithdraw(ctx, pool, assets, shares, caller, receiver, owner); err != nil {
		return sdkmath.Int{}, err
	}
	return assets, nil
}

func validateWithdrawAccounts(caller, receiver, owner types.AccountID) error {
	if err := validateAccount("caller", caller); err != nil {
		return err
	}
	if err := validateAccount("receiver", receiver); err != nil {
		return err
	}
	return validateAccount("owner", owner)
}

// executeWithdraw is the shared tail of Withdraw and Redeem: charge the
// allowance, run the pre-withdraw hook, burn, push assets, emit.
func (c *Core) executeWithdraw(ctx context.Context, pool types.PoolID, assets, shares sdkmath.Int, caller, receiver, owner types.AccountID) error {
	cl := c.begin()

	if caller != owner {
		if err := c.chargeAllowance(cl, owner, caller, pool, shares); err != nil {
			return err
		}
	}

	// The pool gets a chance to pull funds back from its yield source
	// before any shares are burned or assets released.
	if err := c.hooks.BeforeWithdraw(ctx, pool, assets, shares); err != nil {
		cl.onFailure()
		return errors.Join(ErrHookRejected, err)
	}

	record, err := c.ledger.Burn(owner, pool, shares)
	if err != nil {
		cl.onFailure()
		return err
	}
	cl.undo = append(cl.undo, func() error {
		_, err := c.ledger.Mint(owner, pool, shares)
		return err
	})
	cl.stageTransfer(record)

	// The burn above must be visible before external code runs inside the
	// push, so a reentrant call cannot withdraw the same shares twice.
	if err := c.assets.PushTo(ctx, receiver, pool, assets); err != nil {
		cl.onFailure()
		return errors.Join(ErrAssetTransferFailed, err)
	}

	cl.commit()
	withdraw := types.WithdrawRecord{
		Pool:      pool,
		Caller:    caller,
		Receiver:  receiver,
		Owner:     owner,
		Assets:    assets,
		Shares:    shares,
		Timestamp: time.Now().UTC(),
	}
	if err := c.sink.RecordWithdraw(withdraw); err != nil {
		c.log.Warn().Err(err).Msg("failed to record withdraw audit event")
	}
	c.log.Debug().
		Uint64("pool", uint64(pool)).
		Str("caller", string(caller)).
		Str("receiver", string(receiver)).
		Str("owner", string(owner)).
		Str("assets", assets.String()).
		Str("shares", shares.String()).
		Msg("withdraw settled")
	return nil
}

// chargeAllowance consumes shares from the (owner, spender, pool)
// allowance. The unlimited sentinel is never decremented.
func (c *Core) chargeAllowance(cl *call, owner, spender types.AccountID, pool types.PoolID, shares sdkmath.Int) error {
	current := c.ledger.Allowance(owner, spender, pool)
	if current.Equal(types.UnlimitedAllowance) {
		return nil
	}
	if current.LT(shares) {
		return fmt.Errorf("%w: spender %s has %s of owner %s on pool %d, needs %s",
			ErrInsufficientAllowance, spender, current, owner, pool, shares)
	}
	if err := c.ledger.SetAllowance(owner, spender, pool, current.Sub(shares)); err != nil {
		return err
	}
	cl.undo = append(cl.undo, func() error {
		return c.ledger.SetAllowance(owner, spender, pool, current)
	})
	return nil
}
