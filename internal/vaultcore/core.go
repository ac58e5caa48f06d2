/*

This file defines the accounting core and the collaborator interfaces it
depends on. The core owns no pool state of its own: share balances,
allowances, and supply live in the ShareLedger, the external asset moves
through the AssetTransferAgent, and each pool's total assets figure comes
from the AssetSource the concrete pool supplies.

*/

package vaultcore

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/sharevault/svm/internal/logger"
	"github.com/sharevault/svm/internal/types"
)

// ShareLedger is the per-pool, per-owner share bookkeeping collaborator.
// Mint and Burn return the transfer record describing the mutation; the
// core buffers those records and only hands them to the event sink once
// the whole operation has succeeded.
type ShareLedger interface {
	BalanceOf(owner types.AccountID, pool types.PoolID) sdkmath.Int
	TotalSupply(pool types.PoolID) sdkmath.Int

	// Allowance returns the (owner, spender, pool) delegated spending cap.
	// types.UnlimitedAllowance means perpetual approval.
	Allowance(owner, spender types.AccountID, pool types.PoolID) sdkmath.Int
	SetAllowance(owner, spender types.AccountID, pool types.PoolID, amount sdkmath.Int) error

	Mint(owner types.AccountID, pool types.PoolID, shares sdkmath.Int) (types.TransferRecord, error)
	Burn(owner types.AccountID, pool types.PoolID, shares sdkmath.Int) (types.TransferRecord, error)
}

// AssetTransferAgent moves external asset value in and out of the system's
// custody on behalf of a principal. PullFrom and PushTo may invoke
// caller-controlled code as part of moving value; the core orders its
// ledger mutations around them so a reentrant call cannot observe
// exploitable intermediate state.
type AssetTransferAgent interface {
	// Asset returns the denom and precision of the asset backing a pool.
	Asset(pool types.PoolID) (types.PoolAsset, error)

	PullFrom(ctx context.Context, caller types.AccountID, pool types.PoolID, amount sdkmath.Int) error
	PushTo(ctx context.Context, receiver types.AccountID, pool types.PoolID, amount sdkmath.Int) error
}

// AssetSource supplies the total assets under management for a pool. How
// the figure is computed (static custody balance, external yield-bearing
// position, ...) is the concrete pool's business; callers may only rely on
// it being a non-negative integer in the backing asset's base units.
type AssetSource interface {
	TotalAssets(pool types.PoolID) sdkmath.Int
}

// EventSink receives the audit records of successful operations. Sink
// failures are logged, not propagated: once the ledger state is committed
// the operation has succeeded.
type EventSink interface {
	RecordDeposit(record types.DepositRecord) error
	RecordWithdraw(record types.WithdrawRecord) error
	RecordTransfer(record types.TransferRecord) error
}

// Config carries the collaborators a Core is built from.
type Config struct {
	Ledger ShareLedger
	Assets AssetTransferAgent
	Source AssetSource
	Hooks  PoolHooks // optional, defaults to NoopHooks
	Sink   EventSink // optional, defaults to discarding
}

// Core is the multi-pool share accounting engine. It is stateless between
// calls except through the shared pool state held by its collaborators.
type Core struct {
	ledger ShareLedger
	assets AssetTransferAgent
	source AssetSource
	hooks  PoolHooks
	sink   EventSink
	log    zerolog.Logger
}

// New validates the configuration and returns a ready Core.
func New(cfg Config) (*Core, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("share ledger cannot be nil")
	}
	if cfg.Assets == nil {
		return nil, errors.New("asset transfer agent cannot be nil")
	}
	if cfg.Source == nil {
		return nil, errors.New("asset source cannot be nil")
	}
	if cfg.Hooks == nil {
		cfg.Hooks = NoopHooks{}
	}
	if cfg.Sink == nil {
		cfg.Sink = discardSink{}
	}
	return &Core{
		ledger: cfg.Ledger,
		assets: cfg.Assets,
		source: cfg.Source,
		hooks:  cfg.Hooks,
		sink:   cfg.Sink,
		log:    logger.GetForComponent("vault_core"),
	}, nil
}

type discardSink struct{}

func (discardSink) RecordDeposit(types.DepositRecord) error   { return nil }
func (discardSink) RecordWithdraw(types.WithdrawRecord) error { return nil }
func (discardSink) RecordTransfer(types.TransferRecord) error { return nil }

// TotalAssets returns the pool's total assets under management as reported
// by the configured asset source.
func (c *Core) TotalAssets(pool types.PoolID) sdkmath.Int {
	return c.source.TotalAssets(pool)
}

// TotalSupply returns the pool's outstanding share count.
func (c *Core) TotalSupply(pool types.PoolID) sdkmath.Int {
	return c.ledger.TotalSupply(pool)
}

// Asset returns the denom and precision of the asset backing a pool.
// Pools the transfer agent has no asset for fail with ErrUnknownPool.
func (c *Core) Asset(pool types.PoolID) (types.PoolAsset, error) {
	asset, err := c.assets.Asset(pool)
	if err != nil {
		return types.PoolAsset{}, errors.Join(ErrUnknownPool, err)
	}
	return asset, nil
}

// Decimals returns the native precision of the asset backing a pool.
func (c *Core) Decimals(pool types.PoolID) (uint8, error) {
	asset, err := c.Asset(pool)
	if err != nil {
		return 0, err
	}
	return asset.Decimals, nil
}

// ConvertToShares maps assets to shares at the pool's current rate,
// rounded down.
func (c *Core) ConvertToShares(pool types.PoolID, assets sdkmath.Int) (sdkmath.Int, error) {
	return ConvertToShares(assets, c.ledger.TotalSupply(pool), c.source.TotalAssets(pool))
}

// ConvertToAssets maps shares to assets at the pool's current rate,
// rounded down.
func (c *Core) ConvertToAssets(pool types.PoolID, shares sdkmath.Int) (sdkmath.Int, error) {
	return ConvertToAssets(shares, c.ledger.TotalSupply(pool), c.source.TotalAssets(pool))
}

// PreviewDeposit quotes the shares a deposit of assets would mint.
func (c *Core) PreviewDeposit(pool types.PoolID, assets sdkmath.Int) (sdkmath.Int, error) {
	return PreviewDeposit(assets, c.ledger.TotalSupply(pool), c.source.TotalAssets(pool))
}

// PreviewMint quotes the assets a mint of shares would charge.
func (c *Core) PreviewMint(pool types.PoolID, shares sdkmath.Int) (sdkmath.Int, error) {
	return PreviewMint(shares, c.ledger.TotalSupply(pool), c.source.TotalAssets(pool))
}

// PreviewWithdraw quotes the shares a withdrawal of assets would burn.
func (c *Core) PreviewWithdraw(pool types.PoolID, assets sdkmath.Int) (sdkmath.Int, error) {
	return PreviewWithdraw(assets, c.ledger.TotalSupply(pool), c.source.TotalAssets(pool))
}

// PreviewRedeem quotes the assets a redemption of shares would release.
func (c *Core) PreviewRedeem(pool types.PoolID, shares sdkmath.Int) (sdkmath.Int, error) {
	return PreviewRedeem(shares, c.ledger.TotalSupply(pool), c.source.TotalAssets(pool))
}

// ExchangeRate returns the asset value of one whole share (10^decimals
// share base units), rounded down. Convenience view for dashboards.
func (c *Core) ExchangeRate(pool types.PoolID) (sdkmath.Int, error) {
	asset, err := c.Asset(pool)
	if err != nil {
		return sdkmath.Int{}, err
	}
	one := sdkmath.OneInt()
	for i := uint8(0); i < asset.Decimals; i++ {
		one = one.MulRaw(10)
	}
	return c.ConvertToAssets(pool, one)
}

// PoolSummary aggregates a pool's externally observable accounting state.
type PoolSummary struct {
	Pool        types.PoolID    `json:"pool"`
	Asset       types.PoolAsset `json:"asset"`
	TotalShares sdkmath.Int     `json:"total_shares"`
	TotalAssets sdkmath.Int     `json:"total_assets"`
}

// Summary returns the pool's accounting summary.
func (c *Core) Summary(pool types.PoolID) (PoolSummary, error) {
	asset, err := c.Asset(pool)
	if err != nil {
		return PoolSummary{}, err
	}
	return PoolSummary{
		Pool:        pool,
		Asset:       asset,
		TotalShares: c.ledger.TotalSupply(pool),
		TotalAssets: c.source.TotalAssets(pool),
	}, nil
}
