package vaultcore

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/sharevault/svm/internal/types"
)

// PoolHooks gives a concrete pool implementation a place to validate pool
// identifiers and to move funds to or from an external yield source. The
// base core is agnostic to where yield comes from, so the default hooks do
// nothing.
//
// AfterDeposit runs once custody of the assets is taken and shares are
// minted. BeforeWithdraw runs before shares are burned and assets are
// released, giving the pool a chance to pull funds back from a yield
// source. A non-nil error from either hook aborts the operation and
// unwinds every mutation performed so far in the call.
type PoolHooks interface {
	AfterDeposit(ctx context.Context, pool types.PoolID, assets, shares sdkmath.Int) error
	BeforeWithdraw(ctx context.Context, pool types.PoolID, assets, shares sdkmath.Int) error
}

// NoopHooks is the default PoolHooks implementation.
type NoopHooks struct{}

func (NoopHooks) AfterDeposit(context.Context, types.PoolID, sdkmath.Int, sdkmath.Int) error {
	return nil
}

func (NoopHooks) BeforeWithdraw(context.Context, types.PoolID, sdkmath.Int, sdkmath.Int) error {
	return nil
}
