package vaultcore

import (
	sdkmath "cosmossdk.io/math"

	"github.com/sharevault/svm/internal/types"
)

// MaxDeposit returns the largest asset amount owner may deposit into pool.
// The base core imposes no cap; concrete pools may.
func (c *Core) MaxDeposit(types.PoolID, types.AccountID) sdkmath.Int {
	return types.MaxAmount
}

// MaxMint returns the largest share amount that may be minted to owner.
// Unbounded by base core policy.
func (c *Core) MaxMint(types.PoolID, types.AccountID) sdkmath.Int {
	return types.MaxAmount
}

// MaxWithdraw returns the asset value of owner's current share balance,
// rounded down.
func (c *Core) MaxWithdraw(pool types.PoolID, owner types.AccountID) (sdkmath.Int, error) {
	return c.ConvertToAssets(pool, c.ledger.BalanceOf(owner, pool))
}

// MaxRedeem returns owner's current share balance for pool.
func (c *Core) MaxRedeem(pool types.PoolID, owner types.AccountID) sdkmath.Int {
	return c.ledger.BalanceOf(owner, pool)
}
