/*

This file contains the in-memory external asset bank. It plays the
AssetTransferAgent role for the binary and the tests: it tracks each
account's holdings of the registered backing assets as sdk.Coins, pulls
value from callers into per-pool custody, and pushes value back out to
receivers. It also serves as the default AssetSource: a pool's total
assets equal its custody balance plus any yield credited to it, which is
how the demo pools accrue value without a real yield source.

*/

package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"

	"github.com/sharevault/svm/internal/logger"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

// Error definitions for zero-tolerance error handling
var (
	ErrPoolNotRegistered    = errors.New("pool is not registered with the bank")
	ErrPoolAlreadyExists    = errors.New("pool is already registered")
	ErrInsufficientFunds    = errors.New("account balance is insufficient")
	ErrInsufficientCustody  = errors.New("pool custody balance is insufficient")
	ErrInvalidAsset         = errors.New("asset definition is invalid")
	ErrInvalidTransferValue = errors.New("transfer value is invalid")
)

// MemoryBank holds external asset balances and per-pool custody.
type MemoryBank struct {
	mu       sync.RWMutex
	pools    map[types.PoolID]types.PoolAsset
	holdings map[types.AccountID]sdk.Coins
	custody  map[types.PoolID]sdkmath.Int
	log      zerolog.Logger
}

var (
	_ vaultcore.AssetTransferAgent = (*MemoryBank)(nil)
	_ vaultcore.AssetSource        = (*MemoryBank)(nil)
)

// NewMemoryBank returns an empty bank with no registered pools.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{
		pools:    make(map[types.PoolID]types.PoolAsset),
		holdings: make(map[types.AccountID]sdk.Coins),
		custody:  make(map[types.PoolID]sdkmath.Int),
		log:      logger.GetForComponent("asset_bank"),
	}
}

// RegisterPool binds a pool identifier to its backing asset. Registering
// an already bound pool fails rather than silently rebinding it.
func (b *MemoryBank) RegisterPool(pool types.PoolID, asset types.PoolAsset) error {
	if err := sdk.ValidateDenom(asset.Denom); err != nil {
		return errors.Join(ErrInvalidAsset, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pools[pool]; ok {
		return fmt.Errorf("%w: pool %d", ErrPoolAlreadyExists, pool)
	}
	b.pools[pool] = asset
	b.custody[pool] = sdkmath.ZeroInt()
	b.log.Info().
		Uint64("pool", uint64(pool)).
		Str("denom", asset.Denom).
		Uint8("decimals", asset.Decimals).
		Msg("pool asset registered")
	return nil
}

// Asset returns the backing asset bound to a pool.
func (b *MemoryBank) Asset(pool types.PoolID) (types.PoolAsset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	asset, ok := b.pools[pool]
	if !ok {
		return types.PoolAsset{}, fmt.Errorf("%w: pool %d", ErrPoolNotRegistered, pool)
	}
	return asset, nil
}

// TotalAssets reports the pool's assets under management: its custody
// balance including credited yield.
func (b *MemoryBank) TotalAssets(pool types.PoolID) sdkmath.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if c, ok := b.custody[pool]; ok {
		return c
	}
	return sdkmath.ZeroInt()
}

// Fund credits an account with external asset value. Test and demo setup
// only; a production transfer agent fronts a real settlement system.
func (b *MemoryBank) Fund(account types.AccountID, value sdk.Coin) error {
	if err := value.Validate(); err != nil {
		return errors.Join(ErrInvalidTransferValue, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holdings[account] = b.holdings[account].Add(value)
	return nil
}

// Balance returns the account's holding of denom.
func (b *MemoryBank) Balance(account types.AccountID, denom string) sdk.Coin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sdk.NewCoin(denom, b.holdings[account].AmountOf(denom))
}

// CreditYield grows a pool's custody balance without minting shares,
// simulating value accrued by a yield source.
func (b *MemoryBank) CreditYield(pool types.PoolID, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errors.Join(ErrInvalidTransferValue, errors.New("yield must be non-negative"))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	custody, ok := b.custody[pool]
	if !ok {
		return fmt.Errorf("%w: pool %d", ErrPoolNotRegistered, pool)
	}
	b.custody[pool] = custody.Add(amount)
	return nil
}

// coinFor builds the sdk.Coin a transfer of amount against pool moves.
func (b *MemoryBank) coinFor(pool types.PoolID, amount sdkmath.Int) (sdk.Coin, error) {
	asset, ok := b.pools[pool]
	if !ok {
		return sdk.Coin{}, fmt.Errorf("%w: pool %d", ErrPoolNotRegistered, pool)
	}
	if amount.IsNil() || amount.IsNegative() {
		return sdk.Coin{}, errors.Join(ErrInvalidTransferValue, errors.New("amount must be non-negative"))
	}
	return sdk.NewCoin(asset.Denom, amount), nil
}

// PullFrom moves amount of the pool's backing asset from caller into the
// pool's custody.
func (b *MemoryBank) PullFrom(_ context.Context, caller types.AccountID, pool types.PoolID, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := b.coinFor(pool, amount)
	if err != nil {
		return err
	}
	held := b.holdings[caller].AmountOf(value.Denom)
	if held.LT(amount) {
		return fmt.Errorf("%w: account %s holds %s%s, pulling %s",
			ErrInsufficientFunds, caller, held, value.Denom, amount)
	}
	b.holdings[caller] = b.holdings[caller].Sub(value)
	b.custody[pool] = b.custody[pool].Add(amount)
	b.log.Debug().
		Uint64("pool", uint64(pool)).
		Str("caller", string(caller)).
		Str("value", value.String()).
		Msg("assets pulled into custody")
	return nil
}

// PushTo moves amount of the pool's backing asset out of custody to
// receiver.
func (b *MemoryBank) PushTo(_ context.Context, receiver types.AccountID, pool types.PoolID, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := b.coinFor(pool, amount)
	if err != nil {
		return err
	}
	custody := b.custody[pool]
	if custody.LT(amount) {
		return fmt.Errorf("%w: pool %d custody %s, pushing %s",
			ErrInsufficientCustody, pool, custody, amount)
	}
	b.custody[pool] = custody.Sub(amount)
	b.holdings[receiver] = b.holdings[receiver].Add(value)
	b.log.Debug().
		Uint64("pool", uint64(pool)).
		Str("receiver", string(receiver)).
		Str("value", value.String()).
		Msg("assets pushed from custody")
	return nil
}
