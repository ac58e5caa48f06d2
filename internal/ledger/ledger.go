/*

This file contains the in-memory share ledger: per-(owner, pool) balances,
per-(owner, spender, pool) allowances, and per-pool total supply. It is the
reference ShareLedger used by the binary and the tests; a deployment that
needs durable share state swaps in another implementation of the same
interface.

The conservation invariant is structural: total supply for a pool only
moves inside Mint and Burn, by exactly the amount applied to a single
owner's balance, so supply always equals the sum of balances between calls.

*/

package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/sharevault/svm/internal/logger"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

// MemoryLedger is a process-local ShareLedger backed by maps. Reads and
// writes are guarded by an RWMutex so view endpoints can read while an
// operation is in flight.
type MemoryLedger struct {
	mu         sync.RWMutex
	balances   map[types.PoolID]map[types.AccountID]sdkmath.Int
	allowances map[types.PoolID]map[types.AccountID]map[types.AccountID]sdkmath.Int
	supply     map[types.PoolID]sdkmath.Int
	log        zerolog.Logger
}

var _ vaultcore.ShareLedger = (*MemoryLedger)(nil)

// New returns an empty ledger. Pools and accounts spring into existence at
// zero the first time they are touched.
func New() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[types.PoolID]map[types.AccountID]sdkmath.Int),
		allowances: make(map[types.PoolID]map[types.AccountID]map[types.AccountID]sdkmath.Int),
		supply:     make(map[types.PoolID]sdkmath.Int),
		log:        logger.GetForComponent("share_ledger"),
	}
}

// BalanceOf returns owner's share balance for pool, zero if never touched.
func (l *MemoryLedger) BalanceOf(owner types.AccountID, pool types.PoolID) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[pool][owner]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}

// TotalSupply returns the pool's outstanding share count, zero if the pool
// has never minted.
func (l *MemoryLedger) TotalSupply(pool types.PoolID) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.supply[pool]; ok {
		return s
	}
	return sdkmath.ZeroInt()
}

// Allowance returns the (owner, spender, pool) delegated spending cap,
// zero if never approved.
func (l *MemoryLedger) Allowance(owner, spender types.AccountID, pool types.PoolID) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.allowances[pool][owner][spender]; ok {
		return a
	}
	return sdkmath.ZeroInt()
}

// SetAllowance records the (owner, spender, pool) cap. Setting
// types.UnlimitedAllowance grants perpetual approval that withdraw and
// redeem never decrement.
func (l *MemoryLedger) SetAllowance(owner, spender types.AccountID, pool types.PoolID, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return errors.Join(vaultcore.ErrInvalidAmount, errors.New("allowance must be non-negative"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[pool] == nil {
		l.allowances[pool] = make(map[types.AccountID]map[types.AccountID]sdkmath.Int)
	}
	if l.allowances[pool][owner] == nil {
		l.allowances[pool][owner] = make(map[types.AccountID]sdkmath.Int)
	}
	l.allowances[pool][owner][spender] = amount
	return nil
}

// Mint increments pool supply and owner's balance by shares and returns
// the transfer record (from the null origin). Fails closed if either
// increment would leave the representable range.
func (l *MemoryLedger) Mint(owner types.AccountID, pool types.PoolID, shares sdkmath.Int) (types.TransferRecord, error) {
	if shares.IsNil() || shares.IsNegative() {
		return types.TransferRecord{}, errors.Join(vaultcore.ErrInvalidAmount, errors.New("mint amount must be non-negative"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	supply := l.supplyLocked(pool)
	balance := l.balanceLocked(owner, pool)
	newSupply, err := checkedAdd(supply, shares)
	if err != nil {
		return types.TransferRecord{}, fmt.Errorf("minting %s to pool %d supply %s: %w", shares, pool, supply, err)
	}
	newBalance, err := checkedAdd(balance, shares)
	if err != nil {
		return types.TransferRecord{}, fmt.Errorf("minting %s to account %s on pool %d: %w", shares, owner, pool, err)
	}

	l.supply[pool] = newSupply
	if l.balances[pool] == nil {
		l.balances[pool] = make(map[types.AccountID]sdkmath.Int)
	}
	l.balances[pool][owner] = newBalance

	l.log.Debug().
		Uint64("pool", uint64(pool)).
		Str("owner", string(owner)).
		Str("shares", shares.String()).
		Str("supply", newSupply.String()).
		Msg("shares minted")
	return types.TransferRecord{
		Pool:      pool,
		From:      types.Null,
		To:        owner,
		Shares:    shares,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Burn decrements owner's balance and pool supply by shares and returns
// the transfer record (to the null destination). Fails if owner's balance
// or the pool supply would go negative.
func (l *MemoryLedger) Burn(owner types.AccountID, pool types.PoolID, shares sdkmath.Int) (types.TransferRecord, error) {
	if shares.IsNil() || shares.IsNegative() {
		return types.TransferRecord{}, errors.Join(vaultcore.ErrInvalidAmount, errors.New("burn amount must be non-negative"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balanceLocked(owner, pool)
	if balance.LT(shares) {
		return types.TransferRecord{}, fmt.Errorf("%w: account %s holds %s of pool %d, burning %s",
			vaultcore.ErrInsufficientBalance, owner, balance, pool, shares)
	}
	supply := l.supplyLocked(pool)
	if supply.LT(shares) {
		return types.TransferRecord{}, fmt.Errorf("%w: pool %d supply %s below burn of %s",
			vaultcore.ErrArithmeticUnderflow, pool, supply, shares)
	}

	l.supply[pool] = supply.Sub(shares)
	l.balances[pool][owner] = balance.Sub(shares)

	l.log.Debug().
		Uint64("pool", uint64(pool)).
		Str("owner", string(owner)).
		Str("shares", shares.String()).
		Str("supply", l.supply[pool].String()).
		Msg("shares burned")
	return types.TransferRecord{
		Pool:      pool,
		From:      owner,
		To:        types.Null,
		Shares:    shares,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (l *MemoryLedger) supplyLocked(pool types.PoolID) sdkmath.Int {
	if s, ok := l.supply[pool]; ok {
		return s
	}
	return sdkmath.ZeroInt()
}

func (l *MemoryLedger) balanceLocked(owner types.AccountID, pool types.PoolID) sdkmath.Int {
	if b, ok := l.balances[pool][owner]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

// checkedAdd adds two non-negative Ints, rejecting results that exceed the
// representable range instead of panicking.
func checkedAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	sum := a.BigInt()
	sum.Add(sum, b.BigInt())
	if sum.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, fmt.Errorf("%w: sum exceeds %d bits", vaultcore.ErrArithmeticOverflow, sdkmath.MaxBitLen)
	}
	return sdkmath.NewIntFromBigInt(sum), nil
}
