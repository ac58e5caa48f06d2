/*

This file contains the core identifier and amount types shared across the
vault accounting system. Every pool is an independently accounted vault
keyed by an opaque PoolID; amounts are arbitrary-precision sdkmath.Int.

*/

package types

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// PoolID identifies one independently accounted vault. IDs are opaque keys:
// the core never enumerates them and never validates them itself; concrete
// pool hooks decide which IDs are legal.
type PoolID uint64

// AccountID identifies an owner, spender, caller, or receiver. The core
// treats it as opaque; the empty string is reserved for the null origin /
// destination in mint and burn transfer records.
type AccountID string

// Null is the reserved empty account used as the origin of mint records and
// the destination of burn records.
const Null AccountID = ""

// MaxAmount is the largest value sdkmath.Int can represent (2^256 - 1).
var MaxAmount = sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

// UnlimitedAllowance is the sentinel allowance meaning perpetual approval.
// An allowance set to this exact value is never decremented by withdraw or
// redeem, no matter how many shares are consumed on the owner's behalf.
var UnlimitedAllowance = MaxAmount

// PoolAsset describes the external asset backing a pool: its denom and the
// asset's native precision (decimal count).
type PoolAsset struct {
	Denom    string `json:"denom"`
	Decimals uint8  `json:"decimals"`
}
