/*

This file contains the pure conversion math between asset amounts and share
amounts. All arithmetic runs on arbitrary-precision big integers and is
clamped to the 256-bit range of sdkmath.Int; a result that would not fit is
rejected, never wrapped. Rounding direction is fixed policy: whichever
quantity the caller fixes, the solved quantity rounds against the caller so
rounding error always accrues to the pool.

*/

package vaultcore

import (
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// mulDivFloor computes floor(a * b / den) with a wide intermediate.
func mulDivFloor(a, b, den sdkmath.Int) (sdkmath.Int, error) {
	if den.IsZero() {
		return sdkmath.Int{}, errors.Join(ErrArithmeticOverflow, errors.New("division by zero total"))
	}
	num := new(big.Int).Mul(a.BigInt(), b.BigInt())
	out := num.Quo(num, den.BigInt())
	if out.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, fmt.Errorf("%w: quotient exceeds %d bits", ErrArithmeticOverflow, sdkmath.MaxBitLen)
	}
	return sdkmath.NewIntFromBigInt(out), nil
}

// mulDivCeil computes ceil(a * b / den) with a wide intermediate.
func mulDivCeil(a, b, den sdkmath.Int) (sdkmath.Int, error) {
	if den.IsZero() {
		return sdkmath.Int{}, errors.Join(ErrArithmeticOverflow, errors.New("division by zero total"))
	}
	d := den.BigInt()
	num := new(big.Int).Mul(a.BigInt(), b.BigInt())
	num.Add(num, new(big.Int).Sub(d, big.NewInt(1)))
	out := num.Quo(num, d)
	if out.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, fmt.Errorf("%w: quotient exceeds %d bits", ErrArithmeticOverflow, sdkmath.MaxBitLen)
	}
	return sdkmath.NewIntFromBigInt(out), nil
}

func validateAmount(amount sdkmath.Int) error {
	if amount.IsNil() {
		return errors.Join(ErrInvalidAmount, errors.New("amount is nil"))
	}
	if amount.IsNegative() {
		return errors.Join(ErrInvalidAmount, errors.New("amount is negative"))
	}
	return nil
}

// ConvertToShares maps an asset amount to shares at the pool's current
// exchange rate, rounded down. An empty pool (zero total shares) converts
// 1:1 to bootstrap the exchange rate.
func ConvertToShares(assets, totalShares, totalAssets sdkmath.Int) (sdkmath.Int, error) {
	if err := validateAmount(assets); err != nil {
		return sdkmath.Int{}, err
	}
	if totalShares.IsZero() {
		return assets, nil
	}
	return mulDivFloor(assets, totalShares, totalAssets)
}

// ConvertToAssets maps a share amount to assets at the pool's current
// exchange rate, rounded down. An empty pool converts 1:1.
func ConvertToAssets(shares, totalShares, totalAssets sdkmath.Int) (sdkmath.Int, error) {
	if err := validateAmount(shares); err != nil {
		return sdkmath.Int{}, err
	}
	if totalShares.IsZero() {
		return shares, nil
	}
	return mulDivFloor(shares, totalAssets, totalShares)
}

// PreviewDeposit quotes the shares minted for depositing assets: round
// down, so the depositor receives fewer shares and the pool keeps the dust.
func PreviewDeposit(assets, totalShares, totalAssets sdkmath.Int) (sdkmath.Int, error) {
	return ConvertToShares(assets, totalShares, totalAssets)
}

// PreviewMint quotes the assets charged for minting an exact share count:
// round up, so the minter pays more assets and the pool keeps the dust.
func PreviewMint(shares, totalShares, totalAssets sdkmath.Int) (sdkmath.Int, error) {
	if err := validateAmount(shares); err != nil {
		return sdkmath.Int{}, err
	}
	if totalShares.IsZero() {
		return shares, nil
	}
	return mulDivCeil(shares, totalAssets, totalShares)
}

// PreviewWithdraw quotes the shares burned for withdrawing an exact asset
// amount: round up, so the withdrawer burns more shares.
func PreviewWithdraw(assets, totalShares, totalAssets sdkmath.Int) (sdkmath.Int, error) {
	if err := validateAmount(assets); err != nil {
		return sdkmath.Int{}, err
	}
	if totalShares.IsZero() {
		return assets, nil
	}
	return mulDivCeil(assets, totalShares, totalAssets)
}

// PreviewRedeem quotes the assets released for redeeming shares: round
// down, so the redeemer receives fewer assets.
func PreviewRedeem(shares, totalShares, totalAssets sdkmath.Int) (sdkmath.Int, error) {
	return ConvertToAssets(shares, totalShares, totalAssets)
}
