package vaultcore

import "errors"

// Error definitions for zero-tolerance error handling. Every entry point
// returns one of these sentinels (possibly wrapped with call context) and
// never leaves partial state behind.
var (
	ErrZeroShares            = errors.New("deposit would mint zero shares")
	ErrZeroAssets            = errors.New("redeem would release zero assets")
	ErrInsufficientAllowance = errors.New("spender allowance is insufficient")
	ErrInsufficientBalance   = errors.New("owner share balance is insufficient")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow   = errors.New("arithmetic underflow")
	ErrAssetTransferFailed   = errors.New("asset transfer failed")
	ErrInvalidAmount         = errors.New("amount is invalid")
	ErrInvalidAccount        = errors.New("account is invalid")
	ErrUnknownPool           = errors.New("pool is unknown")
	ErrHookRejected          = errors.New("pool hook rejected the operation")
)
