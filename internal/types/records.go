/*

Audit record types emitted by the accounting core. Every successful entry
point operation emits exactly one deposit or withdraw record, and every
ledger mint/burn emits a transfer record with the null account as its
origin (mint) or destination (burn).

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// DepositRecord is emitted after a successful deposit or mint.
type DepositRecord struct {
	Pool      PoolID      `json:"pool"`
	Caller    AccountID   `json:"caller"`
	Owner     AccountID   `json:"owner"`
	Assets    sdkmath.Int `json:"assets"`
	Shares    sdkmath.Int `json:"shares"`
	Timestamp time.Time   `json:"timestamp"`
}

// WithdrawRecord is emitted after a successful withdraw or redeem.
type WithdrawRecord struct {
	Pool      PoolID      `json:"pool"`
	Caller    AccountID   `json:"caller"`
	Receiver  AccountID   `json:"receiver"`
	Owner     AccountID   `json:"owner"`
	Assets    sdkmath.Int `json:"assets"`
	Shares    sdkmath.Int `json:"shares"`
	Timestamp time.Time   `json:"timestamp"`
}

// TransferRecord is the ledger-level audit record for share movement.
// Mints carry From == Null, burns carry To == Null.
type TransferRecord struct {
	Pool      PoolID      `json:"pool"`
	From      AccountID   `json:"from"`
	To        AccountID   `json:"to"`
	Shares    sdkmath.Int `json:"shares"`
	Timestamp time.Time   `json:"timestamp"`
}

// IsMint reports whether the record describes shares created from the null
// origin.
func (r TransferRecord) IsMint() bool {
	return r.From == Null && r.To != Null
}

// IsBurn reports whether the record describes shares destroyed to the null
// destination.
func (r TransferRecord) IsBurn() bool {
	return r.To == Null && r.From != Null
}
