// ./internal/state/event_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/sharevault/svm/internal/types"
)

// SaveDepositEvent persists a deposit record.
func SaveDepositEvent(record types.DepositRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	query := `
		INSERT INTO deposit_events (pool_id, caller, owner_account, assets, shares, event_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := DB.Exec(query,
		int64(record.Pool), string(record.Caller), string(record.Owner),
		record.Assets.String(), record.Shares.String(), record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert deposit event: %w", err)
	}
	return nil
}

// SaveWithdrawEvent persists a withdraw record.
func SaveWithdrawEvent(record types.WithdrawRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	query := `
		INSERT INTO withdraw_events (pool_id, caller, receiver, owner_account, assets, shares, event_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := DB.Exec(query,
		int64(record.Pool), string(record.Caller), string(record.Receiver), string(record.Owner),
		record.Assets.String(), record.Shares.String(), record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert withdraw event: %w", err)
	}
	return nil
}

// SaveTransferRecord persists a ledger-level transfer record.
func SaveTransferRecord(record types.TransferRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	query := `
		INSERT INTO transfer_records (pool_id, from_account, to_account, shares, event_timestamp)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := DB.Exec(query,
		int64(record.Pool), string(record.From), string(record.To),
		record.Shares.String(), record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert transfer record: %w", err)
	}
	return nil
}

// RecentDepositEvents returns the latest deposit records for a pool,
// newest first.
func RecentDepositEvents(pool types.PoolID, limit int) ([]types.DepositRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT pool_id, caller, owner_account, assets, shares, event_timestamp
		FROM deposit_events
		WHERE pool_id = $1
		ORDER BY event_timestamp DESC
		LIMIT $2;
	`
	rows, err := DB.Query(query, int64(pool), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposit events: %w", err)
	}
	defer rows.Close()

	var records []types.DepositRecord
	for rows.Next() {
		var (
			poolID         int64
			caller, owner  string
			assets, shares string
			record         types.DepositRecord
		)
		if err := rows.Scan(&poolID, &caller, &owner, &assets, &shares, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan deposit event: %w", err)
		}
		record.Pool = types.PoolID(poolID)
		record.Caller = types.AccountID(caller)
		record.Owner = types.AccountID(owner)
		if record.Assets, err = parseAmount(assets); err != nil {
			return nil, err
		}
		if record.Shares, err = parseAmount(shares); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// RecentWithdrawEvents returns the latest withdraw records for a pool,
// newest first.
func RecentWithdrawEvents(pool types.PoolID, limit int) ([]types.WithdrawRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT pool_id, caller, receiver, owner_account, assets, shares, event_timestamp
		FROM withdraw_events
		WHERE pool_id = $1
		ORDER BY event_timestamp DESC
		LIMIT $2;
	`
	rows, err := DB.Query(query, int64(pool), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdraw events: %w", err)
	}
	defer rows.Close()

	var records []types.WithdrawRecord
	for rows.Next() {
		var (
			poolID                  int64
			caller, receiver, owner string
			assets, shares          string
			record                  types.WithdrawRecord
		)
		if err := rows.Scan(&poolID, &caller, &receiver, &owner, &assets, &shares, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan withdraw event: %w", err)
		}
		record.Pool = types.PoolID(poolID)
		record.Caller = types.AccountID(caller)
		record.Receiver = types.AccountID(receiver)
		record.Owner = types.AccountID(owner)
		if record.Assets, err = parseAmount(assets); err != nil {
			return nil, err
		}
		if record.Shares, err = parseAmount(shares); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// PostgresEvents adapts the package-level query helpers to the web API's
// event querier interface.
type PostgresEvents struct{}

func (PostgresEvents) RecentDeposits(pool types.PoolID, limit int) ([]types.DepositRecord, error) {
	return RecentDepositEvents(pool, limit)
}

func (PostgresEvents) RecentWithdraws(pool types.PoolID, limit int) ([]types.WithdrawRecord, error) {
	return RecentWithdrawEvents(pool, limit)
}

func parseAmount(s string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("stored amount %q is not a valid integer", s)
	}
	return amount, nil
}
