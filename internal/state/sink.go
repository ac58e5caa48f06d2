// ./internal/state/sink.go
package state

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/sharevault/svm/internal/logger"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

// PostgresSink routes audit records to the global database connection.
type PostgresSink struct{}

var _ vaultcore.EventSink = PostgresSink{}

func (PostgresSink) RecordDeposit(record types.DepositRecord) error {
	return SaveDepositEvent(record)
}

func (PostgresSink) RecordWithdraw(record types.WithdrawRecord) error {
	return SaveWithdrawEvent(record)
}

func (PostgresSink) RecordTransfer(record types.TransferRecord) error {
	return SaveTransferRecord(record)
}

// LogSink writes audit records to the structured log. Used when the audit
// database is disabled.
type LogSink struct {
	log zerolog.Logger
}

var _ vaultcore.EventSink = (*LogSink)(nil)

// NewLogSink returns a sink logging under the audit component.
func NewLogSink() *LogSink {
	return &LogSink{log: logger.GetForComponent("audit")}
}

func (s *LogSink) RecordDeposit(record types.DepositRecord) error {
	s.log.Info().
		Uint64("pool", uint64(record.Pool)).
		Str("caller", string(record.Caller)).
		Str("owner", string(record.Owner)).
		Str("assets", record.Assets.String()).
		Str("shares", record.Shares.String()).
		Msg("deposit")
	return nil
}

func (s *LogSink) RecordWithdraw(record types.WithdrawRecord) error {
	s.log.Info().
		Uint64("pool", uint64(record.Pool)).
		Str("caller", string(record.Caller)).
		Str("receiver", string(record.Receiver)).
		Str("owner", string(record.Owner)).
		Str("assets", record.Assets.String()).
		Str("shares", record.Shares.String()).
		Msg("withdraw")
	return nil
}

func (s *LogSink) RecordTransfer(record types.TransferRecord) error {
	s.log.Info().
		Uint64("pool", uint64(record.Pool)).
		Str("from", string(record.From)).
		Str("to", string(record.To)).
		Str("shares", record.Shares.String()).
		Msg("transfer")
	return nil
}

// MemorySink buffers audit records in memory. Tests assert against it and
// the web API serves events from it when no database is configured.
type MemorySink struct {
	mu        sync.RWMutex
	deposits  []types.DepositRecord
	withdraws []types.WithdrawRecord
	transfers []types.TransferRecord
}

var _ vaultcore.EventSink = (*MemorySink)(nil)

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) RecordDeposit(record types.DepositRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits = append(s.deposits, record)
	return nil
}

func (s *MemorySink) RecordWithdraw(record types.WithdrawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdraws = append(s.withdraws, record)
	return nil
}

func (s *MemorySink) RecordTransfer(record types.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = append(s.transfers, record)
	return nil
}

// Deposits returns a copy of the buffered deposit records.
func (s *MemorySink) Deposits() []types.DepositRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.DepositRecord, len(s.deposits))
	copy(out, s.deposits)
	return out
}

// Withdraws returns a copy of the buffered withdraw records.
func (s *MemorySink) Withdraws() []types.WithdrawRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.WithdrawRecord, len(s.withdraws))
	copy(out, s.withdraws)
	return out
}

// Transfers returns a copy of the buffered transfer records.
func (s *MemorySink) Transfers() []types.TransferRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.TransferRecord, len(s.transfers))
	copy(out, s.transfers)
	return out
}

// RecentDeposits serves the web API's event querier interface from the
// in-memory buffer.
func (s *MemorySink) RecentDeposits(pool types.PoolID, limit int) ([]types.DepositRecord, error) {
	return s.DepositsForPool(pool, limit), nil
}

// RecentWithdraws serves the web API's event querier interface from the
// in-memory buffer.
func (s *MemorySink) RecentWithdraws(pool types.PoolID, limit int) ([]types.WithdrawRecord, error) {
	return s.WithdrawsForPool(pool, limit), nil
}

// DepositsForPool filters the buffered deposit records by pool, newest
// first.
func (s *MemorySink) DepositsForPool(pool types.PoolID, limit int) []types.DepositRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var out []types.DepositRecord
	for i := len(s.deposits) - 1; i >= 0 && len(out) < limit; i-- {
		if s.deposits[i].Pool == pool {
			out = append(out, s.deposits[i])
		}
	}
	return out
}

// WithdrawsForPool filters the buffered withdraw records by pool, newest
// first.
func (s *MemorySink) WithdrawsForPool(pool types.PoolID, limit int) []types.WithdrawRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var out []types.WithdrawRecord
	for i := len(s.withdraws) - 1; i >= 0 && len(out) < limit; i-- {
		if s.withdraws[i].Pool == pool {
			out = append(out, s.withdraws[i])
		}
	}
	return out
}
