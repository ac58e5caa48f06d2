package state_test

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/svm/internal/state"
	"github.com/sharevault/svm/internal/types"
)

func depositRecord(pool types.PoolID, assets int64) types.DepositRecord {
	return types.DepositRecord{
		Pool:      pool,
		Caller:    "alice",
		Owner:     "alice",
		Assets:    sdkmath.NewInt(assets),
		Shares:    sdkmath.NewInt(assets),
		Timestamp: time.Now().UTC(),
	}
}

func TestMemorySinkBuffersRecords(t *testing.T) {
	sink := state.NewMemorySink()

	require.NoError(t, sink.RecordDeposit(depositRecord(1, 100)))
	require.NoError(t, sink.RecordDeposit(depositRecord(2, 200)))
	require.NoError(t, sink.RecordWithdraw(types.WithdrawRecord{
		Pool: 1, Caller: "bob", Receiver: "bob", Owner: "alice",
		Assets: sdkmath.NewInt(50), Shares: sdkmath.NewInt(50), Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, sink.RecordTransfer(types.TransferRecord{
		Pool: 1, From: types.Null, To: "alice", Shares: sdkmath.NewInt(100), Timestamp: time.Now().UTC(),
	}))

	require.Len(t, sink.Deposits(), 2)
	require.Len(t, sink.Withdraws(), 1)
	require.Len(t, sink.Transfers(), 1)
}

func TestMemorySinkFiltersByPool(t *testing.T) {
	sink := state.NewMemorySink()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, sink.RecordDeposit(depositRecord(1, i)))
	}
	require.NoError(t, sink.RecordDeposit(depositRecord(2, 999)))

	records, err := sink.RecentDeposits(1, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Newest first.
	require.True(t, records[0].Assets.Equal(sdkmath.NewInt(5)))
	require.True(t, records[2].Assets.Equal(sdkmath.NewInt(3)))

	other, err := sink.RecentDeposits(2, 10)
	require.NoError(t, err)
	require.Len(t, other, 1)

	none, err := sink.RecentWithdraws(1, 10)
	require.NoError(t, err)
	require.Empty(t, none)
}
