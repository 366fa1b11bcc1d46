package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndReadBack(t *testing.T) {
	j := newJournal(t)

	submitted := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, j.Record(Entry{
		Kind:        KindTransfer,
		Asset:       "USDT",
		Amount:      decimal.NewFromInt(30),
		Destination: "bob@example.com",
		Memo:        "rent",
		SubmittedAt: submitted,
	}))
	require.NoError(t, j.Record(Entry{
		Kind:        KindWithdrawal,
		Asset:       "USDT",
		Amount:      decimal.NewFromInt(100),
		Fee:         decimal.RequireFromString("0.5"),
		Destination: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		SubmittedAt: submitted,
	}))

	records, err := j.EntriesAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, KindTransfer, records[0].Entry.Kind)
	require.Equal(t, "bob@example.com", records[0].Entry.Destination)
	require.True(t, records[0].Entry.Amount.Equal(decimal.NewFromInt(30)))

	require.Equal(t, KindWithdrawal, records[1].Entry.Kind)
	require.Equal(t, "0.5", records[1].Entry.Fee.String())
}

func TestEntriesAfter_SkipsAlreadySeen(t *testing.T) {
	j := newJournal(t)

	require.NoError(t, j.Record(Entry{Kind: KindTransfer, Asset: "USDT", Amount: decimal.NewFromInt(1)}))
	require.NoError(t, j.Record(Entry{Kind: KindTransfer, Asset: "USDT", Amount: decimal.NewFromInt(2)}))

	records, err := j.EntriesAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	newer, err := j.EntriesAfter(records[0].Index)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	require.True(t, newer[0].Entry.Amount.Equal(decimal.NewFromInt(2)))
}

func TestRecord_RequiresAsset(t *testing.T) {
	j := newJournal(t)

	err := j.Record(Entry{Kind: KindTransfer, Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
}
