package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) Ledger {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLedger(db, slog.Default())
}

func TestLedger_Append_FillsDefaults(t *testing.T) {
	req := require.New(t)
	ledger := newTestLedger(t)

	err := ledger.Append(Record{
		Kind:    KindMint,
		Room:    "abc1234",
		Account: "creator",
		Amount:  150,
		Ref:     "artifact-1",
	})
	req.NoError(err)

	records, err := ledger.ForRoom("abc1234")
	req.NoError(err)
	req.Len(records, 1)
	req.NotEqual(uuid.Nil, records[0].ID)
	req.False(records[0].At.IsZero())
}

func TestLedger_ForRoom_ChronologicalAndIsolated(t *testing.T) {
	req := require.New(t)
	ledger := newTestLedger(t)

	base := time.Now().UTC()
	req.NoError(ledger.Append(Record{Kind: KindMint, Room: "roomaaa", Ref: "first", At: base}))
	req.NoError(ledger.Append(Record{Kind: KindSettlement, Room: "roomaaa", Ref: "second", At: base.Add(time.Second)}))
	req.NoError(ledger.Append(Record{Kind: KindMint, Room: "roombbb", Ref: "other", At: base}))

	records, err := ledger.ForRoom("roomaaa")
	req.NoError(err)
	req.Len(records, 2)
	req.Equal("first", records[0].Ref)
	req.Equal("second", records[1].Ref)
}

func TestLedger_Recent_NewestFirstWithLimit(t *testing.T) {
	req := require.New(t)
	ledger := newTestLedger(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		req.NoError(ledger.Append(Record{
			Kind: KindSettlement,
			Room: "abc1234",
			Ref:  string(rune('a' + i)),
			At:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := ledger.Recent(3)
	req.NoError(err)
	req.Len(records, 3)
	req.Equal("e", records[0].Ref)
	req.Equal("d", records[1].Ref)
	req.Equal("c", records[2].Ref)
}
