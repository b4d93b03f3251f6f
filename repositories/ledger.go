package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	KindMint       = "mint"
	KindSettlement = "settlement"
)

// Record is one append-only audit entry: a mint artifact issued on
// consensus, or a completed settlement. Room state itself is never
// persisted; the ledger only remembers what left the system.
type Record struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"kind"`
	Room    string    `json:"room"`
	Account string    `json:"account"`
	Amount  float64   `json:"amount"`
	Ref     string    `json:"ref"`
	Link    string    `json:"link,omitempty"`
	At      time.Time `json:"at"`
}

type ILedger interface {
	Append(rec Record) error
	ForRoom(room string) ([]Record, error)
	Recent(limit int) ([]Record, error)
}

type Ledger struct {
	db  *badger.DB
	log *slog.Logger
}

func NewLedger(db *badger.DB, log *slog.Logger) Ledger {
	return Ledger{db: db, log: log}
}

// Append persists a record. The key is "ledger:{room}:{timestamp_padded}:{uuid}":
//  1. The room prefix makes per-room scans cheap.
//  2. 19-digit zero padding keeps keys chronologically sorted.
//  3. The UUID disambiguates two records landing on the same nanosecond.
func (l Ledger) Append(rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	key := fmt.Sprintf("ledger:%s:%019d:%s", rec.Room, rec.At.UnixNano(), rec.ID)
	bytes, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// ForRoom returns the room's records in chronological order.
func (l Ledger) ForRoom(room string) ([]Record, error) {
	prefix := []byte(fmt.Sprintf("ledger:%s:", room))
	return l.scan(prefix, 0)
}

// Recent returns the newest records across all rooms, newest first.
// Keys sort by room before time, so we collect and sort; the ledger is
// an ops surface, not a hot path.
func (l Ledger) Recent(limit int) ([]Record, error) {
	records, err := l.scan([]byte("ledger:"), 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].At.After(records[j].At)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l Ledger) scan(prefix []byte, limit int) ([]Record, error) {
	var raw [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				cp := make([]byte, len(value))
				copy(cp, value)
				raw = append(raw, cp)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for _, bytes := range raw {
		var rec Record
		if err := json.Unmarshal(bytes, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
