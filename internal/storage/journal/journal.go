// Package journal keeps a local append-only audit trail of every mutating
// operation the client submitted to the backend.
package journal

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
)

const (
	DefaultDir   = "./wal/operations"
	segmentLimit = 100
	maxSegments  = 10

	transferKeyPrefix   = "transfer_"
	withdrawalKeyPrefix = "withdrawal_"
)

// Kind submitted operation kind.
type Kind string

const (
	KindTransfer   Kind = "transfer"
	KindWithdrawal Kind = "withdrawal"
)

// Entry one submitted operation.
type Entry struct {
	Kind        Kind            `json:"kind"`
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee,omitempty"`
	Destination string          `json:"destination"`
	Memo        string          `json:"memo,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Record an entry with its position in the journal, 1-based.
type Record struct {
	Index uint64
	Entry Entry
}

// Journal persists operation entries in a WAL.
type Journal struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// New initializes a WAL-backed journal.
func New(dir string) (*Journal, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "op_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init operation journal")
	}

	return &Journal{wal: wal}, nil
}

// Record appends the entry to the journal.
func (j *Journal) Record(entry Entry) error {
	if j == nil || j.wal == nil {
		return errors.New("journal is not initialized")
	}
	if entry.Asset == "" {
		return errors.New("journal entry asset is required")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal journal entry")
	}

	key := transferKeyPrefix + entry.Asset
	if entry.Kind == KindWithdrawal {
		key = withdrawalKeyPrefix + entry.Asset
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	nextIndex := j.wal.CurrentIndex() + 1
	return j.wal.Write(nextIndex, key, payload)
}

// EntriesAfter returns all entries written after the provided index, in
// write order. Pass 0 for the full journal.
func (j *Journal) EntriesAfter(index uint64) ([]Record, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("journal is not initialized")
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	var records []Record
	var pos uint64
	for msg := range j.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, transferKeyPrefix) && !strings.HasPrefix(msg.Key, withdrawalKeyPrefix) {
			continue
		}
		pos++
		if pos <= index {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(msg.Value, &entry); err != nil {
			return nil, errors.Wrap(err, "decode journal entry")
		}
		records = append(records, Record{Index: pos, Entry: entry})
	}

	return records, nil
}

// Close releases the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return nil
	}
	return j.wal.Close()
}
