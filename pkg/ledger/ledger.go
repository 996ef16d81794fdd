// Package ledger persists imported transaction records in an embedded
// pebble database.
//
// Each record is stored once under its tx_id as a single binary frame, so a
// later import of the same tx_id replaces it. Every import is also recorded
// as a batch manifest keyed by a KSUID, which sorts batches by creation time.
package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/record"
)

var (
	txPrefix    = []byte("tx/")
	batchPrefix = []byte("batch/")
)

// ErrNotFound is returned when a tx_id or batch id is not in the ledger.
var ErrNotFound = errors.New("not found")

// Ledger is a pebble-backed record store
type Ledger struct {
	db *pebble.DB
}

// Open opens or creates a ledger in dir
func Open(dir string) (*Ledger, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", dir, err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Import stores every record of set and a manifest naming them, atomically.
// It returns the id of the new batch.
func (l *Ledger) Import(set record.Set) (ksuid.KSUID, error) {
	id := ksuid.New()

	b := l.db.NewBatch()
	defer b.Close()

	manifest := make([]byte, 0, 8*len(set))
	var frame []byte
	for _, tx := range set {
		var err error
		if frame, err = codec.AppendFrame(frame[:0], tx); err != nil {
			return ksuid.Nil, fmt.Errorf("tx %d: %w", tx.TxID, err)
		}
		if err := b.Set(txKey(tx.TxID), frame, nil); err != nil {
			return ksuid.Nil, err
		}
		manifest = binary.BigEndian.AppendUint64(manifest, tx.TxID)
	}
	if err := b.Set(batchKey(id), manifest, nil); err != nil {
		return ksuid.Nil, err
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("commit batch %s: %w", id, err)
	}
	return id, nil
}

// Get returns the record stored under txID
func (l *Ledger) Get(txID uint64) (record.Transaction, error) {
	frame, err := l.get(txKey(txID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return record.Transaction{}, fmt.Errorf("tx %d: %w", txID, ErrNotFound)
		}
		return record.Transaction{}, err
	}
	return codec.DecodeFrame(frame)
}

// Delete removes the record stored under txID. Batch manifests are left
// alone; deleted records are skipped when a batch is read back.
func (l *Ledger) Delete(txID uint64) error {
	key := txKey(txID)
	if _, err := l.get(key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("tx %d: %w", txID, ErrNotFound)
		}
		return err
	}
	return l.db.Delete(key, pebble.Sync)
}

// All returns every stored record ordered by tx_id
func (l *Ledger) All() (record.Set, error) {
	set := record.Set{}
	err := l.scan(txPrefix, func(_, value []byte) error {
		tx, err := codec.DecodeFrame(value)
		if err != nil {
			return err
		}
		set = append(set, tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Count returns the number of stored records
func (l *Ledger) Count() (int, error) {
	n := 0
	err := l.scan(txPrefix, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// Batch returns the records imported by batch id, in import order. Records
// replaced by a later import are returned as currently stored; deleted
// records are skipped.
func (l *Ledger) Batch(id ksuid.KSUID) (record.Set, error) {
	manifest, err := l.get(batchKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if len(manifest)%8 != 0 {
		return nil, fmt.Errorf("batch %s: corrupt manifest of %d bytes", id, len(manifest))
	}

	set := record.Set{}
	seen := make(map[uint64]bool, len(manifest)/8)
	for off := 0; off < len(manifest); off += 8 {
		txID := binary.BigEndian.Uint64(manifest[off:])
		if seen[txID] {
			continue
		}
		seen[txID] = true

		tx, err := l.Get(txID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		set = append(set, tx)
	}
	return set, nil
}

// Batches lists every batch id, oldest first
func (l *Ledger) Batches() ([]ksuid.KSUID, error) {
	ids := []ksuid.KSUID{}
	err := l.scan(batchPrefix, func(key, _ []byte) error {
		id, err := ksuid.FromBytes(key[len(batchPrefix):])
		if err != nil {
			return fmt.Errorf("batch key %x: %w", key, err)
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// get copies the value out of pebble before releasing it.
func (l *Ledger) get(key []byte) ([]byte, error) {
	data, closer, err := l.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), data...), nil
}

func (l *Ledger) scan(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := l.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			iter.Close()
			return err
		}
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return err
	}
	return iter.Close()
}

func txKey(txID uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), txPrefix...), txID)
}

func batchKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), batchPrefix...), id.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}
