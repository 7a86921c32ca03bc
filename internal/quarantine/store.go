// Package quarantine keeps damaged records aside in a pebble store so a
// repair run can be audited afterwards.
package quarantine

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

const (
	idSize  = len(ksuid.KSUID{})
	keySize = idSize + 8
)

// Entry is one quarantined record.
type Entry struct {
	RunID ksuid.KSUID
	Line  int
	// Text is the canonical, repaired form of the record.
	Text string
}

// Store persists quarantined records keyed by run id and line number.
type Store struct {
	db *pebble.DB
}

// Open opens or creates the store in dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open quarantine store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put records the repaired text of the record starting on line.
func (s *Store) Put(runID ksuid.KSUID, line int, text string) error {
	if err := s.db.Set(entryKey(runID, line), []byte(text), pebble.NoSync); err != nil {
		return fmt.Errorf("failed to quarantine line %d: %w", line, err)
	}
	return nil
}

// Entries returns stored records ordered by run, then line. A nil runID
// returns every run.
func (s *Store) Entries(runID ksuid.KSUID) ([]Entry, error) {
	opts := &pebble.IterOptions{}
	if !runID.IsNil() {
		opts.LowerBound = entryKey(runID, 0)
		opts.UpperBound = entryKey(runID.Next(), 0)
	}
	iter, err := s.db.NewIter(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan quarantine store: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != keySize {
			continue
		}
		id, err := ksuid.FromBytes(key[:idSize])
		if err != nil {
			return nil, fmt.Errorf("failed to decode quarantine key: %w", err)
		}
		entries = append(entries, Entry{
			RunID: id,
			Line:  int(binary.BigEndian.Uint64(key[idSize:])),
			Text:  string(iter.Value()),
		})
	}
	return entries, iter.Error()
}

// Flush syncs pending writes to disk.
func (s *Store) Flush() error {
	return s.db.Flush()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func entryKey(runID ksuid.KSUID, line int) []byte {
	key := make([]byte, keySize)
	copy(key, runID.Bytes())
	binary.BigEndian.PutUint64(key[idSize:], uint64(line))
	return key
}
