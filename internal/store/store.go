// Package store owns the ordered collection of saved recordings and its
// sqlite persistence. All mutations are serialized and written to disk
// before the in-memory copy is touched, so the two never silently diverge.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eliseohh/voicecratebot/internal/telemetry"
)

type Kind string

const (
	KindVoice Kind = "voice"
	KindAudio Kind = "audio"
)

// Record is one saved recording. FileID is the Telegram file_id of the
// original attachment and doubles as the deletion/edit key.
type Record struct {
	FileID  string
	Kind    Kind
	Name    string
	Author  string
	OwnerID int64
}

const unknownField = "Unknown"

// DisplayName substitutes a placeholder for a blank name at read time.
// The blank value itself stays persisted untouched.
func (r Record) DisplayName() string {
	if r.Name == "" {
		return unknownField
	}
	return r.Name
}

func (r Record) DisplayAuthor() string {
	if r.Author == "" {
		return unknownField
	}
	return r.Author
}

// Title is the "{author} - {name}" line used for captions, list rows and
// inline suggestion titles.
func (r Record) Title() string {
	return r.DisplayAuthor() + " - " + r.DisplayName()
}

var (
	ErrNotFound        = errors.New("store: record not found")
	ErrInvalidPosition = errors.New("store: position out of range")
)

type Store struct {
	mu   sync.Mutex
	db   *DB
	recs []Record
}

// Open loads the record table into memory. A load failure is not fatal:
// the bot comes up with an empty store and a warning in the log.
func Open(db *DB) *Store {
	s := &Store{db: db}
	recs, err := s.load()
	if err != nil {
		slog.Warn("could not load records, starting empty", "component", "store", "err", err)
		recs = nil
	}
	s.recs = recs
	telemetry.SetRecordCount(len(recs))
	return s
}

func (s *Store) load() ([]Record, error) {
	rows, err := s.db.Query(`SELECT file_id, kind, name, author, owner_id FROM records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.FileID, &r.Kind, &r.Name, &r.Author, &r.OwnerID); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// persist rewrites the whole table in one transaction. Positions are the
// slice indexes, so browse order survives restarts.
func (s *Store) persist(next []Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return err
	}
	for i, r := range next {
		_, err := tx.Exec(
			`INSERT INTO records (position, file_id, kind, name, author, owner_id) VALUES (?, ?, ?, ?, ?, ?)`,
			i, r.FileID, string(r.Kind), r.Name, r.Author, r.OwnerID,
		)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	telemetry.SetRecordCount(len(next))
	return nil
}

// Append adds a record at the end of the browse order.
func (s *Store) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Record, len(s.recs), len(s.recs)+1)
	copy(next, s.recs)
	next = append(next, r)

	if err := s.persist(next); err != nil {
		telemetry.CountPersistFailure()
		return fmt.Errorf("append: %w", err)
	}
	s.recs = next
	return nil
}

// Delete removes the record with the given file id.
func (s *Store) Delete(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(fileID)
	if i < 0 {
		return ErrNotFound
	}

	next := make([]Record, 0, len(s.recs)-1)
	next = append(next, s.recs[:i]...)
	next = append(next, s.recs[i+1:]...)

	if err := s.persist(next); err != nil {
		telemetry.CountPersistFailure()
		return fmt.Errorf("delete: %w", err)
	}
	s.recs = next
	return nil
}

// Move places the record at 1-indexed position pos. Positions outside
// [1, len] are rejected with ErrInvalidPosition, never clamped.
func (s *Store) Move(fileID string, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(fileID)
	if i < 0 {
		return ErrNotFound
	}
	if pos < 1 || pos > len(s.recs) {
		return ErrInvalidPosition
	}

	moved := s.recs[i]
	next := make([]Record, 0, len(s.recs))
	next = append(next, s.recs[:i]...)
	next = append(next, s.recs[i+1:]...)
	j := pos - 1
	next = append(next[:j], append([]Record{moved}, next[j:]...)...)

	if err := s.persist(next); err != nil {
		telemetry.CountPersistFailure()
		return fmt.Errorf("move: %w", err)
	}
	s.recs = next
	return nil
}

// Edit replaces the author and name of the record with the given file id.
func (s *Store) Edit(fileID, author, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(fileID)
	if i < 0 {
		return ErrNotFound
	}

	next := make([]Record, len(s.recs))
	copy(next, s.recs)
	next[i].Author = author
	next[i].Name = name

	if err := s.persist(next); err != nil {
		telemetry.CountPersistFailure()
		return fmt.Errorf("edit: %w", err)
	}
	s.recs = next
	return nil
}

// At returns the record at 1-indexed position pos.
func (s *Store) At(pos int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 1 || pos > len(s.recs) {
		return Record{}, ErrInvalidPosition
	}
	return s.recs[pos-1], nil
}

// Records returns a copy of the full browse order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.recs))
	copy(out, s.recs)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(fileID string) int {
	for i, r := range s.recs {
		if r.FileID == fileID {
			return i
		}
	}
	return -1
}
