package memory

import (
	"context"
	"fmt"
	"sync"

	"meloon/internal/sheets"
)

// Store is an in-process journal, used when no spreadsheet is configured
// and in tests.
type Store struct {
	mu   sync.Mutex
	rows []sheets.JournalRow
}

var _ sheets.Journal = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r sheets.JournalRow) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) Rows(_ context.Context) ([]sheets.JournalRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.JournalRow(nil), s.rows...), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
