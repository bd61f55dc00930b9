package store

import (
	"testing"
	"time"

	"github.com/erazemk/arsenal/internal/model"
)

// newTestStore opens a store in a fresh temporary directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), model.DefaultItemDefaults())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

// fixedClock makes the store see a constant time.
func fixedClock(s *Store, at time.Time) {
	s.now = func() time.Time { return at }
}
