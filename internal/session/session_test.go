package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/arsenal/internal/db"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		BackendMemory: NewMemoryStore(),
		BackendSQLite: NewSQLiteStore(db.NewTestDB(t)),
	}
}

func TestSaveGetDelete(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(42, "admin", "Administrator", time.Hour)

			if err := st.Save(ctx, s); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := st.Get(ctx, s.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.UserID != 42 || got.Login != "admin" || got.Role != "Administrator" {
				t.Errorf("unexpected session: %+v", got)
			}

			if err := st.Delete(ctx, s.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestExpiredSessionNotFound(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(1, "a", "Użytkownik", time.Hour)
			s.ExpiresAt = time.Now().Add(-time.Second)
			st.Save(ctx, s)

			if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for expired session, got %v", err)
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := New(1, "a", "Użytkownik", time.Hour)
			b := New(1, "a", "Użytkownik", time.Hour)
			c := New(2, "c", "Użytkownik", time.Hour)
			for _, s := range []*Session{a, b, c} {
				st.Save(ctx, s)
			}

			if err := st.DeleteUser(ctx, 1); err != nil {
				t.Fatalf("DeleteUser: %v", err)
			}
			for _, s := range []*Session{a, b} {
				if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected session %s removed", s.ID)
				}
			}
			if _, err := st.Get(ctx, c.ID); err != nil {
				t.Errorf("expected other user's session to remain, got %v", err)
			}
		})
	}
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := New(1, "a", "Użytkownik", time.Minute)
		if seen[s.ID] {
			t.Fatalf("duplicate session id %s", s.ID)
		}
		seen[s.ID] = true
	}
}
