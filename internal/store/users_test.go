package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/erazemk/arsenal/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{Login: "testuser", Password: "hash123", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Login != "testuser" {
		t.Errorf("expected login 'testuser', got %q", user.Login)
	}

	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil || got.Role != model.RoleUser {
		t.Errorf("expected role %q, got %+v", model.RoleUser, got)
	}
}

func TestGetUserByLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateUser(ctx, model.User{Login: "alice", Password: "x", Role: model.RoleAdmin})

	user, err := s.GetUserByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByLogin: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := s.GetUserByLogin(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByLogin: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestCreateUserRejectsDuplicatesAndBadRoles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateUser(ctx, model.User{Login: "alice", Role: model.RoleUser})
	if _, err := s.CreateUser(ctx, model.User{Login: "alice", Role: model.RoleUser}); !errors.Is(err, ErrDuplicateLogin) {
		t.Errorf("expected ErrDuplicateLogin, got %v", err)
	}
	if _, err := s.CreateUser(ctx, model.User{Login: "bob", Role: "general"}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin, _ := s.CreateUser(ctx, model.User{Login: "admin", Role: model.RoleAdmin})
	s.CreateUser(ctx, model.User{Login: "other", Role: model.RoleAdmin})

	path := filepath.Join(s.Dir(), UsersFile)
	before, _ := os.ReadFile(path)

	if _, err := s.DeleteUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrSelfDelete) {
		t.Fatalf("expected ErrSelfDelete, got %v", err)
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("expected users file to be unchanged")
	}
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin, _ := s.CreateUser(ctx, model.User{Login: "admin", Role: model.RoleAdmin})
	user, _ := s.CreateUser(ctx, model.User{Login: "deleteme", Role: model.RoleUser})

	removed, err := s.DeleteUser(ctx, user.ID, admin.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if removed == nil || removed.Login != "deleteme" {
		t.Errorf("expected removed 'deleteme', got %+v", removed)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 {
		t.Errorf("expected 1 user after delete, got %d", len(users))
	}
}

func TestLastAdminIsProtected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin, _ := s.CreateUser(ctx, model.User{Login: "admin", Role: model.RoleAdmin})
	keeper, _ := s.CreateUser(ctx, model.User{Login: "keeper", Role: model.RoleStorekeeper})

	if _, err := s.DeleteUser(ctx, admin.ID, keeper.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("expected ErrLastAdmin on delete, got %v", err)
	}

	role := model.RoleUser
	if _, err := s.UpdateUser(ctx, admin.ID, UserPatch{Role: &role}); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("expected ErrLastAdmin on demotion, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateUser(ctx, model.User{Login: "taken", Role: model.RoleUser})
	user, _ := s.CreateUser(ctx, model.User{Login: "jk", Role: model.RoleUser})

	first, unit := "Jan", "1 Batalion"
	got, err := s.UpdateUser(ctx, user.ID, UserPatch{FirstName: &first, Unit: &unit})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got.FirstName != "Jan" || got.Unit != "1 Batalion" || got.Login != "jk" {
		t.Errorf("unexpected user after update: %+v", got)
	}

	login := "taken"
	if _, err := s.UpdateUser(ctx, user.ID, UserPatch{Login: &login}); !errors.Is(err, ErrDuplicateLogin) {
		t.Errorf("expected ErrDuplicateLogin, got %v", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, _ := s.CreateUser(ctx, model.User{Login: "pwuser", Password: "oldhash", Role: model.RoleUser})
	if err := s.UpdateUserPassword(ctx, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := s.GetUser(ctx, user.ID)
	if got.Password != "newhash" {
		t.Errorf("expected password 'newhash', got %q", got.Password)
	}
}
