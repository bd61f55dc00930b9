package store

import (
	"context"
	"strings"

	"github.com/erazemk/arsenal/internal/model"
)

// UserPatch lists the profile fields to change. Nil fields are left as they are.
type UserPatch struct {
	Login     *string
	FirstName *string
	LastName  *string
	Role      *string
	Unit      *string
}

// ListUsers returns every user in stored order.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.read(ctx, "list_users")
}

// GetUser returns a user by ID, or nil if there is none.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	users, err := s.users.read(ctx, "get_user")
	if err != nil {
		return nil, err
	}
	if i := indexUser(users, id); i >= 0 {
		return &users[i], nil
	}
	return nil, nil
}

// GetUserByLogin returns a user by login, or nil if there is none.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	users, err := s.users.read(ctx, "get_user_by_login")
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Login == login {
			return &users[i], nil
		}
	}
	return nil, nil
}

// CreateUser appends a user with a fresh ID. The password is stored as given;
// callers decide whether it is a hash.
func (s *Store) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	user.Login = strings.TrimSpace(user.Login)
	if !model.ValidRole(user.Role) {
		return nil, ErrInvalidRole
	}

	err := s.users.update(ctx, "create_user", func(users []model.User) ([]model.User, bool, error) {
		ids := make([]int64, len(users))
		for i, u := range users {
			if u.Login == user.Login {
				return users, false, ErrDuplicateLogin
			}
			ids[i] = u.ID
		}
		user.ID = nextID(s.now(), ids)
		return append(users, user), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser merges patch into the user with the given ID. An unknown ID is
// ignored and reported as a nil user. Demoting the last administrator is
// rejected with ErrLastAdmin.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*model.User, error) {
	if patch.Role != nil && !model.ValidRole(*patch.Role) {
		return nil, ErrInvalidRole
	}

	var updated *model.User
	err := s.users.update(ctx, "update_user", func(users []model.User) ([]model.User, bool, error) {
		i := indexUser(users, id)
		if i < 0 {
			return users, false, nil
		}
		if patch.Login != nil {
			login := strings.TrimSpace(*patch.Login)
			for j, u := range users {
				if j != i && u.Login == login {
					return users, false, ErrDuplicateLogin
				}
			}
			users[i].Login = login
		}
		if patch.Role != nil && users[i].Role == model.RoleAdmin && *patch.Role != model.RoleAdmin &&
			countAdmins(users) == 1 {
			return users, false, ErrLastAdmin
		}
		if patch.FirstName != nil {
			users[i].FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			users[i].LastName = *patch.LastName
		}
		if patch.Role != nil {
			users[i].Role = *patch.Role
		}
		if patch.Unit != nil {
			users[i].Unit = *patch.Unit
		}
		u := users[i]
		updated = &u
		return users, true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateUserPassword replaces a user's stored password.
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, password string) error {
	return s.users.update(ctx, "update_user_password", func(users []model.User) ([]model.User, bool, error) {
		i := indexUser(users, id)
		if i < 0 {
			return users, false, nil
		}
		users[i].Password = password
		return users, true, nil
	})
}

// DeleteUser removes the user with the given ID on behalf of actorID and
// returns the removed user. Users cannot delete themselves and the last
// administrator cannot be removed; both leave the store unchanged.
func (s *Store) DeleteUser(ctx context.Context, id, actorID int64) (*model.User, error) {
	if id == actorID {
		return nil, ErrSelfDelete
	}

	var removed *model.User
	err := s.users.update(ctx, "delete_user", func(users []model.User) ([]model.User, bool, error) {
		i := indexUser(users, id)
		if i < 0 {
			return users, false, nil
		}
		if users[i].Role == model.RoleAdmin && countAdmins(users) == 1 {
			return users, false, ErrLastAdmin
		}
		u := users[i]
		removed = &u
		return append(users[:i], users[i+1:]...), true, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func countAdmins(users []model.User) int {
	n := 0
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			n++
		}
	}
	return n
}

func indexUser(users []model.User, id int64) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
