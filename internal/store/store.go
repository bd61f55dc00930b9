// Package store persists arsenal records as flat JSON documents, one file
// per entity type. Every operation reads the whole file, mutates the slice in
// memory and writes the whole file back while holding that file's lock.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/erazemk/arsenal/internal/model"
)

// Store file names inside the data directory.
const (
	ItemsFile     = "items.json"
	UsersFile     = "users.json"
	SuppliersFile = "suppliers.json"
	OrdersFile    = "orders.json"
)

// Domain errors.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrSelfDelete        = errors.New("cannot delete own account")
	ErrLastAdmin         = errors.New("cannot remove the last administrator")
	ErrDuplicateLogin    = errors.New("login already taken")
	ErrInvalidRole       = errors.New("invalid role")
	ErrEmptyOrder        = errors.New("order has no resolvable line items")
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
)

var domainErrors = []error{
	ErrInsufficientStock, ErrInvalidQuantity, ErrSelfDelete, ErrLastAdmin,
	ErrDuplicateLogin, ErrInvalidRole, ErrEmptyOrder, ErrSupplierNotFound,
	ErrOrderNotFound, ErrInvalidStatus,
}

// isDomainError reports whether err is an expected rejection rather than a failure.
func isDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

// Store gives access to the item, user, supplier and order documents.
type Store struct {
	dir      string
	defaults model.ItemDefaults
	now      func() time.Time

	items     file[model.Item]
	users     file[model.User]
	suppliers file[model.Supplier]
	orders    file[model.Order]
}

// Open prepares a store rooted at dir, creating the directory if needed.
// Store files are created lazily on the first write.
func Open(dir string, defaults model.ItemDefaults) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{dir: dir, defaults: defaults, now: time.Now}
	s.items.name, s.items.path = "items", filepath.Join(dir, ItemsFile)
	s.users.name, s.users.path = "users", filepath.Join(dir, UsersFile)
	s.suppliers.name, s.suppliers.path = "suppliers", filepath.Join(dir, SuppliersFile)
	s.orders.name, s.orders.path = "orders", filepath.Join(dir, OrdersFile)
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Defaults returns the item defaults applied on create and update.
func (s *Store) Defaults() model.ItemDefaults {
	return s.defaults
}

// nextID returns a time-based id that is larger than every id in use.
func nextID(now time.Time, used []int64) int64 {
	id := now.UnixMilli()
	for _, u := range used {
		if u >= id {
			id = u + 1
		}
	}
	return id
}
