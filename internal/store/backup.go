package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// BackupTimeFormat names backup directories.
const BackupTimeFormat = "2006-01-02_15-04-05"

// Copier is anything that can copy its own files into a backup directory
// while keeping writers out.
type Copier interface {
	CopyTo(dir string) error
}

// Backup copies every store file into a new timestamped directory under root
// and then asks each extra Copier to do the same. All store locks are held for
// the duration so the copies are consistent with each other. Missing store
// files are skipped. Returns the backup directory.
func (s *Store) Backup(ctx context.Context, root string, extra ...Copier) (string, error) {
	_, span := s.items.startSpan(ctx, "backup")
	defer span.End()

	s.items.mu.Lock()
	defer s.items.mu.Unlock()
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	s.suppliers.mu.Lock()
	defer s.suppliers.mu.Unlock()
	s.orders.mu.Lock()
	defer s.orders.mu.Unlock()

	dir, err := s.backupLocked(root, extra)
	s.items.finish(span, "backup", err)
	return dir, err
}

func (s *Store) backupLocked(root string, extra []Copier) (string, error) {
	dir, err := newBackupDir(root, s.now().Format(BackupTimeFormat))
	if err != nil {
		return "", err
	}

	for _, path := range []string{s.items.path, s.users.path, s.suppliers.path, s.orders.path} {
		if err := CopyFile(path, filepath.Join(dir, filepath.Base(path))); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return dir, err
		}
	}

	for _, c := range extra {
		if err := c.CopyTo(dir); err != nil {
			return dir, err
		}
	}
	return dir, nil
}

// newBackupDir creates root/name, adding a numeric suffix if it already exists.
func newBackupDir(root, name string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating backups directory: %w", err)
	}
	dir := filepath.Join(root, name)
	for n := 2; ; n++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating backup directory: %w", err)
		}
		dir = filepath.Join(root, name+"-"+strconv.Itoa(n))
	}
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
