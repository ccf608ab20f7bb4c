package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zee-create-614/papertrader/ledger"
)

// File stores one JSON file per account under a directory. Writes go through
// a temp file plus rename so a crash mid-save never leaves a truncated
// account on disk.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns the store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("file: mkdir", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(accountID string) string {
	return filepath.Join(f.dir, accountID+".json")
}

func (f *File) Load(_ context.Context, accountID string) (*ledger.Account, error) {
	data, err := os.ReadFile(f.path(accountID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file: load: %w: %q", ErrAccountNotFound, accountID)
		}
		return nil, unavailable("file: load", err)
	}
	return decode(data)
}

func (f *File) Save(_ context.Context, acct *ledger.Account) error {
	data, err := encode(acct)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, acct.ID+".*.tmp")
	if err != nil {
		return unavailable("file: save", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return unavailable("file: save", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return unavailable("file: save", err)
	}
	if err := os.Rename(tmp.Name(), f.path(acct.ID)); err != nil {
		os.Remove(tmp.Name())
		return unavailable("file: save", err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, accountID string) error {
	err := os.Remove(f.path(accountID))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file: delete: %w: %q", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return unavailable("file: delete", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
