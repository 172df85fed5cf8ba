package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/and161185/secure-vault/internal/errs"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var reName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// File keeps each collection in <dir>/<name>.json.
type File struct {
	dir string
}

// NewFile returns a file adapter rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %w", errs.ErrPersistence, dir, err)
	}
	return &File{dir: dir}, nil
}

// Path returns the file backing the named collection.
func (f *File) Path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// LoadCollection reads and decodes the collection file.
func (f *File) LoadCollection(ctx context.Context, name string) (map[string]json.RawMessage, error) {
	if err := checkName(ctx, name); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", errs.ErrPersistence, name, err)
	}
	out := map[string]json.RawMessage{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", errs.ErrPersistence, name, err)
	}
	// a literal null decodes to a nil map
	if out == nil {
		out = map[string]json.RawMessage{}
	}
	return out, nil
}

// SaveCollection writes the collection to a temp file, syncs it and renames it into place.
func (f *File) SaveCollection(ctx context.Context, name string, entries map[string]json.RawMessage) error {
	if err := checkName(ctx, name); err != nil {
		return err
	}
	if entries == nil {
		entries = map[string]json.RawMessage{}
	}
	b, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", errs.ErrPersistence, name, err)
	}
	if err := writeAtomic(f.Path(name), b); err != nil {
		return fmt.Errorf("%w: save %s: %w", errs.ErrPersistence, name, err)
	}
	return nil
}

func checkName(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !reName.MatchString(name) {
		return fmt.Errorf("%w: bad collection name %q", errs.ErrPersistence, name)
	}
	return nil
}

func writeAtomic(path string, b []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = tmp.Chmod(fileMode); err != nil {
		return err
	}
	if _, err = tmp.Write(b); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
