package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/abelbrown/catalog/internal/logging"
)

// File is a Store persisted as a single JSON object on disk.
// Every Set rewrites the file via a temp file and rename.
type File struct {
	path   string
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

// OpenFile loads path if it exists. A missing file is an empty store, and so
// is a file that is not a JSON object of strings; that file is renamed to
// path+".corrupt".
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("kv: file backend needs a path")
	}
	f := &File{path: path, data: make(map[string]string)}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(b) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(b, &f.data); err != nil {
		// Unreadable state starts empty; the old file is kept beside it for inspection.
		f.data = make(map[string]string)
		aside := path + ".corrupt"
		if rerr := os.Rename(path, aside); rerr != nil {
			logging.Warn("Ignoring corrupt store file", "path", path, "err", err, "rename_err", rerr)
		} else {
			logging.Warn("Ignoring corrupt store file", "path", path, "err", err, "moved_to", aside)
		}
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// flush writes the map atomically. Caller holds f.mu.
func (f *File) flush() error {
	b, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, f.path)
}
