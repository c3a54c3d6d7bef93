package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage keeps items in a JSON file. Every write is flushed to disk
// before it returns, so the file always reflects the last completed call.
type FileStorage struct {
	path  string
	mu    sync.Mutex
	items map[string]string
}

type fileContents struct {
	Items map[string]string `json:"items"`
}

// NewFileStorage returns a FileStorage backed by path. The file is not read
// until Load is called.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path, items: make(map[string]string)}
}

// Path returns the backing file path.
func (fs *FileStorage) Path() string {
	return fs.path
}

// Load reads the backing file. A missing file yields an empty storage. On a
// decode error the storage is left empty and the error is returned, so the
// caller can decide whether to continue.
func (fs *FileStorage) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.items = make(map[string]string)

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return fmt.Errorf("decode storage file: %w", err)
	}
	if contents.Items != nil {
		fs.items = contents.Items
	}
	return nil
}

// save writes the items atomically. Callers must hold fs.mu.
func (fs *FileStorage) save() error {
	data, err := json.MarshalIndent(fileContents{Items: fs.items}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func (fs *FileStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.items[key]
	return v, ok, nil
}

func (fs *FileStorage) SetItem(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.items[key]
	fs.items[key] = value
	if err := fs.save(); err != nil {
		if had {
			fs.items[key] = prev
		} else {
			delete(fs.items, key)
		}
		return err
	}
	return nil
}

func (fs *FileStorage) RemoveItem(_ context.Context, keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	removed := make(map[string]string)
	for _, k := range keys {
		if v, ok := fs.items[k]; ok {
			removed[k] = v
			delete(fs.items, k)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := fs.save(); err != nil {
		for k, v := range removed {
			fs.items[k] = v
		}
		return err
	}
	return nil
}
