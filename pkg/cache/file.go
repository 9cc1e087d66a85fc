package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entryExt is the extension of every FileCache entry.
const entryExt = ".entry"

// FileCache stores one file per key under a directory, sharded by the first
// byte of the key's hash. A file is a one-line JSON header followed by the
// raw value, so encoded images are stored without base64 overhead. Writes go
// through a temporary file and a rename, so concurrent readers never see a
// partial entry.
type FileCache struct {
	dir string
}

// entryHeader precedes the value in an entry file.
type entryHeader struct {
	Size      int       `json:"size"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// NewFileCache creates dir if needed and returns a cache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the root directory of the cache.
func (c *FileCache) Dir() string {
	return c.dir
}

// Get returns the value stored under key. Expired and unreadable entries are
// removed and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, ok := decodeEntry(raw, time.Now())
	if !ok {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

func decodeEntry(raw []byte, now time.Time) ([]byte, bool) {
	line, data, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return nil, false
	}
	var h entryHeader
	if err := json.Unmarshal(line, &h); err != nil || h.Size != len(data) {
		return nil, false
	}
	if !h.ExpiresAt.IsZero() && now.After(h.ExpiresAt) {
		return nil, false
	}
	return data, true
}

// Set stores data under key. A ttl of zero never expires.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	h := entryHeader{Size: len(data)}
	if ttl > 0 {
		h.ExpiresAt = time.Now().Add(ttl)
	}
	header, err := json.Marshal(h)
	if err != nil {
		return err
	}

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	for _, part := range [][]byte{header, {'\n'}, data} {
		if _, err := tmp.Write(part); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Missing keys are not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear() (int, error) {
	count := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		count++
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return count, err
}

func (c *FileCache) Close() error { return nil }

// path maps a key to <dir>/<hh>/<rest>.entry.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

var _ Cache = (*FileCache)(nil)
