// Package cache is a content-addressed store of rendered tunes, keyed by a
// digest of the raw block source. The cache is advisory: misses, decode
// failures and IO errors all just mean the caller re-renders.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jlaakso/scoreblock"
)

// Dir is a tune cache rooted at one directory.
type Dir struct {
	path string
}

// New opens (and creates, if needed) a cache directory. An empty path
// disables the cache; Get then always misses and Put is a no-op.
func New(path string) Dir {
	if path != "" {
		os.MkdirAll(path, 0755)
	}
	return Dir{path: path}
}

// Key derives the cache key for a raw source block.
func Key(source string) string {
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Get loads the cached tune for key, reporting whether it was found intact.
func (d Dir) Get(key string) (scoreblock.Tune, bool) {
	var tune scoreblock.Tune
	if d.path == "" {
		return tune, false
	}
	data, err := os.ReadFile(d.file(key))
	if err != nil {
		return tune, false
	}
	if err := msgpack.Unmarshal(data, &tune); err != nil {
		return tune, false
	}
	return tune, true
}

// Put stores the tune under key, silently dropping it on any failure.
func (d Dir) Put(key string, tune scoreblock.Tune) {
	if d.path == "" {
		return
	}
	data, err := msgpack.Marshal(tune)
	if err != nil {
		return
	}
	os.WriteFile(d.file(key), data, 0644)
}

func (d Dir) file(key string) string {
	return filepath.Join(d.path, key+".tune")
}
