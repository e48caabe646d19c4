package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var ErrNotFound = errors.New("module not found")

// FS resolves and reads modules from disk. Keys are slash-separated paths
// relative to the base directory, or to the search root a module was found
// in.
type FS struct {
	base  string
	roots []string
	cache *Cache

	mu    sync.Mutex
	files map[string]string // key -> absolute path
}

// NewFS returns a loader for modules under base. Local imports that are not
// found next to the importing module are looked up in each search root in
// order.
func NewFS(base string, roots []string, cache *Cache) (*FS, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	fs := &FS{base: abs, cache: cache, files: map[string]string{}}
	for _, r := range roots {
		r, err := filepath.Abs(r)
		if err != nil {
			return nil, err
		}
		fs.roots = append(fs.roots, r)
	}
	return fs, nil
}

// Add registers the file at path and returns its key.
func (fs *FS) Add(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return fs.register(abs), nil
}

func (fs *FS) register(abs string) string {
	key := filepath.ToSlash(abs)
	for _, dir := range append([]string{fs.base}, fs.roots...) {
		if rel, err := filepath.Rel(dir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			key = filepath.ToSlash(rel)
			break
		}
	}
	fs.mu.Lock()
	fs.files[key] = abs
	fs.mu.Unlock()
	return key
}

func (fs *FS) path(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	abs, ok := fs.files[key]
	return abs, ok
}

// Resolve finds the module path names when imported from the module from.
// Relative paths are searched next to from and then under each search root;
// bare paths only under the search roots. A bare path that matches nothing,
// or one using "::", names an external crate.
func (fs *FS) Resolve(from, path string) (string, bool, error) {
	if strings.Contains(path, "::") {
		return "", true, nil
	}
	dirs := fs.roots
	if strings.HasPrefix(path, ".") {
		fromAbs, ok := fs.path(from)
		if !ok {
			return "", false, fmt.Errorf("unknown module %s", from)
		}
		dirs = append([]string{filepath.Dir(fromAbs)}, fs.roots...)
	}
	for _, dir := range dirs {
		if abs, ok := findModule(filepath.Join(dir, filepath.FromSlash(path))); ok {
			key := fs.register(abs)
			log.Debug("Resolved module", "from", from, "import", path, "key", key)
			return key, false, nil
		}
	}
	if !strings.HasPrefix(path, ".") {
		return "", true, nil
	}
	return "", false, ErrNotFound
}

func findModule(p string) (string, bool) {
	var candidates []string
	if filepath.Ext(p) == ".jr" {
		candidates = []string{p}
	} else {
		candidates = []string{p + ".jr", filepath.Join(p, "index.jr")}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

func (fs *FS) Load(key string) (string, error) {
	abs, ok := fs.path(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fs.cache.Read(abs)
}
