package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides read-only access to source files via memory mapping.
//
// The registry scan reads every component file in the tree without mutating
// any of them, so the bytes can be shared straight out of the page cache.
// Files that fail to mmap (empty files, exotic filesystems) fall back to
// os.ReadFile transparently.
//
// Thread-safe: parallel readers share an RWMutex; loads take the write lock.
type FileCache struct {
	mu       sync.RWMutex
	mapped   map[string]mmap.MMap
	fallback map[string][]byte
	files    []*os.File
	logger   *slog.Logger
}

// NewFileCache creates an empty cache. Close must be called to unmap.
func NewFileCache(logger *slog.Logger) *FileCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileCache{
		mapped:   make(map[string]mmap.MMap),
		fallback: make(map[string][]byte),
		logger:   logger,
	}
}

// Get returns the contents of filePath, mapping it on first access.
// The returned slice is valid until Close and must not be modified.
func (fc *FileCache) Get(filePath string) ([]byte, error) {
	fc.mu.RLock()
	if m, ok := fc.mapped[filePath]; ok {
		fc.mu.RUnlock()
		return m, nil
	}
	if b, ok := fc.fallback[filePath]; ok {
		fc.mu.RUnlock()
		return b, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if m, ok := fc.mapped[filePath]; ok {
		return m, nil
	}
	if b, ok := fc.fallback[filePath]; ok {
		return b, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", filePath, err)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Empty files and some filesystems cannot be mapped.
		f.Close()
		data, rerr := os.ReadFile(filePath)
		if rerr != nil {
			return nil, fmt.Errorf("read %q: %w", filePath, rerr)
		}
		fc.logger.Debug("mmap failed, using fallback read", "file", filePath, "error", err)
		fc.fallback[filePath] = data
		return data, nil
	}

	fc.mapped[filePath] = m
	fc.files = append(fc.files, f)
	return m, nil
}

// Size returns the number of cached files.
func (fc *FileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.mapped) + len(fc.fallback)
}

// Close unmaps all files and releases file descriptors.
func (fc *FileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var firstErr error
	for path, m := range fc.mapped {
		if err := m.Unmap(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmap %q: %w", path, err)
		}
	}
	for _, f := range fc.files {
		f.Close()
	}
	fc.mapped = make(map[string]mmap.MMap)
	fc.fallback = make(map[string][]byte)
	fc.files = nil
	return firstErr
}
