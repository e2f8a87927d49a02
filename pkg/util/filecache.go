package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache reads source files through read-only memory mappings so that
// repeated analysis passes over the same tree avoid copying file contents.
// Files that fail to mmap fall back to os.ReadFile transparently.
//
// Safe for concurrent use. Close unmaps everything; the cache must not be
// used after Close.
type FileCache struct {
	mu       sync.RWMutex
	mapped   map[string]mmap.MMap
	files    map[string]*os.File
	fallback map[string][]byte

	logger *slog.Logger

	statsMu sync.Mutex
	stats   FileCacheStats
}

// FileCacheStats tracks cumulative cache behavior.
type FileCacheStats struct {
	Hits         int64
	Misses       int64
	MmapFailures int64
}

// NewFileCache creates an empty FileCache.
func NewFileCache(logger *slog.Logger) *FileCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileCache{
		mapped:   make(map[string]mmap.MMap),
		files:    make(map[string]*os.File),
		fallback: make(map[string][]byte),
		logger:   logger,
	}
}

// Read returns the contents of filePath, mapping it on first access.
// The returned slice is shared and must be treated as read-only.
func (fc *FileCache) Read(filePath string) ([]byte, error) {
	fc.mu.RLock()
	if data, ok := fc.mapped[filePath]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return data, nil
	}
	if data, ok := fc.fallback[filePath]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return data, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited.
	if data, ok := fc.mapped[filePath]; ok {
		fc.recordHit()
		return data, nil
	}
	if data, ok := fc.fallback[filePath]; ok {
		fc.recordHit()
		return data, nil
	}

	fc.recordMiss()
	return fc.loadLocked(filePath)
}

// Invalidate drops a single cached file, unmapping it if mapped.
// Used by the watcher when a file changes on disk.
func (fc *FileCache) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if data, ok := fc.mapped[filePath]; ok {
		if err := data.Unmap(); err != nil {
			fc.logger.Warn("failed to unmap file", "path", filePath, "error", err)
		}
		delete(fc.mapped, filePath)
	}
	if f, ok := fc.files[filePath]; ok {
		_ = f.Close()
		delete(fc.files, filePath)
	}
	delete(fc.fallback, filePath)
}

// Size returns the number of cached files.
func (fc *FileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.mapped) + len(fc.fallback)
}

// Stats returns a snapshot of cache counters.
func (fc *FileCache) Stats() FileCacheStats {
	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	return fc.stats
}

// Close unmaps all files and closes their descriptors.
func (fc *FileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var firstErr error
	for path, data := range fc.mapped {
		if err := data.Unmap(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmap %q: %w", path, err)
		}
	}
	for _, f := range fc.files {
		_ = f.Close()
	}
	fc.mapped = make(map[string]mmap.MMap)
	fc.files = make(map[string]*os.File)
	fc.fallback = make(map[string][]byte)
	return firstErr
}

// loadLocked opens and maps a file. Must hold fc.mu.
func (fc *FileCache) loadLocked(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", filePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %q: %w", filePath, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		f.Close()
		fc.fallback[filePath] = []byte{}
		return []byte{}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Debug("mmap failed, using fallback read",
			"file", filePath, "size", stat.Size(), "error", err)
		fc.recordMmapFailure()
		f.Close()

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("read %q: %w", filePath, readErr)
		}
		fc.fallback[filePath] = raw
		return raw, nil
	}

	fc.mapped[filePath] = data
	fc.files[filePath] = f
	return data, nil
}

func (fc *FileCache) recordHit() {
	fc.statsMu.Lock()
	fc.stats.Hits++
	fc.statsMu.Unlock()
}

func (fc *FileCache) recordMiss() {
	fc.statsMu.Lock()
	fc.stats.Misses++
	fc.statsMu.Unlock()
}

func (fc *FileCache) recordMmapFailure() {
	fc.statsMu.Lock()
	fc.stats.MmapFailures++
	fc.statsMu.Unlock()
}
