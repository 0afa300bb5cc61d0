package reference

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type cacheKey struct {
	path  string
	sheet string
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	table   *Table
}

// Loader caches loaded tables process-wide, keyed by absolute path and sheet.
// A changed modification time or size on disk triggers a reload.
type Loader struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	load    func(path, sheet string) (*Table, error)
}

// NewLoader creates an empty loader reading files with Load
func NewLoader() *Loader {
	return &Loader{
		entries: make(map[cacheKey]cacheEntry),
		load:    Load,
	}
}

// DefaultLoader is the process-wide table cache
var DefaultLoader = NewLoader()

// Load returns the cached table for path, loading it on first use or after it changed
func (l *Loader) Load(path, sheet string) (*Table, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference path %s: %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat reference table %s: %w", absPath, err)
	}

	key := cacheKey{path: absPath, sheet: sheet}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[key]; ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.table, nil
	}

	table, err := l.load(absPath, sheet)
	if err != nil {
		return nil, err
	}
	table.version = fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size())
	l.entries[key] = cacheEntry{modTime: info.ModTime(), size: info.Size(), table: table}
	slog.Debug("reference table cached", "path", absPath, "sheet", sheet)
	return table, nil
}

// Forget drops every cached table
func (l *Loader) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[cacheKey]cacheEntry)
}
