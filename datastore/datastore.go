// Package datastore is a small JSON-file-backed key/value store with
// periodic autosave. Values are kept in memory and flushed atomically.
package datastore

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

const autoSaveInterval = 10 * time.Second

type DataStore struct {
	mu     sync.RWMutex
	data   map[string]any
	file   string
	dirty  bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens (or creates) the store at filePath and starts the autosave
// loop. Close must be called to flush pending writes.
func New(filePath string) (*DataStore, error) {
	ds := &DataStore{
		data: make(map[string]any),
		file: filePath,
	}

	raw, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &ds.data); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// fresh store
	default:
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	ds.wg.Add(1)
	go ds.autoSave(ctx)

	return ds, nil
}

// Get returns the value stored under key.
func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	v, ok := ds.data[key]
	return v, ok
}

// Set stores value under key.
func (ds *DataStore) Set(key string, value any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key] = value
	ds.dirty = true
}

// Keys returns all stored keys.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	return keys
}

// Close stops the autosave loop and flushes the store to disk.
func (ds *DataStore) Close() error {
	ds.cancel()
	ds.wg.Wait()
	return ds.save()
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(autoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ds.mu.RLock()
			dirty := ds.dirty
			ds.mu.RUnlock()
			if dirty {
				_ = ds.save()
			}
		}
	}
}

// save writes the store atomically via a temp file rename.
func (ds *DataStore) save() error {
	ds.mu.Lock()
	raw, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		ds.mu.Unlock()
		return err
	}
	ds.dirty = false
	ds.mu.Unlock()

	tmp := ds.file + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, ds.file)
}
