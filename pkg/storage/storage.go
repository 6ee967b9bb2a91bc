package storage

import (
	"sync"
	"time"

	"github.com/adfharrison1/go-search/pkg/logger"
)

// IndexLock provides per-index concurrency control
type IndexLock struct {
	mu sync.RWMutex
}

// StorageEngine keeps every index in memory and persists them as a single
// snapshot file.
type StorageEngine struct {
	mu      sync.RWMutex
	indexes map[string]*Index
	dirty   bool
	// generation counts changes; a save only clears dirty when no change
	// landed after it started
	generation uint64

	// Per-index locks so that documents of different indexes can be
	// written concurrently
	indexLocks map[string]*IndexLock
	locksMu    sync.RWMutex

	// Configuration
	snapshotFile   string
	backgroundSave bool
	saveInterval   time.Duration
	log            logger.Logger

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewStorageEngine creates a new storage engine
func NewStorageEngine(options ...StorageOption) *StorageEngine {
	engine := &StorageEngine{
		indexes:      make(map[string]*Index),
		indexLocks:   make(map[string]*IndexLock),
		saveInterval: 5 * time.Minute,
		log:          logger.NewNop(),
		stopChan:     make(chan struct{}),
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// getOrCreateIndexLock gets or creates the lock of an index
func (se *StorageEngine) getOrCreateIndexLock(uid string) *IndexLock {
	se.locksMu.RLock()
	if lock, exists := se.indexLocks[uid]; exists {
		se.locksMu.RUnlock()
		return lock
	}
	se.locksMu.RUnlock()

	se.locksMu.Lock()
	defer se.locksMu.Unlock()

	// Double-check in case another goroutine created it
	if lock, exists := se.indexLocks[uid]; exists {
		return lock
	}

	lock := &IndexLock{}
	se.indexLocks[uid] = lock
	return lock
}

// withIndexReadLock runs fn with a read lock on the index
func (se *StorageEngine) withIndexReadLock(uid string, fn func(*Index) error) error {
	idx, err := se.getIndex(uid)
	if err != nil {
		return err
	}
	lock := se.getOrCreateIndexLock(uid)
	lock.mu.RLock()
	defer lock.mu.RUnlock()
	return fn(idx)
}

// withIndexWriteLock runs fn with a write lock on the index and marks the
// engine dirty when fn succeeds
func (se *StorageEngine) withIndexWriteLock(uid string, fn func(*Index) error) error {
	idx, err := se.getIndex(uid)
	if err != nil {
		return err
	}
	lock := se.getOrCreateIndexLock(uid)
	lock.mu.Lock()
	err = fn(idx)
	lock.mu.Unlock()

	if err == nil {
		se.markDirty()
	}
	return err
}

func (se *StorageEngine) markDirty() {
	se.mu.Lock()
	se.markDirtyLocked()
	se.mu.Unlock()
}

func (se *StorageEngine) markDirtyLocked() {
	se.dirty = true
	se.generation++
}

func (se *StorageEngine) currentGeneration() uint64 {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.generation
}

// markSaved clears dirty if nothing changed since generation was read
func (se *StorageEngine) markSaved(generation uint64) {
	se.mu.Lock()
	defer se.mu.Unlock()
	if se.generation == generation {
		se.dirty = false
	}
}

// IsDirty reports whether the engine changed since the last snapshot
func (se *StorageEngine) IsDirty() bool {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.dirty
}
