package storage

import (
	"time"

	"github.com/adfharrison1/go-search/pkg/logger"
)

type StorageOption func(*StorageEngine)

// WithSnapshotFile sets the file used by SaveSnapshot and LoadSnapshot
func WithSnapshotFile(path string) StorageOption {
	return func(engine *StorageEngine) {
		engine.snapshotFile = path
	}
}

// WithBackgroundSave enables periodic snapshots of a dirty engine
func WithBackgroundSave(interval time.Duration) StorageOption {
	return func(engine *StorageEngine) {
		engine.backgroundSave = interval > 0
		engine.saveInterval = interval
	}
}

func WithLogger(l logger.Logger) StorageOption {
	return func(engine *StorageEngine) {
		engine.log = l
	}
}
