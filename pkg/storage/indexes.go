package storage

import (
	"fmt"
	"sort"

	"github.com/adfharrison1/go-search/pkg/domain"
)

// getIndex looks an index up without taking its lock
func (se *StorageEngine) getIndex(uid string) (*Index, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	idx, exists := se.indexes[uid]
	if !exists {
		return nil, fmt.Errorf("index %s: %w", uid, domain.ErrIndexNotFound)
	}
	return idx, nil
}

// IndexExists reports whether uid names an index
func (se *StorageEngine) IndexExists(uid string) bool {
	_, err := se.getIndex(uid)
	return err == nil
}

// CreateIndexIfMissing creates uid when it does not exist yet and reports
// whether it did
func (se *StorageEngine) CreateIndexIfMissing(uid string) (bool, error) {
	if uid == "" {
		return false, fmt.Errorf("index uid cannot be empty: %w", domain.ErrBadRequest)
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	if _, exists := se.indexes[uid]; exists {
		return false, nil
	}
	se.indexes[uid] = NewIndex(uid)
	se.markDirtyLocked()
	se.log.Info("Created index", logFields(uid)...)
	return true, nil
}

// GetIndexInfo describes one index
func (se *StorageEngine) GetIndexInfo(uid string) (domain.IndexInfo, error) {
	var info domain.IndexInfo
	err := se.withIndexReadLock(uid, func(idx *Index) error {
		info = idx.Info()
		return nil
	})
	return info, err
}

// ListIndexes describes every index, sorted by uid
func (se *StorageEngine) ListIndexes() []domain.IndexInfo {
	se.mu.RLock()
	uids := make([]string, 0, len(se.indexes))
	for uid := range se.indexes {
		uids = append(uids, uid)
	}
	se.mu.RUnlock()
	sort.Strings(uids)

	infos := make([]domain.IndexInfo, 0, len(uids))
	for _, uid := range uids {
		if info, err := se.GetIndexInfo(uid); err == nil {
			infos = append(infos, info)
		}
	}
	return infos
}

// PrimaryKey returns the primary key of an index, empty while unknown
func (se *StorageEngine) PrimaryKey(uid string) (string, error) {
	info, err := se.GetIndexInfo(uid)
	return info.PrimaryKey, err
}
