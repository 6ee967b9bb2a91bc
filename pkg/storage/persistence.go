package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// SaveSnapshot writes the configured snapshot file
func (se *StorageEngine) SaveSnapshot() error {
	if se.snapshotFile == "" {
		return nil
	}
	return se.SaveToFile(se.snapshotFile)
}

// LoadSnapshot loads the configured snapshot file. A missing file is not an
// error.
func (se *StorageEngine) LoadSnapshot() error {
	if se.snapshotFile == "" {
		return nil
	}
	return se.LoadFromFile(se.snapshotFile)
}

// SaveToFile writes every index to filename as header + lz4(msgpack)
func (se *StorageEngine) SaveToFile(filename string) error {
	generation := se.currentGeneration()
	snapshot := se.exportSnapshot()

	msgpackData, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	compressedData = compressedData[:n]

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	// write to a temporary file first so a crash never leaves a torn snapshot
	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteHeader(file, len(msgpackData)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := file.Write(compressedData); err != nil {
		file.Close()
		return fmt.Errorf("failed to write compressed data: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	se.markSaved(generation)
	se.log.Info("Saved snapshot", logger.String("file", filename), logger.Int("indexes", len(snapshot.Indexes)))
	return nil
}

// LoadFromFile replaces the in-memory indexes with the content of filename
func (se *StorageEngine) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	header, err := ReadHeader(file)
	if err != nil {
		return fmt.Errorf("invalid file header: %w", err)
	}
	compressedData, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read compressed data: %w", err)
	}
	decompressedData := make([]byte, header.RawLength)
	n, err := lz4.UncompressBlock(compressedData, decompressedData)
	if err != nil {
		return fmt.Errorf("failed to decompress data: %w", err)
	}
	decompressedData = decompressedData[:n]

	var snapshot SnapshotData
	if err := msgpack.Unmarshal(decompressedData, &snapshot); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	se.importSnapshot(&snapshot)
	se.log.Info("Loaded snapshot", logger.String("file", filename), logger.Int("indexes", len(snapshot.Indexes)))
	return nil
}

func (se *StorageEngine) exportSnapshot() *SnapshotData {
	snapshot := NewSnapshotData()
	snapshot.Metadata["saved_at"] = time.Now().UTC()

	for _, info := range se.ListIndexes() {
		_ = se.withIndexReadLock(info.UID, func(idx *Index) error {
			docs := make(map[string]map[string]interface{}, idx.Len())
			for id, doc := range idx.documents {
				docs[id] = map[string]interface{}(doc)
			}
			snapshot.Indexes[idx.UID] = IndexSnapshot{
				PrimaryKey: idx.PrimaryKey,
				CreatedAt:  idx.CreatedAt,
				UpdatedAt:  idx.UpdatedAt,
				Order:      append([]string(nil), idx.order...),
				Documents:  docs,
			}
			return nil
		})
	}
	return snapshot
}

func (se *StorageEngine) importSnapshot(snapshot *SnapshotData) {
	indexes := make(map[string]*Index, len(snapshot.Indexes))
	for uid, stored := range snapshot.Indexes {
		idx := NewIndex(uid)
		idx.PrimaryKey = stored.PrimaryKey
		idx.CreatedAt = stored.CreatedAt
		idx.UpdatedAt = stored.UpdatedAt
		for _, id := range stored.Order {
			if doc, ok := stored.Documents[id]; ok {
				idx.Put(id, domain.Document(doc))
			}
		}
		indexes[uid] = idx
	}

	se.mu.Lock()
	se.indexes = indexes
	se.dirty = false
	se.mu.Unlock()
}
