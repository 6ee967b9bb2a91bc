package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// MagicBytes identifies a snapshot file
	MagicBytes = "GOSE"
	// FormatVersion is the current snapshot layout
	FormatVersion = 1
	// FileExtension is the conventional snapshot file extension
	FileExtension = ".gose"
)

// FileHeader is the fixed-size header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "GOSE"
	Version  uint8   // Format version
	Flags    uint8   // Reserved
	Reserved [2]byte // Reserved
	// RawLength is the size of the msgpack body before compression
	RawLength uint64
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, rawLength int) error {
	header := FileHeader{
		Magic:     [4]byte{'G', 'O', 'S', 'E'},
		Version:   FormatVersion,
		RawLength: uint64(rawLength),
	}
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}
	return &header, nil
}

// SnapshotData is the msgpack body of a snapshot file
type SnapshotData struct {
	Indexes  map[string]IndexSnapshot `msgpack:"indexes"`
	Metadata map[string]interface{}   `msgpack:"metadata,omitempty"`
}

// IndexSnapshot is the persisted form of an Index
type IndexSnapshot struct {
	PrimaryKey string                            `msgpack:"primary_key,omitempty"`
	CreatedAt  time.Time                         `msgpack:"created_at"`
	UpdatedAt  time.Time                         `msgpack:"updated_at"`
	Order      []string                          `msgpack:"order"`
	Documents  map[string]map[string]interface{} `msgpack:"documents"`
}

// NewSnapshotData creates a new empty snapshot
func NewSnapshotData() *SnapshotData {
	return &SnapshotData{
		Indexes:  make(map[string]IndexSnapshot),
		Metadata: make(map[string]interface{}),
	}
}
