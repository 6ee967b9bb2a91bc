package storage

import (
	"time"

	"github.com/adfharrison1/go-search/pkg/domain"
)

// Index holds the documents of one index in insertion order
type Index struct {
	UID        string
	PrimaryKey string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	order     []string
	positions map[string]int
	documents map[string]domain.Document
}

// NewIndex creates an empty index
func NewIndex(uid string) *Index {
	now := time.Now().UTC()
	return &Index{
		UID:       uid,
		CreatedAt: now,
		UpdatedAt: now,
		positions: make(map[string]int),
		documents: make(map[string]domain.Document),
	}
}

// Len returns the number of documents
func (idx *Index) Len() int {
	return len(idx.order)
}

// Get returns the document stored under id
func (idx *Index) Get(id string) (domain.Document, bool) {
	doc, ok := idx.documents[id]
	return doc, ok
}

// Put stores doc under id. A new id is appended, an existing one keeps its
// position.
func (idx *Index) Put(id string, doc domain.Document) {
	if _, exists := idx.documents[id]; !exists {
		idx.positions[id] = len(idx.order)
		idx.order = append(idx.order, id)
	}
	idx.documents[id] = doc
}

// Delete removes id and reports whether it existed
func (idx *Index) Delete(id string) bool {
	pos, exists := idx.positions[id]
	if !exists {
		return false
	}
	delete(idx.documents, id)
	delete(idx.positions, id)
	idx.order = append(idx.order[:pos], idx.order[pos+1:]...)
	for i := pos; i < len(idx.order); i++ {
		idx.positions[idx.order[i]] = i
	}
	return true
}

// Clear removes every document and returns how many there were
func (idx *Index) Clear() int {
	n := len(idx.order)
	idx.order = nil
	idx.positions = make(map[string]int)
	idx.documents = make(map[string]domain.Document)
	return n
}

// Window returns the documents in [offset, offset+limit)
func (idx *Index) Window(offset, limit int) []domain.Document {
	offset = max(offset, 0)
	if offset >= len(idx.order) || limit <= 0 {
		return []domain.Document{}
	}
	end := min(offset+limit, len(idx.order))
	docs := make([]domain.Document, 0, end-offset)
	for _, id := range idx.order[offset:end] {
		docs = append(docs, idx.documents[id])
	}
	return docs
}

// Info describes the index without its documents
func (idx *Index) Info() domain.IndexInfo {
	return domain.IndexInfo{
		UID:           idx.UID,
		PrimaryKey:    idx.PrimaryKey,
		DocumentCount: len(idx.order),
		CreatedAt:     idx.CreatedAt,
		UpdatedAt:     idx.UpdatedAt,
	}
}

func (idx *Index) touch() {
	idx.UpdatedAt = time.Now().UTC()
}
