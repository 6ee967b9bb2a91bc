package storage

import (
	"fmt"

	"github.com/adfharrison1/go-search/pkg/domain"
)

// GetDocument retrieves one document, projected to attributes
func (se *StorageEngine) GetDocument(uid, docID string, attributes []string) (domain.Document, error) {
	var doc domain.Document
	err := se.withIndexReadLock(uid, func(idx *Index) error {
		stored, ok := idx.Get(docID)
		if !ok {
			return fmt.Errorf("document %s in index %s: %w", docID, uid, domain.ErrDocumentNotFound)
		}
		doc = stored.Project(attributes)
		return nil
	})
	return doc, err
}

// Browse returns the documents of the query window in insertion order
func (se *StorageEngine) Browse(uid string, query domain.BrowseQuery) ([]domain.Document, error) {
	var docs []domain.Document
	err := se.withIndexReadLock(uid, func(idx *Index) error {
		docs = idx.Window(query.Offset, query.Limit)
		for i, doc := range docs {
			docs[i] = doc.Project(query.AttributesToRetrieve)
		}
		return nil
	})
	return docs, err
}

// AddDocuments stores docs in uid. The primary key is the index's own, else
// primaryKey, else inferred from the first document. Either every document is
// stored or none is. Returns the number of documents written.
func (se *StorageEngine) AddDocuments(uid string, docs []domain.Document, primaryKey string, method domain.IndexDocumentsMethod) (int, error) {
	written := 0
	err := se.withIndexWriteLock(uid, func(idx *Index) error {
		key, err := resolvePrimaryKey(idx.PrimaryKey, primaryKey, docs)
		if err != nil {
			return err
		}

		ids := make([]string, len(docs))
		for i, doc := range docs {
			id, err := DocumentID(doc, key)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			ids[i] = id
		}

		idx.PrimaryKey = key
		for i, doc := range docs {
			idx.Put(ids[i], mergeDocument(idx, ids[i], doc, method))
		}
		idx.touch()
		written = len(docs)
		return nil
	})
	return written, err
}

// mergeDocument returns the value to store for id under method
func mergeDocument(idx *Index, id string, doc domain.Document, method domain.IndexDocumentsMethod) domain.Document {
	existing, ok := idx.Get(id)
	if method != domain.UpdateDocuments || !ok {
		return doc
	}
	merged := make(domain.Document, len(existing)+len(doc))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range doc {
		merged[k] = v
	}
	return merged
}

// DeleteDocuments removes ids from uid and returns how many existed
func (se *StorageEngine) DeleteDocuments(uid string, ids []string) (int, error) {
	deleted := 0
	err := se.withIndexWriteLock(uid, func(idx *Index) error {
		for _, id := range ids {
			if idx.Delete(id) {
				deleted++
			}
		}
		idx.touch()
		return nil
	})
	return deleted, err
}

// ClearDocuments removes every document of uid and returns how many there were
func (se *StorageEngine) ClearDocuments(uid string) (int, error) {
	cleared := 0
	err := se.withIndexWriteLock(uid, func(idx *Index) error {
		cleared = idx.Clear()
		idx.touch()
		return nil
	})
	return cleared, err
}
