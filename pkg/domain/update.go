package domain

import (
	"io"
	"time"
)

// DocumentFormat is the encoding of a document addition payload
type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatCSV  DocumentFormat = "csv"
)

// IndexDocumentsMethod selects how incoming documents are merged with stored ones
type IndexDocumentsMethod string

const (
	// ReplaceDocuments overwrites a stored document with the same id
	ReplaceDocuments IndexDocumentsMethod = "replace"
	// UpdateDocuments merges incoming fields into a stored document with the same id
	UpdateDocuments IndexDocumentsMethod = "update"
)

// UpdateKind names the variant of an Update
type UpdateKind string

const (
	KindDocumentAddition UpdateKind = "documentAddition"
	KindDocumentPartial  UpdateKind = "documentPartial"
	KindDeleteDocuments  UpdateKind = "deleteDocuments"
	KindClearDocuments   UpdateKind = "clearAll"
)

// Update is an immutable mutation intent submitted once to the update queue.
// It is implemented by DocumentAddition, DeleteDocuments and ClearDocuments.
type Update interface {
	Kind() UpdateKind
}

// DocumentAddition adds or replaces documents read from Payload
type DocumentAddition struct {
	Payload    io.Reader
	PrimaryKey string
	Method     IndexDocumentsMethod
	Format     DocumentFormat
}

// Kind implements Update
func (u DocumentAddition) Kind() UpdateKind {
	if u.Method == UpdateDocuments {
		return KindDocumentPartial
	}
	return KindDocumentAddition
}

// DeleteDocuments removes the listed document ids
type DeleteDocuments struct {
	IDs []string
}

// Kind implements Update
func (DeleteDocuments) Kind() UpdateKind { return KindDeleteDocuments }

// ClearDocuments removes every document of an index
type ClearDocuments struct{}

// Kind implements Update
func (ClearDocuments) Kind() UpdateKind { return KindClearDocuments }

// UpdateStatus is the processing state of a registered update
type UpdateStatus string

const (
	StatusEnqueued   UpdateStatus = "enqueued"
	StatusProcessing UpdateStatus = "processing"
	StatusProcessed  UpdateStatus = "processed"
	StatusFailed     UpdateStatus = "failed"
)

// UpdateRecord is created by the update queue when an update is registered
type UpdateRecord struct {
	ID          uint64       `json:"updateId"`
	IndexUID    string       `json:"indexUid"`
	Kind        UpdateKind   `json:"type"`
	Async       bool         `json:"async"`
	Status      UpdateStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	Affected    int          `json:"affected,omitempty"`
	EnqueuedAt  time.Time    `json:"enqueuedAt"`
	ProcessedAt *time.Time   `json:"processedAt,omitempty"`
}
