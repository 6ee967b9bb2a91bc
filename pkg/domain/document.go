package domain

import "time"

// Document represents a document stored in an index
type Document map[string]interface{}

// Project returns a copy of the document restricted to the given attributes.
// A nil attribute list means no projection and returns the document as is.
func (d Document) Project(attributes []string) Document {
	if attributes == nil {
		return d
	}
	projected := make(Document, len(attributes))
	for _, name := range attributes {
		if value, ok := d[name]; ok {
			projected[name] = value
		}
	}
	return projected
}

// IndexInfo describes an index without its documents
type IndexInfo struct {
	UID           string    `json:"uid"`
	PrimaryKey    string    `json:"primaryKey,omitempty"`
	DocumentCount int       `json:"documentCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
