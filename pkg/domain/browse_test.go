package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttributesToRetrieve(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "omitted", raw: "", expected: nil},
		{name: "star", raw: "*", expected: nil},
		{name: "star among names", raw: "title,*,id", expected: nil},
		{name: "single field", raw: "title", expected: []string{"title"}},
		{name: "order and duplicates kept", raw: "b,a,b", expected: []string{"b", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAttributesToRetrieve(tt.raw))
		})
	}
}

func TestDocument_Project(t *testing.T) {
	doc := Document{"id": "1", "title": "Dune", "year": 1965}

	assert.Equal(t, doc, doc.Project(nil))
	assert.Equal(t, Document{"title": "Dune"}, doc.Project([]string{"title", "missing"}))
	assert.Equal(t, Document{}, doc.Project([]string{}))
}

func TestDocumentAddition_Kind(t *testing.T) {
	assert.Equal(t, KindDocumentAddition, DocumentAddition{Method: ReplaceDocuments}.Kind())
	assert.Equal(t, KindDocumentPartial, DocumentAddition{Method: UpdateDocuments}.Kind())
	assert.Equal(t, KindDeleteDocuments, DeleteDocuments{}.Kind())
	assert.Equal(t, KindClearDocuments, ClearDocuments{}.Kind())
}
