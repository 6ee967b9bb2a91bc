package updates

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-search/pkg/domain"
)

// ReadJSONDocuments decodes a JSON array of objects one element at a time.
// Integral numbers become int64, other numbers float64.
func ReadJSONDocuments(r io.Reader) ([]domain.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON payload: %v: %w", err, domain.ErrPayload)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("JSON payload must be an array of documents: %w", domain.ErrPayload)
	}

	docs := []domain.Document{}
	for dec.More() {
		var doc map[string]interface{}
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("document %d: %v: %w", len(docs), err, domain.ErrPayload)
		}
		if doc == nil {
			return nil, fmt.Errorf("document %d is not an object: %w", len(docs), domain.ErrPayload)
		}
		docs = append(docs, domain.Document(normalizeNumbers(doc).(map[string]interface{})))
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading JSON payload: %v: %w", err, domain.ErrPayload)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after the document array: %w", domain.ErrPayload)
	}
	return docs, nil
}

func normalizeNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case map[string]interface{}:
		for k, inner := range v {
			v[k] = normalizeNumbers(inner)
		}
		return v
	case []interface{}:
		for i, inner := range v {
			v[i] = normalizeNumbers(inner)
		}
		return v
	default:
		return v
	}
}

// csvField is a header cell: a name with an optional ":number" or ":string" type
type csvField struct {
	name    string
	numeric bool
}

func parseCSVHeader(header []string) ([]csvField, error) {
	fields := make([]csvField, len(header))
	for i, cell := range header {
		name, kind, found := strings.Cut(cell, ":")
		if !found {
			fields[i] = csvField{name: cell}
			continue
		}
		switch kind {
		case "number":
			fields[i] = csvField{name: name, numeric: true}
		case "string":
			fields[i] = csvField{name: name}
		default:
			return nil, fmt.Errorf("unknown CSV type %q for column %q: %w", kind, name, domain.ErrPayload)
		}
	}
	return fields, nil
}

// ReadCSVDocuments decodes a CSV payload whose first record is the header.
// Columns typed ":number" parse as float64, empty cells as null.
func ReadCSVDocuments(r io.Reader) ([]domain.Document, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %v: %w", err, domain.ErrPayload)
	}
	fields, err := parseCSVHeader(header)
	if err != nil {
		return nil, err
	}

	docs := []domain.Document{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %v: %w", err, domain.ErrPayload)
		}

		doc := make(domain.Document, len(fields))
		for i, field := range fields {
			cell := record[i]
			if !field.numeric {
				doc[field.name] = cell
				continue
			}
			if cell == "" {
				doc[field.name] = nil
				continue
			}
			number, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %q is not a number: %w", len(docs)+2, field.name, cell, domain.ErrPayload)
			}
			doc[field.name] = number
		}
		docs = append(docs, doc)
	}
}
