package storage

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// resolvePrimaryKey picks the primary key for a batch of documents
func resolvePrimaryKey(current, requested string, docs []domain.Document) (string, error) {
	if current != "" {
		if requested != "" && requested != current {
			return "", fmt.Errorf("index already has primary key %q, got %q: %w", current, requested, domain.ErrPrimaryKey)
		}
		return current, nil
	}
	if requested != "" {
		return requested, nil
	}
	if len(docs) == 0 {
		return "", nil
	}
	if key, ok := InferPrimaryKey(docs[0]); ok {
		return key, nil
	}
	return "", fmt.Errorf("could not infer a primary key from the first document: %w", domain.ErrPrimaryKey)
}

// InferPrimaryKey returns the first field, in sorted order, whose name
// contains "id" regardless of case
func InferPrimaryKey(doc domain.Document) (string, bool) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "id") {
			return k, true
		}
	}
	return "", false
}

// DocumentID renders the primary key value of doc as a document id. Strings
// must be non-empty and only contain ASCII letters, digits, '-' and '_';
// numbers must be integral.
func DocumentID(doc domain.Document, primaryKey string) (string, error) {
	value, ok := doc[primaryKey]
	if !ok {
		return "", fmt.Errorf("missing primary key %q: %w", primaryKey, domain.ErrPrimaryKey)
	}

	switch v := value.(type) {
	case string:
		if !validDocumentID(v) {
			return "", fmt.Errorf("invalid document id %q: %w", v, domain.ErrPrimaryKey)
		}
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	default:
		if f, ok := ToFloat64(v); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return "", fmt.Errorf("invalid document id %v of type %T: %w", value, value, domain.ErrPrimaryKey)
	}
}

func validDocumentID(id string) bool {
	if id == "" || len(id) > 511 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ToFloat64 converts floating point values to float64
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

func logFields(uid string) []logger.Field {
	return []logger.Field{logger.String("index", uid)}
}
