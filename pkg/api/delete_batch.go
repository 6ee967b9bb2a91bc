package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// HandleDeleteBatch handles POST requests deleting every document id of a
// JSON array body
func (h *Handler) HandleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	indexUID := mux.Vars(r)["indexUid"]
	log := h.requestLogger(r).With(logger.String("index", indexUID))

	values, err := decodeIDArray(r.Body)
	if err != nil {
		log.Info("Decoding delete-batch body failed", logger.Error(err))
		WriteJSONError(w, http.StatusBadRequest, "malformed_payload", "body must be a JSON array: "+err.Error())
		return
	}

	ids, err := DocumentIDsFromJSON(values)
	if err != nil {
		log.Info("Invalid delete-batch body", logger.Error(err))
		writeControllerError(w, err)
		return
	}
	log.Debug("handleDeleteBatch called", logger.Int("count", len(ids)))

	record, err := h.controller.RegisterUpdate(r.Context(), indexUID, domain.DeleteDocuments{IDs: ids}, false)
	if err != nil {
		log.Warn("Batch delete was not registered", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	log.Info("Batch delete registered", logger.Uint64("update_id", record.ID), logger.Int("count", len(ids)))
	writeAccepted(w, record)
}

// decodeIDArray reads exactly one JSON array from body
func decodeIDArray(body io.Reader) ([]json.RawMessage, error) {
	dec := json.NewDecoder(body)
	var values []json.RawMessage
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, errors.New("got null")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the array")
	}
	return values, nil
}

// DocumentIDsFromJSON turns each value into a document id. A JSON string is
// used as is; anything else becomes its compact JSON text with sorted object
// keys, so 3 becomes "3", 1e2 becomes "100.0" and {"x":1} becomes "{\"x\":1}".
func DocumentIDsFromJSON(values []json.RawMessage) ([]string, error) {
	ids := make([]string, 0, len(values))
	for i, raw := range values {
		id, err := documentIDFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v: %w", i, err, domain.ErrBadRequest)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func documentIDFromJSON(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return "", err
	}
	if s, ok := value.(string); ok {
		return s, nil
	}

	var buf bytes.Buffer
	if err := writeCanonicalJSON(&buf, value); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeCanonicalJSON writes value compactly with sorted object keys. Integers
// keep their digits; other numbers are printed in shortest form with at least
// one fractional digit, e.g. 1e2 as 100.0 and 1.5e-7 as 1.5e-7.
func writeCanonicalJSON(buf *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case json.Number:
		s, err := canonicalNumber(v)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case string:
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalJSON(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonicalJSON(buf, v[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported JSON value %T", value)
	}
	return nil
}

func canonicalNumber(n json.Number) (string, error) {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return strconv.FormatUint(u, 10), nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return "", err
	}
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-5 && abs < 1e16) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, nil
	}
	// 1e+21 -> 1e21, 1.5e-07 -> 1.5e-7
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := ""
	if exp[0] == '-' {
		sign = "-"
	}
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + exp, nil
}
