package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name))
	}
}

func TestNegotiator_FirstMatchWins(t *testing.T) {
	n := NewNegotiator(nil).
		On(ContentTypeContains("json"), named("first")).
		On(ContentTypeContains(MediaTypeJSON), named("second"))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", MediaTypeJSON)
	w := httptest.NewRecorder()
	n.ServeHTTP(w, req)

	assert.Equal(t, "first", w.Body.String())
}

func TestNegotiator_Fallback(t *testing.T) {
	n := NewNegotiator(named("fallback")).On(ContentTypeContains(MediaTypeCSV), named("csv"))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	n.ServeHTTP(w, req)

	assert.Equal(t, "fallback", w.Body.String())
}

func TestNegotiator_DefaultFallbackIsNotFound(t *testing.T) {
	n := NewNegotiator(nil).On(ContentTypeContains(MediaTypeCSV), named("csv"))

	req := httptest.NewRequest(http.MethodPost, "/indexes/a/documents", nil)
	w := httptest.NewRecorder()
	n.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"not_found"`)
}
