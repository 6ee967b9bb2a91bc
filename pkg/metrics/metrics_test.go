package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-search/pkg/domain"
)

func TestMetrics_UpdateCounters(t *testing.T) {
	m := New()

	m.UpdateRegistered(domain.KindDocumentAddition, true)
	m.UpdateRegistered(domain.KindDocumentAddition, true)
	m.UpdateRegistered(domain.KindClearDocuments, false)
	m.UpdateProcessed(domain.KindDocumentAddition, domain.StatusFailed, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpdatesRegistered.WithLabelValues("documentAddition", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdatesRegistered.WithLabelValues("clearAll", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdatesProcessed.WithLabelValues("documentAddition", "failed")))
}

func TestMetrics_MiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()
	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/indexes/{indexUid}/documents", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodDelete)
	router.Handle("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodDelete, "/indexes/movies/documents", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.CollectAndCount(m.RequestDuration)
	assert.Equal(t, 1, count)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gosearch_http_request_duration_seconds_count{method="DELETE",route="/indexes/{indexUid}/documents",status="202"} 1`)
}

func TestMetrics_WatchIndexes(t *testing.T) {
	m := New()
	m.WatchIndexes(func() []domain.IndexInfo {
		return []domain.IndexInfo{
			{UID: "books", DocumentCount: 3},
			{UID: "movies", DocumentCount: 12},
		}
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gosearch_index_documents{index="books"} 3`)
	assert.Contains(t, w.Body.String(), `gosearch_index_documents{index="movies"} 12`)
}
