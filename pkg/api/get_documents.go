package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/logger"
)

// HandleGetDocuments handles GET requests listing documents of an index.
// Query parameters: offset (default 0), limit (default 20) and
// attributesToRetrieve, a comma separated field list where "*" means all.
func (h *Handler) HandleGetDocuments(w http.ResponseWriter, r *http.Request) {
	indexUID := mux.Vars(r)["indexUid"]
	log := h.requestLogger(r).With(logger.String("index", indexUID))

	query, err := parseBrowseQuery(r.URL.Query())
	if err != nil {
		log.Info("Rejected browse query", logger.Error(err))
		writeControllerError(w, err)
		return
	}
	log.Debug("handleGetDocuments called",
		logger.Int("offset", query.Offset),
		logger.Int("limit", query.Limit),
		logger.Strings("attributes", query.AttributesToRetrieve))

	docs, err := h.controller.Documents(r.Context(), indexUID, query)
	if err != nil {
		log.Info("Browse failed", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	log.Debug("Returning documents", logger.Int("count", len(docs)))
	writeJSON(w, http.StatusOK, docs)
}
