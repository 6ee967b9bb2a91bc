package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/logger"
)

// HandleGetDocument handles GET requests to retrieve one document by id
func (h *Handler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	indexUID := vars["indexUid"]
	docID := vars["documentId"]
	log := h.requestLogger(r).With(logger.String("index", indexUID), logger.String("document_id", docID))

	log.Debug("handleGetDocument called")

	doc, err := h.controller.Document(r.Context(), indexUID, docID, nil)
	if err != nil {
		log.Info("Document lookup failed", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
