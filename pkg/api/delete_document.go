package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// HandleDeleteDocument handles DELETE requests for one document
func (h *Handler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	indexUID := vars["indexUid"]
	docID := vars["documentId"]
	log := h.requestLogger(r).With(logger.String("index", indexUID), logger.String("document_id", docID))

	log.Debug("handleDeleteDocument called")

	update := domain.DeleteDocuments{IDs: []string{docID}}
	record, err := h.controller.RegisterUpdate(r.Context(), indexUID, update, false)
	if err != nil {
		log.Warn("Delete was not registered", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	log.Info("Delete registered", logger.Uint64("update_id", record.ID))
	writeAccepted(w, record)
}
