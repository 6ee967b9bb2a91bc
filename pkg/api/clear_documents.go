package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// HandleClearDocuments handles DELETE requests removing every document of an index
func (h *Handler) HandleClearDocuments(w http.ResponseWriter, r *http.Request) {
	indexUID := mux.Vars(r)["indexUid"]
	log := h.requestLogger(r).With(logger.String("index", indexUID))

	log.Debug("handleClearDocuments called")

	record, err := h.controller.RegisterUpdate(r.Context(), indexUID, domain.ClearDocuments{}, false)
	if err != nil {
		log.Warn("Clear was not registered", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	log.Info("Clear registered", logger.Uint64("update_id", record.ID))
	writeAccepted(w, record)
}
