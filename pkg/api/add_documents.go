package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
	"github.com/adfharrison1/go-search/pkg/payload"
)

// HandleAddDocumentsJSON adds or replaces documents from a JSON array body
func (h *Handler) HandleAddDocumentsJSON(w http.ResponseWriter, r *http.Request) {
	h.documentAddition(w, r, domain.FormatJSON, domain.ReplaceDocuments)
}

// HandleAddDocumentsCSV adds or replaces documents from a CSV body
func (h *Handler) HandleAddDocumentsCSV(w http.ResponseWriter, r *http.Request) {
	h.documentAddition(w, r, domain.FormatCSV, domain.ReplaceDocuments)
}

// HandleUpdateDocumentsJSON adds documents or merges them into stored ones, from a JSON array body
func (h *Handler) HandleUpdateDocumentsJSON(w http.ResponseWriter, r *http.Request) {
	h.documentAddition(w, r, domain.FormatJSON, domain.UpdateDocuments)
}

// HandleUpdateDocumentsCSV adds documents or merges them into stored ones, from a CSV body
func (h *Handler) HandleUpdateDocumentsCSV(w http.ResponseWriter, r *http.Request) {
	h.documentAddition(w, r, domain.FormatCSV, domain.UpdateDocuments)
}

// documentAddition streams the body into a DocumentAddition update and
// answers 202 as soon as the update is registered
func (h *Handler) documentAddition(w http.ResponseWriter, r *http.Request, format domain.DocumentFormat, method domain.IndexDocumentsMethod) {
	indexUID := mux.Vars(r)["indexUid"]
	log := h.requestLogger(r).With(
		logger.String("index", indexUID),
		logger.String("format", string(format)),
		logger.String("method", string(method)))

	values := r.URL.Query()
	if err := checkQueryFields(values, "primaryKey"); err != nil {
		log.Info("Rejected document addition", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	log.Debug("documentAddition called", logger.String("primary_key", values.Get("primaryKey")))

	stream := payload.NewStream(r.Context(), r.Body, payload.WithChunkSize(h.chunkSize))
	defer stream.Close()

	update := domain.DocumentAddition{
		Payload:    stream,
		PrimaryKey: values.Get("primaryKey"),
		Method:     method,
		Format:     format,
	}
	record, err := h.controller.RegisterUpdate(r.Context(), indexUID, update, true)
	if err != nil {
		log.Warn("Document addition was not registered", logger.Error(err))
		writeControllerError(w, err)
		return
	}

	log.Info("Document addition registered", logger.Uint64("update_id", record.ID))
	writeAccepted(w, record)
}
