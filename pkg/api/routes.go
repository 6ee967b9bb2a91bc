package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)

	documents := router.PathPrefix("/indexes/{indexUid}/documents").Subrouter()

	fallback := router.NotFoundHandler
	documents.HandleFunc("", h.HandleGetDocuments).Methods(http.MethodGet)
	documents.Handle("", NewNegotiator(fallback).
		On(ContentTypeContains(MediaTypeJSON), h.HandleAddDocumentsJSON).
		On(ContentTypeContains(MediaTypeCSV), h.HandleAddDocumentsCSV)).
		Methods(http.MethodPost)
	documents.Handle("", NewNegotiator(fallback).
		On(ContentTypeContains(MediaTypeJSON), h.HandleUpdateDocumentsJSON).
		On(ContentTypeContains(MediaTypeCSV), h.HandleUpdateDocumentsCSV)).
		Methods(http.MethodPut)
	documents.HandleFunc("", h.HandleClearDocuments).Methods(http.MethodDelete)

	// must be registered before /{documentId} so the literal segment is not taken for an id
	documents.HandleFunc("/delete-batch", h.HandleDeleteBatch).Methods(http.MethodPost)
	documents.HandleFunc("/delete-batch", methodNotAllowed(http.MethodPost))

	documents.HandleFunc("/{documentId}", h.HandleGetDocument).Methods(http.MethodGet)
	documents.HandleFunc("/{documentId}", h.HandleDeleteDocument).Methods(http.MethodDelete)
}
