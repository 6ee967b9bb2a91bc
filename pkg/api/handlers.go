package api

import (
	"net/http"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
	"github.com/adfharrison1/go-search/pkg/payload"
)

// Handler provides the HTTP handlers of the documents API
type Handler struct {
	controller domain.IndexController
	log        logger.Logger
	chunkSize  int
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithLogger sets the handler logger
func WithLogger(l logger.Logger) HandlerOption {
	return func(h *Handler) {
		h.log = l
	}
}

// WithChunkSize sets the read size used to stream request bodies
func WithChunkSize(size int) HandlerOption {
	return func(h *Handler) {
		if size > 0 {
			h.chunkSize = size
		}
	}
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(controller domain.IndexController, opts ...HandlerOption) *Handler {
	h := &Handler{
		controller: controller,
		log:        logger.NewNop(),
		chunkSize:  payload.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RequestIDHeader carries the id the server assigns to every request
const RequestIDHeader = "X-Request-ID"

func (h *Handler) requestLogger(r *http.Request) logger.Logger {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return h.log.With(logger.String("request_id", id))
	}
	return h.log
}
