package api

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	MediaTypeJSON = "application/json"
	MediaTypeCSV  = "application/csv"
)

// Predicate decides whether a request can be served by a handler
type Predicate func(r *http.Request) bool

// ContentTypeContains matches requests whose Content-Type header contains mediaType
func ContentTypeContains(mediaType string) Predicate {
	return func(r *http.Request) bool {
		return strings.Contains(r.Header.Get("Content-Type"), mediaType)
	}
}

type negotiatedRoute struct {
	match   Predicate
	handler http.Handler
}

// Negotiator dispatches a request to the first handler whose predicate
// matches, in registration order. A miss is served by the fallback.
type Negotiator struct {
	routes   []negotiatedRoute
	fallback http.Handler
}

// NewNegotiator creates an empty negotiator. A nil fallback answers misses
// with a JSON 404.
func NewNegotiator(fallback http.Handler) *Negotiator {
	if fallback == nil {
		fallback = http.HandlerFunc(routeNotFound)
	}
	return &Negotiator{fallback: fallback}
}

// On appends a (predicate, handler) pair and returns n for chaining
func (n *Negotiator) On(match Predicate, handler http.HandlerFunc) *Negotiator {
	n.routes = append(n.routes, negotiatedRoute{match: match, handler: handler})
	return n
}

func (n *Negotiator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, route := range n.routes {
		if route.match(r) {
			route.handler.ServeHTTP(w, r)
			return
		}
	}
	n.fallback.ServeHTTP(w, r)
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSONError(w, http.StatusNotFound, "not_found",
		fmt.Sprintf("no route for %s %s with Content-Type %q", r.Method, r.URL.Path, r.Header.Get("Content-Type")))
}
