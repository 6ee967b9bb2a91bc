package domain

import "context"

// IndexController is the backend contract consumed by the HTTP layer.
// Reads are answered inline; RegisterUpdate returns as soon as the update is
// queued and never waits for it to be applied.
type IndexController interface {
	Document(ctx context.Context, indexUID, documentID string, attributes []string) (Document, error)
	Documents(ctx context.Context, indexUID string, query BrowseQuery) ([]Document, error)
	// RegisterUpdate queues update for indexUID. isAsync flags updates that may
	// take significant backend time; it does not change the call's behaviour.
	RegisterUpdate(ctx context.Context, indexUID string, update Update, isAsync bool) (*UpdateRecord, error)
}
