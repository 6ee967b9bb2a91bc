// Package controller joins the index store and the update queue behind the
// domain.IndexController contract used by the HTTP layer.
package controller

import (
	"context"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/storage"
	"github.com/adfharrison1/go-search/pkg/updates"
)

// Controller answers reads from the store and hands mutations to the queue
type Controller struct {
	store *storage.StorageEngine
	queue *updates.Queue
}

var _ domain.IndexController = (*Controller)(nil)

// New creates a controller over store and queue
func New(store *storage.StorageEngine, queue *updates.Queue) *Controller {
	return &Controller{store: store, queue: queue}
}

// Document returns one document, projected to attributes when non-nil
func (c *Controller) Document(ctx context.Context, indexUID, documentID string, attributes []string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.store.GetDocument(indexUID, documentID, attributes)
}

// Documents returns a window of an index in insertion order
func (c *Controller) Documents(ctx context.Context, indexUID string, query domain.BrowseQuery) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.store.Browse(indexUID, query)
}

// RegisterUpdate queues update and returns without waiting for it to apply
func (c *Controller) RegisterUpdate(ctx context.Context, indexUID string, update domain.Update, isAsync bool) (*domain.UpdateRecord, error) {
	return c.queue.Register(ctx, indexUID, update, isAsync)
}

// Wait blocks until update id of indexUID is finished
func (c *Controller) Wait(ctx context.Context, indexUID string, id uint64) (domain.UpdateRecord, error) {
	return c.queue.Wait(ctx, indexUID, id)
}
