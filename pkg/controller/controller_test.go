package controller

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/storage"
	"github.com/adfharrison1/go-search/pkg/updates"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	store := storage.NewStorageEngine()
	queue, err := updates.NewQueue(store, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { queue.Close(context.Background()) })
	return New(store, queue)
}

func register(t *testing.T, c *Controller, uid string, update domain.Update) domain.UpdateRecord {
	t.Helper()
	record, err := c.RegisterUpdate(context.Background(), uid, update, true)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := c.Wait(ctx, uid, record.ID)
	require.NoError(t, err)
	return done
}

func TestController_AddThenRead(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	record := register(t, c, "movies", domain.DocumentAddition{
		Payload: strings.NewReader(`[{"id":"a","title":"Alien","year":1979},{"id":"b","title":"Brazil","year":1985}]`),
		Method:  domain.ReplaceDocuments,
		Format:  domain.FormatJSON,
	})
	require.Equal(t, domain.StatusProcessed, record.Status, record.Error)
	assert.Equal(t, 2, record.Affected)

	doc, err := c.Document(ctx, "movies", "b", []string{"title"})
	require.NoError(t, err)
	assert.Equal(t, domain.Document{"title": "Brazil"}, doc)

	docs, err := c.Documents(ctx, "movies", domain.BrowseQuery{Offset: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0]["id"])
}

func TestController_DeleteOnUnknownIndex(t *testing.T) {
	c := newTestController(t)

	_, err := c.RegisterUpdate(context.Background(), "ghost", domain.DeleteDocuments{IDs: []string{"1"}}, false)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)

	_, err = c.Documents(context.Background(), "ghost", domain.BrowseQuery{Limit: 20})
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestController_CancelledRead(t *testing.T) {
	c := newTestController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Document(ctx, "movies", "a", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
