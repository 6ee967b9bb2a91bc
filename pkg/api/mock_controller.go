package api

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/adfharrison1/go-search/pkg/domain"
)

// RegisteredUpdate is one RegisterUpdate call seen by MockIndexController
type RegisteredUpdate struct {
	IndexUID string
	Update   domain.Update
	Async    bool
	// Body holds the drained payload of a DocumentAddition
	Body []byte
}

// MockIndexController provides a mock implementation of domain.IndexController for testing
type MockIndexController struct {
	mu         sync.Mutex
	indexes    map[string][]domain.Document
	nextID     uint64
	updates    []RegisteredUpdate
	queries    []domain.BrowseQuery
	getCalls   int
	failWith   error
	primaryKey string
}

// NewMockIndexController creates a new mock controller
func NewMockIndexController() *MockIndexController {
	return &MockIndexController{
		indexes:    make(map[string][]domain.Document),
		primaryKey: "id",
	}
}

// SetDocuments seeds an index with documents keyed by "id"
func (m *MockIndexController) SetDocuments(indexUID string, docs ...domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[indexUID] = docs
}

// FailWith makes every later call return err
func (m *MockIndexController) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Document returns the seeded document whose id matches documentID
func (m *MockIndexController) Document(ctx context.Context, indexUID, documentID string, attributes []string) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	if m.failWith != nil {
		return nil, m.failWith
	}
	docs, ok := m.indexes[indexUID]
	if !ok {
		return nil, domain.ErrIndexNotFound
	}
	for _, doc := range docs {
		if id, ok := doc[m.primaryKey].(string); ok && id == documentID {
			return doc.Project(attributes), nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

// Documents returns a window of the seeded documents
func (m *MockIndexController) Documents(ctx context.Context, indexUID string, query domain.BrowseQuery) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)

	if m.failWith != nil {
		return nil, m.failWith
	}
	docs, ok := m.indexes[indexUID]
	if !ok {
		return nil, domain.ErrIndexNotFound
	}

	result := make([]domain.Document, 0)
	for i := query.Offset; i < len(docs) && len(result) < query.Limit; i++ {
		result = append(result, docs[i].Project(query.AttributesToRetrieve))
	}
	return result, nil
}

// RegisterUpdate records the update, draining an addition payload, and
// hands out increasing ids
func (m *MockIndexController) RegisterUpdate(ctx context.Context, indexUID string, update domain.Update, isAsync bool) (*domain.UpdateRecord, error) {
	call := RegisteredUpdate{IndexUID: indexUID, Update: update, Async: isAsync}
	if addition, ok := update.(domain.DocumentAddition); ok && addition.Payload != nil {
		body, err := io.ReadAll(addition.Payload)
		if err != nil {
			return nil, err
		}
		call.Body = body
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}

	m.updates = append(m.updates, call)
	record := &domain.UpdateRecord{
		ID:         m.nextID,
		IndexUID:   indexUID,
		Kind:       update.Kind(),
		Async:      isAsync,
		Status:     domain.StatusEnqueued,
		EnqueuedAt: time.Now(),
	}
	m.nextID++
	return record, nil
}

// Updates returns the registered updates in call order
func (m *MockIndexController) Updates() []RegisteredUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RegisteredUpdate(nil), m.updates...)
}

// Queries returns the browse queries seen so far
func (m *MockIndexController) Queries() []domain.BrowseQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BrowseQuery(nil), m.queries...)
}

// GetCalls returns the number of Document calls
func (m *MockIndexController) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}
