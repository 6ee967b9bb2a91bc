// Package updates registers document mutations and applies them in the
// background. Registration returns an update record with a per-index,
// monotonically increasing id as soon as the update is queued; each index has
// one worker that applies its updates in registration order.
package updates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// ErrUpdateNotFound is returned by Status and Wait for an unknown update id
var ErrUpdateNotFound = errors.New("update not found")

// Store is the index store updates are applied to
type Store interface {
	CreateIndexIfMissing(uid string) (bool, error)
	IndexExists(uid string) bool
	AddDocuments(uid string, docs []domain.Document, primaryKey string, method domain.IndexDocumentsMethod) (int, error)
	DeleteDocuments(uid string, ids []string) (int, error)
	ClearDocuments(uid string) (int, error)
}

// Recorder receives update lifecycle events, typically for metrics
type Recorder interface {
	UpdateRegistered(kind domain.UpdateKind, async bool)
	UpdateProcessed(kind domain.UpdateKind, status domain.UpdateStatus, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) UpdateRegistered(domain.UpdateKind, bool)                              {}
func (nopRecorder) UpdateProcessed(domain.UpdateKind, domain.UpdateStatus, time.Duration) {}

// Queue is the update submission backend
type Queue struct {
	store     Store
	spoolDir  string
	queueSize int
	log       logger.Logger
	recorder  Recorder

	mu      sync.Mutex
	indexes map[string]*indexQueue
	closed  bool
	wg      sync.WaitGroup
}

// indexQueue holds the updates of one index
type indexQueue struct {
	uid     string
	pending chan *task

	mu     sync.Mutex
	nextID uint64
	tasks  map[uint64]*task
}

// task is a registered update waiting for, or done with, processing
type task struct {
	record domain.UpdateRecord // guarded by indexQueue.mu
	update domain.Update
	spool  string
	done   chan struct{}
}

// Option configures a Queue
type Option func(*Queue)

// WithQueueSize bounds the number of pending updates per index
func WithQueueSize(size int) Option {
	return func(q *Queue) {
		if size > 0 {
			q.queueSize = size
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(q *Queue) {
		q.log = l
	}
}

func WithRecorder(r Recorder) Option {
	return func(q *Queue) {
		q.recorder = r
	}
}

// NewQueue creates a queue spooling payloads under spoolDir
func NewQueue(store Store, spoolDir string, opts ...Option) (*Queue, error) {
	q := &Queue{
		store:     store,
		spoolDir:  spoolDir,
		queueSize: 1000,
		log:       logger.NewNop(),
		recorder:  nopRecorder{},
		indexes:   make(map[string]*indexQueue),
	}
	for _, opt := range opts {
		opt(q)
	}

	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}
	// update records live in memory, so spools from a previous run have no owner
	if removed := purgeSpools(spoolDir); removed > 0 {
		q.log.Warn("Removed orphaned spool files", logger.String("dir", spoolDir), logger.Int("count", removed))
	}
	return q, nil
}

// Register queues update for uid. Document additions are drained into a
// spool file first so the caller's payload can be released. The returned
// record is a snapshot taken at registration time.
func (q *Queue) Register(ctx context.Context, uid string, update domain.Update, isAsync bool) (*domain.UpdateRecord, error) {
	if q.isClosed() {
		return nil, fmt.Errorf("update queue is closed: %w", domain.ErrBackendUnavailable)
	}

	t := &task{update: update, done: make(chan struct{})}

	if addition, ok := update.(domain.DocumentAddition); ok {
		spool, err := q.spoolPayload(ctx, addition.Payload)
		if err != nil {
			return nil, err
		}
		t.spool = spool
		// the payload was consumed; keep only what processing needs
		addition.Payload = nil
		t.update = addition
	}

	record, err := q.enqueue(uid, t, isAsync)
	if err != nil {
		q.removeSpool(t)
		return nil, err
	}

	q.recorder.UpdateRegistered(record.Kind, isAsync)
	q.log.Info("Registered update",
		logger.String("index", uid),
		logger.Uint64("update_id", record.ID),
		logger.String("type", string(record.Kind)),
		logger.Bool("async", isAsync))
	return &record, nil
}

// enqueue assigns the next id of uid to t and hands it to the index worker
func (q *Queue) enqueue(uid string, t *task, isAsync bool) (domain.UpdateRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return domain.UpdateRecord{}, fmt.Errorf("update queue is closed: %w", domain.ErrBackendUnavailable)
	}

	if _, ok := t.update.(domain.DocumentAddition); ok {
		if _, err := q.store.CreateIndexIfMissing(uid); err != nil {
			return domain.UpdateRecord{}, err
		}
	} else if !q.store.IndexExists(uid) {
		return domain.UpdateRecord{}, fmt.Errorf("index %s: %w", uid, domain.ErrIndexNotFound)
	}

	iq := q.indexQueueLocked(uid)

	iq.mu.Lock()
	defer iq.mu.Unlock()

	t.record = domain.UpdateRecord{
		ID:         iq.nextID,
		IndexUID:   uid,
		Kind:       t.update.Kind(),
		Async:      isAsync,
		Status:     domain.StatusEnqueued,
		EnqueuedAt: time.Now().UTC(),
	}

	select {
	case iq.pending <- t:
	default:
		return domain.UpdateRecord{}, fmt.Errorf("update queue of index %s is full: %w", uid, domain.ErrBackendUnavailable)
	}

	iq.tasks[t.record.ID] = t
	iq.nextID++
	return t.record, nil
}

// indexQueueLocked returns the queue of uid, starting its worker on first
// use. q.mu must be held.
func (q *Queue) indexQueueLocked(uid string) *indexQueue {
	if iq, ok := q.indexes[uid]; ok {
		return iq
	}

	iq := &indexQueue{
		uid:     uid,
		pending: make(chan *task, q.queueSize),
		tasks:   make(map[uint64]*task),
	}
	q.indexes[uid] = iq

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for t := range iq.pending {
			q.process(iq, t)
		}
	}()
	return iq
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue) lookup(uid string, id uint64) (*indexQueue, *task, error) {
	q.mu.Lock()
	iq, ok := q.indexes[uid]
	q.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("update %d of index %s: %w", id, uid, ErrUpdateNotFound)
	}

	iq.mu.Lock()
	t, ok := iq.tasks[id]
	iq.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("update %d of index %s: %w", id, uid, ErrUpdateNotFound)
	}
	return iq, t, nil
}

// Status returns the current state of an update
func (q *Queue) Status(uid string, id uint64) (domain.UpdateRecord, error) {
	iq, t, err := q.lookup(uid, id)
	if err != nil {
		return domain.UpdateRecord{}, err
	}
	iq.mu.Lock()
	defer iq.mu.Unlock()
	return t.record, nil
}

// Wait blocks until the update is processed or failed, or ctx is done
func (q *Queue) Wait(ctx context.Context, uid string, id uint64) (domain.UpdateRecord, error) {
	_, t, err := q.lookup(uid, id)
	if err != nil {
		return domain.UpdateRecord{}, err
	}

	select {
	case <-t.done:
		return q.Status(uid, id)
	case <-ctx.Done():
		return domain.UpdateRecord{}, ctx.Err()
	}
}

// Close stops accepting updates and waits until every queued update was
// processed or ctx is done.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		for _, iq := range q.indexes {
			close(iq.pending)
		}
	}
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for pending updates: %w", ctx.Err())
	}
}
