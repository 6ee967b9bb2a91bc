package updates

import (
	"fmt"
	"time"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

// process applies t to the store and records the outcome
func (q *Queue) process(iq *indexQueue, t *task) {
	start := time.Now()
	iq.mu.Lock()
	t.record.Status = domain.StatusProcessing
	id := t.record.ID
	iq.mu.Unlock()

	affected, err := q.apply(iq.uid, t)
	q.removeSpool(t)

	processedAt := time.Now().UTC()
	iq.mu.Lock()
	t.record.ProcessedAt = &processedAt
	t.record.Affected = affected
	if err != nil {
		t.record.Status = domain.StatusFailed
		t.record.Error = err.Error()
	} else {
		t.record.Status = domain.StatusProcessed
	}
	status := t.record.Status
	iq.mu.Unlock()

	took := time.Since(start)
	q.recorder.UpdateProcessed(t.update.Kind(), status, took)
	defer close(t.done)

	fields := []logger.Field{
		logger.String("index", iq.uid),
		logger.Uint64("update_id", id),
		logger.String("type", string(t.update.Kind())),
		logger.Int("affected", affected),
		logger.Duration("took", took),
	}
	if err != nil {
		q.log.Warn("Update failed", append(fields, logger.Error(err))...)
		return
	}
	q.log.Info("Update processed", fields...)
}

func (q *Queue) apply(uid string, t *task) (int, error) {
	switch update := t.update.(type) {
	case domain.DocumentAddition:
		docs, err := q.readSpool(t.spool, update.Format)
		if err != nil {
			return 0, err
		}
		return q.store.AddDocuments(uid, docs, update.PrimaryKey, update.Method)
	case domain.DeleteDocuments:
		return q.store.DeleteDocuments(uid, update.IDs)
	case domain.ClearDocuments:
		return q.store.ClearDocuments(uid)
	default:
		return 0, fmt.Errorf("unsupported update type %T", t.update)
	}
}

func (q *Queue) readSpool(path string, format domain.DocumentFormat) ([]domain.Document, error) {
	r, err := openSpool(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	switch format {
	case domain.FormatJSON:
		return ReadJSONDocuments(r)
	case domain.FormatCSV:
		return ReadCSVDocuments(r)
	default:
		return nil, fmt.Errorf("unsupported document format %q: %w", format, domain.ErrPayload)
	}
}
