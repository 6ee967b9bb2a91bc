package storage

import (
	"time"

	"github.com/adfharrison1/go-search/pkg/logger"
)

// StartBackgroundWorkers starts the periodic snapshot worker when enabled
func (se *StorageEngine) StartBackgroundWorkers() {
	if !se.backgroundSave {
		return
	}

	se.backgroundWg.Add(1)
	go func() {
		defer se.backgroundWg.Done()
		ticker := time.NewTicker(se.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !se.IsDirty() {
					continue
				}
				if err := se.SaveSnapshot(); err != nil {
					se.log.Error("Background save failed", logger.Error(err))
				}
			case <-se.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers
func (se *StorageEngine) StopBackgroundWorkers() {
	se.stopOnce.Do(func() { close(se.stopChan) })
	se.backgroundWg.Wait()
}
