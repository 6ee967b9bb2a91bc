package updates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"

	"github.com/adfharrison1/go-search/pkg/domain"
	"github.com/adfharrison1/go-search/pkg/logger"
)

const (
	spoolBufferSize = 32 * 1024
	spoolExt        = ".lz4"
)

// spoolPayload copies payload into an lz4 compressed file and returns its
// path. Read failures are payload errors; nothing is left on disk on failure.
func (q *Queue) spoolPayload(ctx context.Context, payload io.Reader) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("document addition without payload: %w", domain.ErrPayload)
	}

	path := filepath.Join(q.spoolDir, uuid.New().String()+spoolExt)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}

	err = copyCompressed(ctx, file, payload)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close spool file: %w", closeErr)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func copyCompressed(ctx context.Context, dst io.Writer, src io.Reader) error {
	zw := lz4.NewWriter(dst)
	buf := make([]byte, spoolBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := zw.Write(buf[:n]); err != nil {
				return fmt.Errorf("write spool file: %w", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if errors.Is(readErr, context.Canceled) || errors.Is(readErr, context.DeadlineExceeded) {
				return readErr
			}
			return fmt.Errorf("reading payload: %v: %w", readErr, domain.ErrPayload)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush spool file: %w", err)
	}
	return nil
}

// openSpool returns a reader over the decompressed spool of t
func openSpool(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spool file: %w", err)
	}
	return &spoolReader{Reader: lz4.NewReader(file), file: file}, nil
}

type spoolReader struct {
	*lz4.Reader
	file *os.File
}

func (r *spoolReader) Close() error {
	return r.file.Close()
}

func (q *Queue) removeSpool(t *task) {
	if t.spool == "" {
		return
	}
	if err := os.Remove(t.spool); err != nil && !errors.Is(err, os.ErrNotExist) {
		q.log.Warn("Could not remove spool file", logger.String("file", t.spool), logger.Error(err))
	}
}

func purgeSpools(dir string) int {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+spoolExt))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range paths {
		if os.Remove(path) == nil {
			removed++
		}
	}
	return removed
}
