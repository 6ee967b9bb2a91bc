// Package payload adapts an HTTP request body into a bounded chunk stream that
// can be consumed from a different goroutine than the one serving the request.
//
// A single forwarding goroutine reads the body and hands chunks over through a
// channel of capacity one, so a slow consumer throttles how fast the body is
// drained and memory stays bounded regardless of payload size.
package payload

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrClosed is reported to readers of a Stream that was closed before the
// body was exhausted
var ErrClosed = errors.New("payload stream closed")

// DefaultChunkSize is the read size used when no option overrides it
const DefaultChunkSize = 64 * 1024

// Chunk is one item of a Stream: either a slice of body bytes or the
// transport error that ended the body.
type Chunk struct {
	Data []byte
	Err  error
}

// Stream is the consuming side of a forwarded body
type Stream struct {
	ch     chan Chunk
	done   chan struct{}
	closer sync.Once
	// abortErr is set by the forwarder before it closes ch early
	abortErr error

	// read state for io.Reader
	pending []byte
	err     error

	chunkSize int
	onRead    func(n int)
}

// Option configures a Stream
type Option func(*Stream)

// WithChunkSize sets how many bytes the forwarder reads at a time
func WithChunkSize(size int) Option {
	return func(s *Stream) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithReadHook registers fn to be called by the forwarder after every read
// from the body, before the chunk is handed over. Used for instrumentation.
func WithReadHook(fn func(n int)) Option {
	return func(s *Stream) {
		s.onRead = fn
	}
}

// NewStream starts forwarding body into the returned Stream. The forwarder
// stops at end of body, after forwarding a read error, or as soon as ctx is
// cancelled or the Stream is closed.
func NewStream(ctx context.Context, body io.Reader, opts ...Option) *Stream {
	s := &Stream{
		ch:        make(chan Chunk, 1),
		done:      make(chan struct{}),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.forward(ctx, body)
	return s
}

func (s *Stream) forward(ctx context.Context, body io.Reader) {
	defer close(s.ch)

	for {
		buf := make([]byte, s.chunkSize)
		n, err := body.Read(buf)
		if s.onRead != nil {
			s.onRead(n)
		}

		if n > 0 {
			if !s.send(ctx, Chunk{Data: buf[:n]}) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				// consumer gone is the only send failure and needs no handling
				s.send(ctx, Chunk{Err: err})
			}
			return
		}
	}
}

// send blocks until the consumer has room for c. It reports false when the
// consumer went away.
func (s *Stream) send(ctx context.Context, c Chunk) bool {
	select {
	case s.ch <- c:
		return true
	case <-ctx.Done():
		s.abortErr = ctx.Err()
		return false
	case <-s.done:
		s.abortErr = ErrClosed
		return false
	}
}

// Next returns the next chunk. ok is false once the body is exhausted, the
// stream was aborted, or ctx is done; in the last two cases chunk.Err says why.
func (s *Stream) Next(ctx context.Context) (chunk Chunk, ok bool) {
	select {
	case chunk, ok = <-s.ch:
		if !ok {
			return Chunk{Err: s.abortErr}, false
		}
		return chunk, true
	case <-ctx.Done():
		return Chunk{Err: ctx.Err()}, false
	}
}

// Read implements io.Reader. A transport error is returned once all bytes
// received before it have been read. An aborted stream never reports io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		chunk, ok := <-s.ch
		if !ok {
			s.err = io.EOF
			if s.abortErr != nil {
				s.err = s.abortErr
			}
			continue
		}
		if chunk.Err != nil {
			s.err = chunk.Err
			continue
		}
		s.pending = chunk.Data
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Buffered reports how many chunks sit in the hand-over channel
func (s *Stream) Buffered() int {
	return len(s.ch)
}

// Close releases the forwarder. Unread chunks are dropped.
func (s *Stream) Close() error {
	s.closer.Do(func() { close(s.done) })
	return nil
}
