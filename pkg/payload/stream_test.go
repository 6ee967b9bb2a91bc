package payload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReader serves size bytes per Read until total bytes were served
type countingReader struct {
	size  int
	left  int
	reads atomic.Int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	if r.left <= 0 {
		return 0, io.EOF
	}
	n := min(r.size, r.left, len(p))
	for i := 0; i < n; i++ {
		p[i] = byte('a' + (r.left-i)%26)
	}
	r.left -= n
	r.reads.Add(1)
	return n, nil
}

// endlessReader never ends
type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	return len(p), nil
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestStream_ForwardsBytesInOrder(t *testing.T) {
	body := strings.Repeat("0123456789", 1000)

	s := NewStream(context.Background(), strings.NewReader(body), WithChunkSize(7))
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestStream_EmptyBody(t *testing.T) {
	s := NewStream(context.Background(), bytes.NewReader(nil))

	_, ok := s.Next(context.Background())
	assert.False(t, ok)
}

func TestStream_PropagatesTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	body := io.MultiReader(strings.NewReader("[{\"id\":1}"), failingReader{err: transportErr})

	s := NewStream(context.Background(), body, WithChunkSize(4))
	got, err := io.ReadAll(s)

	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, "[{\"id\":1}", string(got), "bytes before the failure are still delivered")

	// the error is sticky
	_, err = s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, transportErr)
}

func TestStream_NextDeliversErrorAsItem(t *testing.T) {
	transportErr := errors.New("unexpected EOF")
	s := NewStream(context.Background(), failingReader{err: transportErr})

	chunk, ok := s.Next(context.Background())
	require.True(t, ok)
	assert.ErrorIs(t, chunk.Err, transportErr)
	assert.Nil(t, chunk.Data)

	_, ok = s.Next(context.Background())
	assert.False(t, ok)
}

func TestStream_BoundedMemory(t *testing.T) {
	const chunkSize = 16
	const chunks = 200
	body := &countingReader{size: chunkSize, left: chunkSize * chunks}

	s := NewStream(context.Background(), body, WithChunkSize(chunkSize))
	defer s.Close()

	consumed := int64(0)
	maxAhead := int64(0)
	for {
		assert.LessOrEqual(t, s.Buffered(), 1)
		chunk, ok := s.Next(context.Background())
		if !ok {
			break
		}
		require.NoError(t, chunk.Err)
		consumed++

		if consumed%20 == 0 {
			// give the forwarder every chance to run ahead
			time.Sleep(2 * time.Millisecond)
		}
		// one chunk in the channel plus one held by the blocked forwarder
		ahead := body.reads.Load() - consumed
		maxAhead = max(maxAhead, ahead)
		assert.LessOrEqual(t, ahead, int64(2))
	}

	assert.Equal(t, int64(chunks), consumed)
	assert.LessOrEqual(t, maxAhead, int64(2))
}

func TestStream_CancelStopsForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(ctx, endlessReader{}, WithChunkSize(8))

	_, ok := s.Next(context.Background())
	require.True(t, ok)
	cancel()

	deadline, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	for {
		if _, ok := s.Next(deadline); !ok {
			break
		}
	}
	assert.NoError(t, deadline.Err(), "forwarder should close the channel after cancellation")
}

func TestStream_CloseStopsForwarder(t *testing.T) {
	s := NewStream(context.Background(), endlessReader{}, WithChunkSize(8))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	deadline, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	for {
		if _, ok := s.Next(deadline); !ok {
			break
		}
	}
	assert.NoError(t, deadline.Err())
}

func TestStream_NextHonoursContext(t *testing.T) {
	release := make(chan struct{})
	s := NewStream(context.Background(), blockingReader{release: release})
	defer s.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunk, ok := s.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, chunk.Err, context.Canceled)
}

func TestStream_ReadHook(t *testing.T) {
	var total atomic.Int64
	s := NewStream(context.Background(), strings.NewReader("hello world"),
		WithChunkSize(4), WithReadHook(func(n int) { total.Add(int64(n)) }))

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	assert.Equal(t, int64(len("hello world")), total.Load())
}

// blockingReader blocks until release is closed
type blockingReader struct {
	release chan struct{}
}

func (r blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestStream_CancelledReadIsNotEOF(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(ctx, endlessReader{}, WithChunkSize(8))
	cancel()

	_, err := io.Copy(io.Discard, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_ClosedReadIsNotEOF(t *testing.T) {
	s := NewStream(context.Background(), endlessReader{}, WithChunkSize(8))
	require.NoError(t, s.Close())

	_, err := io.Copy(io.Discard, s)
	assert.ErrorIs(t, err, ErrClosed)
}
