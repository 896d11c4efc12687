package source

import (
	"context"
	"errors"
	"io"
)

// DefaultChunkSize is the read size used when Pump is given none.
const DefaultChunkSize = 10 * 1024

// ErrIncomplete is returned by Pump when the stream ends before done is
// closed.
var ErrIncomplete = errors.New("source: stream ended before decoding finished")

// Sink consumes chunks in order. Implementations must copy what they keep.
type Sink interface {
	Feed(chunk []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(chunk []byte) error

func (f SinkFunc) Feed(chunk []byte) error { return f(chunk) }

// Stats describes how much of a stream Pump consumed.
type Stats struct {
	Read   int64
	Chunks int
}

// Pump reads r in chunks of chunkSize bytes and feeds them to sink until
// done is closed, the sink fails, ctx ends or r is exhausted. Reading stops
// as soon as done is closed, so the rest of the stream is never fetched.
func Pump(ctx context.Context, r io.Reader, chunkSize int, sink Sink, done <-chan struct{}) (Stats, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	var stats Stats
	buf := make([]byte, chunkSize)
	for {
		select {
		case <-done:
			return stats, nil
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		n, err := io.ReadFull(r, buf)
		if n > 0 {
			stats.Read += int64(n)
			stats.Chunks++
			if ferr := sink.Feed(buf[:n]); ferr != nil {
				return stats, ferr
			}
		}
		switch {
		case err == io.EOF || err == io.ErrUnexpectedEOF:
			select {
			case <-done:
				return stats, nil
			default:
				return stats, ErrIncomplete
			}
		case err != nil:
			return stats, err
		}
	}
}

// Percent returns the share of total that was read, or -1 when total is
// unknown.
func (s Stats) Percent(total int64) float64 {
	if total <= 0 {
		return -1
	}
	return float64(s.Read) * 100 / float64(total)
}
