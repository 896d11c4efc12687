// Package stream decodes GIFs uploaded over a websocket while they are
// still being sent, and provides the matching upload client.
package stream

import (
	"io"
	"time"

	"github.com/jdeng/gogiframe/internal/source"
)

// Config holds the websocket settings shared by Server and Push.
type Config struct {
	// Path is the HTTP path the server answers on.
	Path             string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	// CloseTimeout bounds the wait for the peer's close frame.
	CloseTimeout time.Duration
	// ReadLimit caps the size of one uploaded chunk.
	ReadLimit int64
	// MaxBufferSize caps the bytes buffered for one connection. Zero means
	// no limit.
	MaxBufferSize int64
	// ChunkSize is the size of the chunks Push sends.
	ChunkSize int
	// LogOutput receives connection logs. Nil selects standard output.
	LogOutput io.Writer
}

func DefaultConfig() *Config {
	return &Config{
		Path:             "/decode",
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     10 * time.Second,
		CloseTimeout:     2 * time.Second,
		ReadLimit:        1 << 20,
		MaxBufferSize:    64 << 20,
		ChunkSize:        source.DefaultChunkSize,
	}
}
