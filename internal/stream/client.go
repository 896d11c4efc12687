package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jdeng/gogiframe/internal/source"
	"github.com/jdeng/gogiframe/pkg/giframe"
)

// ErrRemote wraps a decoding failure reported by the server.
var ErrRemote = errors.New("stream: server failed to decode")

// PushResult is what a completed upload produced.
type PushResult struct {
	ID       string
	Result   string
	Frame    *giframe.FrameInfo
	Messages []Message
	Stats    source.Stats
}

// Push uploads r to the websocket server at url in config.ChunkSize chunks
// and returns once the server reports the encoded frame. Uploading stops as
// soon as the frame is done, so r is usually not read to its end.
func Push(ctx context.Context, config *Config, url string, r io.Reader) (*PushResult, error) {
	if config == nil {
		config = DefaultConfig()
	}
	out := config.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := log.New(out, "[push] ", log.LstdFlags)

	dialer := &websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to WebSocket: %w", err)
	}
	defer conn.Close()
	logger.Printf("Connection established with %s", url)

	res := &PushResult{}
	// done is closed when the result arrives, stop whenever uploading is
	// pointless: on the result or when the server goes away.
	done := make(chan struct{})
	stop := make(chan struct{})
	var stopOnce sync.Once
	halt := func() { stopOnce.Do(func() { close(stop) }) }
	readErr := make(chan error, 1)
	go func() {
		err := readMessages(conn, res, done, halt)
		halt()
		readErr <- err
	}()

	sink := source.SinkFunc(func(chunk []byte) error {
		conn.SetWriteDeadline(time.Now().Add(config.WriteTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			return fmt.Errorf("failed to send chunk: %w", err)
		}
		return nil
	})
	stats, pumpErr := source.Pump(ctx, r, config.ChunkSize, sink, stop)
	res.Stats = stats
	if pumpErr != nil && !errors.Is(pumpErr, source.ErrIncomplete) {
		logger.Printf("Upload stopped: %v", pumpErr)
	}

	// Ask the server to close; it answers after its final messages.
	err = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(config.WriteTimeout))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		logger.Printf("Error sending close message: %v", err)
	}

	var rerr error
	select {
	case rerr = <-readErr:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-done:
		logger.Printf("Frame received after %d bytes in %d chunks", stats.Read, stats.Chunks)
		return res, nil
	default:
	}
	if rerr != nil {
		return nil, rerr
	}
	if pumpErr != nil {
		return nil, pumpErr
	}
	return nil, source.ErrIncomplete
}

// readMessages collects server messages until the connection closes. It
// closes done and calls halt when the result arrives, and reports a
// server-side failure.
func readMessages(conn *websocket.Conn, res *PushResult, done chan struct{}, halt func()) error {
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig) {
				return fmt.Errorf("unexpected WebSocket error: %w", err)
			}
			return nil
		}
		res.Messages = append(res.Messages, msg)
		res.ID = msg.ID
		if msg.Frame != nil {
			res.Frame = msg.Frame
		}
		switch {
		case msg.Error != "":
			return fmt.Errorf("%w: %s", ErrRemote, msg.Error)
		case msg.Stage == giframe.StageDone.String():
			res.Result = msg.Result
			close(done)
			halt()
		}
	}
}
