package stream

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jdeng/gogiframe/pkg/giframe"
)

// ErrBufferLimit is reported when an upload outgrows Config.MaxBufferSize
// before the frame is decoded.
var ErrBufferLimit = errors.New("stream: upload exceeds the buffer limit")

// Server upgrades requests to websockets and decodes the binary messages of
// each connection as consecutive chunks of one GIF. The query parameters
// frame, format, quality, max-width and max-height select what is decoded
// and how it is encoded.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewServer creates a server. A nil config selects DefaultConfig.
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	out := config.LogOutput
	if out == nil {
		out = os.Stdout
	}
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: config.HandshakeTimeout,
		},
		logger: log.New(out, "[stream] ", log.LstdFlags),
	}
}

// Handler returns a mux serving the server on config.Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, s)
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	frame, opts, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("Upgrade failed: %v", err)
		return
	}

	id := uuid.NewString()
	c := &session{
		id:     id,
		conn:   conn,
		config: s.config,
		logger: log.New(s.logger.Writer(), fmt.Sprintf("[conn %s] ", id[:8]), log.LstdFlags),
	}
	opts.Logger = c.logger
	c.logger.Printf("Decoding frame %d for %s", frame, r.RemoteAddr)
	c.run(giframe.New(frame, opts))
}

func parseQuery(r *http.Request) (int, giframe.Options, error) {
	var opts giframe.Options
	q := r.URL.Query()

	frame := 0
	ints := []struct {
		name string
		dst  *int
	}{
		{"frame", &frame},
		{"quality", &opts.Quality},
		{"max-width", &opts.MaxWidth},
		{"max-height", &opts.MaxHeight},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, opts, fmt.Errorf("invalid %s %q", p.name, v)
		}
		*p.dst = n
	}

	if v := q.Get("format"); v != "" {
		format, err := giframe.ParseFormat(v)
		if err != nil {
			return 0, opts, err
		}
		opts.Format = format
	}
	return frame, opts, nil
}

type session struct {
	id     string
	conn   *websocket.Conn
	config *Config
	logger *log.Logger
}

func (c *session) run(g *giframe.GIFrame) {
	defer c.conn.Close()
	c.conn.SetReadLimit(c.config.ReadLimit)

	g.Subscribe(func(e giframe.Event) {
		if _, ok := e.(giframe.PixelEvent); ok {
			c.logger.Printf("Frame %d decoded after %d bytes", g.FrameIndex(), g.BufferLength())
		}
		c.send(newMessage(c.id, g, e))
	})

	for {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Printf("Unexpected close: %v", err)
			} else {
				c.logger.Printf("Client closed after %d bytes", g.BufferLength())
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if limit := c.config.MaxBufferSize; limit > 0 && int64(g.BufferLength()+len(data)) > limit {
			c.logger.Printf("Upload exceeds %d bytes", limit)
			c.send(Message{ID: c.id, Stage: g.Stage().String(), Buffered: g.BufferLength(), Error: ErrBufferLimit.Error()})
			c.close(websocket.CloseMessageTooBig, "buffer limit")
			return
		}

		if err := g.Feed(data); err != nil {
			c.logger.Printf("Decoding failed: %v", err)
			c.send(Message{ID: c.id, Stage: g.Stage().String(), Buffered: g.BufferLength(), Error: err.Error()})
			c.close(websocket.CloseUnsupportedData, "decoding failed")
			return
		}
		if g.Stage() >= giframe.StageDone {
			c.close(websocket.CloseNormalClosure, "done")
			return
		}
	}
}

func (c *session) send(msg Message) {
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Printf("Error sending %s message: %v", msg.Stage, err)
	}
}

// close sends a close frame and drains the connection until the client
// answers with its own.
func (c *session) close(code int, text string) {
	deadline := time.Now().Add(c.config.CloseTimeout)
	err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	if err != nil {
		c.logger.Printf("Error sending close message: %v", err)
		return
	}
	c.conn.SetReadDeadline(deadline)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}
