// Package giframe decodes one frame of a GIF while the file is still
// arriving.
//
// A GIFrame is fed chunks of the file in order. Each call advances it as far
// as the buffered bytes allow through the stages init, decode-meta,
// decode-pixel and done, emitting an Event per stage. Once the target frame
// is decoded it is handed to an Encoder, and the encoded result completes
// the workflow; the remaining bytes of the file are never needed.
package giframe

import (
	"fmt"
	"io"
	"log"

	"github.com/jdeng/gogiframe/internal/gif"
)

// Options configures a GIFrame. The zero value produces a JPEG data URI of
// the frame at full size.
type Options struct {
	// Encoder converts the decoded frame. Nil selects DataURIEncoder.
	Encoder Encoder
	// Format, Quality, MaxWidth and MaxHeight are passed to the Encoder.
	Format    Format
	Quality   int
	MaxWidth  int
	MaxHeight int
	// Logger receives one line per stage transition. Nil discards them.
	Logger *log.Logger
}

// GIFrame drives the decoding of a single frame across repeated partial
// buffers. It is not safe for concurrent use, except for Done, Result and
// Wait.
type GIFrame struct {
	frameIndex int
	opts       Options
	encoder    Encoder
	logger     *log.Logger

	buf   []byte
	owned bool // buf was allocated by Feed and may be appended to

	stage   Stage
	locked  bool
	running bool
	err     error

	decoder *gif.Decoder
	frame   gif.FrameInfo
	pixels  []byte
	result  string

	subs   []subscription
	nextID int
	future *future
}

// New creates a GIFrame that decodes frame frameIndex (0-based).
func New(frameIndex int, opts Options) *GIFrame {
	g := &GIFrame{
		frameIndex: frameIndex,
		opts:       opts,
		encoder:    opts.Encoder,
		logger:     opts.Logger,
		future:     newFuture(),
	}
	if g.encoder == nil {
		g.encoder = DataURIEncoder{}
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard, "", 0)
	}
	return g
}

// Feed appends chunk to the buffered file and advances the workflow. While
// the GIFrame is locked the chunk is dropped. The first chunk must contain
// at least the 13-byte header.
//
// A fatal error stops the workflow for good: it is returned from this and
// every later call, and Done is closed with it.
func (g *GIFrame) Feed(chunk []byte) error {
	return g.update(func() {
		if !g.owned {
			g.buf = append(make([]byte, 0, len(g.buf)+len(chunk)), g.buf...)
			g.owned = true
		}
		g.buf = append(g.buf, chunk...)
	})
}

// Update replaces the buffered file with buf, which must extend the bytes
// seen so far, and advances the workflow. buf is read, never modified.
func (g *GIFrame) Update(buf []byte) error {
	return g.update(func() {
		g.buf = buf
		g.owned = false
	})
}

func (g *GIFrame) update(record func()) error {
	if g.err != nil {
		return g.err
	}
	if g.locked || g.stage == StageAlready {
		return nil
	}
	if g.stage == StageDone {
		if !g.running {
			g.switchStage(StageAlready, AlreadyEvent{Result: g.result})
		}
		return nil
	}

	record()
	// A handler feeding more data only extends the buffer; the running
	// loop picks it up.
	if g.running {
		return nil
	}
	g.running = true
	defer func() { g.running = false }()
	return g.advance()
}

// advance moves through as many stages as the buffer allows.
func (g *GIFrame) advance() error {
	for !g.locked {
		var (
			next bool
			err  error
		)
		switch g.stage {
		case StageNone:
			next, err = g.init()
		case StageInit:
			next, err = g.scan()
		case StageMeta:
			next, err = g.decodePixels()
		case StagePixel:
			err = g.encode()
		case StageDone, StageAlready:
			return nil
		default:
			err = fmt.Errorf("%w: %v", ErrUnknownStage, g.stage)
		}
		if err != nil {
			return g.fail(err)
		}
		if !next {
			return nil
		}
	}
	return nil
}

func (g *GIFrame) init() (bool, error) {
	dec, err := gif.NewDecoder(g.buf)
	if err != nil {
		return false, err
	}
	g.decoder = dec
	g.switchStage(StageInit, InitEvent{})
	return true, nil
}

func (g *GIFrame) scan() (bool, error) {
	status, err := g.decoder.DecodeMetaAndFrameInfo(g.buf, g.frameIndex)
	if err != nil || status != gif.StatusComplete {
		return false, err
	}
	frame, err := g.decoder.FrameInfo(g.frameIndex)
	if err != nil {
		return false, err
	}
	g.frame = frame
	g.switchStage(StageMeta, MetaEvent{Frame: newFrameInfo(frame)})
	return true, nil
}

func (g *GIFrame) decodePixels() (bool, error) {
	pixels, status, err := g.decoder.DecodeFrameRGBA(g.frameIndex, g.buf)
	if err != nil || status != gif.StatusComplete {
		return false, err
	}
	g.pixels = pixels
	g.switchStage(StagePixel, PixelEvent{Pixels: pixels})
	return true, nil
}

func (g *GIFrame) encode() error {
	result, err := g.encoder.Encode(g.pixels, EncodeOptions{
		Width:     g.frame.Width,
		Height:    g.frame.Height,
		Format:    g.opts.Format,
		Quality:   g.opts.Quality,
		MaxWidth:  g.opts.MaxWidth,
		MaxHeight: g.opts.MaxHeight,
	})
	if err != nil {
		return fmt.Errorf("giframe: encode frame %d: %w", g.frameIndex, err)
	}
	g.result = result
	g.future.resolve(result)
	g.switchStage(StageDone, DoneEvent{Result: result})
	return nil
}

func (g *GIFrame) switchStage(stage Stage, e Event) {
	g.logger.Printf("stage %v -> %v (%d bytes buffered)", g.stage, stage, len(g.buf))
	g.stage = stage
	g.emit(e)
}

func (g *GIFrame) fail(err error) error {
	g.logger.Printf("stage %v failed: %v", g.stage, err)
	g.err = err
	g.future.reject(err)
	return err
}

// Lock pauses the workflow at its current stage. Chunks fed while locked
// are dropped.
func (g *GIFrame) Lock() { g.locked = true }

// Unlock allows the next Feed or Update to continue the workflow.
func (g *GIFrame) Unlock() { g.locked = false }

// Locked reports whether the workflow is paused.
func (g *GIFrame) Locked() bool { return g.locked }

// BufferLength returns the number of bytes buffered so far.
func (g *GIFrame) BufferLength() int { return len(g.buf) }

// Stage returns the current stage.
func (g *GIFrame) Stage() Stage { return g.stage }

// FrameIndex returns the index of the frame being decoded.
func (g *GIFrame) FrameIndex() int { return g.frameIndex }

// Err returns the fatal error that stopped the workflow, if any.
func (g *GIFrame) Err() error { return g.err }

// NumFrames returns how many frame descriptors have been scanned so far.
func (g *GIFrame) NumFrames() int {
	if g.decoder == nil {
		return 0
	}
	return g.decoder.NumFrames()
}

// FrameInfo returns the descriptor of scanned frame i.
func (g *GIFrame) FrameInfo(i int) (FrameInfo, error) {
	if g.decoder == nil {
		return FrameInfo{}, fmt.Errorf("%w: %d (header not parsed)", gif.ErrFrameIndexOutOfRange, i)
	}
	frame, err := g.decoder.FrameInfo(i)
	if err != nil {
		return FrameInfo{}, err
	}
	return newFrameInfo(frame), nil
}

// Screen returns the logical screen, once the header has been parsed.
func (g *GIFrame) Screen() (Screen, bool) {
	if g.decoder == nil {
		return Screen{}, false
	}
	s := g.decoder.Screen()
	count, looping := g.decoder.LoopCount()
	return Screen{
		Width:            s.Width,
		Height:           s.Height,
		BackgroundIndex:  s.BackgroundIndex,
		HasGlobalPalette: s.HasGlobalPalette,
		Looping:          looping,
		LoopCount:        count,
	}, true
}
