package gif

import "fmt"

// Status is the outcome of a resumable decoding step.
type Status int

const (
	// StatusNeedMoreData means the buffer ended inside a structure. The
	// decoder has rolled back to the last complete structure; call again with
	// a longer buffer.
	StatusNeedMoreData Status = iota
	// StatusComplete means the requested work is done.
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusNeedMoreData:
		return "NeedMoreData"
	case StatusComplete:
		return "Complete"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Section indicators.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B
)

// Extension labels.
const (
	eText           = 0x01
	eGraphicControl = 0xF9
	eComment        = 0xFE
	eApplication    = 0xFF
)

// Image descriptor flags.
const (
	ifLocalColorTable     = 1 << 7
	ifInterlace           = 1 << 6
	ifLocalColorTableSize = 7
)

const gcTransparentColorSet = 1 << 0

// netscapeLooping is the application extension header announcing a loop
// count: block size, "NETSCAPE2.0", sub-block size 3, sub-block id 1.
var netscapeLooping = []byte{0x0b, 'N', 'E', 'T', 'S', 'C', 'A', 'P', 'E', '2', '.', '0', 0x03, 0x01}

// Decoder walks the block structure of a GIF file that may arrive in pieces.
// Each call receives the whole buffer received so far; offsets recorded in
// FrameInfo stay valid because the buffer only ever grows at the end.
type Decoder struct {
	screen *Screen

	pos            int
	lastCorrectPos int
	eof            bool

	pending   graphicControl
	loopCount int
	hasLoop   bool

	frames []FrameInfo
}

// NewDecoder parses the fixed header of buf. The header is never retried: a
// buffer shorter than the 13 header bytes is reported as an ErrOutOfRange
// error which callers must treat as fatal.
func NewDecoder(buf []byte) (*Decoder, error) {
	screen, pos, err := parseScreen(buf)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		screen:         screen,
		pos:            pos,
		lastCorrectPos: pos,
		pending:        defaultGraphicControl(),
	}, nil
}

// DecodeMetaAndFrameInfo continues scanning blocks from the last complete
// structure until more than target frames are known or the trailer is
// reached. Running out of bytes is not an error: the cursor is rolled back
// and StatusNeedMoreData is returned.
func (d *Decoder) DecodeMetaAndFrameInfo(buf []byte, target int) (Status, error) {
	if d.eof || len(d.frames) > target {
		return StatusComplete, nil
	}

	bs := NewByteStream(buf, d.pos)
	d.lastCorrectPos = d.pos

	for {
		done, err := d.scanBlock(bs, target)
		if err != nil {
			if IsNeedMoreData(err) {
				d.pos = d.lastCorrectPos
				return StatusNeedMoreData, nil
			}
			d.pos = d.lastCorrectPos
			return StatusNeedMoreData, err
		}
		d.lastCorrectPos = bs.Offset()
		d.pos = d.lastCorrectPos
		if done {
			return StatusComplete, nil
		}
	}
}

// scanBlock consumes exactly one block. Decoder state is only modified once
// the block has been read completely.
func (d *Decoder) scanBlock(bs *ByteStream, target int) (bool, error) {
	start := bs.Offset()
	tag, err := bs.ReadByte()
	if err != nil {
		return false, err
	}

	switch tag {
	case sExtension:
		return false, d.scanExtension(bs)

	case sImageDescriptor:
		frame, err := d.scanImageDescriptor(bs)
		if err != nil {
			return false, err
		}
		d.frames = append(d.frames, frame)
		return len(d.frames) > target, nil

	case sTrailer:
		d.eof = true
		return true, nil

	default:
		return false, &FormatError{Offset: start, Value: tag, Err: ErrUnknownBlock}
	}
}

func (d *Decoder) scanExtension(bs *ByteStream) error {
	labelPos := bs.Offset()
	label, err := bs.ReadByte()
	if err != nil {
		return err
	}

	switch label {
	case eGraphicControl:
		return d.scanGraphicControl(bs)

	case eApplication:
		looping := true
		for i, want := range netscapeLooping {
			b, err := bs.Peek(i)
			if err != nil {
				return err
			}
			if b != want {
				looping = false
				break
			}
		}
		if looping {
			// The loop count sub-block must be followed by its terminator.
			term, err := bs.Peek(len(netscapeLooping) + 2)
			if err != nil {
				return err
			}
			looping = term == 0
		}
		if !looping {
			// Skip the application block and its data sub-blocks.
			size, err := bs.ReadByte()
			if err != nil {
				return err
			}
			bs.Skip(int(size))
			return bs.SkipSubBlocks()
		}
		bs.Skip(len(netscapeLooping))
		count, err := bs.ReadUint16()
		if err != nil {
			return err
		}
		bs.Skip(1)
		d.loopCount = int(count)
		d.hasLoop = true
		return nil

	case eText, eComment:
		return bs.SkipSubBlocks()

	default:
		return &FormatError{Offset: labelPos, Value: label, Err: ErrUnknownExtension}
	}
}

func (d *Decoder) scanGraphicControl(bs *ByteStream) error {
	start := bs.Offset()
	size, err := bs.ReadByte()
	if err != nil {
		return err
	}
	term, err := bs.Peek(4)
	if err != nil {
		return err
	}
	if size != 4 || term != 0 {
		return &FormatError{Offset: start, Value: size, Err: ErrInvalidGraphicControl}
	}

	flags, err := bs.ReadByte()
	if err != nil {
		return err
	}
	delay, err := bs.ReadUint16()
	if err != nil {
		return err
	}
	index, err := bs.ReadByte()
	if err != nil {
		return err
	}
	bs.Skip(1)

	gc := graphicControl{
		delay:            int(delay),
		transparentIndex: int(index),
		disposal:         Disposal(flags >> 2 & 0x7),
	}
	if flags&gcTransparentColorSet == 0 {
		gc.transparentIndex = NoTransparentIndex
	}
	d.pending = gc
	return nil
}

func (d *Decoder) scanImageDescriptor(bs *ByteStream) (FrameInfo, error) {
	var geometry [4]int
	for i := range geometry {
		v, err := bs.ReadUint16()
		if err != nil {
			return FrameInfo{}, err
		}
		geometry[i] = int(v)
	}
	flags, err := bs.ReadByte()
	if err != nil {
		return FrameInfo{}, err
	}

	frame := FrameInfo{
		X:                geometry[0],
		Y:                geometry[1],
		Width:            geometry[2],
		Height:           geometry[3],
		PaletteOffset:    d.screen.GlobalPaletteOffset,
		PaletteSize:      d.screen.GlobalPaletteSize,
		TransparentIndex: d.pending.transparentIndex,
		Interlaced:       flags&ifInterlace != 0,
		Delay:            d.pending.delay,
		Disposal:         d.pending.disposal,
	}
	if flags&ifLocalColorTable != 0 {
		frame.HasLocalPalette = true
		frame.PaletteOffset = bs.Offset()
		frame.PaletteSize = 1 << (int(flags&ifLocalColorTableSize) + 1)
		bs.Skip(frame.PaletteSize * 3)
	}

	// Image data: the LZW minimum code size, then sub-blocks.
	frame.DataOffset = bs.Offset()
	bs.Skip(1)
	if err := bs.SkipSubBlocks(); err != nil {
		return FrameInfo{}, err
	}
	frame.DataLength = bs.Offset() - frame.DataOffset
	return frame, nil
}

// NumFrames returns the number of committed frame descriptors.
func (d *Decoder) NumFrames() int {
	return len(d.frames)
}

// FrameInfo returns the descriptor of frame idx.
func (d *Decoder) FrameInfo(idx int) (FrameInfo, error) {
	if idx < 0 || idx >= len(d.frames) {
		return FrameInfo{}, fmt.Errorf("%w: %d (have %d)", ErrFrameIndexOutOfRange, idx, len(d.frames))
	}
	return d.frames[idx], nil
}

// Frames returns the committed frame descriptors.
func (d *Decoder) Frames() []FrameInfo {
	return d.frames
}

// Screen returns the logical screen descriptor.
func (d *Decoder) Screen() Screen { return *d.screen }

// Width returns the logical screen width.
func (d *Decoder) Width() int { return d.screen.Width }

// Height returns the logical screen height.
func (d *Decoder) Height() int { return d.screen.Height }

// BackgroundIndex returns the logical screen background color index.
func (d *Decoder) BackgroundIndex() int { return d.screen.BackgroundIndex }

// LoopCount returns the Netscape loop count, if the extension was seen.
func (d *Decoder) LoopCount() (int, bool) { return d.loopCount, d.hasLoop }

// EOF reports whether the trailer has been scanned.
func (d *Decoder) EOF() bool { return d.eof }

// Offset returns the position of the next block to scan.
func (d *Decoder) Offset() int { return d.pos }
