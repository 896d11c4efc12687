package giframe

import "github.com/jdeng/gogiframe/internal/gif"

// NoTransparentIndex is the TransparentIndex of frames without transparency.
const NoTransparentIndex = gif.NoTransparentIndex

// ErrFrameIndexOutOfRange is returned when a frame index is not (yet) known.
var ErrFrameIndexOutOfRange = gif.ErrFrameIndexOutOfRange

// Disposal is the disposal method recorded for a frame.
type Disposal uint8

const (
	DisposalUnspecified Disposal = iota
	DisposalNone
	DisposalBackground
	DisposalPrevious
)

func (d Disposal) String() string {
	return gif.Disposal(d).String()
}

// FrameInfo describes one image block of the file. Offsets index into the
// buffered file.
type FrameInfo struct {
	X      int
	Y      int
	Width  int
	Height int

	HasLocalPalette bool
	PaletteOffset   int
	PaletteSize     int
	DataOffset      int
	DataLength      int

	TransparentIndex int
	Interlaced       bool
	// Delay is in hundredths of a second.
	Delay    int
	Disposal Disposal
}

// HasTransparency reports whether the frame has a transparent color.
func (f FrameInfo) HasTransparency() bool {
	return f.TransparentIndex != NoTransparentIndex
}

func newFrameInfo(f gif.FrameInfo) FrameInfo {
	return FrameInfo{
		X:                f.X,
		Y:                f.Y,
		Width:            f.Width,
		Height:           f.Height,
		HasLocalPalette:  f.HasLocalPalette,
		PaletteOffset:    f.PaletteOffset,
		PaletteSize:      f.PaletteSize,
		DataOffset:       f.DataOffset,
		DataLength:       f.DataLength,
		TransparentIndex: f.TransparentIndex,
		Interlaced:       f.Interlaced,
		Delay:            f.Delay,
		Disposal:         Disposal(f.Disposal),
	}
}

// Screen is the logical screen of the file.
type Screen struct {
	Width            int
	Height           int
	BackgroundIndex  int
	HasGlobalPalette bool
	// Looping is set once a Netscape looping extension has been scanned.
	// A LoopCount of zero then means forever.
	Looping   bool
	LoopCount int
}
