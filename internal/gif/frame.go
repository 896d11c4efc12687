package gif

import "fmt"

// NoTransparentIndex is stored in FrameInfo.TransparentIndex when the frame
// has no transparent color. Palette indices stop at 255, so it never matches.
const NoTransparentIndex = 256

// Disposal is the 3-bit disposal method of a graphics control extension.
type Disposal uint8

const (
	DisposalUnspecified Disposal = iota
	DisposalNone
	DisposalBackground
	DisposalPrevious
)

func (d Disposal) String() string {
	switch d {
	case DisposalUnspecified:
		return "Unspecified"
	case DisposalNone:
		return "None"
	case DisposalBackground:
		return "Background"
	case DisposalPrevious:
		return "Previous"
	default:
		return fmt.Sprintf("Disposal(%d)", uint8(d))
	}
}

// FrameInfo describes one fully scanned image block. Offsets index into the
// cumulative input buffer.
type FrameInfo struct {
	X      int
	Y      int
	Width  int
	Height int

	HasLocalPalette bool
	// PaletteOffset is -1 when neither a local nor a global palette exists.
	PaletteOffset int
	PaletteSize   int

	DataOffset int
	DataLength int

	TransparentIndex int
	Interlaced       bool
	Delay            int
	Disposal         Disposal
}

// HasTransparency reports whether a transparent palette index is set.
func (f FrameInfo) HasTransparency() bool {
	return f.TransparentIndex != NoTransparentIndex
}

// MaxPixels caps the area of a frame that will be decompressed. The RGBA
// output of the largest accepted frame is 256 MiB.
const MaxPixels = 64 * 1024 * 1024

// NumPixels returns the number of palette indices the frame's image data
// must decompress to.
func (f FrameInfo) NumPixels() int {
	return f.Width * f.Height
}

// graphicControl holds the graphics control values that apply to the next
// image descriptor.
type graphicControl struct {
	delay            int
	transparentIndex int
	disposal         Disposal
}

func defaultGraphicControl() graphicControl {
	return graphicControl{transparentIndex: NoTransparentIndex}
}
