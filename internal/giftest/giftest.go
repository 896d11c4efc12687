// Package giftest assembles GIF files byte by byte for tests and fixtures.
//
// Image data is written as literal LZW codes only, with a clear code before
// the code width would grow, so the output is a valid but uncompressed GIF.
package giftest

import (
	"bytes"
	"encoding/base64"
)

// SampleBase64 is a 2x2 GIF89a with a two-color global palette, a Netscape
// looping extension and two frames, each preceded by a graphics control
// extension with a 50cs delay.
const SampleBase64 = "R0lGODlhAgACAPAAAP8AACDfACH5BAAyAAAAIf8LTkVUU0NBUEUyLjADAQAAACwAAAAAAgACAAACAgxcACH5BAAyAAAALAAAAAACAAIAAAICRFwAOw=="

// Sample returns the decoded SampleBase64 file.
func Sample() []byte {
	data, err := base64.StdEncoding.DecodeString(SampleBase64)
	if err != nil {
		panic(err)
	}
	return data
}

// SamplePixels is the RGBA output expected for frame 0 of Sample.
var SamplePixels = []byte{
	32, 223, 0, 255,
	255, 0, 0, 255,
	32, 223, 0, 255,
	255, 0, 0, 255,
}

// Frame describes one image block. Indices are in natural row order even for
// interlaced frames.
type Frame struct {
	X, Y, Width, Height int
	Palette             [][3]byte
	Interlaced          bool
	Indices             []byte

	// GraphicControl adds a graphics control extension before the frame.
	GraphicControl bool
	Delay          int
	Disposal       int
	Transparent    bool
	TransparentIdx int
}

// File describes a whole GIF.
type File struct {
	Width, Height int
	Palette       [][3]byte
	Background    int
	// Loop adds a Netscape looping extension carrying LoopCount.
	Loop      bool
	LoopCount int
	Comment   string
	// Application adds an unrelated application extension with this
	// identifier (11 bytes) and payload.
	Application        string
	ApplicationPayload []byte
	Frames             []Frame
	// OmitTrailer leaves the file without the 0x3B trailer.
	OmitTrailer bool
}

// Bytes serializes f.
func (f *File) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString("GIF89a")
	writeUint16(&b, f.Width)
	writeUint16(&b, f.Height)
	var flags byte
	if len(f.Palette) > 0 {
		flags = 0x80 | 0x70 | tableBits(len(f.Palette))
	}
	b.WriteByte(flags)
	b.WriteByte(byte(f.Background))
	b.WriteByte(0)
	writePalette(&b, f.Palette)

	if f.Loop {
		b.Write([]byte{0x21, 0xff, 0x0b})
		b.WriteString("NETSCAPE2.0")
		b.Write([]byte{0x03, 0x01})
		writeUint16(&b, f.LoopCount)
		b.WriteByte(0)
	}
	if f.Application != "" {
		b.Write([]byte{0x21, 0xff, byte(len(f.Application))})
		b.WriteString(f.Application)
		writeSubBlocks(&b, f.ApplicationPayload)
	}
	if f.Comment != "" {
		b.Write([]byte{0x21, 0xfe})
		writeSubBlocks(&b, []byte(f.Comment))
	}

	for _, frame := range f.Frames {
		writeFrame(&b, frame, len(f.Palette))
	}
	if !f.OmitTrailer {
		b.WriteByte(0x3b)
	}
	return b.Bytes()
}

func writeFrame(b *bytes.Buffer, f Frame, globalSize int) {
	if f.GraphicControl {
		var flags byte = byte(f.Disposal&7) << 2
		index := 0
		if f.Transparent {
			flags |= 1
			index = f.TransparentIdx
		}
		b.Write([]byte{0x21, 0xf9, 0x04, flags})
		writeUint16(b, f.Delay)
		b.WriteByte(byte(index))
		b.WriteByte(0)
	}

	b.WriteByte(0x2c)
	writeUint16(b, f.X)
	writeUint16(b, f.Y)
	writeUint16(b, f.Width)
	writeUint16(b, f.Height)
	var flags byte
	paletteSize := globalSize
	if len(f.Palette) > 0 {
		flags = 0x80 | tableBits(len(f.Palette))
		paletteSize = len(f.Palette)
	}
	if f.Interlaced {
		flags |= 0x40
	}
	b.WriteByte(flags)
	writePalette(b, f.Palette)

	indices := f.Indices
	if f.Interlaced {
		indices = Interlace(indices, f.Width, f.Height)
	}
	minCodeSize := 2
	for 1<<minCodeSize < paletteSize {
		minCodeSize++
	}
	b.WriteByte(byte(minCodeSize))
	writeSubBlocks(b, LiteralCodes(indices, minCodeSize))
}

// Interlace reorders rows of a width-wide index image into the four-pass
// interlaced transmission order.
func Interlace(indices []byte, width, height int) []byte {
	out := make([]byte, 0, len(indices))
	for _, pass := range [][2]int{{0, 8}, {4, 8}, {2, 4}, {1, 2}} {
		for y := pass[0]; y < height; y += pass[1] {
			out = append(out, indices[y*width:(y+1)*width]...)
		}
	}
	return out
}

// LiteralCodes packs indices as LZW literal codes, LSB first, starting with a
// clear code and ending with the end-of-information code.
func LiteralCodes(indices []byte, minCodeSize int) []byte {
	clearCode := 1 << minCodeSize
	eoi := clearCode + 1
	width := minCodeSize + 1
	// Each literal after the first defines a table entry; clear before the
	// table reaches the next code width.
	run := clearCode - 2

	var (
		out  []byte
		acc  uint32
		bits int
	)
	emit := func(code int) {
		acc |= uint32(code) << bits
		bits += width
		for bits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			bits -= 8
		}
	}

	emit(clearCode)
	for i, index := range indices {
		if i > 0 && i%run == 0 {
			emit(clearCode)
		}
		emit(int(index))
	}
	emit(eoi)
	if bits > 0 {
		out = append(out, byte(acc))
	}
	return out
}

// PackCodes packs arbitrary codes of a fixed width, LSB first.
func PackCodes(codes []int, width int) []byte {
	var (
		out  []byte
		acc  uint32
		bits int
	)
	for _, code := range codes {
		acc |= uint32(code) << bits
		bits += width
		for bits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			bits -= 8
		}
	}
	if bits > 0 {
		out = append(out, byte(acc))
	}
	return out
}

// SubBlocks splits data into length-prefixed sub-blocks followed by the
// zero-length terminator.
func SubBlocks(data []byte) []byte {
	var b bytes.Buffer
	writeSubBlocks(&b, data)
	return b.Bytes()
}

func writeSubBlocks(b *bytes.Buffer, data []byte) {
	for len(data) > 0 {
		n := min(len(data), 255)
		b.WriteByte(byte(n))
		b.Write(data[:n])
		data = data[n:]
	}
	b.WriteByte(0)
}

func writePalette(b *bytes.Buffer, palette [][3]byte) {
	if len(palette) == 0 {
		return
	}
	size := 1 << (int(tableBits(len(palette))) + 1)
	for i := 0; i < size; i++ {
		if i < len(palette) {
			b.Write(palette[i][:])
		} else {
			b.Write([]byte{0, 0, 0})
		}
	}
}

// tableBits returns the 3-bit size field for a table of n colors.
func tableBits(n int) byte {
	var bits byte
	for 1<<(bits+1) < n && bits < 7 {
		bits++
	}
	return bits
}

func writeUint16(b *bytes.Buffer, v int) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
}
