package gif

import "fmt"

// headerSize covers the signature and the logical screen descriptor.
const headerSize = 13

// Logical screen descriptor flags.
const (
	fColorTableFollows = 1 << 7
	fColorResolution   = 7 << 4
	fColorTableSize    = 7
)

// Screen captures the logical screen descriptor and the location of the
// global color table, if present.
type Screen struct {
	Width               int
	Height              int
	BackgroundIndex     int
	AspectRatio         byte
	HasGlobalPalette    bool
	GlobalPaletteOffset int
	GlobalPaletteSize   int
}

// parseScreen validates the "GIF87a"/"GIF89a" signature and reads the logical
// screen descriptor. It returns the offset of the first block. The global
// color table is located, not read, so it may still be missing from data.
func parseScreen(data []byte) (*Screen, int, error) {
	bs := NewByteStream(data, 0)
	for i, want := range []byte("GIF8?a") {
		b, err := bs.ReadByte()
		if err != nil {
			return nil, 0, err
		}
		if want == '?' {
			// (b+1)&0xfd folds '7' and '9' onto '8'.
			if (b+1)&0xfd != '8' {
				return nil, 0, fmt.Errorf("%w: version byte 0x%02x", ErrInvalidHeader, b)
			}
			continue
		}
		if b != want {
			return nil, 0, fmt.Errorf("%w: signature byte %d is 0x%02x", ErrInvalidHeader, i, b)
		}
	}

	width, err := bs.ReadUint16()
	if err != nil {
		return nil, 0, err
	}
	height, err := bs.ReadUint16()
	if err != nil {
		return nil, 0, err
	}
	flags, err := bs.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	background, err := bs.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	aspect, err := bs.ReadByte()
	if err != nil {
		return nil, 0, err
	}

	screen := &Screen{
		Width:               int(width),
		Height:              int(height),
		BackgroundIndex:     int(background),
		AspectRatio:         aspect,
		GlobalPaletteOffset: -1,
	}
	if flags&fColorTableFollows != 0 {
		screen.HasGlobalPalette = true
		screen.GlobalPaletteOffset = bs.Offset()
		screen.GlobalPaletteSize = 1 << (int(flags&fColorTableSize) + 1)
		bs.Skip(screen.GlobalPaletteSize * 3)
	}
	return screen, bs.Offset(), nil
}
