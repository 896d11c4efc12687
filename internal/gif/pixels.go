package gif

import "fmt"

// interlacePasses lists the first row and row step of the four passes of an
// interlaced image.
var interlacePasses = [4]struct{ start, step int }{
	{0, 8},
	{4, 8},
	{2, 4},
	{1, 2},
}

// DecodeFrameRGBA decompresses frame idx and maps it through its palette into
// a Width*Height*4 RGBA buffer. Transparent pixels are left zero. When buf
// does not yet hold the frame's data, it returns StatusNeedMoreData and no
// error. Malformed image data is reported as a *StreamError, and frames
// larger than MaxPixels as ErrFrameTooLarge.
func (d *Decoder) DecodeFrameRGBA(idx int, buf []byte) ([]byte, Status, error) {
	frame, err := d.FrameInfo(idx)
	if err != nil {
		return nil, StatusNeedMoreData, err
	}
	if frame.PaletteOffset < 0 {
		return nil, StatusNeedMoreData, ErrNoColorTable
	}

	if frame.NumPixels() > MaxPixels {
		return nil, StatusNeedMoreData, fmt.Errorf("%w: frame %d is %dx%d", ErrFrameTooLarge, idx, frame.Width, frame.Height)
	}

	res, err := Unpack(buf, frame.DataOffset, frame.NumPixels())
	if err != nil {
		if IsNeedMoreData(err) {
			return nil, StatusNeedMoreData, nil
		}
		return nil, StatusNeedMoreData, err
	}
	if !res.OK {
		return nil, StatusNeedMoreData, &StreamError{Frame: idx, Diagnostic: res.Diagnostic}
	}

	palette, err := readPalette(buf, frame.PaletteOffset, frame.PaletteSize)
	if err != nil {
		if IsNeedMoreData(err) {
			return nil, StatusNeedMoreData, nil
		}
		return nil, StatusNeedMoreData, err
	}

	pixels := make([]byte, frame.NumPixels()*4)
	writeRows(pixels, res.Output, frame, palette)
	return pixels, StatusComplete, nil
}

// readPalette copies size RGB triples starting at offset. Entries past size
// stay opaque black.
func readPalette(buf []byte, offset, size int) ([256][3]byte, error) {
	var palette [256][3]byte
	for i := 0; i < size && i < len(palette); i++ {
		for c := 0; c < 3; c++ {
			v, err := ReadAt(buf, offset+i*3+c)
			if err != nil {
				return palette, err
			}
			palette[i][c] = v
		}
	}
	return palette, nil
}

// writeRows walks the index stream left to right, top to bottom, following
// the interlaced row order when the frame is interlaced.
func writeRows(pixels, indices []byte, frame FrameInfo, palette [256][3]byte) {
	width, height := frame.Width, frame.Height
	if width == 0 || height == 0 {
		return
	}
	trans := frame.TransparentIndex

	pass, row, step := 0, 0, 1
	if frame.Interlaced {
		row, step = interlacePasses[0].start, interlacePasses[0].step
	}

	for i := 0; i < len(indices); i += width {
		for frame.Interlaced && row >= height {
			pass++
			if pass >= len(interlacePasses) {
				return
			}
			row, step = interlacePasses[pass].start, interlacePasses[pass].step
		}
		if row >= height {
			return
		}

		line := indices[i:min(i+width, len(indices))]
		op := row * width * 4
		for _, index := range line {
			if int(index) != trans {
				c := palette[index]
				pixels[op] = c[0]
				pixels[op+1] = c[1]
				pixels[op+2] = c[2]
				pixels[op+3] = 255
			}
			op += 4
		}
		row += step
	}
}
