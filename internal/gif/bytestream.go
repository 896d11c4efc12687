package gif

// ReadAt is the bounds-checked accessor every parser read goes through. It
// never returns undefined data: a missing buffer and an index outside the
// buffer are reported as errors, the latter matching ErrOutOfRange.
func ReadAt(buf []byte, index int) (byte, error) {
	if len(buf) == 0 {
		return 0, ErrMissingBuffer
	}
	if index < 0 || index >= len(buf) {
		return 0, &RangeError{Index: index, Length: len(buf)}
	}
	return buf[index], nil
}

// ByteStream is a forward cursor over a GIF buffer. Skips are not checked;
// the next read past the end reports the shortfall instead.
type ByteStream struct {
	buf    []byte
	offset int
}

// NewByteStream constructs a cursor positioned at offset.
func NewByteStream(data []byte, offset int) *ByteStream {
	return &ByteStream{buf: data, offset: offset}
}

// ReadByte returns the next raw byte.
func (bs *ByteStream) ReadByte() (byte, error) {
	v, err := ReadAt(bs.buf, bs.offset)
	if err != nil {
		return 0, err
	}
	bs.offset++
	return v, nil
}

// ReadUint16 reads a little-endian 16-bit value.
func (bs *ByteStream) ReadUint16() (uint16, error) {
	lo, err := ReadAt(bs.buf, bs.offset)
	if err != nil {
		return 0, err
	}
	hi, err := ReadAt(bs.buf, bs.offset+1)
	if err != nil {
		return 0, err
	}
	bs.offset += 2
	return uint16(lo) | uint16(hi)<<8, nil
}

// Peek returns the byte n positions ahead without moving the cursor.
func (bs *ByteStream) Peek(n int) (byte, error) {
	return ReadAt(bs.buf, bs.offset+n)
}

// Skip advances the cursor by n bytes.
func (bs *ByteStream) Skip(n int) { bs.offset += n }

// SkipSubBlocks walks a run of length-prefixed sub-blocks up to and including
// the zero-length terminator.
func (bs *ByteStream) SkipSubBlocks() error {
	for {
		size, err := bs.ReadByte()
		if err != nil {
			return err
		}
		if size == 0 {
			return nil
		}
		bs.Skip(int(size))
	}
}

// Offset returns the current byte index.
func (bs *ByteStream) Offset() int { return bs.offset }

// SetOffset moves the cursor to the provided byte index.
func (bs *ByteStream) SetOffset(offset int) { bs.offset = offset }

// BytesLeft returns the number of bytes between the cursor and the end.
func (bs *ByteStream) BytesLeft() int {
	if bs.offset >= len(bs.buf) {
		return 0
	}
	return len(bs.buf) - bs.offset
}
