package gif

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jdeng/gogiframe/internal/giftest"
)

// scanAll parses data up to target and fails the test on a fatal error.
func scanAll(t *testing.T, data []byte, target int) (*Decoder, Status) {
	t.Helper()
	dec, err := NewDecoder(data)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	status, err := dec.DecodeMetaAndFrameInfo(data, target)
	if err != nil {
		t.Fatalf("DecodeMetaAndFrameInfo failed: %v", err)
	}
	return dec, status
}

var sampleFrames = []FrameInfo{
	{
		Width: 2, Height: 2,
		PaletteOffset: 13, PaletteSize: 2,
		DataOffset: 56, DataLength: 5,
		TransparentIndex: NoTransparentIndex,
		Delay:            50,
	},
	{
		Width: 2, Height: 2,
		PaletteOffset: 13, PaletteSize: 2,
		DataOffset: 79, DataLength: 5,
		TransparentIndex: NoTransparentIndex,
		Delay:            50,
	},
}

func TestDecodeSampleFirstFrame(t *testing.T) {
	dec, status := scanAll(t, giftest.Sample(), 0)
	if status != StatusComplete {
		t.Fatalf("status = %v, want Complete", status)
	}
	if dec.NumFrames() != 1 {
		t.Fatalf("NumFrames = %d, want 1", dec.NumFrames())
	}
	frame, err := dec.FrameInfo(0)
	if err != nil {
		t.Fatalf("FrameInfo(0) failed: %v", err)
	}
	if diff := cmp.Diff(sampleFrames[0], frame); diff != "" {
		t.Errorf("frame 0 mismatch (-want +got):\n%s", diff)
	}
	if count, ok := dec.LoopCount(); !ok || count != 0 {
		t.Errorf("LoopCount = %d, %v, want 0, true", count, ok)
	}
	if dec.EOF() {
		t.Error("EOF set before the trailer was scanned")
	}
	if dec.Width() != 2 || dec.Height() != 2 {
		t.Errorf("screen = %dx%d, want 2x2", dec.Width(), dec.Height())
	}
}

func TestDecodeSampleAllFrames(t *testing.T) {
	dec, status := scanAll(t, giftest.Sample(), 100)
	if status != StatusComplete {
		t.Fatalf("status = %v, want Complete", status)
	}
	if diff := cmp.Diff(sampleFrames, dec.Frames()); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	if !dec.EOF() {
		t.Error("EOF not set after the trailer")
	}
	if dec.Offset() != 85 {
		t.Errorf("Offset = %d, want 85", dec.Offset())
	}

	// Once the trailer is seen further calls are no-ops.
	status, err := dec.DecodeMetaAndFrameInfo(giftest.Sample(), 200)
	if err != nil || status != StatusComplete {
		t.Errorf("call after EOF = %v, %v", status, err)
	}
	if _, err := dec.FrameInfo(2); !errors.Is(err, ErrFrameIndexOutOfRange) {
		t.Errorf("FrameInfo(2) error = %v, want ErrFrameIndexOutOfRange", err)
	}
}

func TestDecodeResumesFromLastStructure(t *testing.T) {
	sample := giftest.Sample()
	dec, err := NewDecoder(sample[:40])
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	tests := []struct {
		end    int
		status Status
		frames int
		offset int
		loop   bool
	}{
		{40, StatusNeedMoreData, 0, 27, false},
		// The Netscape block is complete but its terminator is not.
		{45, StatusNeedMoreData, 0, 27, false},
		{46, StatusNeedMoreData, 0, 46, true},
		{50, StatusNeedMoreData, 0, 46, true},
		{60, StatusNeedMoreData, 0, 46, true},
		{61, StatusComplete, 1, 61, true},
	}
	for _, test := range tests {
		status, err := dec.DecodeMetaAndFrameInfo(sample[:test.end], 0)
		if err != nil {
			t.Fatalf("%d bytes: unexpected error %v", test.end, err)
		}
		if status != test.status {
			t.Errorf("%d bytes: status = %v, want %v", test.end, status, test.status)
		}
		if dec.NumFrames() != test.frames {
			t.Errorf("%d bytes: NumFrames = %d, want %d", test.end, dec.NumFrames(), test.frames)
		}
		if dec.Offset() != test.offset {
			t.Errorf("%d bytes: Offset = %d, want %d", test.end, dec.Offset(), test.offset)
		}
		if _, ok := dec.LoopCount(); ok != test.loop {
			t.Errorf("%d bytes: loop seen = %v, want %v", test.end, ok, test.loop)
		}
	}
}

func TestDecodeBlockBoundaryIsNotCompletion(t *testing.T) {
	// The buffer ends right after the Netscape extension, with no frame yet.
	dec, status := scanAll(t, giftest.Sample()[:46], 0)
	if status != StatusNeedMoreData {
		t.Errorf("status = %v, want NeedMoreData", status)
	}
	if dec.NumFrames() != 0 {
		t.Errorf("NumFrames = %d, want 0", dec.NumFrames())
	}
}

func TestDecodeByteByByte(t *testing.T) {
	sample := giftest.Sample()
	dec, err := NewDecoder(sample[:headerSize])
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	for n := headerSize; n <= len(sample); n++ {
		status, err := dec.DecodeMetaAndFrameInfo(sample[:n], 100)
		if err != nil {
			t.Fatalf("%d bytes: unexpected error %v", n, err)
		}
		if want := n == len(sample); (status == StatusComplete) != want {
			t.Fatalf("%d bytes: status = %v", n, status)
		}
	}
	if diff := cmp.Diff(sampleFrames, dec.Frames()); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSupersetIsStable(t *testing.T) {
	sample := giftest.Sample()
	prefix, _ := scanAll(t, sample[:84], 1)
	full, _ := scanAll(t, sample, 1)
	if diff := cmp.Diff(full.Frames(), prefix.Frames()); diff != "" {
		t.Errorf("prefix and full scans differ (-full +prefix):\n%s", diff)
	}
	if prefix.EOF() {
		t.Error("EOF set without the trailer")
	}
}

func TestDecodeFatalBlocks(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		value  byte
		want   error
	}{
		{"unknown block", 46, 0x99, ErrUnknownBlock},
		{"unknown extension", 28, 0xaa, ErrUnknownExtension},
		{"graphics control size", 21, 0x05, ErrInvalidGraphicControl},
		{"graphics control terminator", 26, 0x01, ErrInvalidGraphicControl},
	}
	for _, test := range tests {
		data := giftest.Sample()
		data[test.offset] = test.value

		dec, err := NewDecoder(data)
		if err != nil {
			t.Fatalf("%s: NewDecoder failed: %v", test.name, err)
		}
		for attempt := 0; attempt < 2; attempt++ {
			_, err = dec.DecodeMetaAndFrameInfo(data, 0)
			if !errors.Is(err, test.want) {
				t.Fatalf("%s: error = %v, want %v", test.name, err, test.want)
			}
		}
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("%s: error is %T, want *FormatError", test.name, err)
		}
		if test.want != ErrInvalidGraphicControl && formatErr.Offset != test.offset {
			t.Errorf("%s: error offset = %d, want %d", test.name, formatErr.Offset, test.offset)
		}
		if dec.NumFrames() != 0 {
			t.Errorf("%s: NumFrames = %d after fatal error", test.name, dec.NumFrames())
		}
	}
}

func TestDecodeSkippedExtensions(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		value  byte
	}{
		// Relabel the Netscape block so it is skipped as another block type.
		{"comment", 28, eComment},
		{"plain text", 28, eText},
		{"other application", 40, '1'},
	}
	for _, test := range tests {
		data := giftest.Sample()
		data[test.offset] = test.value
		dec, status := scanAll(t, data, 100)
		if status != StatusComplete || dec.NumFrames() != 2 {
			t.Errorf("%s: status %v with %d frames", test.name, status, dec.NumFrames())
		}
		if _, ok := dec.LoopCount(); ok {
			t.Errorf("%s: loop count recorded", test.name)
		}
	}
}

// Graphics control values stay in effect until the next graphics control
// extension replaces them.
func TestDecodeGraphicControlCarriesOver(t *testing.T) {
	file := giftest.File{
		Width: 4, Height: 1,
		Palette: [][3]byte{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 0, 255}},
		Frames: []giftest.Frame{
			{
				Width: 4, Height: 1, Indices: []byte{0, 1, 2, 3},
				GraphicControl: true, Delay: 10, Disposal: 2,
				Transparent: true, TransparentIdx: 3,
			},
			{Width: 4, Height: 1, Indices: []byte{3, 2, 1, 0}},
			{
				Width: 4, Height: 1, Indices: []byte{1, 1, 1, 1},
				GraphicControl: true, Delay: 7,
			},
		},
	}
	dec, _ := scanAll(t, file.Bytes(), 100)
	frames := dec.Frames()
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}

	first := frames[0]
	if first.Delay != 10 || first.Disposal != DisposalBackground || first.TransparentIndex != 3 {
		t.Errorf("frame 0 graphics control = delay %d, disposal %v, transparent %d",
			first.Delay, first.Disposal, first.TransparentIndex)
	}
	if !first.HasTransparency() {
		t.Error("frame 0 should be transparent")
	}

	second := frames[1]
	if second.Delay != 10 || second.Disposal != DisposalBackground || second.TransparentIndex != 3 {
		t.Errorf("frame 1 did not keep the previous graphics control: %+v", second)
	}

	third := frames[2]
	if third.Delay != 7 || third.Disposal != DisposalUnspecified || third.HasTransparency() {
		t.Errorf("frame 2 graphics control = %+v, want delay 7 and no transparency", third)
	}
}

func TestDecodeLocalPalette(t *testing.T) {
	file := giftest.File{
		Width: 8, Height: 8,
		Palette: [][3]byte{{0, 0, 0}, {255, 255, 255}},
		Frames: []giftest.Frame{{
			X: 1, Y: 2, Width: 2, Height: 3,
			Palette:    [][3]byte{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {4, 4, 4}},
			Interlaced: true,
			Indices:    []byte{0, 1, 2, 3, 0, 1},
		}},
	}
	dec, _ := scanAll(t, file.Bytes(), 0)
	frame, err := dec.FrameInfo(0)
	if err != nil {
		t.Fatalf("FrameInfo(0) failed: %v", err)
	}
	want := FrameInfo{
		X: 1, Y: 2, Width: 2, Height: 3,
		HasLocalPalette:  true,
		PaletteOffset:    29,
		PaletteSize:      4,
		DataOffset:       41,
		DataLength:       frame.DataLength,
		TransparentIndex: NoTransparentIndex,
		Interlaced:       true,
	}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeNoPalette(t *testing.T) {
	file := giftest.File{
		Width: 2, Height: 1,
		Frames: []giftest.Frame{{Width: 2, Height: 1, Indices: []byte{0, 1}}},
	}
	dec, _ := scanAll(t, file.Bytes(), 0)
	frame, _ := dec.FrameInfo(0)
	if frame.PaletteOffset != -1 || frame.PaletteSize != 0 {
		t.Errorf("palette = offset %d size %d, want -1 and 0", frame.PaletteOffset, frame.PaletteSize)
	}
}

func TestDecodeExtensionsAndLoopCount(t *testing.T) {
	file := giftest.File{
		Width: 1, Height: 1,
		Palette:            [][3]byte{{9, 9, 9}, {0, 0, 0}},
		Background:         1,
		Loop:               true,
		LoopCount:          3,
		Comment:            "made by hand",
		Application:        "XMP DataXMP",
		ApplicationPayload: make([]byte, 300),
		Frames:             []giftest.Frame{{Width: 1, Height: 1, Indices: []byte{0}}},
	}
	dec, status := scanAll(t, file.Bytes(), 100)
	if status != StatusComplete || !dec.EOF() {
		t.Fatalf("status = %v, eof = %v", status, dec.EOF())
	}
	if dec.NumFrames() != 1 {
		t.Errorf("NumFrames = %d, want 1", dec.NumFrames())
	}
	if count, ok := dec.LoopCount(); !ok || count != 3 {
		t.Errorf("LoopCount = %d, %v, want 3, true", count, ok)
	}
	if dec.BackgroundIndex() != 1 {
		t.Errorf("BackgroundIndex = %d, want 1", dec.BackgroundIndex())
	}
}

func TestDecodeMissingTrailer(t *testing.T) {
	file := giftest.Sample()
	file = file[:len(file)-1]
	dec, status := scanAll(t, file, 100)
	if status != StatusNeedMoreData {
		t.Errorf("status = %v, want NeedMoreData", status)
	}
	if dec.NumFrames() != 2 || dec.EOF() {
		t.Errorf("NumFrames = %d, EOF = %v", dec.NumFrames(), dec.EOF())
	}
}
