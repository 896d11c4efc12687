package gif

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	stdgif "image/gif"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jdeng/gogiframe/internal/giftest"
)

func TestDecodeFrameRGBASample(t *testing.T) {
	sample := giftest.Sample()
	dec, _ := scanAll(t, sample, 1)

	pixels, status, err := dec.DecodeFrameRGBA(0, sample)
	if err != nil || status != StatusComplete {
		t.Fatalf("DecodeFrameRGBA(0) = %v, %v", status, err)
	}
	if diff := cmp.Diff(giftest.SamplePixels, pixels); diff != "" {
		t.Errorf("frame 0 pixels (-want +got):\n%s", diff)
	}

	pixels, status, err = dec.DecodeFrameRGBA(1, sample)
	if err != nil || status != StatusComplete {
		t.Fatalf("DecodeFrameRGBA(1) = %v, %v", status, err)
	}
	want := []byte{
		255, 0, 0, 255,
		32, 223, 0, 255,
		255, 0, 0, 255,
		32, 223, 0, 255,
	}
	if diff := cmp.Diff(want, pixels); diff != "" {
		t.Errorf("frame 1 pixels (-want +got):\n%s", diff)
	}
}

func TestDecodeFrameRGBANeedsData(t *testing.T) {
	sample := giftest.Sample()
	dec, _ := scanAll(t, sample, 0)

	pixels, status, err := dec.DecodeFrameRGBA(0, sample[:58])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusNeedMoreData || pixels != nil {
		t.Errorf("DecodeFrameRGBA on a short buffer = %v, %d bytes", status, len(pixels))
	}

	// The frame was committed from the first 61 bytes; that is all it needs.
	pixels, status, err = dec.DecodeFrameRGBA(0, sample[:61])
	if err != nil || status != StatusComplete {
		t.Fatalf("DecodeFrameRGBA(0) = %v, %v", status, err)
	}
	if !bytes.Equal(pixels, giftest.SamplePixels) {
		t.Errorf("pixels = %v, want %v", pixels, giftest.SamplePixels)
	}
}

func TestDecodeFrameRGBAUnknownFrame(t *testing.T) {
	sample := giftest.Sample()
	dec, _ := scanAll(t, sample, 0)
	if _, _, err := dec.DecodeFrameRGBA(1, sample); !errors.Is(err, ErrFrameIndexOutOfRange) {
		t.Errorf("error = %v, want ErrFrameIndexOutOfRange", err)
	}
}

// grayPalette returns n distinct colors.
func grayPalette(n int) [][3]byte {
	p := make([][3]byte, n)
	for i := range p {
		v := byte(i * 255 / (n - 1))
		p[i] = [3]byte{v, 255 - v, byte(i)}
	}
	return p
}

func TestDecodeFrameRGBAInterlaced(t *testing.T) {
	const width, height = 3, 11
	pal := grayPalette(16)
	indices := make([]byte, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			indices = append(indices, byte(y))
		}
	}

	decode := func(interlaced bool) []byte {
		file := giftest.File{
			Width: width, Height: height, Palette: pal,
			Frames: []giftest.Frame{{Width: width, Height: height, Interlaced: interlaced, Indices: indices}},
		}
		data := file.Bytes()
		dec, _ := scanAll(t, data, 0)
		pixels, status, err := dec.DecodeFrameRGBA(0, data)
		if err != nil || status != StatusComplete {
			t.Fatalf("interlaced=%v: DecodeFrameRGBA = %v, %v", interlaced, status, err)
		}
		return pixels
	}

	progressive := decode(false)
	interlaced := decode(true)
	if diff := cmp.Diff(progressive, interlaced); diff != "" {
		t.Errorf("interlaced output differs (-progressive +interlaced):\n%s", diff)
	}
	for y := 0; y < height; y++ {
		got := interlaced[y*width*4 : y*width*4+3]
		if !bytes.Equal(got, pal[y][:]) {
			t.Errorf("row %d = %v, want %v", y, got, pal[y])
		}
	}
}

func TestDecodeFrameRGBATransparency(t *testing.T) {
	file := giftest.File{
		Width: 4, Height: 1, Palette: grayPalette(4),
		Frames: []giftest.Frame{{
			Width: 4, Height: 1, Indices: []byte{0, 1, 2, 1},
			GraphicControl: true, Transparent: true, TransparentIdx: 1,
		}},
	}
	data := file.Bytes()
	dec, _ := scanAll(t, data, 0)
	pixels, _, err := dec.DecodeFrameRGBA(0, data)
	if err != nil {
		t.Fatalf("DecodeFrameRGBA failed: %v", err)
	}
	pal := grayPalette(4)
	want := []byte{
		pal[0][0], pal[0][1], pal[0][2], 255,
		0, 0, 0, 0,
		pal[2][0], pal[2][1], pal[2][2], 255,
		0, 0, 0, 0,
	}
	if diff := cmp.Diff(want, pixels); diff != "" {
		t.Errorf("pixels (-want +got):\n%s", diff)
	}
}

func TestDecodeFrameRGBALocalPalette(t *testing.T) {
	file := giftest.File{
		Width: 4, Height: 4,
		Palette: [][3]byte{{255, 0, 0}, {255, 0, 0}},
		Frames: []giftest.Frame{{
			X: 2, Y: 2, Width: 2, Height: 1,
			Palette: [][3]byte{{0, 0, 255}, {0, 255, 0}},
			Indices: []byte{1, 0},
		}},
	}
	data := file.Bytes()
	dec, _ := scanAll(t, data, 0)
	pixels, _, err := dec.DecodeFrameRGBA(0, data)
	if err != nil {
		t.Fatalf("DecodeFrameRGBA failed: %v", err)
	}
	// The output covers the frame rectangle only.
	want := []byte{0, 255, 0, 255, 0, 0, 255, 255}
	if diff := cmp.Diff(want, pixels); diff != "" {
		t.Errorf("pixels (-want +got):\n%s", diff)
	}
}

func TestDecodeFrameRGBAIndexOutsidePalette(t *testing.T) {
	file := giftest.File{
		Width: 2, Height: 1,
		Palette: [][3]byte{{10, 20, 30}, {40, 50, 60}},
		Frames:  []giftest.Frame{{Width: 2, Height: 1, Indices: []byte{3, 1}}},
	}
	data := file.Bytes()
	dec, _ := scanAll(t, data, 0)
	pixels, _, err := dec.DecodeFrameRGBA(0, data)
	if err != nil {
		t.Fatalf("DecodeFrameRGBA failed: %v", err)
	}
	want := []byte{0, 0, 0, 255, 40, 50, 60, 255}
	if diff := cmp.Diff(want, pixels); diff != "" {
		t.Errorf("pixels (-want +got):\n%s", diff)
	}
}

func TestDecodeFrameRGBAMalformedStream(t *testing.T) {
	tests := []struct {
		name    string
		indices []byte
		want    Diagnostic
	}{
		{"longer", []byte{0, 1, 0, 1, 0}, DiagnosticLonger},
		{"shorter", []byte{0, 1, 0}, DiagnosticShorter},
	}
	for _, test := range tests {
		file := giftest.File{
			Width: 2, Height: 2, Palette: grayPalette(2),
			Frames: []giftest.Frame{{Width: 2, Height: 2, Indices: test.indices}},
		}
		data := file.Bytes()
		dec, _ := scanAll(t, data, 0)
		_, _, err := dec.DecodeFrameRGBA(0, data)
		var streamErr *StreamError
		if !errors.As(err, &streamErr) {
			t.Fatalf("%s: error = %v, want *StreamError", test.name, err)
		}
		if streamErr.Frame != 0 || streamErr.Diagnostic != test.want {
			t.Errorf("%s: StreamError = %+v, want %q", test.name, streamErr, test.want)
		}
	}
}

func TestDecodeFrameRGBAFrameTooLarge(t *testing.T) {
	sample := giftest.Sample()
	// Frame 0 claims 65535x65535 pixels.
	for i := 51; i < 55; i++ {
		sample[i] = 0xff
	}
	dec, _ := scanAll(t, sample, 0)
	frame, err := dec.FrameInfo(0)
	if err != nil {
		t.Fatalf("FrameInfo(0) failed: %v", err)
	}
	if frame.Width != 0xffff || frame.Height != 0xffff {
		t.Fatalf("frame size = %dx%d", frame.Width, frame.Height)
	}

	pixels, _, err := dec.DecodeFrameRGBA(0, sample)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("error = %v, want ErrFrameTooLarge", err)
	}
	if IsNeedMoreData(err) {
		t.Error("an oversized frame must not be retried")
	}
	if pixels != nil {
		t.Errorf("got %d bytes of pixels", len(pixels))
	}
}

func TestDecodeFrameRGBANoColorTable(t *testing.T) {
	file := giftest.File{
		Width: 2, Height: 1,
		Frames: []giftest.Frame{{Width: 2, Height: 1, Indices: []byte{0, 1}}},
	}
	data := file.Bytes()
	dec, _ := scanAll(t, data, 0)
	if _, _, err := dec.DecodeFrameRGBA(0, data); !errors.Is(err, ErrNoColorTable) {
		t.Errorf("error = %v, want ErrNoColorTable", err)
	}
}

// TestDecodeFrameRGBAStdlibEncoded decodes every frame of an animation written
// by image/gif, whose image data is genuinely LZW-compressed.
func TestDecodeFrameRGBAStdlibEncoded(t *testing.T) {
	small := color.Palette{color.RGBA{}, color.RGBA{0xff, 0, 0, 0xff}, color.RGBA{0, 0, 0xff, 0xff}}
	rects := []image.Rectangle{
		image.Rect(0, 0, 40, 30),
		image.Rect(5, 3, 27, 20),
		image.Rect(0, 10, 40, 30),
	}
	palettes := []color.Palette{palette.Plan9, palette.WebSafe, small}

	anim := &stdgif.GIF{LoopCount: 2}
	for i, r := range rects {
		img := image.NewPaletted(r, palettes[i])
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetColorIndex(x, y, uint8((x*7+y*13+x*y)%len(palettes[i])))
			}
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 10*(i+1))
		anim.Disposal = append(anim.Disposal, byte(i))
	}
	var buf bytes.Buffer
	if err := stdgif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("EncodeAll failed: %v", err)
	}
	data := buf.Bytes()

	dec, status := scanAll(t, data, len(rects))
	if status != StatusComplete || dec.NumFrames() != len(rects) {
		t.Fatalf("scan = %v with %d frames", status, dec.NumFrames())
	}
	if count, ok := dec.LoopCount(); !ok || count != 2 {
		t.Errorf("LoopCount = %d, %v, want 2, true", count, ok)
	}

	for i, img := range anim.Image {
		frame, _ := dec.FrameInfo(i)
		r := img.Bounds()
		if frame.X != r.Min.X || frame.Y != r.Min.Y || frame.Width != r.Dx() || frame.Height != r.Dy() {
			t.Errorf("frame %d geometry = %+v, want %v", i, frame, r)
		}
		if frame.Delay != anim.Delay[i] || frame.Disposal != Disposal(anim.Disposal[i]) {
			t.Errorf("frame %d delay %d disposal %v", i, frame.Delay, frame.Disposal)
		}

		pixels, status, err := dec.DecodeFrameRGBA(i, data)
		if err != nil || status != StatusComplete {
			t.Fatalf("frame %d: DecodeFrameRGBA = %v, %v", i, status, err)
		}
		want := make([]byte, 0, len(pixels))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				cr, cg, cb, ca := img.At(x, y).RGBA()
				want = append(want, byte(cr>>8), byte(cg>>8), byte(cb>>8), byte(ca>>8))
			}
		}
		if !bytes.Equal(want, pixels) {
			t.Errorf("frame %d pixels differ from the source image", i)
		}
	}
}
