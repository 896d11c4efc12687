// Package render turns decoded RGBA frames into encoded images and data URIs.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// DefaultQuality is the JPEG quality used when Options.Quality is zero.
const DefaultQuality = 90

var (
	ErrPixelSize      = errors.New("render: pixel buffer does not match dimensions")
	ErrUnknownFormat  = errors.New("render: unknown image format")
	ErrInvalidDataURI = errors.New("render: invalid data URI")
)

// Options configures encoding. The zero value writes a full-size JPEG at
// DefaultQuality.
type Options struct {
	Format Format
	// Quality is the JPEG quality, 1 to 100. Other formats ignore it.
	Quality int
	// MaxWidth and MaxHeight bound the output size, keeping the aspect
	// ratio. Zero means unbounded.
	MaxWidth  int
	MaxHeight int
}

func (o Options) quality() int {
	switch {
	case o.Quality <= 0:
		return DefaultQuality
	case o.Quality > 100:
		return 100
	default:
		return o.Quality
	}
}

// NewImage wraps a width*height*4 RGBA buffer. Pixels are either opaque or
// fully transparent, so the straight and premultiplied forms coincide.
func NewImage(pixels []byte, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrPixelSize, len(pixels), width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img, nil
}

// Scale shrinks img to fit within maxWidth x maxHeight. Images that already
// fit are returned unchanged; images are never enlarged.
func Scale(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	ratio := 1.0
	if maxWidth > 0 && w > maxWidth {
		ratio = float64(maxWidth) / float64(w)
	}
	if maxHeight > 0 && h > maxHeight {
		ratio = min(ratio, float64(maxHeight)/float64(h))
	}
	if ratio >= 1 {
		return img
	}

	dw := max(1, int(float64(w)*ratio+0.5))
	dh := max(1, int(float64(h)*ratio+0.5))
	if maxWidth > 0 {
		dw = min(dw, maxWidth)
	}
	if maxHeight > 0 {
		dh = min(dh, maxHeight)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Encode writes img in the requested format, scaling it first when the
// options bound the size.
func Encode(w io.Writer, img image.Image, opts Options) error {
	img = Scale(img, opts.MaxWidth, opts.MaxHeight)
	switch opts.Format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: opts.quality()})
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, opts.Format)
	}
}

// EncodePixels is NewImage followed by Encode.
func EncodePixels(w io.Writer, pixels []byte, width, height int, opts Options) error {
	img, err := NewImage(pixels, width, height)
	if err != nil {
		return err
	}
	return Encode(w, img, opts)
}

// DataURI encodes the pixels and returns them as a base64 data URI.
func DataURI(pixels []byte, width, height int, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := EncodePixels(&buf, pixels, width, height, opts); err != nil {
		return "", err
	}
	return "data:" + opts.Format.MIME() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ParseDataURI splits a base64 data URI into its media type and payload.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, data, nil
}
