package giframe

import "github.com/jdeng/gogiframe/internal/render"

// Format selects the image encoding of the default encoder.
type Format = render.Format

const (
	FormatJPEG = render.FormatJPEG
	FormatPNG  = render.FormatPNG
	FormatBMP  = render.FormatBMP
	FormatTIFF = render.FormatTIFF
)

// DefaultQuality is the JPEG quality used when none is set.
const DefaultQuality = render.DefaultQuality

// ParseFormat accepts a format name, file extension or MIME type.
func ParseFormat(s string) (Format, error) {
	return render.ParseFormat(s)
}

// EncodeOptions is handed to the Encoder together with the frame's pixels.
type EncodeOptions struct {
	Width  int
	Height int
	Format Format
	// Quality is the JPEG quality, 1 to 100; zero selects DefaultQuality.
	Quality   int
	MaxWidth  int
	MaxHeight int
}

// Encoder turns a decoded Width*Height*4 RGBA frame into the workflow's
// result.
type Encoder interface {
	Encode(pixels []byte, opts EncodeOptions) (string, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(pixels []byte, opts EncodeOptions) (string, error)

func (f EncoderFunc) Encode(pixels []byte, opts EncodeOptions) (string, error) {
	return f(pixels, opts)
}

// DataURIEncoder is the default Encoder. It returns a base64 data URI.
type DataURIEncoder struct{}

func (DataURIEncoder) Encode(pixels []byte, opts EncodeOptions) (string, error) {
	return render.DataURI(pixels, opts.Width, opts.Height, render.Options{
		Format:    opts.Format,
		Quality:   opts.Quality,
		MaxWidth:  opts.MaxWidth,
		MaxHeight: opts.MaxHeight,
	})
}

// CreateDataURI encodes pixels without a decoding workflow.
func CreateDataURI(pixels []byte, opts EncodeOptions) (string, error) {
	return DataURIEncoder{}.Encode(pixels, opts)
}
