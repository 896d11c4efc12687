package render

import (
	"fmt"
	"strings"
)

// Format selects the output image encoding.
type Format int

const (
	// FormatJPEG is the default. Transparent pixels come out black.
	FormatJPEG Format = iota
	FormatPNG
	FormatBMP
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MIME returns the media type used in data URIs.
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the usual file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatBMP:
		return ".bmp"
	case FormatTIFF:
		return ".tiff"
	default:
		return ".bin"
	}
}

// ParseFormat accepts a format name, a file extension or a MIME type.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpeg", "jpg", "image/jpeg":
		return FormatJPEG, nil
	case "png", "image/png":
		return FormatPNG, nil
	case "bmp", "image/bmp":
		return FormatBMP, nil
	case "tiff", "tif", "image/tiff":
		return FormatTIFF, nil
	}
	return FormatJPEG, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForMIME maps a media type back to a Format.
func FormatForMIME(mime string) (Format, bool) {
	for _, f := range []Format{FormatJPEG, FormatPNG, FormatBMP, FormatTIFF} {
		if f.MIME() == mime {
			return f, true
		}
	}
	return FormatJPEG, false
}
