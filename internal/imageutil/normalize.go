// Package imageutil prepares uploaded images for the detector.
package imageutil

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/wastenet/wastenet-go/internal/errors"
)

const (
	// DefaultMaxEdge bounds the longest side of the image sent to the detector.
	DefaultMaxEdge = 1280
	// DefaultJPEGQuality is the re-encode quality.
	DefaultJPEGQuality = 90
)

// Options controls Normalize.
type Options struct {
	MaxEdge     int // <= 0 disables resizing
	JPEGQuality int
}

// DefaultOptions returns the options used by the API and CLI.
func DefaultOptions() Options {
	return Options{MaxEdge: DefaultMaxEdge, JPEGQuality: DefaultJPEGQuality}
}

// Image is a decoded, normalized upload.
type Image struct {
	Data   []byte // JPEG bytes
	Width  int
	Height int
	Format string // format of the original upload
}

// Normalize decodes JPEG, PNG, GIF, BMP, TIFF or WebP data, applies the EXIF
// orientation, shrinks the image so neither side exceeds opts.MaxEdge and
// re-encodes it as JPEG.
func Normalize(r io.Reader, opts Options) (*Image, error) {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(err).
			Component("imageutil").
			Category(errors.CategoryFileIO).
			Context("operation", "read_upload").
			Build()
	}
	if len(raw) == 0 {
		return nil, decodeError(errors.NewStd("empty image"), 0)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(err, len(raw))
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, decodeError(err, len(raw))
	}

	if opts.MaxEdge > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxEdge || b.Dy() > opts.MaxEdge {
			img = imaging.Fit(img, opts.MaxEdge, opts.MaxEdge, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return nil, errors.New(err).
			Component("imageutil").
			Category(errors.CategoryImageDecode).
			Context("operation", "encode_jpeg").
			Build()
	}

	b := img.Bounds()
	return &Image{
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}, nil
}

func decodeError(err error, size int) error {
	return errors.New(err).
		Component("imageutil").
		Category(errors.CategoryImageDecode).
		FileContext("", int64(size)).
		Context("operation", "decode_image").
		Build()
}
