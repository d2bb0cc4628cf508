package convert

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	// register decoders for upload formats imaging does not cover itself
	_ "golang.org/x/image/webp"
)

// ImageOptions control a single re-encode
type ImageOptions struct {
	// Quality is the JPEG quality, 1-95
	Quality int

	// MaxWidth and MaxHeight bound an optional aspect-preserving downscale.
	// Zero means unbounded. The image is never upscaled.
	MaxWidth  int
	MaxHeight int
}

// ImageCodec decodes an uploaded image and re-encodes it as lossy JPEG
type ImageCodec interface {
	Compress(r io.Reader, w io.Writer, opts ImageOptions) error
}

// ImagingCodec implements ImageCodec with the imaging library
type ImagingCodec struct{}

var _ ImageCodec = (*ImagingCodec)(nil)

// NewImagingCodec creates an imaging-backed codec
func NewImagingCodec() *ImagingCodec {
	return &ImagingCodec{}
}

// Compress decodes r, optionally downscales to fit the bounds, and writes
// JPEG at the requested quality
func (c *ImagingCodec) Compress(r io.Reader, w io.Writer, opts ImageOptions) error {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	bounds := img.Bounds()
	if width, height, resize := FitWithin(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight); resize {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	return nil
}

// FitWithin computes the aspect-preserving target size for an image of
// width x height constrained by maxWidth/maxHeight (zero = unconstrained).
// The scale ratio is clamped so it never exceeds 1: a bound larger than the
// source never upscales. The bool reports whether a resize is needed.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int, bool) {
	if width <= 0 || height <= 0 || (maxWidth <= 0 && maxHeight <= 0) {
		return width, height, false
	}

	ratio := 1.0
	if maxWidth > 0 {
		if r := float64(maxWidth) / float64(width); r < ratio {
			ratio = r
		}
	}
	if maxHeight > 0 {
		if r := float64(maxHeight) / float64(height); r < ratio {
			ratio = r
		}
	}

	if ratio >= 1 {
		return width, height, false
	}

	targetWidth := int(float64(width) * ratio)
	targetHeight := int(float64(height) * ratio)
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	return targetWidth, targetHeight, true
}
