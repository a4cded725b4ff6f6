// Package imaging re-encodes uploaded images to a bounded size.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1080
	DefaultQuality   = 80

	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

var ErrEmpty = errors.New("empty image data")

type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	// Reencoded is false when the original bytes were kept: the image was
	// already within bounds and re-encoding did not make it smaller.
	Reencoded bool
}

// IsImage reports whether contentType is a raster image format Compress can decode.
func IsImage(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// Fit scales w x h down to fit inside maxW x maxH, keeping the aspect ratio.
// Dimensions are never scaled up; a non-positive bound is unconstrained.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	ratio := 1.0
	if maxW > 0 && w > maxW {
		ratio = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if r := float64(maxH) / float64(h); r < ratio {
			ratio = r
		}
	}
	if ratio >= 1 {
		return w, h
	}
	nw := int(float64(w)*ratio + 0.5)
	nh := int(float64(h)*ratio + 0.5)
	return max(nw, 1), max(nh, 1)
}

// Compress decodes data and scales it to fit maxWidth x maxHeight.
//
// An image that had to be scaled is always returned scaled, as JPEG with the
// given quality or, for PNG and GIF sources, as PNG when that is smaller.
// An image already within bounds is re-encoded as JPEG only if that shrinks
// it; otherwise the original bytes and content type are returned.
func Compress(data []byte, contentType string, maxWidth, maxHeight, quality int) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), maxWidth, maxHeight)
	resized := w != b.Dx() || h != b.Dy()

	scaled := img
	if resized {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		scaled = dst
	}

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	out, outType := jpg.Bytes(), ContentTypeJPEG

	if resized && (format == "png" || format == "gif") {
		var lossless bytes.Buffer
		if err := png.Encode(&lossless, scaled); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		if lossless.Len() < len(out) {
			out, outType = lossless.Bytes(), ContentTypePNG
		}
	}

	if !resized && len(out) >= len(data) {
		return &Result{
			Data:        data,
			ContentType: contentType,
			Width:       b.Dx(),
			Height:      b.Dy(),
		}, nil
	}

	return &Result{
		Data:        out,
		ContentType: outType,
		Width:       w,
		Height:      h,
		Reencoded:   true,
	}, nil
}
