package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyImage does not compress well, so re-encoding a downscaled copy always
// wins over the original.
func noisyImage(w, h int) *image.RGBA {
	rnd := rand.New(rand.NewSource(int64(w*h + 1)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rnd.Intn(256)), G: uint8(rnd.Intn(256)), B: uint8(rnd.Intn(256)), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"within bounds", 800, 600, 1920, 1080, 800, 600},
		{"wide", 3840, 1080, 1920, 1080, 1920, 540},
		{"tall", 1000, 2160, 1920, 1080, 500, 1080},
		{"both exceed", 4000, 3000, 1920, 1080, 1440, 1080},
		{"no height bound", 4000, 3000, 2000, 0, 2000, 1500},
		{"unbounded", 4000, 3000, 0, 0, 4000, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestCompress_DownscalesLargePNG(t *testing.T) {
	data := encodePNG(t, noisyImage(800, 400))

	res, err := Compress(data, "image/png", 400, 400, 80)
	require.NoError(t, err)

	assert.True(t, res.Reencoded)
	assert.Equal(t, ContentTypeJPEG, res.ContentType)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 200, res.Height)
	assert.Less(t, len(res.Data), len(data))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
}

func TestCompress_NeverUpscales(t *testing.T) {
	data := encodePNG(t, noisyImage(120, 80))

	res, err := Compress(data, "image/png", 1920, 1080, 80)
	require.NoError(t, err)

	assert.Equal(t, 120, res.Width)
	assert.Equal(t, 80, res.Height)
	assert.LessOrEqual(t, len(res.Data), len(data))
}

func TestCompress_KeepsOriginalWhenLarger(t *testing.T) {
	// a tiny low-quality jpeg cannot shrink at quality 100
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, noisyImage(16, 16), &jpeg.Options{Quality: 1}))
	data := buf.Bytes()

	res, err := Compress(data, "image/jpeg", 1920, 1080, 100)
	require.NoError(t, err)

	assert.False(t, res.Reencoded)
	assert.Equal(t, data, res.Data)
	assert.Equal(t, "image/jpeg", res.ContentType)
}

func TestCompress_InvalidData(t *testing.T) {
	_, err := Compress([]byte("not an image"), "image/jpeg", 100, 100, 80)
	assert.Error(t, err)

	_, err = Compress(nil, "image/jpeg", 100, 100, 80)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/webp"))
	assert.True(t, IsImage("IMAGE/PNG"))
	assert.False(t, IsImage("video/mp4"))
	assert.False(t, IsImage(""))
}

func TestCompress_FlatOversizePNGIsStillBounded(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2400, 20))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 30, G: 90, B: 160, A: 255}}, image.Point{}, draw.Src)
	data := encodePNG(t, img)

	res, err := Compress(data, "image/png", 1920, 1080, 80)
	require.NoError(t, err)

	assert.True(t, res.Reencoded)
	assert.Equal(t, 1920, res.Width)
	assert.Equal(t, 16, res.Height)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
	assert.Contains(t, []string{ContentTypeJPEG, ContentTypePNG}, res.ContentType)
}

func TestCompress_ScaledGraphicPrefersPNG(t *testing.T) {
	// two flat halves: lossless PNG beats JPEG on hard edges
	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	draw.Draw(img, image.Rect(0, 0, 400, 400), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(400, 0, 800, 400), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	res, err := Compress(encodePNG(t, img), "image/png", 400, 400, 90)
	require.NoError(t, err)

	assert.Equal(t, ContentTypePNG, res.ContentType)
	cfg, err := png.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}
