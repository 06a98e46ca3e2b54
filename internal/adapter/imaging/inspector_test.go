package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxPixels = 1_000_000

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspect_PNG(t *testing.T) {
	data := solidPNG(t, 120, 80, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})

	meta, err := NewInspector(testMaxPixels).Inspect(data)

	require.NoError(t, err)
	assert.Equal(t, 120, meta.Width)
	assert.Equal(t, 80, meta.Height)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, "image/png", meta.ContentType)
	assert.Equal(t, "#336699", meta.Color)
}

func TestInspect_RejectsNonImage(t *testing.T) {
	_, err := NewInspector(testMaxPixels).Inspect([]byte("definitely not an image"))

	assert.ErrorIs(t, err, domain.ErrInvalidMedia)
}

func TestThumbnail_ScalesToWidth(t *testing.T) {
	data := solidPNG(t, 800, 400, color.White)

	out, err := NewInspector(testMaxPixels).Thumbnail(data, 200)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestThumbnail_DoesNotUpscale(t *testing.T) {
	data := solidPNG(t, 50, 30, color.Black)

	out, err := NewInspector(testMaxPixels).Thumbnail(data, 400)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestInspect_RejectsOversizedDimensions(t *testing.T) {
	// почти пустой grayscale PNG сжимается до пары килобайт, но заявляет 2000x1000
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2000, 1000))))
	require.Less(t, buf.Len(), 64*1024)

	_, err := NewInspector(testMaxPixels).Inspect(buf.Bytes())

	require.ErrorIs(t, err, domain.ErrInvalidMedia)
	assert.Contains(t, err.Error(), "2000x1000")
}

func TestThumbnail_RejectsOversizedDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1001, 1000))))

	_, err := NewInspector(testMaxPixels).Thumbnail(buf.Bytes(), 200)

	assert.ErrorIs(t, err, domain.ErrInvalidMedia)
}

func TestInspect_AcceptsImageAtPixelLimit(t *testing.T) {
	data := solidPNG(t, 100, 100, color.Black)

	meta, err := NewInspector(100 * 100).Inspect(data)

	require.NoError(t, err)
	assert.Equal(t, 100, meta.Width)
}
