// Package imaging декодирует загружаемые изображения и строит миниатюры
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decode support
)

const (
	thumbnailQuality = 85
	// не больше colorSamples точек по каждой оси при подсчете среднего цвета
	colorSamples = 64
)

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Inspector реализует ports.ImageInspector на пакетах image и golang.org/x/image
type Inspector struct {
	maxPixels int64
}

// NewInspector: maxPixels ограничивает Width*Height, заявленные в заголовке файла
func NewInspector(maxPixels int64) *Inspector {
	return &Inspector{maxPixels: maxPixels}
}

// decode читает заголовок и отказывает до выделения памяти под пиксели,
// если изображение больше maxPixels
func (i *Inspector) decode(data []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %v: %w", err, domain.ErrInvalidMedia)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("empty image: %w", domain.ErrInvalidMedia)
	}
	if i.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > i.maxPixels {
		return nil, "", fmt.Errorf("image %dx%d exceeds %d pixels: %w",
			cfg.Width, cfg.Height, i.maxPixels, domain.ErrInvalidMedia)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %v: %w", err, domain.ErrInvalidMedia)
	}
	return img, format, nil
}

// Inspect декодирует изображение и возвращает его размеры, формат и средний цвет
func (i *Inspector) Inspect(data []byte) (ports.ImageMeta, error) {
	img, format, err := i.decode(data)
	if err != nil {
		return ports.ImageMeta{}, err
	}

	ct, ok := contentTypes[format]
	if !ok {
		return ports.ImageMeta{}, fmt.Errorf("unsupported format %q: %w", format, domain.ErrInvalidMedia)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ports.ImageMeta{}, fmt.Errorf("empty image: %w", domain.ErrInvalidMedia)
	}

	return ports.ImageMeta{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Format:      format,
		ContentType: ct,
		Color:       averageColor(img),
	}, nil
}

// Thumbnail уменьшает изображение до ширины width с сохранением пропорций.
// Изображения уже не шире width только перекодируются в JPEG.
func (i *Inspector) Thumbnail(data []byte, width int) ([]byte, error) {
	img, _, err := i.decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if width <= 0 || width > bounds.Dx() {
		width = bounds.Dx()
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// averageColor считает средний цвет по равномерной сетке точек в формате #rrggbb
func averageColor(img image.Image) string {
	b := img.Bounds()
	stepX := max(1, b.Dx()/colorSamples)
	stepY := max(1, b.Dy()/colorSamples)

	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			bl += uint64(cb >> 8)
			n++
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", r/n, g/n, bl/n)
}
