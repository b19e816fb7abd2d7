package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes кодирует однотонное изображение заданного размера в PNG.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestPrepareImageResizesWideImage(t *testing.T) {
	src := pngBytes(t, 400, 200)

	out, err := PrepareImage(src, 100, 0)
	require.NoError(t, err)

	w, h := decodedSize(t, out)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h, "пропорции должны сохраняться")
}

func TestPrepareImageKeepsNarrowImage(t *testing.T) {
	src := pngBytes(t, 80, 60)

	out, err := PrepareImage(src, 100, 90)
	require.NoError(t, err)

	// Ширина не меняется, но результат перекодируется в JPEG
	w, h := decodedSize(t, out)
	assert.Equal(t, 80, w)
	assert.Equal(t, 60, h)
}

func TestPrepareImageZeroMaxWidthSkipsResize(t *testing.T) {
	src := pngBytes(t, 120, 40)

	out, err := PrepareImage(src, 0, 0)
	require.NoError(t, err)

	w, _ := decodedSize(t, out)
	assert.Equal(t, 120, w)
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, err := PrepareImage([]byte("definitely not an image"), 100, 0)
	assert.Error(t, err)
}
