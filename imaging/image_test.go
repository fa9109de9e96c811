package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func uniformImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	return img
}

func TestDecodePNG(t *testing.T) {
	raw := encodePNG(t, uniformImage(300, 420, color.White))

	img, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, 300, img.Width)
	require.Equal(t, 420, img.Height)
	require.Equal(t, "png", img.Format)
	require.Equal(t, 300, img.ShorterSide())
	require.Equal(t, raw, img.Bytes)
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, uniformImage(640, 480, color.Black), &jpeg.Options{Quality: 90}))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "jpeg", img.Format)
	require.Equal(t, 480, img.ShorterSide())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	require.Error(t, err)
}

func TestShorterSide(t *testing.T) {
	img := &Image{Width: 500, Height: 200}
	require.Equal(t, 200, img.ShorterSide())

	img = &Image{Width: 128, Height: 1024}
	require.Equal(t, 128, img.ShorterSide())
}

func TestStdDevUniform(t *testing.T) {
	img, err := Decode(encodePNG(t, uniformImage(64, 64, color.RGBA{R: 200, G: 200, B: 200, A: 255})))
	require.NoError(t, err)
	require.InDelta(t, 0, img.StdDev(), 0.001)
}

func TestStdDevCheckerboard(t *testing.T) {
	raster := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x+y)%2 == 0 {
				raster.Set(x, y, color.White)
			} else {
				raster.Set(x, y, color.Black)
			}
		}
	}

	img, err := Decode(encodePNG(t, raster))
	require.NoError(t, err)

	// samples alternate between 0 and 255, so the deviation is half the range
	require.InDelta(t, 127.5, img.StdDev(), 0.01)
}
