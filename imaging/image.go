package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Image is a decoded upload. It keeps the original encoded bytes alongside
// the raster: detection and generation backends consume the encoded form,
// the validators read pixels. Instances live for one request only.
type Image struct {
	Bytes  []byte
	Pixels image.Image
	Format string
	Width  int
	Height int
}

// Decode parses an uploaded image. JPEG, PNG, GIF and WebP are accepted.
func Decode(b []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()

	return &Image{
		Bytes:  b,
		Pixels: img,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// ShorterSide is the dimension the resolution gates compare against.
func (i *Image) ShorterSide() int {
	if i.Width < i.Height {
		return i.Width
	}
	return i.Height
}
