package stylist

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrEmptyImage is returned when the generation backend answered without an
// image part. The pipeline treats it as a failure of the whole request.
var ErrEmptyImage = errors.New("generation returned no image")

// Composite is one generated try-on image.
type Composite struct {
	Data     []byte
	MimeType string
}

// DataURL encodes the composite the way browsers can render it directly.
func (c *Composite) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", c.MimeType, base64.StdEncoding.EncodeToString(c.Data))
}

// Generator produces one composite from a person photo and one clothing
// photo. Both inputs arrive as normalized JPEG bytes.
type Generator interface {
	Generate(ctx context.Context, personJPEG, clothingJPEG []byte, size string) (*Composite, error)
}

// Recommender picks the best look among generated composites and phrases a
// short, friendly line about it.
type Recommender interface {
	Recommend(ctx context.Context, outfits []*Composite) (string, error)
}
