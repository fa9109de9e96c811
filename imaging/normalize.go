package imaging

import (
	"fmt"

	"github.com/h2non/bimg"
)

const normalizeQuality = 92

// NormalizeJPEG re-encodes the image as a baseline JPEG, flattening alpha
// and discarding animation frames, so generation backends always receive
// one predictable input format regardless of what was uploaded.
func NormalizeJPEG(i *Image) ([]byte, error) {
	buf, err := bimg.NewImage(i.Bytes).Process(bimg.Options{Type: bimg.JPEG, Quality: normalizeQuality})
	if err != nil {
		return nil, fmt.Errorf("normalize to jpeg: %w", err)
	}

	return buf, nil
}
