package detect

import (
	"context"

	"github.com/samber/lo"

	"tryon/imaging"
)

// ClassPerson is the label detection backends assign to human figures.
const ClassPerson = "person"

// Detector is the capability contract for object detection. An empty slice
// is the valid "nothing found" answer; an error means the backend itself
// failed, not that the image is empty.
type Detector interface {
	Detect(ctx context.Context, img *imaging.Image) ([]Box, error)
}

// PersonBoxes narrows detections down to the person class.
func PersonBoxes(boxes []Box) []Box {
	return lo.Filter(boxes, func(b Box, _ int) bool {
		return b.Class == ClassPerson
	})
}
