package detect

import "image"

// Box is one region a detection backend proposed: a class label, a
// confidence score and the absolute pixel rectangle in the source image.
// Together with the source dimensions it yields the fractions the
// validators judge.
type Box struct {
	Class      string
	Confidence float32
	Rect       image.Rectangle
}

// WidthFraction is the box width relative to the image width.
func (b Box) WidthFraction(imageWidth int) float64 {
	if imageWidth <= 0 {
		return 0
	}

	return float64(b.Rect.Dx()) / float64(imageWidth)
}

// HeightFraction is the box height relative to the image height.
func (b Box) HeightFraction(imageHeight int) float64 {
	if imageHeight <= 0 {
		return 0
	}

	return float64(b.Rect.Dy()) / float64(imageHeight)
}

// AreaFraction is the share of the frame the box covers.
func (b Box) AreaFraction(imageWidth, imageHeight int) float64 {
	return b.WidthFraction(imageWidth) * b.HeightFraction(imageHeight)
}
