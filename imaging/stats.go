package imaging

import "math"

// StdDev computes the standard deviation of the image's 8-bit RGB samples,
// all three channels pooled. A near-zero value means a solid color or a
// blank frame; real photos land far above the blank-image thresholds.
func (i *Image) StdDev() float64 {
	bounds := i.Pixels.Bounds()
	n := float64(bounds.Dx()) * float64(bounds.Dy()) * 3
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := i.Pixels.At(x, y).RGBA()
			for _, v := range [3]uint32{r, g, b} {
				s := float64(v >> 8)
				sum += s
				sumSq += s * s
			}
		}
	}

	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		// float rounding on uniform images
		variance = 0
	}

	return math.Sqrt(variance)
}
