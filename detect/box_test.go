package detect

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxFractions(t *testing.T) {
	b := Box{Class: ClassPerson, Rect: image.Rect(10, 10, 50, 90)}

	require.InDelta(t, 0.4, b.WidthFraction(100), 1e-9)
	require.InDelta(t, 0.8, b.HeightFraction(100), 1e-9)
	require.InDelta(t, 0.32, b.AreaFraction(100, 100), 1e-9)
}

func TestBoxFractionsDegenerateImage(t *testing.T) {
	b := Box{Rect: image.Rect(0, 0, 10, 10)}

	require.Zero(t, b.WidthFraction(0))
	require.Zero(t, b.HeightFraction(-1))
	require.Zero(t, b.AreaFraction(0, 0))
}

func TestPersonBoxes(t *testing.T) {
	boxes := []Box{
		{Class: "dog", Rect: image.Rect(0, 0, 5, 5)},
		{Class: ClassPerson, Rect: image.Rect(0, 0, 10, 10)},
		{Class: "chair", Rect: image.Rect(1, 1, 2, 2)},
		{Class: ClassPerson, Rect: image.Rect(3, 3, 9, 9)},
	}

	persons := PersonBoxes(boxes)
	require.Len(t, persons, 2)
	for _, b := range persons {
		require.Equal(t, ClassPerson, b.Class)
	}

	require.Empty(t, PersonBoxes(nil))
}
