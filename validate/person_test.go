package validate

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tryon/detect"
	"tryon/imaging"
)

type stubDetector struct {
	boxes []detect.Box
	err   error
	calls int
}

func (s *stubDetector) Detect(_ context.Context, _ *imaging.Image) ([]detect.Box, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	return s.boxes, nil
}

func uniformTestImage(width, height int, c color.Color) *imaging.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	return &imaging.Image{Pixels: img, Format: "png", Width: width, Height: height}
}

func texturedTestImage(width, height int) *imaging.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	return &imaging.Image{Pixels: img, Format: "png", Width: width, Height: height}
}

func personBox(rect image.Rectangle) detect.Box {
	return detect.Box{Class: detect.ClassPerson, Confidence: 0.9, Rect: rect}
}

func TestPersonValidateSizeGateSkipsDetection(t *testing.T) {
	detector := &stubDetector{}
	validator := NewPersonValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), texturedTestImage(255, 800))
	require.NoError(t, err)
	require.False(t, outcome.Accepted)
	require.Equal(t, ReasonImageTooSmall, outcome.Reason)
	require.Equal(t, "Image too small. Please upload a higher-resolution photo.", outcome.Detail)
	require.Zero(t, detector.calls)
}

func TestPersonValidateGeometry(t *testing.T) {
	tests := []struct {
		name     string
		boxes    []detect.Box
		accepted bool
		reason   Reason
	}{
		{
			// width 0.4, height 0.8, ratio 0.5
			name:     "single frontal person",
			boxes:    []detect.Box{personBox(image.Rect(300, 100, 700, 900))},
			accepted: true,
		},
		{
			name: "two people",
			boxes: []detect.Box{
				personBox(image.Rect(100, 50, 450, 950)),
				personBox(image.Rect(550, 50, 900, 950)),
			},
			reason: ReasonMultiplePeople,
		},
		{
			name:   "person too far away",
			boxes:  []detect.Box{personBox(image.Rect(450, 450, 550, 550))},
			reason: ReasonPersonTooSmall,
		},
		{
			// width 0.9, height 0.95, ratio well above the frontal window
			name:   "box too wide for a frontal pose",
			boxes:  []detect.Box{personBox(image.Rect(50, 25, 950, 975))},
			reason: ReasonNonFrontalPose,
		},
		{
			name:   "box too narrow for a frontal pose",
			boxes:  []detect.Box{personBox(image.Rect(400, 50, 600, 950))},
			reason: ReasonNonFrontalPose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &stubDetector{boxes: tt.boxes}
			validator := NewPersonValidator(detector, zap.NewNop())

			outcome, err := validator.Validate(context.Background(), texturedTestImage(1000, 1000))
			require.NoError(t, err)
			require.Equal(t, 1, detector.calls)
			require.Equal(t, tt.accepted, outcome.Accepted)
			require.Equal(t, tt.reason, outcome.Reason)
		})
	}
}

func TestPersonValidateIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		boxes []detect.Box
	}{
		{
			name:  "accepted outcome",
			boxes: []detect.Box{personBox(image.Rect(300, 100, 700, 900))},
		},
		{
			name: "rejected outcome",
			boxes: []detect.Box{
				personBox(image.Rect(100, 50, 450, 950)),
				personBox(image.Rect(550, 50, 900, 950)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &stubDetector{boxes: tt.boxes}
			validator := NewPersonValidator(detector, zap.NewNop())
			img := texturedTestImage(1000, 1000)

			first, err := validator.Validate(context.Background(), img)
			require.NoError(t, err)

			second, err := validator.Validate(context.Background(), img)
			require.NoError(t, err)
			require.Equal(t, first, second)
			require.Equal(t, 2, detector.calls)
		})
	}
}

func TestPersonValidateIgnoresNonPersonBoxes(t *testing.T) {
	detector := &stubDetector{boxes: []detect.Box{
		{Class: "dog", Confidence: 0.8, Rect: image.Rect(0, 0, 100, 100)},
		personBox(image.Rect(300, 50, 700, 950)),
	}}
	validator := NewPersonValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), texturedTestImage(1000, 1000))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
}

func TestPersonValidateBlankImage(t *testing.T) {
	detector := &stubDetector{}
	validator := NewPersonValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), uniformTestImage(400, 400, color.Gray{Y: 128}))
	require.NoError(t, err)
	require.False(t, outcome.Accepted)
	require.Equal(t, ReasonBlankOrCorrupt, outcome.Reason)
}

func TestPersonValidateNoPersonButRealPhoto(t *testing.T) {
	detector := &stubDetector{}
	validator := NewPersonValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), texturedTestImage(400, 400))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
	require.NotEmpty(t, outcome.Note)
}

func TestPersonValidateDetectorFailure(t *testing.T) {
	detector := &stubDetector{err: errors.New("model exploded")}
	validator := NewPersonValidator(detector, zap.NewNop())

	_, err := validator.Validate(context.Background(), texturedTestImage(400, 400))
	require.Error(t, err)
	require.Contains(t, err.Error(), "model exploded")
}

func TestRejectionError(t *testing.T) {
	outcome := reject(ReasonMultiplePeople, "Multiple people detected. Please upload a photo of just you.")

	err := outcome.Err()
	require.Error(t, err)

	var rejection *Rejection
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, ReasonMultiplePeople, rejection.Reason)
	require.Equal(t, outcome.Detail, rejection.Error())

	require.NoError(t, accept().Err())
}
