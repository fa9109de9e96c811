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
)

func TestClothingValidateSizeGateSkipsDetection(t *testing.T) {
	detector := &stubDetector{}
	validator := NewClothingValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), texturedTestImage(127, 500))
	require.NoError(t, err)
	require.False(t, outcome.Accepted)
	require.Equal(t, ReasonClothingTooSmall, outcome.Reason)
	require.Zero(t, detector.calls)
}

func TestClothingValidateAnyDetectionAccepts(t *testing.T) {
	// class does not matter, a shirt often reads as "person" or "tie"
	detector := &stubDetector{boxes: []detect.Box{
		{Class: "tie", Confidence: 0.4, Rect: image.Rect(10, 10, 50, 90)},
	}}
	validator := NewClothingValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), texturedTestImage(300, 300))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
	require.Empty(t, outcome.Note)
}

func TestClothingValidateBlankImage(t *testing.T) {
	detector := &stubDetector{}
	validator := NewClothingValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), uniformTestImage(300, 300, color.White))
	require.NoError(t, err)
	require.False(t, outcome.Accepted)
	require.Equal(t, ReasonBlankClothingImage, outcome.Reason)
	require.Equal(t, "Image seems empty or blank. Please upload a real clothing photo.", outcome.Detail)
}

func TestClothingValidateNoDetectionButRealPhoto(t *testing.T) {
	detector := &stubDetector{}
	validator := NewClothingValidator(detector, zap.NewNop())

	outcome, err := validator.Validate(context.Background(), texturedTestImage(300, 300))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)
	require.NotEmpty(t, outcome.Note)
}

func TestClothingValidateIsIdempotent(t *testing.T) {
	detector := &stubDetector{}
	validator := NewClothingValidator(detector, zap.NewNop())
	img := texturedTestImage(300, 300)

	first, err := validator.Validate(context.Background(), img)
	require.NoError(t, err)
	require.True(t, first.Accepted)

	second, err := validator.Validate(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 2, detector.calls)
}

func TestClothingValidateDetectorFailure(t *testing.T) {
	detector := &stubDetector{err: errors.New("inference down")}
	validator := NewClothingValidator(detector, zap.NewNop())

	_, err := validator.Validate(context.Background(), texturedTestImage(300, 300))
	require.Error(t, err)
	require.Contains(t, err.Error(), "inference down")
}
