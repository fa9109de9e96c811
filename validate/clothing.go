package validate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tryon/detect"
	"tryon/imaging"
	"tryon/shared/log"
)

// ClothingValidator is deliberately lenient: any detection at all accepts
// the image, detection only exists to weed out blanks and noise.
type ClothingValidator struct {
	detector detect.Detector
	logger   *zap.Logger
}

func NewClothingValidator(detector detect.Detector, logger *zap.Logger) *ClothingValidator {
	return &ClothingValidator{detector: detector, logger: logger.Named("validate-clothing")}
}

func (v *ClothingValidator) Validate(ctx context.Context, img *imaging.Image) (Outcome, error) {
	logger := log.LoggerWithTrace(ctx, v.logger)

	if img.ShorterSide() < minClothSide {
		return reject(ReasonClothingTooSmall, "Clothing image too small."), nil
	}

	boxes, err := v.detector.Detect(ctx, img)
	if err != nil {
		logger.Error(err.Error())
		return Outcome{}, fmt.Errorf("clothing detection: %w", err)
	}

	if len(boxes) > 0 {
		logger.Debug("objects detected in clothing image, continuing")
		return accept(), nil
	}

	if img.StdDev() < blankStdDev {
		return reject(ReasonBlankClothingImage, "Image seems empty or blank. Please upload a real clothing photo."), nil
	}

	logger.Warn("nothing detected in clothing image but it looks valid, continuing anyway")

	return acceptWithNote("⚠️ Nothing detected in clothing image, but it looks valid. Continuing anyway."), nil
}
