package validate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tryon/detect"
	"tryon/imaging"
	"tryon/shared/log"
)

const (
	minPersonSide = 256
	minClothSide  = 128

	// pixel stddev below this means a blank or single-color frame
	blankStdDev = 5.0

	// person box must cover at least this fraction of the frame
	minPersonAreaFraction = 0.05

	// frontal poses have box width roughly 0.3-0.6 of box height
	minPoseRatio = 0.25
	maxPoseRatio = 0.7
)

// PersonValidator decides whether a photo shows exactly one clear,
// front-facing person. Cheap pixel checks run before the detector is asked
// anything, so undersized uploads never cost an inference call.
type PersonValidator struct {
	detector detect.Detector
	logger   *zap.Logger
}

func NewPersonValidator(detector detect.Detector, logger *zap.Logger) *PersonValidator {
	return &PersonValidator{detector: detector, logger: logger.Named("validate-person")}
}

func (v *PersonValidator) Validate(ctx context.Context, img *imaging.Image) (Outcome, error) {
	logger := log.LoggerWithTrace(ctx, v.logger)

	if img.ShorterSide() < minPersonSide {
		return reject(ReasonImageTooSmall, "Image too small. Please upload a higher-resolution photo."), nil
	}

	boxes, err := v.detector.Detect(ctx, img)
	if err != nil {
		logger.Error(err.Error())
		return Outcome{}, fmt.Errorf("person detection: %w", err)
	}

	persons := detect.PersonBoxes(boxes)

	if len(persons) == 0 {
		if img.StdDev() < blankStdDev {
			return reject(ReasonBlankOrCorrupt, "Blank or corrupted image. Please upload a real photo."), nil
		}

		logger.Warn("no person detected but image looks valid, continuing anyway")

		return acceptWithNote("⚠️ No person detected, but image looks valid. Continuing anyway."), nil
	}

	if len(persons) > 1 {
		return reject(ReasonMultiplePeople, "Multiple people detected. Please upload a photo of just you."), nil
	}

	person := persons[0]

	if person.AreaFraction(img.Width, img.Height) < minPersonAreaFraction {
		return reject(ReasonPersonTooSmall, "Detected person too small in frame. Stand closer to the camera."), nil
	}

	if heightFrac := person.HeightFraction(img.Height); heightFrac > 0 {
		ratio := person.WidthFraction(img.Width) / heightFrac
		if ratio < minPoseRatio || ratio > maxPoseRatio {
			return reject(ReasonNonFrontalPose, "Pose appears sideways or non-frontal. Please face the camera."), nil
		}
	}

	logger.Debug("valid single person detected with acceptable pose and framing")

	return accept(), nil
}
