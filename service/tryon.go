package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"tryon/api/model"
	"tryon/archive"
	"tryon/cache"
	"tryon/config"
	"tryon/history"
	"tryon/imaging"
	"tryon/shared/log"
	"tryon/stylist"
	"tryon/validate"
)

const (
	minClothingItems = 1
	maxClothingItems = 4

	historyTimeout = 5 * time.Second
)

var tracer = otel.Tracer("tryon/service")

// Validator checks one decoded image and says whether the pipeline may
// continue with it.
type Validator interface {
	Validate(ctx context.Context, img *imaging.Image) (validate.Outcome, error)
}

// TryOnService runs the whole pipeline for one request: validate the person
// photo, validate every clothing photo, generate one composite per item,
// then ask for a recommendation. Steps are strictly sequential; the first
// rejection or failure aborts the run.
type TryOnService struct {
	config *config.Config

	person      Validator
	clothing    Validator
	generator   stylist.Generator
	recommender stylist.Recommender

	archive *archive.Archive
	history *history.History
	cache   *cache.Cache

	logger *zap.Logger
}

func NewTryOnService(
	c *config.Config,
	person Validator,
	clothing Validator,
	generator stylist.Generator,
	recommender stylist.Recommender,
	archiveSink *archive.Archive,
	historySink *history.History,
	compositeCache *cache.Cache,
	logger *zap.Logger,
) *TryOnService {
	return &TryOnService{
		config:      c,
		person:      person,
		clothing:    clothing,
		generator:   generator,
		recommender: recommender,
		archive:     archiveSink,
		history:     historySink,
		cache:       compositeCache,
		logger:      logger.Named("tryon"),
	}
}

func (s *TryOnService) Process(ctx context.Context, req model.TryOnRequest) (response *model.TryOnResponse, err error) {
	if n := len(req.ClothingImages); n < minClothingItems || n > maxClothingItems {
		return nil, &validate.Rejection{
			Reason: validate.ReasonInvalidItemCount,
			Detail: fmt.Sprintf("Please upload between 1 and 4 clothing images (you uploaded %d).", n),
		}
	}

	ctx, span := tracer.Start(ctx, "tryon.process")
	defer span.End()

	started := time.Now()
	requestID := uuid.NewString()
	logger := log.LoggerWithTrace(ctx, s.logger).With(zap.String("request_id", requestID))

	size := normalizeSize(req.Size)

	var (
		logs           []string
		results        []model.TryOnResult
		composites     []*stylist.Composite
		recommendation string
	)

	defer func() {
		s.recordHistory(ctx, history.Entry{
			RequestID:      requestID,
			Size:           size,
			Items:          len(req.ClothingImages),
			Success:        err == nil,
			Results:        len(results),
			Recommendation: recommendation,
			DurationMS:     time.Since(started).Milliseconds(),
			Logs:           logs,
		}, err)
	}()

	logs = append(logs, fmt.Sprintf("Received 1 person image and %d clothing images. Size: %s", len(req.ClothingImages), size))
	logger.Info(fmt.Sprintf("processing try-on request with %d clothing items, size %s", len(req.ClothingImages), size))

	personImg, err := imaging.Decode(req.PersonImage)
	if err != nil {
		logger.Error(err.Error())
		return nil, fmt.Errorf("decode person image: %w", err)
	}

	outcome, err := s.validateOne(ctx, s.person, personImg)
	if err != nil {
		return nil, fmt.Errorf("person validation: %w", err)
	}
	if rejected := outcome.Err(); rejected != nil {
		logger.Info("person image rejected: " + outcome.Detail)
		return nil, rejected
	}
	if outcome.Note != "" {
		logs = append(logs, outcome.Note)
	}
	logs = append(logs, "✅ Person image validated successfully.")

	clothingImgs := make([]*imaging.Image, 0, len(req.ClothingImages))
	for idx, raw := range req.ClothingImages {
		img, err := imaging.Decode(raw)
		if err != nil {
			logger.Error(err.Error())
			return nil, fmt.Errorf("decode clothing image %d: %w", idx+1, err)
		}

		outcome, err := s.validateOne(ctx, s.clothing, img)
		if err != nil {
			return nil, fmt.Errorf("clothing %d validation: %w", idx+1, err)
		}
		if rejected := outcome.Err(); rejected != nil {
			logger.Info(fmt.Sprintf("clothing image %d rejected: %s", idx+1, outcome.Detail))
			return nil, rejected
		}
		if outcome.Note != "" {
			logs = append(logs, outcome.Note)
		}
		logs = append(logs, fmt.Sprintf("✅ Clothing image %d validated successfully.", idx+1))

		clothingImgs = append(clothingImgs, img)
	}

	logs = append(logs, "🧠 Generating AI try-on images...")

	personJPEG, err := imaging.NormalizeJPEG(personImg)
	if err != nil {
		logger.Error(err.Error())
		return nil, fmt.Errorf("normalize person image: %w", err)
	}

	for idx, img := range clothingImgs {
		clothingJPEG, err := imaging.NormalizeJPEG(img)
		if err != nil {
			logger.Error(err.Error())
			return nil, fmt.Errorf("normalize clothing image %d: %w", idx+1, err)
		}

		key := cache.Key(personJPEG, clothingJPEG, size)

		composite := s.cache.Get(ctx, key)
		if composite != nil {
			logger.Debug(fmt.Sprintf("cache hit for clothing %d", idx+1))
			logs = append(logs, fmt.Sprintf("♻️ Reused cached result for clothing %d.", idx+1))
		} else {
			composite, err = s.generateOne(ctx, personJPEG, clothingJPEG, size)
			if err != nil {
				logger.Error(err.Error())

				if errors.Is(err, stylist.ErrEmptyImage) {
					return nil, &validate.Rejection{
						Reason: validate.ReasonGenerationEmpty,
						Detail: fmt.Sprintf("Generation returned no image for clothing %d.", idx+1),
					}
				}

				return nil, fmt.Errorf("generate composite for clothing %d: %w", idx+1, err)
			}

			s.cache.Set(ctx, key, composite)
			logs = append(logs, fmt.Sprintf("✨ Generated result for clothing %d.", idx+1))
		}

		composites = append(composites, composite)
		results = append(results, model.TryOnResult{Index: idx, Image: composite.DataURL()})
	}

	logs = append(logs, "🎯 Analyzing generated outfits for best look...")

	recommendation, recErr := s.recommendOutfits(ctx, composites)
	switch {
	case recErr != nil:
		logger.Warn("recommendation failed: " + recErr.Error())
		logs = append(logs, fmt.Sprintf("⚠️ Recommendation generation failed: %s", recErr))
	case recommendation == "":
		logs = append(logs, "⚠️ No recommendation text returned.")
	default:
		logs = append(logs, fmt.Sprintf("💬 Stylist recommendation: %s", recommendation))
	}

	s.archive.Store(ctx, requestID, composites)

	logger.Info(fmt.Sprintf("try-on request finished with %d results in %s", len(results), time.Since(started)))

	return &model.TryOnResponse{
		Success: true,
		Size:    size,
		Results: results,
		Logs:    logs,
	}, nil
}

func (s *TryOnService) validateOne(ctx context.Context, v Validator, img *imaging.Image) (validate.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.DetectTimeout())
	defer cancel()

	return v.Validate(ctx, img)
}

func (s *TryOnService) generateOne(ctx context.Context, personJPEG, clothingJPEG []byte, size string) (*stylist.Composite, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.GenerateTimeout())
	defer cancel()

	ctx, span := tracer.Start(ctx, "tryon.generate")
	defer span.End()

	return s.generator.Generate(ctx, personJPEG, clothingJPEG, size)
}

func (s *TryOnService) recommendOutfits(ctx context.Context, outfits []*stylist.Composite) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RecommendTimeout())
	defer cancel()

	ctx, span := tracer.Start(ctx, "tryon.recommend")
	defer span.End()

	return s.recommender.Recommend(ctx, outfits)
}

// recordHistory files the audit entry after the pipeline settled, success
// or not. It runs on a detached context so an exhausted request deadline
// cannot take the audit trail down with it.
func (s *TryOnService) recordHistory(ctx context.Context, entry history.Entry, runErr error) {
	var rejection *validate.Rejection
	switch {
	case errors.As(runErr, &rejection):
		entry.Reason = rejection.Reason.String()
		entry.Detail = rejection.Detail
	case runErr != nil:
		entry.Detail = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	s.history.Record(ctx, entry)
}

func normalizeSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}
