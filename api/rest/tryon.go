package rest

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tryon/api/model"
	"tryon/config"
	"tryon/shared/log"
)

// TryOnProcessor is what the controller needs from the pipeline.
type TryOnProcessor interface {
	Process(ctx context.Context, req model.TryOnRequest) (*model.TryOnResponse, error)
}

type TryOnController struct {
	cfg     *config.Config
	service TryOnProcessor
	logger  *zap.Logger
}

func NewTryOnController(app *fiber.App, cfg *config.Config, service TryOnProcessor, logger *zap.Logger) *TryOnController {
	t := &TryOnController{cfg: cfg, service: service, logger: logger}

	app.Post("/api/swap-clothing", t.SwapClothing)
	app.Get("/api/health", t.Health)

	return t
}

// SwapClothing runs the try-on pipeline
//
//	@Summary		Generate virtual try-on images
//	@Description	Validates a person photo and one to four clothing photos, then generates one try-on composite per clothing item plus a stylist recommendation.
//	@Tags			tryon
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			person_image	formData	file	true	"Person photo"
//	@Param			clothing_images	formData	file	true	"Clothing photos, repeat the field for each item"
//	@Param			size			formData	string	true	"Clothing size, e.g. S, M, L"
//	@Success		200	{object}	model.TryOnResponse
//	@Failure		400	{object}	model.ErrorResponse
//	@Failure		500	{object}	model.ErrorResponse
//	@Router			/api/swap-clothing [post]
func (t *TryOnController) SwapClothing(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), t.cfg.RequestTimeout())
	defer cancel()
	logger := log.LoggerWithTrace(ctx, t.logger)

	form, err := c.MultipartForm()
	if err != nil {
		logger.Error("Error parsing multipart form", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Expected multipart form data.")
	}

	personFiles := form.File["person_image"]
	if len(personFiles) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "person_image file is required.")
	}

	sizes := form.Value["size"]
	if len(sizes) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "size field is required.")
	}

	personImage, err := readUpload(personFiles[0])
	if err != nil {
		logger.Error("Error reading person upload", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file.")
	}

	clothingFiles := form.File["clothing_images"]
	clothingImages := make([][]byte, 0, len(clothingFiles))
	for _, file := range clothingFiles {
		data, err := readUpload(file)
		if err != nil {
			logger.Error("Error reading clothing upload", zap.Error(err))
			return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file.")
		}

		clothingImages = append(clothingImages, data)
	}

	logger.Debug(fmt.Sprintf("swap-clothing request: %d clothing files", len(clothingImages)))

	response, err := t.service.Process(ctx, model.TryOnRequest{
		PersonImage:    personImage,
		ClothingImages: clothingImages,
		Size:           sizes[0],
	})
	if err != nil {
		logger.Error("Error processing try-on request", zap.Error(err))
		return err
	}

	return c.JSON(response)
}

// Health reports liveness
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/health [get]
func (t *TryOnController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
