package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tryon/detect"
	"tryon/imaging"
)

// Detector delegates inference to an external detection service over HTTP.
// The service accepts a multipart image upload and answers with JSON
// bounding boxes in source-image pixel coordinates.
type Detector struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(url string, timeout time.Duration, logger *zap.Logger) *Detector {
	return &Detector{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("remote-detect"),
	}
}

type wireDetection struct {
	Class      string  `json:"class"`
	Confidence float32 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

func (d *Detector) Detect(ctx context.Context, img *imaging.Image) ([]detect.Box, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image."+img.Format)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}

	if _, err := io.Copy(part, bytes.NewReader(img.Bytes)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []wireDetection `json:"detections"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	boxes := make([]detect.Box, 0, len(result.Detections))
	for _, det := range result.Detections {
		boxes = append(boxes, detect.Box{
			Class:      det.Class,
			Confidence: det.Confidence,
			Rect:       image.Rect(det.X, det.Y, det.X+det.Width, det.Y+det.Height),
		})
	}

	d.logger.Debug(fmt.Sprintf("inference service returned %d detections", len(boxes)))

	return boxes, nil
}

// CheckHealth probes the inference service. Called once at startup so a
// misconfigured URL surfaces in the logs before the first request does.
func (d *Detector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
