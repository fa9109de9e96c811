package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"tryon/config"
	"tryon/shared/log"
	"tryon/stylist"
)

const defaultMimeType = "image/png"

// Client talks to the Gemini generateContent REST endpoint. One client
// serves both generation and recommendation; the model is multimodal and
// answers with image parts or text parts depending on what it was shown.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func MustClient(c *config.Config, logger *zap.Logger) *Client {
	if c.GeminiAPIKey == "" {
		panic("gemini api key is not configured")
	}

	return &Client{
		baseURL: strings.TrimRight(c.GeminiBaseURL, "/"),
		apiKey:  c.GeminiAPIKey,
		model:   c.GeminiImageModel,
		// per-call deadlines come from the caller's context
		httpClient: &http.Client{},
		logger:     logger.Named("gemini"),
	}
}

type wireInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inlineData,omitempty"`
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wireRequest struct {
	Contents []wireContent `json:"contents"`
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []wirePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model to dress the person in the clothing item and
// returns the first image part of the answer.
func (c *Client) Generate(ctx context.Context, personJPEG, clothingJPEG []byte, size string) (*stylist.Composite, error) {
	logger := log.LoggerWithTrace(ctx, c.logger)

	prompt := fmt.Sprintf(
		"Combine this person photo with the clothing image realistically. "+
			"The clothing size is %s. Keep the person’s face and pose natural.", size)

	response, err := c.generateContent(ctx, []wirePart{
		{Text: prompt},
		{InlineData: inlineJPEG(personJPEG)},
		{InlineData: inlineJPEG(clothingJPEG)},
	})
	if err != nil {
		logger.Error(err.Error())
		return nil, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}

			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode generated image: %w", err)
			}

			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = defaultMimeType
			}

			logger.Debug(fmt.Sprintf("generated composite: %d bytes, %s", len(data), mimeType))

			return &stylist.Composite{Data: data, MimeType: mimeType}, nil
		}
	}

	return nil, stylist.ErrEmptyImage
}

// Recommend shows the model every composite and returns its verdict. An
// answer without text is not an error; the caller treats it as "nothing to
// say".
func (c *Client) Recommend(ctx context.Context, outfits []*stylist.Composite) (string, error) {
	logger := log.LoggerWithTrace(ctx, c.logger)

	prompt := fmt.Sprintf(
		"Evaluate these %d virtual try-on photos. "+
			"Determine which outfit looks best on the person in terms of realism, fit, and color harmony. "+
			"Provide a short, friendly recommendation like "+
			"'Outfit 2 looks best because it matches skin tone and body shape naturally.'", len(outfits))

	parts := append([]wirePart{{Text: prompt}}, lo.Map(outfits, func(outfit *stylist.Composite, _ int) wirePart {
		return wirePart{InlineData: &wireInlineData{
			MimeType: outfit.MimeType,
			Data:     base64.StdEncoding.EncodeToString(outfit.Data),
		}}
	})...)

	response, err := c.generateContent(ctx, parts)
	if err != nil {
		logger.Error(err.Error())
		return "", err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}

	return "", nil
}

func (c *Client) generateContent(ctx context.Context, parts []wirePart) (*wireResponse, error) {
	payload, err := json.Marshal(wireRequest{Contents: []wireContent{{Parts: parts}}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

func inlineJPEG(data []byte) *wireInlineData {
	return &wireInlineData{
		MimeType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}
