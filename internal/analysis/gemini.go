package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"nutrilog/internal/logging"
	"nutrilog/internal/services"
)

// Gemini asks a Gemini model for the analysis document directly.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewGemini creates a Gemini-backed analyzer for model.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "gemini", "api key required", nil)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "gemini", "create client", err)
	}
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.2)
	return &Gemini{
		client: client,
		model:  m,
		logger: logging.NewComponentLogger(logger, "analysis").With(logging.String("backend", "gemini")),
	}, nil
}

// AnalyzeMeal sends the photo or description with the response schema.
func (g *Gemini) AnalyzeMeal(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	var parts []genai.Part
	if req.IsImage() {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return Result{}, services.Wrap(services.ErrValidation, "analysis", "gemini", "image is not base64", err)
		}
		parts = []genai.Part{genai.Text(imagePrompt), genai.ImageData("jpeg", data)}
	} else {
		parts = []genai.Part{genai.Text(textPrompt(strings.TrimSpace(req.Description)))}
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return Result{}, classify(fmt.Errorf("generate content: %w", err))
	}
	text, err := firstText(resp)
	if err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "analysis", "gemini", "empty response", err)
	}
	g.logger.Debug("gemini response received", logging.Int("bytes", len(text)))
	return DecodeResult(text)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("generated content is not text")
	}
	return b.String(), nil
}

// Close closes the underlying Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
