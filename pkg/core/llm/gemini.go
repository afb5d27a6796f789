package llm

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither the provider nor the call names a model.
const DefaultGeminiModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned when no Gemini key is configured.
var ErrMissingAPIKey = eris.New("GEMINI_API_KEY environment variable not set")

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model       string  // e.g. "gemini-2.0-flash"
	APIKey      string  // Falls back to GEMINI_API_KEY
	Temperature float32 // 0 means the default of 0.2
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request to the Gemini API using the official GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	model := p.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	if val, ok := options[OptionModel].(string); ok && val != "" {
		model = val
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", eris.Wrap(err, "gemini: create client")
	}

	temperature := p.Temperature
	if temperature == 0 {
		temperature = 0.2
	}
	if val, ok := options[OptionTemperature].(float64); ok {
		temperature = float32(val)
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}

	if wantsJSON(options) || strings.Contains(strings.ToLower(systemPrompt), "json") {
		config.ResponseMIMEType = "application/json"
	}

	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	zap.L().Debug("gemini: generate", zap.String("model", model), zap.Int("prompt_chars", len(prompt)))
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", eris.Wrapf(err, "gemini: generate with %s", model)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", eris.Errorf("gemini: empty response from %s", model)
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
