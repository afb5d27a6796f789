package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	DefaultDeepSeekURL   = "https://api.deepseek.com/chat/completions"
	DefaultDeepSeekModel = "deepseek-chat"
)

// ErrMissingDeepSeekKey is returned when no DeepSeek key is configured.
var ErrMissingDeepSeekKey = eris.New("DEEPSEEK_API_KEY environment variable not set")

// DeepSeekProvider talks to DeepSeek, or any OpenAI compatible
// chat/completions endpoint when URL is overridden.
type DeepSeekProvider struct {
	URL        string // Default DefaultDeepSeekURL
	Model      string // Default DefaultDeepSeekModel
	APIKey     string // Falls back to DEEPSEEK_API_KEY
	HTTPClient *http.Client
}

var _ Provider = (*DeepSeekProvider)(nil)

type DeepSeekRequest struct {
	Messages       []Message      `json:"messages"`
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
	Temperature    float64        `json:"temperature"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type DeepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if apiKey == "" {
		return "", ErrMissingDeepSeekKey
	}

	model := p.Model
	if model == "" {
		model = DefaultDeepSeekModel
	}
	if val, ok := options[OptionModel].(string); ok && val != "" {
		model = val
	}
	url := p.URL
	if url == "" {
		url = DefaultDeepSeekURL
	}

	reqBody := DeepSeekRequest{
		Model:          model,
		MaxTokens:      4096,
		ResponseFormat: ResponseFormat{Type: "text"},
		Temperature:    0.2,
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, Message{Content: systemPrompt, Role: "system"})
	}
	reqBody.Messages = append(reqBody.Messages, Message{Content: prompt, Role: "user"})
	if wantsJSON(options) {
		reqBody.ResponseFormat.Type = "json_object"
	}
	if val, ok := options[OptionTemperature].(float64); ok {
		reqBody.Temperature = val
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "deepseek: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", eris.Wrap(err, "deepseek: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	zap.L().Debug("deepseek: generate", zap.String("model", model), zap.Int("prompt_chars", len(prompt)))
	res, err := client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "deepseek: call api")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", eris.Wrap(err, "deepseek: read body")
	}
	if res.StatusCode != http.StatusOK {
		return "", eris.Errorf("deepseek: status %d: %s", res.StatusCode, truncate(string(body), 512))
	}

	var response DeepSeekResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", eris.Wrap(err, "deepseek: decode response")
	}
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", eris.Errorf("deepseek: empty response from %s", model)
	}

	return response.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
