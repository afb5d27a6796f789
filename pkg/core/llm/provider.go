package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Option keys understood by providers.
const (
	OptionModel          = "model"
	OptionResponseFormat = "response_format"
	OptionTemperature    = "temperature"
)

// JSONResponse is the OptionResponseFormat value asking for a JSON object.
func JSONResponse() map[string]interface{} {
	return map[string]interface{}{"type": "json_object"}
}

func wantsJSON(options map[string]interface{}) bool {
	val, ok := options[OptionResponseFormat].(map[string]interface{})
	return ok && val["type"] == "json_object"
}
