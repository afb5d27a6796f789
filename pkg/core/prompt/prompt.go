// Package prompt holds the prompt templates sent to LLM providers.
// Templates are JSON files with a system prompt and a Go text/template user
// prompt; built-in defaults are embedded and a directory can override them.
package prompt

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID             string           `json:"id"`                   // e.g. "insight.appraisal"
	Name           string           `json:"name"`                 // Human-readable name
	Category       string           `json:"category"`             // Folder name when not set
	Description    string           `json:"description"`          // Description of prompt purpose
	SystemPrompt   string           `json:"system_prompt"`        // The system prompt content
	UserPromptTmpl string           `json:"user_prompt_template"` // Go template for user prompt
	Variables      []PromptVariable `json:"variables"`            // Variables used in template
	Version        string           `json:"version"`
}

// PromptVariable defines a variable used in a prompt template
type PromptVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// IDs of the prompts shipped with the binary.
const (
	InsightAppraisal = "insight.appraisal"
)
