package prompt

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned for unknown prompt IDs.
var ErrNotFound = eris.New("prompt not found")

// Registry holds loaded prompts. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*PromptTemplate
}

func NewRegistry() *Registry {
	return &Registry{prompts: make(map[string]*PromptTemplate)}
}

// Register adds a prompt template, replacing any prompt with the same ID.
func (r *Registry) Register(pt *PromptTemplate) error {
	if pt.ID == "" {
		return eris.New("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[pt.ID] = pt
	return nil
}

// GetPrompt retrieves a prompt by ID
func (r *Registry) GetPrompt(id string) (*PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.prompts[id]; ok {
		return p, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "%s", id)
}

// ListPrompts returns all registered prompt IDs, sorted.
func (r *Registry) ListPrompts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}
