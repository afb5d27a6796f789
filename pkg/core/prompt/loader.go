package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed defaults
var defaultsFS embed.FS

// NewDefaultRegistry returns a registry holding the embedded prompts.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, eris.Wrap(err, "prompt: embedded defaults")
	}
	if err := loadFS(r, sub); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFromDirectory registers every .json prompt found under dir, overriding
// prompts with the same ID. Expected structure:
//
//	dir/
//	  insight/
//	    appraisal.json   -> "insight.appraisal"
func LoadFromDirectory(r *Registry, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return eris.Wrapf(err, "prompt: directory %s", dir)
	}
	if err := loadFS(r, os.DirFS(dir)); err != nil {
		return err
	}
	zap.L().Info("prompt: loaded overrides", zap.String("dir", dir), zap.Int("count", r.Count()))
	return nil
}

func loadFS(r *Registry, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return eris.Wrapf(err, "prompt: read %s", p)
		}
		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return eris.Wrapf(err, "prompt: parse %s", p)
		}
		if pt.ID == "" {
			pt.ID = idFromPath(p)
		}
		if pt.Category == "" {
			pt.Category = categoryFromPath(p)
		}
		return r.Register(&pt)
	})
}

// idFromPath maps "insight/appraisal.json" to "insight.appraisal".
func idFromPath(p string) string {
	return strings.ReplaceAll(strings.TrimSuffix(p, ".json"), "/", ".")
}

func categoryFromPath(p string) string {
	if dir := path.Dir(p); dir != "." {
		return strings.Split(dir, "/")[0]
	}
	return "default"
}

// RenderUserPrompt executes the user prompt template with the given variables.
// Missing keys are an error so a renamed variable cannot silently vanish.
func RenderUserPrompt(pt *PromptTemplate, vars map[string]interface{}) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}
	for _, v := range pt.Variables {
		if _, ok := vars[v.Name]; v.Required && !ok {
			return "", eris.Errorf("prompt %s: missing required variable %s", pt.ID, v.Name)
		}
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", eris.Wrapf(err, "prompt %s: parse template", pt.ID)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", eris.Wrapf(err, "prompt %s: execute template", pt.ID)
	}
	return buf.String(), nil
}
