// Package prompts holds the LLM prompt templates. Templates live in embedded JSON files that
// map a key to the template text; a template is addressed as "<file>/<key>".
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// Name addresses one template, e.g. "analysis/match-analysis".
type Name string

// MatchAnalysis scores a job description against a resume and asks for a recruiter email.
// Placeholders: Resume, JobDescription.
const MatchAnalysis Name = "analysis/match-analysis"

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Template is a prompt with {{.Key}} placeholders.
type Template struct {
	Name Name
	Text string
}

// Placeholders returns the distinct placeholder keys in order of first use.
func (t *Template) Placeholders() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.Text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Execute fills every placeholder from data. A placeholder without a value is an error,
// so a prompt never reaches a model with a literal {{.Key}} in it. Extra keys are ignored.
func (t *Template) Execute(data map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(t.Text, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := data[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s: no value for %s", t.Name, strings.Join(missing, ", "))
	}
	return out, nil
}

var loadAll = sync.OnceValues(func() (map[Name]*Template, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	all := make(map[Name]*Template)
	for _, entry := range entries {
		data, err := files.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		var texts map[string]string
		if err := json.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}
		base := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		for key, text := range texts {
			name := Name(base + "/" + key)
			all[name] = &Template{Name: name, Text: text}
		}
	}
	return all, nil
})

// Lookup returns the template registered under name.
func Lookup(name Name) (*Template, error) {
	all, err := loadAll()
	if err != nil {
		return nil, err
	}
	t, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", name)
	}
	return t, nil
}

// Render looks up a template and executes it with data.
func Render(name Name, data map[string]string) (string, error) {
	t, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}

// Names lists every embedded template, sorted.
func Names() []Name {
	all, err := loadAll()
	if err != nil {
		return nil
	}
	names := make([]Name, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
