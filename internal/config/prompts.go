package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/prompt"
	"gopkg.in/yaml.v3"
)

const DefaultPromptsPath = "configs/prompts.yaml"

// LoadPromptsConfig reads prompt templates from path. A missing file yields the built-in templates.
func LoadPromptsConfig(path string) (*PromptsConfig, error) {
	if path == "" {
		path = DefaultPromptsPath
	}

	var cfg PromptsConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read prompts config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse prompts config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults adds every built-in template the file does not override.
func applyDefaults(cfg *PromptsConfig) {
	builtin := prompt.Builtin()

	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := cfg.Template(name); ok {
			continue
		}
		cfg.Prompts.Templates = append(cfg.Prompts.Templates, PromptTemplate{
			Name:     name,
			Template: builtin[name],
		})
	}
}

func (c *PromptsConfig) Validate() error {
	seen := make(map[string]bool)
	for i, t := range c.Prompts.Templates {
		if t.Name == "" {
			return fmt.Errorf("prompt template %d has no name", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("prompt template %s is defined twice", t.Name)
		}
		seen[t.Name] = true

		if t.Template == "" {
			return fmt.Errorf("prompt template %s is empty", t.Name)
		}
	}
	return nil
}

func (c *PromptsConfig) Template(name string) (PromptTemplate, bool) {
	for _, t := range c.Prompts.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return PromptTemplate{}, false
}

// Builder parses the named template into a prompt builder.
func (c *PromptsConfig) Builder(name string) (*prompt.Builder, error) {
	t, ok := c.Template(name)
	if !ok {
		return nil, fmt.Errorf("prompt template %s not found", name)
	}
	return prompt.NewBuilder(t.Name, t.Template)
}
