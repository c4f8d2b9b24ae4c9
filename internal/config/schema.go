package config

// PromptsConfig is the root of configs/prompts.yaml.
type PromptsConfig struct {
	Prompts PromptsSection `yaml:"prompts"`
}

type PromptsSection struct {
	Templates []PromptTemplate `yaml:"templates"`
}

// PromptTemplate is one named text/template with {{.Context}} and {{.Question}} fields.
type PromptTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}
