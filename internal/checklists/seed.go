package checklists

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed_templates.yaml
var seedTemplatesYAML []byte

type seedFile struct {
	Templates []seedTemplate `yaml:"templates"`
}

type seedTemplate struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Items       []seedItem `yaml:"items"`
}

type seedItem struct {
	Label         string `yaml:"label"`
	RequiresPhoto bool   `yaml:"requiresPhoto"`
}

// loadSeedTemplates parses the built-in template definitions shipped with
// the binary. New organizations get a copy of each.
func loadSeedTemplates() ([]seedTemplate, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedTemplatesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse seed templates: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("no seed templates defined")
	}
	for _, tpl := range file.Templates {
		if tpl.Name == "" {
			return nil, fmt.Errorf("seed template with empty name")
		}
		if len(tpl.Items) == 0 {
			return nil, fmt.Errorf("seed template %q has no items", tpl.Name)
		}
	}
	return file.Templates, nil
}
