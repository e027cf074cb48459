// Package generate turns a design spec into registered source artifacts
// via the external generation capability.
package generate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atelierhq/veneer/pkg/models"
)

// StyleTokens are the design tokens (colors, spacing, typography) shared by
// all generated components.
type StyleTokens map[string]string

// ComponentSpec describes one component to generate.
type ComponentSpec struct {
	// Name is the component name, unique within the design.
	Name string `yaml:"name"`
	// Kind classifies the component.
	Kind models.ArtifactKind `yaml:"kind"`
	// Description is the natural-language description fed to the generator.
	Description string `yaml:"description"`
	// Uses names other components this one composes.
	Uses []string `yaml:"uses,omitempty"`
}

// DesignSpec is the parsed design file: a component list plus style tokens.
type DesignSpec struct {
	// Name is the design's name.
	Name string `yaml:"name"`
	// Tokens are the design's style tokens.
	Tokens StyleTokens `yaml:"tokens"`
	// Components lists the components to generate.
	Components []ComponentSpec `yaml:"components"`
}

// ParseDesignFile reads and validates a design spec from a YAML file.
func ParseDesignFile(path string) (*DesignSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design file: %w", err)
	}

	var spec DesignSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse design file: %w", err)
	}

	if len(spec.Components) == 0 {
		return nil, fmt.Errorf("design %q has no components", spec.Name)
	}
	seen := make(map[string]bool)
	for _, c := range spec.Components {
		if c.Name == "" {
			return nil, fmt.Errorf("design %q has a component with no name", spec.Name)
		}
		if !c.Kind.Valid() {
			return nil, fmt.Errorf("component %q has unknown kind %q", c.Name, c.Kind)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate component name %q", c.Name)
		}
		seen[c.Name] = true
	}
	for _, c := range spec.Components {
		for _, dep := range c.Uses {
			if !seen[dep] {
				return nil, fmt.Errorf("component %q uses unknown component %q", c.Name, dep)
			}
		}
	}

	return &spec, nil
}
