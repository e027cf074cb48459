package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atelierhq/veneer/internal/registry"
	"github.com/atelierhq/veneer/pkg/models"
)

// Generator is the external generation capability: it produces the source
// text for one component.
type Generator interface {
	Generate(ctx context.Context, component ComponentSpec, tokens StyleTokens) (string, error)
}

// StoragePathFor returns the conventional storage path for a component.
func StoragePathFor(c ComponentSpec) string {
	dir := "components"
	switch c.Kind {
	case models.KindIcon:
		dir = "icons"
	case models.KindComplexModule:
		dir = "modules"
	}
	return dir + "/" + c.Name + ".tsx"
}

// Run generates every component in the design, writes the sources under the
// output root, and registers each artifact. The registry manifest is saved
// once all components are written.
func Run(ctx context.Context, gen Generator, spec *DesignSpec, reg *registry.Registry) error {
	for _, component := range spec.Components {
		if err := ctx.Err(); err != nil {
			return err
		}

		source, err := gen.Generate(ctx, component, spec.Tokens)
		if err != nil {
			return fmt.Errorf("generate %s: %w", component.Name, err)
		}
		if source == "" {
			return fmt.Errorf("generate %s: empty source", component.Name)
		}

		storagePath := StoragePathFor(component)
		full := filepath.Join(reg.Root(), storagePath)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("create directory for %s: %w", component.Name, err)
		}
		if err := os.WriteFile(full, []byte(source), 0644); err != nil {
			return fmt.Errorf("write %s: %w", component.Name, err)
		}

		if err := reg.Add(models.Artifact{
			Name:        component.Name,
			Kind:        component.Kind,
			StoragePath: storagePath,
		}); err != nil {
			return err
		}
	}

	return reg.Save()
}
