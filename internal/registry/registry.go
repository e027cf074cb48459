// Package registry tracks generated artifacts and resolves check diagnostics
// back to the artifact that owns them.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/atelierhq/veneer/pkg/models"
)

// ManifestName is the registry manifest filename within the output root.
const ManifestName = "veneer.manifest.yaml"

// manifest is the on-disk representation of the registry.
type manifest struct {
	// Version is the manifest schema version.
	Version int `yaml:"version"`
	// Artifacts lists all tracked artifacts.
	Artifacts []models.Artifact `yaml:"artifacts"`
}

// Registry is the authoritative mapping from artifact name to storage
// location and kind. It is consumed read-only by the check and aggregation
// passes; only the generation phase adds entries.
type Registry struct {
	root string

	mu     sync.RWMutex
	byName map[string]models.Artifact
}

// New creates an empty registry rooted at the given output directory.
func New(root string) *Registry {
	return &Registry{
		root:   root,
		byName: make(map[string]models.Artifact),
	}
}

// Load reads the manifest from the output root.
func Load(root string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	reg := New(root)
	for _, a := range m.Artifacts {
		if err := reg.Add(a); err != nil {
			return nil, fmt.Errorf("manifest entry %q: %w", a.Name, err)
		}
	}
	return reg, nil
}

// Save writes the manifest to the output root.
func (r *Registry) Save() error {
	r.mu.RLock()
	m := manifest{Version: 1, Artifacts: r.listLocked()}
	r.mu.RUnlock()

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.MkdirAll(r.root, 0755); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.root, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Root returns the output root directory the registry is anchored to.
func (r *Registry) Root() string {
	return r.root
}

// Add registers an artifact. The name must be unique and the kind known.
func (r *Registry) Add(a models.Artifact) error {
	if a.Name == "" {
		return fmt.Errorf("artifact name is empty")
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	if a.StoragePath == "" {
		return fmt.Errorf("artifact %q has no storage path", a.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Name]; exists {
		return fmt.Errorf("artifact %q already registered", a.Name)
	}
	r.byName[a.Name] = a
	return nil
}

// Get returns the artifact with the given name.
func (r *Registry) Get(name string) (models.Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Len returns the number of tracked artifacts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// ListArtifacts returns all tracked artifacts sorted by name.
func (r *Registry) ListArtifacts() []models.Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []models.Artifact {
	out := make([]models.Artifact, 0, len(r.byName))
	for _, a := range r.byName {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveOwner maps a diagnostic's file path to the artifact that owns it,
// using the longest path-prefix match against the path table. The path may be
// absolute or relative to the output root. Returns false for untracked files
// (scaffolding, configs) so their diagnostics can be dropped.
func (r *Registry) ResolveOwner(filePath string) (models.Artifact, bool) {
	rel := r.normalize(filePath)
	if rel == "" {
		return models.Artifact{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    models.Artifact
		bestLen = -1
	)
	for _, a := range r.byName {
		stored := filepath.ToSlash(a.StoragePath)
		if rel == stored || strings.HasPrefix(rel, stored+"/") {
			if len(stored) > bestLen {
				best = a
				bestLen = len(stored)
			}
		}
	}
	if bestLen < 0 {
		return models.Artifact{}, false
	}
	return best, true
}

// normalize converts a diagnostic path to a slash-separated path relative to
// the output root. Paths outside the root normalize to "".
func (r *Registry) normalize(filePath string) string {
	p := filepath.Clean(filePath)
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			return ""
		}
		p = rel
	}
	return filepath.ToSlash(p)
}
