// Package config owns the on-disk layout under the config directory:
// global.yaml, one subdirectory per resource kind, and the shipped presets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/skuahq/skua/internal/logger"
	"github.com/skuahq/skua/internal/resource"
)

var kindDirs = map[resource.Kind]string{
	resource.KindEnvironment:     "environments",
	resource.KindSecurityProfile: "security",
	resource.KindAgentConfig:     "agents",
	resource.KindCredential:      "credentials",
	resource.KindProject:         "projects",
}

// resourceExts are tried in order when looking a resource up by name.
var resourceExts = []string{".yaml", ".yml", ".json", ".jsonc"}

// ErrNotFound is returned when a named resource has no file.
var ErrNotFound = errors.New("resource not found")

// Store reads and writes resource files under one config directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// KindDir returns the directory holding resources of kind.
func (s *Store) KindDir(kind resource.Kind) string {
	sub, ok := kindDirs[kind]
	if !ok {
		panic(fmt.Sprintf("config: unknown kind %q", kind))
	}
	return filepath.Join(s.dir, sub)
}

// EnsureDirs creates the config directory and every kind subdirectory.
func (s *Store) EnsureDirs() error {
	for _, kind := range resource.Kind("").Values() {
		if err := os.MkdirAll(s.KindDir(resource.Kind(kind)), 0755); err != nil {
			return fmt.Errorf("create config dirs: %w", err)
		}
	}
	return nil
}

// Load reads every resource file into a Catalog. Projects get their unset
// references filled from global defaults. Any malformed file fails the
// whole load.
func (s *Store) Load() (*resource.Catalog, error) {
	g, err := s.LoadGlobal()
	if err != nil {
		return nil, err
	}
	c := resource.NewCatalog()
	count := 0
	for _, k := range resource.Kind("").Values() {
		kind := resource.Kind(k)
		paths, err := s.files(kind)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			r, err := s.readFile(kind, path)
			if err != nil {
				return nil, err
			}
			if p, ok := r.(*resource.Project); ok {
				g.ApplyTo(p)
			}
			if err := c.Add(r); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			count++
		}
	}
	logger.Debug("catalog loaded", "dir", s.dir, "resources", count)
	return c, nil
}

// Get loads one resource by kind and name.
func (s *Store) Get(kind resource.Kind, name string) (resource.Resource, error) {
	path, err := s.find(kind, name)
	if err != nil {
		return nil, err
	}
	r, err := s.readFile(kind, path)
	if err != nil {
		return nil, err
	}
	if p, ok := r.(*resource.Project); ok {
		g, err := s.LoadGlobal()
		if err != nil {
			return nil, err
		}
		g.ApplyTo(p)
	}
	return r, nil
}

// List returns the names of resources of kind, sorted.
func (s *Store) List(kind resource.Kind) ([]string, error) {
	paths, err := s.files(kind)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range paths {
		names = append(names, strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Save writes r as YAML to <kind dir>/<name>.yaml, replacing any file of
// the same name with another extension.
func (s *Store) Save(r resource.Resource) error {
	if err := s.EnsureDirs(); err != nil {
		return err
	}
	data, err := resource.Encode(r)
	if err != nil {
		return err
	}
	dir := s.KindDir(r.ResourceKind())
	target := filepath.Join(dir, r.ResourceName()+".yaml")
	if err := writeFileAtomic(target, data); err != nil {
		return err
	}
	for _, ext := range resourceExts[1:] {
		os.Remove(filepath.Join(dir, r.ResourceName()+ext))
	}
	logger.Info("resource saved", "kind", r.ResourceKind(), "name", r.ResourceName())
	return nil
}

// Delete removes a resource file. It reports whether one existed.
func (s *Store) Delete(kind resource.Kind, name string) (bool, error) {
	path, err := s.find(kind, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("delete %s %q: %w", kind, name, err)
	}
	return true, nil
}

func (s *Store) find(kind resource.Kind, name string) (string, error) {
	if !resource.ValidName(name) {
		return "", fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}
	for _, ext := range resourceExts {
		path := filepath.Join(s.KindDir(kind), name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

func (s *Store) files(kind resource.Kind) ([]string, error) {
	entries, err := os.ReadDir(s.KindDir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s dir: %w", kind, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if slices.Contains(resourceExts, filepath.Ext(e.Name())) {
			paths = append(paths, filepath.Join(s.KindDir(kind), e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// readFile decodes one resource file and checks it sits in its kind's
// directory under its own name.
func (s *Store) readFile(kind resource.Kind, path string) (resource.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := DecodeFile(path, data)
	if err != nil {
		return nil, err
	}
	if r.ResourceKind() != kind {
		return nil, fmt.Errorf("%s: kind %s does not belong in %s/", path, r.ResourceKind(), kindDirs[kind])
	}
	// Lookups by name go through the file name, so the two must agree.
	if stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)); r.ResourceName() != stem {
		return nil, fmt.Errorf("%s: %w", path, &resource.SchemaError{
			Kind:   kind,
			Name:   r.ResourceName(),
			Field:  "metadata.name",
			Value:  r.ResourceName(),
			Reason: fmt.Sprintf("name %q does not match file name %q", r.ResourceName(), stem),
		})
	}
	return r, nil
}

// DecodeFile decodes a resource document, converting JSON with comments
// to plain JSON first based on the file extension.
func DecodeFile(path string, data []byte) (resource.Resource, error) {
	switch filepath.Ext(path) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	r, err := resource.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
