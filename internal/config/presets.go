package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/skuahq/skua/internal/logger"
	"github.com/skuahq/skua/internal/resource"
)

//go:embed presets
var presetsFS embed.FS

// Presets returns the shipped resources as a read-only Catalog.
func Presets() (*resource.Catalog, error) {
	c := resource.NewCatalog()
	err := walkPresets(func(name string, data []byte) error {
		r, err := DecodeFile(name, data)
		if err != nil {
			return err
		}
		return c.Add(r)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// InstallPresets copies the shipped resources into the config directory.
// Existing files are kept unless overwrite is set. It returns the number of
// files written.
func (s *Store) InstallPresets(overwrite bool) (int, error) {
	if err := s.EnsureDirs(); err != nil {
		return 0, err
	}
	written := 0
	err := walkPresets(func(name string, data []byte) error {
		dest := filepath.Join(s.dir, filepath.FromSlash(name))
		if _, err := os.Stat(dest); err == nil && !overwrite {
			return nil
		}
		if err := writeFileAtomic(dest, data); err != nil {
			return fmt.Errorf("install preset %s: %w", name, err)
		}
		written++
		return nil
	})
	if err != nil {
		return written, err
	}
	logger.Info("presets installed", "dir", s.dir, "written", written)
	return written, nil
}

// walkPresets calls fn with each preset's path relative to the presets
// root (for example "security/hardened.yaml") and its contents.
func walkPresets(fn func(name string, data []byte) error) error {
	return fs.WalkDir(presetsFS, "presets", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".yaml" {
			return err
		}
		data, err := presetsFS.ReadFile(p)
		if err != nil {
			return err
		}
		return fn(strings.TrimPrefix(p, "presets/"), data)
	})
}
