package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source file names (without extension) expected in a catalog directory.
const (
	FileInteriors     = "interiors"
	FilePhotographers = "photographers"
	FileLighting      = "lighting"
	FileClutter       = "clutter"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Load reads the four catalog documents from dir. Each may be JSON or YAML.
// A missing document is an error: the wizard cannot run without its vocabulary.
func Load(dir string) (*Catalog, error) {
	var (
		cat Catalog
		err error
	)
	targets := []struct {
		name string
		dst  **Set
	}{
		{FileInteriors, &cat.Interiors},
		{FilePhotographers, &cat.Photographers},
		{FileLighting, &cat.Lighting},
		{FileClutter, &cat.Clutter},
	}
	for _, t := range targets {
		*t.dst, err = loadSet(dir, t.name)
		if err != nil {
			return nil, err
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func loadSet(dir, name string) (*Set, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		set, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
		}
		return set, nil
	}
	return nil, fmt.Errorf("catalog %q not found in %s (tried %v)", name, dir, extensions)
}

// Parse decodes a single flat key → text mapping. JSON is parsed as YAML so that
// the key order of the document is preserved.
func Parse(data []byte) (*Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of option keys to text, got line %d", root.Line)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("value of %q must be text (line %d)", k.Value, v.Line)
		}
		entries = append(entries, Entry{Key: k.Value, Text: v.Value})
	}
	return NewSet(entries...)
}
