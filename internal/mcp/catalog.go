package mcp

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sha1n/eml-vocab/internal/artifact"
	"github.com/sha1n/eml-vocab/internal/domain"
	"github.com/sha1n/eml-vocab/internal/lookup"
)

// Entry is one loaded artifact with its value index.
type Entry struct {
	Name  string
	Path  string
	Stats *domain.CorpusStats
	Index *lookup.Index
}

// Catalog holds the artifacts served by the tools, addressed by name.
type Catalog struct {
	entries []*Entry
	byName  map[string]*Entry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*Entry)}
}

// LoadCatalog loads every artifact in paths and indexes its values.
// Artifacts are named after their file name without extension.
func LoadCatalog(paths []string) (*Catalog, error) {
	c := NewCatalog()
	for _, p := range paths {
		stats, err := artifact.Load(p)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		if _, err := c.Add(p, stats); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// Add indexes stats and registers it under a name derived from path.
func (c *Catalog) Add(path string, stats *domain.CorpusStats) (*Entry, error) {
	idx, err := lookup.Build(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := base
	for i := 2; c.byName[name] != nil; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}

	e := &Entry{Name: name, Path: path, Stats: stats, Index: idx}
	c.entries = append(c.entries, e)
	c.byName[name] = e
	return e, nil
}

// Len returns the number of artifacts.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Names returns the artifact names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Entries returns the artifacts in load order.
func (c *Catalog) Entries() []*Entry {
	return c.entries
}

// Resolve returns the named artifact. An empty name selects the only
// artifact when exactly one is loaded.
func (c *Catalog) Resolve(name string) (*Entry, error) {
	if name == "" {
		switch len(c.entries) {
		case 0:
			return nil, errors.New("no artifacts are loaded")
		case 1:
			return c.entries[0], nil
		default:
			return nil, fmt.Errorf("artifact name required, one of: %s", strings.Join(c.Names(), ", "))
		}
	}
	e, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown artifact %q, expected one of: %s", name, strings.Join(c.Names(), ", "))
	}
	return e, nil
}

// Close releases all indexes.
func (c *Catalog) Close() error {
	var errs []error
	for _, e := range c.entries {
		if err := e.Index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close index of %s: %w", e.Name, err))
		}
	}
	return errors.Join(errs...)
}
