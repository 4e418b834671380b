package corpus

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
)

// Walker enumerates the documents of a corpus.
type Walker struct {
	root   string
	filter *PathFilter
	logger *slog.Logger
}

// NewWalker creates a walker over root.
func NewWalker(root string, filter *PathFilter) *Walker {
	return &Walker{root: root, filter: filter, logger: slog.Default()}
}

// SetLogger replaces the logger used to report skipped entries.
func (w *Walker) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Root returns the corpus root.
func (w *Walker) Root() string {
	return w.root
}

// Paths returns a lazy sequence of the accepted document paths under the root.
// Each range over the sequence performs a fresh walk. Enumeration order follows
// the file system and is not part of the contract; every accepted file is
// yielded exactly once. Unreadable entries are logged and skipped. The walk
// stops early when ctx is canceled.
func (w *Walker) Paths(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				w.logger.Warn("Skipping unreadable corpus entry", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			relPath, err := filepath.Rel(w.root, path)
			if err != nil {
				return nil
			}

			if d.IsDir() {
				if relPath != "." && w.filter.SkipDir(relPath) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}
			if !w.filter.Accept(relPath) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Count returns the number of accepted documents under the root.
func (w *Walker) Count(ctx context.Context) int {
	n := 0
	for range w.Paths(ctx) {
		n++
	}
	return n
}
