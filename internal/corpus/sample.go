package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
)

// ErrSampleTooLarge is returned when more documents are requested than the
// corpus holds.
var ErrSampleTooLarge = errors.New("sample count exceeds number of documents")

// SampleResult describes one created symlink.
type SampleResult struct {
	Link   string
	Target string
}

// Sample creates count symlinks in sampleRoot, each pointing at a document
// chosen at random from the walker's corpus. The sample root is created if it
// does not exist. Links are relative when the target can be expressed relative
// to the sample root, so they survive moving the whole tree.
func Sample(ctx context.Context, w *Walker, sampleRoot string, count int, rng *rand.Rand) ([]SampleResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", count)
	}

	paths := slices.Collect(w.Paths(ctx))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.Info("Corpus documents", "count", len(paths))
	if count > len(paths) {
		return nil, fmt.Errorf("%w: %d > %d", ErrSampleTooLarge, count, len(paths))
	}

	if err := os.MkdirAll(sampleRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sample directory: %w", err)
	}
	absRoot, err := filepath.Abs(sampleRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sample directory: %w", err)
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })

	results := make([]SampleResult, 0, count)
	used := make(map[string]bool)
	for _, src := range paths[:count] {
		absSrc, err := filepath.Abs(src)
		if err != nil {
			return results, fmt.Errorf("failed to resolve %s: %w", src, err)
		}

		link := filepath.Join(absRoot, uniqueName(absRoot, filepath.Base(src), used))
		target := absSrc
		if rel, err := filepath.Rel(absRoot, absSrc); err == nil {
			target = rel
		}

		slog.Debug("Creating sample link", "link", link, "target", target)
		if err := os.Symlink(target, link); err != nil {
			return results, fmt.Errorf("failed to create symlink: %w", err)
		}
		results = append(results, SampleResult{Link: link, Target: target})
	}
	return results, nil
}

// uniqueName returns a link name in dir that was neither emitted before nor
// exists on disk. Documents sharing a base name get a numeric suffix.
func uniqueName(dir, name string, used map[string]bool) string {
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	candidate := name
	for n := 1; ; n++ {
		if !used[candidate] {
			used[candidate] = true
			// Lstat errors other than not-exist surface when the link is created
			if _, err := os.Lstat(filepath.Join(dir, candidate)); err != nil {
				return candidate
			}
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}
