package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sha1n/eml-vocab/internal/artifact"
	"github.com/sha1n/eml-vocab/internal/config"
	"github.com/sha1n/eml-vocab/internal/corpus"
	"github.com/sha1n/eml-vocab/internal/export"
	"github.com/sha1n/eml-vocab/internal/lookup"
	"github.com/sha1n/eml-vocab/internal/report"
	"github.com/sha1n/eml-vocab/internal/selector"
	"github.com/spf13/pflag"
)

// QueryOptions controls the output of the query command
type QueryOptions struct {
	OnlyText bool
	Field    string
}

// RunReport prints the filtered report of an artifact
func RunReport(ctx context.Context, params RunParams, flags *pflag.FlagSet, artifactPath string) error {
	settings, err := setup(params, flags)
	if err != nil {
		return err
	}

	stats, err := artifact.Load(artifact.Path(artifactPath))
	if err != nil {
		return err
	}

	opts := report.Options{
		MinUniqueValues: settings.Report.MinValues,
		MinOccurrences:  settings.Report.MinOccurrences,
		MaxValueLength:  settings.Report.MaxLength,
		TopN:            settings.Report.TopN,
	}
	slog.Debug("Report options", "settings", config.ReportSettingsLogValue(settings.Report))

	return report.Print(params.stdout(), stats, opts)
}

// RunQuery applies a selector to a single document and prints each match as
// "structural_path: text"
func RunQuery(ctx context.Context, params RunParams, flags *pflag.FlagSet, expr, docPath string, opts QueryOptions) error {
	if _, err := setup(params, flags); err != nil {
		return err
	}

	sel, err := selector.Compile(expr)
	if err != nil {
		return err
	}
	if opts.Field != "" {
		if _, err := selector.CompileRelative(opts.Field); err != nil {
			return err
		}
	}

	doc, err := selector.ParseFile(docPath)
	if err != nil {
		return err
	}
	nodes, err := sel.Select(doc)
	if err != nil {
		return err
	}

	w := params.stdout()
	printed := 0
	for _, n := range nodes {
		m, ok := selector.Match(n)
		if !ok {
			continue
		}
		if opts.OnlyText && m.Text == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", m.Path, m.Text); err != nil {
			return err
		}
		printed++

		if opts.Field == "" {
			continue
		}
		value, found, err := selector.FirstText(n, opts.Field)
		if err != nil {
			return err
		}
		if !found {
			value = "(none)"
		}
		if _, err := fmt.Fprintf(w, "    %s: %s\n", opts.Field, value); err != nil {
			return err
		}
	}

	slog.Info("Query complete", "document", docPath, "selected", len(nodes), "printed", printed)
	return nil
}

// RunSample creates a random sample of the corpus as symlinks. A zero seed
// picks a random sample.
func RunSample(ctx context.Context, params RunParams, flags *pflag.FlagSet, count int, sampleRoot string, seed uint64) error {
	settings, err := setup(params, flags)
	if err != nil {
		return err
	}

	// Skip earlier samples when the sample root lives inside the corpus
	exclude := slices.Clone(settings.Exclude)
	if rel, ok := relativeTo(settings.CorpusRoot, sampleRoot); ok {
		exclude = append(exclude, rel+"/**")
	}

	walker := corpus.NewWalker(settings.CorpusRoot, corpus.NewPathFilter(settings.Extension, exclude))

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	results, err := corpus.Sample(ctx, walker, sampleRoot, count, rng)
	if err != nil {
		return err
	}

	slog.Info("Sample created", "sample_root", sampleRoot, "links", len(results))
	return nil
}

// relativeTo returns path relative to root when path lies strictly inside root.
func relativeTo(root, path string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// RunLookup prints the values of an artifact that match a full-text query
func RunLookup(ctx context.Context, params RunParams, flags *pflag.FlagSet, artifactPath string, q lookup.Query) error {
	if _, err := setup(params, flags); err != nil {
		return err
	}

	stats, err := artifact.Load(artifact.Path(artifactPath))
	if err != nil {
		return err
	}

	idx, err := lookup.Build(stats)
	if err != nil {
		return err
	}
	defer func() {
		if err := idx.Close(); err != nil {
			slog.Error("Failed to close index", "error", err)
		}
	}()

	hits, total, err := idx.Search(ctx, q)
	if err != nil {
		return err
	}

	w := params.stdout()
	for _, h := range hits {
		if _, err := fmt.Fprintf(w, "%8d %s: %s\n", h.Count, h.Tag, h.Text); err != nil {
			return err
		}
	}

	slog.Info("Lookup complete", "query", q.Text, "indexed", idx.Len(), "matches", total, "shown", len(hits))
	return nil
}

// RunExport writes an artifact into a SQLite database
func RunExport(ctx context.Context, params RunParams, flags *pflag.FlagSet, artifactPath, dbPath string) error {
	if _, err := setup(params, flags); err != nil {
		return err
	}

	stats, err := artifact.Load(artifact.Path(artifactPath))
	if err != nil {
		return err
	}

	res, err := export.WriteSQLite(ctx, stats, dbPath)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", artifactPath, err)
	}

	slog.Info("Export complete",
		"database", dbPath,
		"run_id", res.RunID,
		"tags", humanize.Comma(int64(res.Tags)),
		"values", humanize.Comma(int64(res.Values)),
	)
	return nil
}
