package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
	"github.com/sha1n/eml-vocab/internal/artifact"
	"github.com/sha1n/eml-vocab/internal/config"
	"github.com/sha1n/eml-vocab/internal/corpus"
	"github.com/sha1n/eml-vocab/internal/domain"
	"github.com/sha1n/eml-vocab/internal/selector"
	"github.com/sha1n/eml-vocab/internal/vocab"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// RunCollect aggregates the corpus with one selector and saves the artifact
func RunCollect(ctx context.Context, params RunParams, flags *pflag.FlagSet, artifactPath, expr string) error {
	settings, err := setup(params, flags)
	if err != nil {
		return err
	}

	slog.Info("Starting collection", "selector", expr)
	config.Log(settings)

	_, err = collect(ctx, settings, artifact.Path(artifactPath), expr)
	return err
}

// RunBatch collects every preset concurrently, writing artifacts to the output directory.
// An empty presetsPath selects the default presets.
func RunBatch(ctx context.Context, params RunParams, flags *pflag.FlagSet, presetsPath string, parallel int) error {
	settings, err := setup(params, flags)
	if err != nil {
		return err
	}

	presets := config.DefaultPresets()
	if presetsPath != "" {
		if presets, err = config.LoadPresets(presetsPath); err != nil {
			return err
		}
	}
	if parallel <= 0 {
		parallel = DefaultParallel
	}

	// A bad selector fails the batch before any walk starts
	for _, p := range presets {
		if _, err := selector.Compile(p.Selector); err != nil {
			return fmt.Errorf("preset %s: %w", p.Artifact, err)
		}
	}

	if err := os.MkdirAll(settings.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Info("Starting batch", "presets", len(presets), "parallel", parallel, "output_dir", settings.OutputDir)
	config.Log(settings)

	var g errgroup.Group
	g.SetLimit(parallel)
	for _, p := range presets {
		path := p.Artifact
		if !filepath.IsAbs(path) {
			path = filepath.Join(settings.OutputDir, path)
		}
		path = artifact.Path(path)

		g.Go(func() error {
			if _, err := collect(ctx, settings, path, p.Selector); err != nil {
				slog.Error("Preset failed", "artifact", path, "error", err)
				return fmt.Errorf("preset %s: %w", p.Artifact, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// collect runs one aggregation and saves its artifact to path.
func collect(ctx context.Context, settings *config.Settings, path, expr string) (*domain.CorpusStats, error) {
	sel, err := selector.Compile(expr)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(settings.CorpusRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", settings.CorpusRoot)
	}

	logger := slog.Default().With("artifact", filepath.Base(path))
	agg := corpus.NewAggregator(sel, corpus.Options{
		Extension:     settings.Extension,
		Exclude:       settings.Exclude,
		MaxVocabulary: settings.MaxVocabulary,
		Workers:       settings.Workers,
		ProgressEvery: settings.ProgressEvery,
		Progress: func(processed int) {
			logger.Info("Progress", "documents", humanize.Comma(int64(processed)))
		},
		Logger: logger,
	})

	stats, summary, err := agg.Aggregate(ctx, settings.CorpusRoot)
	if err != nil {
		return nil, fmt.Errorf("aggregation aborted: %w", err)
	}

	if err := artifact.Save(stats, path); err != nil {
		return nil, err
	}

	size := "unknown"
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	logger.Info("Collection complete",
		"path", path,
		"size", size,
		"tags", len(stats.Tags),
		"blocked", len(stats.Metadata.BlockedTags),
		"processed", humanize.Comma(int64(summary.Processed)),
		"failed", humanize.Comma(int64(summary.Failed)),
		"matches", humanize.Comma(int64(summary.Matches)),
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)
	return stats, nil
}

// RunMerge merges artifacts collected with the same selector into one
func RunMerge(ctx context.Context, params RunParams, flags *pflag.FlagSet, output string, inputs []string) error {
	settings, err := setup(params, flags)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("at least one artifact is required")
	}

	acc := vocab.New(settings.MaxVocabulary)
	acc.SetLogger(slog.Default())

	var md domain.RunMetadata
	var roots []string
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats, err := artifact.Load(artifact.Path(in))
		if err != nil {
			return err
		}

		if i == 0 {
			md.Selector = stats.Metadata.Selector
			md.Extension = stats.Metadata.Extension
			md.Exclude = stats.Metadata.Exclude
		} else if stats.Metadata.Selector != md.Selector {
			return fmt.Errorf("cannot merge %s: selector %q differs from %q", in, stats.Metadata.Selector, md.Selector)
		}
		if root := stats.Metadata.CorpusRoot; !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
		md.DocumentsProcessed += stats.Metadata.DocumentsProcessed
		md.DocumentsFailed += stats.Metadata.DocumentsFailed

		acc.MergeStats(stats.Tags, stats.Metadata.BlockedTags)
		slog.Debug("Merged artifact", "path", in, "tags", len(stats.Tags))
	}

	now := time.Now().UTC()
	md.RunID = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	md.CorpusRoot = strings.Join(roots, ",")
	md.GeneratedAt = now
	md.MaxVocabulary = acc.MaxVocabulary()
	md.BlockedTags = acc.Blocked()

	path := artifact.Path(output)
	if err := artifact.Save(&domain.CorpusStats{Metadata: md, Tags: acc.Stats()}, path); err != nil {
		return err
	}

	slog.Info("Merge complete",
		"path", path,
		"inputs", len(inputs),
		"tags", acc.Len(),
		"blocked", len(md.BlockedTags),
		"processed", humanize.Comma(int64(md.DocumentsProcessed)),
	)
	return nil
}
