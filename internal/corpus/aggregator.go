package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sha1n/eml-vocab/internal/domain"
	"github.com/sha1n/eml-vocab/internal/selector"
	"github.com/sha1n/eml-vocab/internal/vocab"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultExtension is the file suffix of corpus documents.
	DefaultExtension = ".xml"

	// DefaultProgressEvery is the number of documents between progress reports.
	DefaultProgressEvery = 100
)

// ProgressFunc observes the number of documents processed so far.
type ProgressFunc func(processed int)

// LogProgress reports progress through the default logger.
func LogProgress(processed int) {
	slog.Info("Processed EML files", "count", processed)
}

// DocResult is the outcome of processing a single document.
type DocResult struct {
	Path    string
	Matches int
	Err     error
}

// Failed reports whether the document could not be processed.
func (r DocResult) Failed() bool {
	return r.Err != nil
}

// Summary tallies the per-document outcomes of a run.
type Summary struct {
	Processed int
	Failed    int
	Matches   int
	Failures  []DocResult
	Elapsed   time.Duration
}

// Options configures an Aggregator.
type Options struct {
	Extension     string
	Exclude       []string
	MaxVocabulary int
	Workers       int
	ProgressEvery int
	Progress      ProgressFunc
	Logger        *slog.Logger
}

// Aggregator drives selector evaluation and vocabulary accumulation across
// every document of a corpus.
type Aggregator struct {
	selector *selector.Selector
	opts     Options
	filter   *PathFilter
	logger   *slog.Logger
}

// NewAggregator creates an aggregator for the compiled selector. Zero option
// values select the defaults.
func NewAggregator(sel *selector.Selector, opts Options) *Aggregator {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.MaxVocabulary <= 0 {
		opts.MaxVocabulary = vocab.DefaultMaxVocabulary
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if opts.Progress == nil {
		opts.Progress = LogProgress
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		selector: sel,
		opts:     opts,
		filter:   NewPathFilter(opts.Extension, opts.Exclude),
		logger:   logger,
	}
}

// Aggregate walks every document under root and returns the merged statistics.
//
// Each worker owns an accumulator; the accumulators are merged in worker order
// once all workers have finished. Documents that fail to parse or evaluate are
// logged, counted in the summary and otherwise ignored. If ctx is canceled the
// partial state is discarded and ctx.Err() is returned.
func (a *Aggregator) Aggregate(ctx context.Context, root string) (*domain.CorpusStats, *Summary, error) {
	start := time.Now()
	walker := NewWalker(root, a.filter)
	walker.SetLogger(a.logger)

	workers := a.opts.Workers
	accs := make([]*vocab.Accumulator, workers)
	tallies := make([]Summary, workers)
	for i := range accs {
		accs[i] = vocab.New(a.opts.MaxVocabulary)
		accs[i].SetLogger(a.logger)
	}

	paths := make(chan string, workers*2)
	var processed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(paths)
		for path := range walker.Paths(gCtx) {
			select {
			case paths <- path:
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return gCtx.Err()
	})

	for w := range workers {
		g.Go(func() error {
			acc, tally := accs[w], &tallies[w]
			for path := range paths {
				if err := gCtx.Err(); err != nil {
					return err
				}
				res := a.processDocument(acc, path)
				tally.add(res)
				if res.Failed() {
					a.logger.Warn("Failed to process document", "path", res.Path, "error", res.Err)
				} else {
					a.logger.Debug("Processed document", "path", res.Path, "matches", res.Matches)
				}
				if n := int(processed.Add(1)); n%a.opts.ProgressEvery == 0 {
					a.opts.Progress(n)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	merged := accs[0]
	summary := tallies[0]
	for i := 1; i < workers; i++ {
		merged.Merge(accs[i])
		summary.merge(tallies[i])
	}
	summary.Elapsed = time.Since(start)

	now := time.Now().UTC()
	stats := &domain.CorpusStats{
		Metadata: domain.RunMetadata{
			RunID:              ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			Selector:           a.selector.Raw(),
			CorpusRoot:         root,
			Extension:          a.filter.Extension(),
			Exclude:            a.opts.Exclude,
			GeneratedAt:        now,
			MaxVocabulary:      merged.MaxVocabulary(),
			Workers:            workers,
			DocumentsProcessed: summary.Processed,
			DocumentsFailed:    summary.Failed,
			BlockedTags:        merged.Blocked(),
		},
		Tags: merged.Stats(),
	}
	return stats, &summary, nil
}

// processDocument parses one document and records its matches into acc.
func (a *Aggregator) processDocument(acc *vocab.Accumulator, path string) DocResult {
	doc, err := selector.ParseFile(path)
	if err != nil {
		return DocResult{Path: path, Err: err}
	}
	matches, err := a.selector.Evaluate(doc)
	if err != nil {
		return DocResult{Path: path, Err: fmt.Errorf("failed to evaluate selector: %w", err)}
	}
	recorded := 0
	for _, m := range matches {
		if m.Text == "" {
			continue
		}
		acc.Record(m.Tag, m.Text)
		recorded++
	}
	return DocResult{Path: path, Matches: recorded}
}

func (s *Summary) add(r DocResult) {
	s.Processed++
	if r.Failed() {
		s.Failed++
		s.Failures = append(s.Failures, r)
		return
	}
	s.Matches += r.Matches
}

func (s *Summary) merge(o Summary) {
	s.Processed += o.Processed
	s.Failed += o.Failed
	s.Matches += o.Matches
	s.Failures = append(s.Failures, o.Failures...)
}
