// Package report filters stored vocabulary statistics and prints them as
// plain text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/sha1n/eml-vocab/internal/domain"
)

// Defaults used by the report command.
const (
	DefaultMinUniqueValues = 0
	DefaultMinOccurrences  = 0
	DefaultMaxValueLength  = 100
	DefaultTopN            = 0
)

// Options controls which tags and values are reported.
type Options struct {
	// MinUniqueValues skips tags with fewer distinct values.
	MinUniqueValues int

	// MinOccurrences drops values seen fewer times.
	MinOccurrences int

	// MaxValueLength drops values longer than this many characters.
	// Zero or negative means unlimited.
	MaxValueLength int

	// TopN keeps at most this many values per tag. Zero or negative means unlimited.
	TopN int
}

// DefaultOptions returns the report defaults.
func DefaultOptions() Options {
	return Options{
		MinUniqueValues: DefaultMinUniqueValues,
		MinOccurrences:  DefaultMinOccurrences,
		MaxValueLength:  DefaultMaxValueLength,
		TopN:            DefaultTopN,
	}
}

// Section is the reported part of one tag.
type Section struct {
	Tag string

	// Occurrences is the tag's total occurrence count before filtering.
	Occurrences int

	// Values are the surviving values, most frequent first.
	Values []domain.ValueCount
}

// Filter applies opts to tags and returns one section per tag that still has
// at least one value. Tags keep their input order.
func Filter(tags []domain.TagStats, opts Options) []Section {
	var sections []Section
	for _, t := range tags {
		if t.UniqueCount() < opts.MinUniqueValues {
			continue
		}

		sorted := make([]domain.ValueCount, len(t.Values))
		copy(sorted, t.Values)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Count > sorted[j].Count
		})

		var kept []domain.ValueCount
		for _, v := range sorted {
			if opts.TopN > 0 && len(kept) >= opts.TopN {
				break
			}
			if v.Count < opts.MinOccurrences {
				continue
			}
			if opts.MaxValueLength > 0 && utf8.RuneCountInString(v.Text) > opts.MaxValueLength {
				continue
			}
			kept = append(kept, v)
		}

		if len(kept) == 0 {
			continue
		}
		sections = append(sections, Section{
			Tag:         t.Tag,
			Occurrences: t.OccurrenceCount(),
			Values:      kept,
		})
	}
	return sections
}

// Render returns the report lines for stats. Each section is preceded by an
// empty line and a "count tag::" header, followed by one indented line per value.
func Render(stats *domain.CorpusStats, opts Options) []string {
	var lines []string
	for _, s := range Filter(stats.Tags, opts) {
		lines = append(lines, "", fmt.Sprintf("%8d %s::", s.Occurrences, s.Tag))
		for _, v := range s.Values {
			lines = append(lines, fmt.Sprintf("    %8d %s", v.Count, v.Text))
		}
	}
	return lines
}

// Provenance returns a commented block describing the run that produced md.
func Provenance(md domain.RunMetadata) []string {
	lines := []string{
		"# selector:    " + md.Selector,
		"# corpus root: " + md.CorpusRoot,
	}
	if !md.GeneratedAt.IsZero() {
		lines = append(lines, "# generated:   "+md.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	if md.RunID != "" {
		lines = append(lines, "# run id:      "+md.RunID)
	}
	lines = append(lines, fmt.Sprintf("# documents:   %s processed, %s failed",
		humanize.Comma(int64(md.DocumentsProcessed)), humanize.Comma(int64(md.DocumentsFailed))))
	if len(md.BlockedTags) > 0 {
		lines = append(lines, fmt.Sprintf("# blocked:     %s (over %d distinct values)",
			strings.Join(md.BlockedTags, ", "), md.MaxVocabulary))
	}
	return lines
}

// Print writes the provenance block followed by the report to w.
func Print(w io.Writer, stats *domain.CorpusStats, opts Options) error {
	lines := append(Provenance(stats.Metadata), Render(stats, opts)...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
