package vocab

import (
	"log/slog"
	"slices"

	"github.com/sha1n/eml-vocab/internal/domain"
)

// DefaultMaxVocabulary is the maximum number of distinct values a tag may hold
// before it is no longer considered a possible limited vocabulary.
const DefaultMaxVocabulary = 200

// Accumulator counts text values per tag under a cardinality cap.
//
// A tag whose number of distinct values exceeds the cap is evicted: all of its
// counts are discarded and the tag is blocked for the lifetime of the
// accumulator. Blocking is one-way. An Accumulator is not safe for concurrent
// use; parallel callers build one per worker and combine them with Merge.
type Accumulator struct {
	maxVocabulary int
	tags          map[string]*tagEntry
	order         []string
	blocked       map[string]struct{}
	logger        *slog.Logger
}

type tagEntry struct {
	index  map[string]int
	values []domain.ValueCount
}

func newTagEntry() *tagEntry {
	return &tagEntry{index: make(map[string]int)}
}

func (e *tagEntry) add(text string, n int) {
	if i, ok := e.index[text]; ok {
		e.values[i].Count += n
		return
	}
	e.index[text] = len(e.values)
	e.values = append(e.values, domain.ValueCount{Text: text, Count: n})
}

// New creates an empty accumulator. A non-positive maxVocabulary selects
// DefaultMaxVocabulary.
func New(maxVocabulary int) *Accumulator {
	if maxVocabulary <= 0 {
		maxVocabulary = DefaultMaxVocabulary
	}
	return &Accumulator{
		maxVocabulary: maxVocabulary,
		tags:          make(map[string]*tagEntry),
		blocked:       make(map[string]struct{}),
		logger:        slog.Default(),
	}
}

// SetLogger replaces the logger used to report evictions.
func (a *Accumulator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// MaxVocabulary returns the configured cap.
func (a *Accumulator) MaxVocabulary() int {
	return a.maxVocabulary
}

// Record registers one occurrence of text under tag.
// Records for blocked tags are dropped.
func (a *Accumulator) Record(tag, text string) {
	if a.IsBlocked(tag) {
		return
	}
	a.entry(tag).add(text, 1)
	a.enforceCap(tag)
}

// Merge adds all counts held by other into a, applying the same cap-and-block
// policy after each tag is merged. Tags blocked in other are blocked in a too.
//
// The final counts of tags that never cross the cap do not depend on merge
// order. Which tags end up blocked may: the cap is checked against the
// cumulative cardinality at merge time.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other == a {
		return
	}
	for tag := range other.blocked {
		a.block(tag)
	}
	for _, tag := range other.order {
		if a.IsBlocked(tag) {
			continue
		}
		src := other.tags[tag]
		dst := a.entry(tag)
		for _, v := range src.values {
			dst.add(v.Text, v.Count)
		}
		a.enforceCap(tag)
	}
}

// MergeStats folds previously persisted statistics into a, as Merge does for a
// live accumulator.
func (a *Accumulator) MergeStats(tags []domain.TagStats, blocked []string) {
	other := New(a.maxVocabulary)
	for _, tag := range blocked {
		other.blocked[tag] = struct{}{}
	}
	for _, ts := range tags {
		if other.IsBlocked(ts.Tag) {
			continue
		}
		e := other.entry(ts.Tag)
		for _, v := range ts.Values {
			e.add(v.Text, v.Count)
		}
	}
	a.Merge(other)
}

// IsBlocked reports whether tag has been excluded from tracking.
func (a *Accumulator) IsBlocked(tag string) bool {
	_, ok := a.blocked[tag]
	return ok
}

// Blocked returns the blocked tags, sorted, or nil if none are blocked.
func (a *Accumulator) Blocked() []string {
	if len(a.blocked) == 0 {
		return nil
	}
	tags := make([]string, 0, len(a.blocked))
	for tag := range a.blocked {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Len returns the number of tracked tags.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Values returns a copy of the values recorded for tag in first-seen order.
func (a *Accumulator) Values(tag string) []domain.ValueCount {
	e, ok := a.tags[tag]
	if !ok {
		return nil
	}
	return slices.Clone(e.values)
}

// Count returns the number of occurrences of text under tag.
func (a *Accumulator) Count(tag, text string) int {
	e, ok := a.tags[tag]
	if !ok {
		return 0
	}
	i, ok := e.index[text]
	if !ok {
		return 0
	}
	return e.values[i].Count
}

// Stats returns a snapshot of all tracked tags in first-seen order.
func (a *Accumulator) Stats() []domain.TagStats {
	stats := make([]domain.TagStats, 0, len(a.order))
	for _, tag := range a.order {
		stats = append(stats, domain.TagStats{
			Tag:    tag,
			Values: slices.Clone(a.tags[tag].values),
		})
	}
	return stats
}

func (a *Accumulator) entry(tag string) *tagEntry {
	e, ok := a.tags[tag]
	if !ok {
		e = newTagEntry()
		a.tags[tag] = e
		a.order = append(a.order, tag)
	}
	return e
}

func (a *Accumulator) enforceCap(tag string) {
	e := a.tags[tag]
	if e == nil || len(e.values) <= a.maxVocabulary {
		return
	}
	a.logger.Debug("Exceeded max vocabulary", "tag", tag, "unique", len(e.values), "max", a.maxVocabulary)
	a.block(tag)
}

// block discards any counts for tag and excludes it from further tracking.
func (a *Accumulator) block(tag string) {
	a.blocked[tag] = struct{}{}
	if _, ok := a.tags[tag]; !ok {
		return
	}
	delete(a.tags, tag)
	if i := slices.Index(a.order, tag); i >= 0 {
		a.order = slices.Delete(a.order, i, i+1)
	}
}
