package domain

import "time"

// MatchedNode is a single selector match inside a document.
// It is consumed by the accumulator immediately and never retained.
type MatchedNode struct {
	// Tag is the element's local name, or "@name" for attribute matches.
	Tag string

	// Path locates the node inside its document.
	// Example: "/eml/dataset/dataTable[2]/physical/objectName"
	Path string

	// Text is the node's own direct text content, whitespace-trimmed.
	Text string
}

// ValueCount is one distinct text value observed under a tag and the number of
// times it was seen.
type ValueCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// TagStats holds the vocabulary observed for a single tag.
// Values are kept in first-seen order.
type TagStats struct {
	Tag    string       `json:"tag"`
	Values []ValueCount `json:"values"`
}

// OccurrenceCount returns the total number of occurrences recorded for the tag.
// It is always derived from Values so the two can never disagree.
func (t TagStats) OccurrenceCount() int {
	total := 0
	for _, v := range t.Values {
		total += v.Count
	}
	return total
}

// UniqueCount returns the number of distinct values recorded for the tag.
func (t TagStats) UniqueCount() int {
	return len(t.Values)
}

// RunMetadata records the parameters and outcome of the aggregation run that
// produced a set of statistics.
type RunMetadata struct {
	RunID              string    `json:"run_id"`
	Selector           string    `json:"selector"`
	CorpusRoot         string    `json:"corpus_root"`
	Extension          string    `json:"extension,omitempty"`
	Exclude            []string  `json:"exclude,omitempty"`
	GeneratedAt        time.Time `json:"generated_at"`
	MaxVocabulary      int       `json:"max_vocabulary"`
	Workers            int       `json:"workers,omitempty"`
	DocumentsProcessed int       `json:"documents_processed"`
	DocumentsFailed    int       `json:"documents_failed"`
	BlockedTags        []string  `json:"blocked_tags,omitempty"`
}

// CorpusStats is the aggregate produced by one run: per-tag statistics in the
// order tags were first seen, plus the run's metadata.
type CorpusStats struct {
	Metadata RunMetadata
	Tags     []TagStats
}

// Tag returns the statistics for the given tag.
func (c *CorpusStats) Tag(tag string) (TagStats, bool) {
	for _, t := range c.Tags {
		if t.Tag == tag {
			return t, true
		}
	}
	return TagStats{}, false
}

// Bleve field name constants for the value lookup index.
const (
	ValueFieldTag   = "tag"
	ValueFieldText  = "text"
	ValueFieldCount = "count"
)

// ValueDocument is a (tag, value, count) triple as stored in the lookup index.
type ValueDocument struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Count int    `json:"count"`
}
