// Package lookup answers "which tags use this value?" over a loaded artifact
// with an in-memory full-text index.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/eml-vocab/internal/domain"
)

const (
	// DefaultLimit is the number of hits returned when no limit is given.
	DefaultLimit = 20

	// MaxBatchSize is the number of values indexed per batch.
	MaxBatchSize = 1000
)

// ErrEmptyQuery is returned for a blank search text.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Hit is one matching (tag, value) pair.
type Hit struct {
	Tag   string
	Text  string
	Count int
	Score float64
}

// Query describes a value search.
type Query struct {
	// Text is matched against values, as words and as a prefix of a word.
	Text string

	// Tag restricts hits to one tag when set.
	Tag string

	// Limit caps the number of hits. Zero or negative means DefaultLimit.
	Limit int
}

// Index is an in-memory value index.
type Index struct {
	idx   bleve.Index
	count int
}

// CreateIndexMapping creates the mapping for value documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = true
	docMapping.AddFieldMappingsAt(domain.ValueFieldText, textField)

	// Tags are matched exactly
	tagField := bleve.NewTextFieldMapping()
	tagField.Analyzer = keyword.Name
	tagField.Store = true
	docMapping.AddFieldMappingsAt(domain.ValueFieldTag, tagField)

	countField := bleve.NewNumericFieldMapping()
	countField.Store = true
	docMapping.AddFieldMappingsAt(domain.ValueFieldCount, countField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Build indexes every value of every tag in stats.
func Build(stats *domain.CorpusStats) (*Index, error) {
	idx, err := bleve.NewMemOnly(CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	batch := idx.NewBatch()
	count := 0
	for _, t := range stats.Tags {
		for i, v := range t.Values {
			doc := domain.ValueDocument{Tag: t.Tag, Text: v.Text, Count: v.Count}
			if err := batch.Index(fmt.Sprintf("%s#%d", t.Tag, i), doc); err != nil {
				_ = idx.Close()
				return nil, fmt.Errorf("failed to index value of %s: %w", t.Tag, err)
			}
			count++

			if batch.Size() >= MaxBatchSize {
				if err := idx.Batch(batch); err != nil {
					_ = idx.Close()
					return nil, fmt.Errorf("batch index failed: %w", err)
				}
				batch = idx.NewBatch()
			}
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("final batch index failed: %w", err)
		}
	}

	return &Index{idx: idx, count: count}, nil
}

// Len returns the number of indexed values.
func (x *Index) Len() int {
	return x.count
}

// Close releases the index.
func (x *Index) Close() error {
	return x.idx.Close()
}

// Search returns the best matching values and the total number of matches.
func (x *Index) Search(ctx context.Context, q Query) ([]Hit, uint64, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, 0, ErrEmptyQuery
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequest(buildQuery(text, q.Tag))
	req.Size = limit
	req.Fields = []string{domain.ValueFieldTag, domain.ValueFieldText, domain.ValueFieldCount}

	res, err := x.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if val, ok := h.Fields[domain.ValueFieldTag].(string); ok {
			hit.Tag = val
		}
		if val, ok := h.Fields[domain.ValueFieldText].(string); ok {
			hit.Text = val
		}
		// Numeric fields come back as float64
		if val, ok := h.Fields[domain.ValueFieldCount].(float64); ok {
			hit.Count = int(val)
		}
		hits = append(hits, hit)
	}
	return hits, res.Total, nil
}

func buildQuery(text, tag string) query.Query {
	match := bleve.NewMatchQuery(text)
	match.SetField(domain.ValueFieldText)

	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	prefix.SetField(domain.ValueFieldText)

	valueQuery := bleve.NewDisjunctionQuery(match, prefix)
	if tag == "" {
		return valueQuery
	}

	tagQuery := bleve.NewTermQuery(tag)
	tagQuery.SetField(domain.ValueFieldTag)
	return bleve.NewConjunctionQuery(valueQuery, tagQuery)
}
