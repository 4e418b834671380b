package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/sha1n/eml-vocab/internal/domain"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	stats := &domain.CorpusStats{Tags: []domain.TagStats{
		{Tag: "keyword", Values: []domain.ValueCount{
			{Text: "chemistry", Count: 2},
			{Text: "streams", Count: 1},
			{Text: "Lake Mendota", Count: 4},
		}},
		{Tag: "standardUnit", Values: []domain.ValueCount{
			{Text: "celsius", Count: 3},
			{Text: "meter", Count: 1},
		}},
		{Tag: "title", Values: []domain.ValueCount{
			{Text: "Water chemistry of Lake Mendota", Count: 1},
		}},
	}}

	idx, err := Build(stats)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBuild_Len(t *testing.T) {
	idx := buildTestIndex(t)
	if idx.Len() != 6 {
		t.Errorf("Len() = %d, want 6", idx.Len())
	}
}

func TestSearch_FindsValuesAcrossTags(t *testing.T) {
	idx := buildTestIndex(t)

	hits, total, err := idx.Search(context.Background(), Query{Text: "chemistry"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2 (hits %+v)", total, hits)
	}

	tags := map[string]Hit{}
	for _, h := range hits {
		tags[h.Tag] = h
	}
	if h, ok := tags["keyword"]; !ok || h.Text != "chemistry" || h.Count != 2 {
		t.Errorf("Missing keyword hit with count: %+v", hits)
	}
	if _, ok := tags["title"]; !ok {
		t.Errorf("Missing title hit: %+v", hits)
	}
}

func TestSearch_TagFilter(t *testing.T) {
	idx := buildTestIndex(t)

	hits, total, err := idx.Search(context.Background(), Query{Text: "mendota", Tag: "keyword"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 1 || len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d: %+v", total, hits)
	}
	if hits[0].Tag != "keyword" || hits[0].Text != "Lake Mendota" || hits[0].Count != 4 {
		t.Errorf("Unexpected hit: %+v", hits[0])
	}
}

func TestSearch_Prefix(t *testing.T) {
	idx := buildTestIndex(t)

	hits, _, err := idx.Search(context.Background(), Query{Text: "Cels"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "celsius" {
		t.Errorf("Expected celsius, got %+v", hits)
	}
}

func TestSearch_Limit(t *testing.T) {
	idx := buildTestIndex(t)

	hits, total, err := idx.Search(context.Background(), Query{Text: "chemistry", Limit: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || total != 2 {
		t.Errorf("Expected 1 of 2 hits, got %d of %d", len(hits), total)
	}
}

func TestSearch_NoResults(t *testing.T) {
	idx := buildTestIndex(t)

	hits, total, err := idx.Search(context.Background(), Query{Text: "volcano"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 0 || len(hits) != 0 {
		t.Errorf("Expected no hits, got %+v", hits)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := buildTestIndex(t)

	if _, _, err := idx.Search(context.Background(), Query{Text: "   "}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Expected ErrEmptyQuery, got %v", err)
	}
}

func TestBuild_EmptyStats(t *testing.T) {
	idx, err := Build(&domain.CorpusStats{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = idx.Close() }()

	hits, _, err := idx.Search(context.Background(), Query{Text: "anything"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no hits, got %+v", hits)
	}
}
