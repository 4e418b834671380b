package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocument_Render(t *testing.T) {
	doc := Document{
		PackageID: "p.1.1",
		Title:     "T",
		Keywords:  []string{"k1", "k2"},
		Tables: []Table{{
			ObjectName: "a.csv",
			Attributes: []Attribute{{Name: "x", NumberType: "real", Unit: "meter"}},
		}},
	}.Render()

	for _, want := range []string{
		`packageId="p.1.1"`,
		"<title>T</title>",
		"<keyword>k2</keyword>",
		"<objectName>a.csv</objectName>",
		"<numberType>real</numberType>",
		"<standardUnit>meter</standardUnit>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Rendered document missing %q", want)
		}
	}
}

func TestWriteCorpus(t *testing.T) {
	dir := t.TempDir()
	paths := WriteCorpus(t, dir, map[string]string{
		"b/one.xml": "<a/>",
		"a/two.xml": "<b/>",
	})

	if len(paths) != 2 {
		t.Fatalf("Expected 2 paths, got %d", len(paths))
	}
	if paths[0] != filepath.Join(dir, "a", "two.xml") {
		t.Errorf("Paths not sorted: %v", paths)
	}
	data, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if string(data) != "<a/>" {
		t.Errorf("Content = %q", data)
	}
}

func TestWriteStandardCorpus(t *testing.T) {
	dir := WriteStandardCorpus(t)
	for rel := range StandardCorpus() {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("Expected %s to exist: %v", rel, err)
		}
	}
}
