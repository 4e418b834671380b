// Package testkit builds EML corpora on disk for tests.
package testkit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// MalformedEML is a document that no XML parser accepts.
const MalformedEML = `<?xml version="1.0"?>
<eml:eml xmlns:eml="https://eml.ecoinformatics.org/eml-2.2.0">
  <dataset>
    <title>broken</title>
</eml:eml>
`

// Attribute describes one attribute of a data table.
type Attribute struct {
	Name       string
	NumberType string
	Unit       string
}

// Table describes one data table of a document.
type Table struct {
	ObjectName string
	Attributes []Attribute
}

// Document describes an EML document to be rendered.
type Document struct {
	PackageID string
	Title     string
	Keywords  []string
	Tables    []Table
}

// Render returns the document as EML XML.
func (d Document) Render() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, `<eml:eml xmlns:eml="https://eml.ecoinformatics.org/eml-2.2.0" packageId=%q>`+"\n", d.PackageID)
	sb.WriteString("  <dataset>\n")
	if d.Title != "" {
		fmt.Fprintf(&sb, "    <title>%s</title>\n", d.Title)
	}
	if len(d.Keywords) > 0 {
		sb.WriteString("    <keywordSet>\n")
		for _, k := range d.Keywords {
			fmt.Fprintf(&sb, "      <keyword>%s</keyword>\n", k)
		}
		sb.WriteString("    </keywordSet>\n")
	}
	for _, t := range d.Tables {
		sb.WriteString("    <dataTable>\n")
		fmt.Fprintf(&sb, "      <physical>\n        <objectName>%s</objectName>\n      </physical>\n", t.ObjectName)
		sb.WriteString("      <attributeList>\n")
		for _, a := range t.Attributes {
			sb.WriteString("        <attribute>\n")
			fmt.Fprintf(&sb, "          <attributeName>%s</attributeName>\n", a.Name)
			sb.WriteString("          <measurementScale><ratio>\n")
			if a.Unit != "" {
				fmt.Fprintf(&sb, "            <unit><standardUnit>%s</standardUnit></unit>\n", a.Unit)
			}
			if a.NumberType != "" {
				fmt.Fprintf(&sb, "            <numericDomain><numberType>%s</numberType></numericDomain>\n", a.NumberType)
			}
			sb.WriteString("          </ratio></measurementScale>\n")
			sb.WriteString("        </attribute>\n")
		}
		sb.WriteString("      </attributeList>\n")
		sb.WriteString("    </dataTable>\n")
	}
	sb.WriteString("  </dataset>\n</eml:eml>\n")
	return sb.String()
}

// WriteCorpus writes files (relative path → content) under dir and returns
// the absolute paths written, sorted.
func WriteCorpus(t testing.TB, dir string, files map[string]string) []string {
	t.Helper()
	paths := make([]string, 0, len(files))
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// StandardCorpus returns a small corpus of three valid documents spread over
// nested directories plus a non-document file.
func StandardCorpus() map[string]string {
	return map[string]string{
		"knb/doc1.xml": Document{
			PackageID: "knb.1.1",
			Title:     "Stream chemistry",
			Keywords:  []string{"chemistry", "streams"},
			Tables: []Table{{
				ObjectName: "chem.csv",
				Attributes: []Attribute{
					{Name: "temp", NumberType: "real", Unit: "celsius"},
					{Name: "count", NumberType: "integer"},
				},
			}},
		}.Render(),
		"knb/nested/doc2.xml": Document{
			PackageID: "knb.2.1",
			Title:     "Lake levels",
			Keywords:  []string{"lakes"},
			Tables: []Table{{
				ObjectName: "levels.csv",
				Attributes: []Attribute{
					{Name: "depth", NumberType: "real", Unit: "meter"},
				},
			}},
		}.Render(),
		"edi/doc3.xml": Document{
			PackageID: "edi.3.1",
			Title:     "Soil cores",
			Keywords:  []string{"chemistry"},
			Tables: []Table{{
				ObjectName: "soil.csv",
				Attributes: []Attribute{
					{Name: "ph", NumberType: "real"},
					{Name: "id", NumberType: "natural"},
				},
			}},
		}.Render(),
		"edi/readme.txt": "not a document",
	}
}

// WriteStandardCorpus writes StandardCorpus under a fresh temporary directory
// and returns the directory.
func WriteStandardCorpus(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	WriteCorpus(t, dir, StandardCorpus())
	return dir
}
