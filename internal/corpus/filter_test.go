package corpus

import "testing"

func TestNormalizeExtension(t *testing.T) {
	tests := map[string]string{
		"xml":   ".xml",
		".xml":  ".xml",
		" xml ": ".xml",
		"":      "",
	}
	for in, want := range tests {
		if got := NormalizeExtension(in); got != want {
			t.Errorf("NormalizeExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPathFilter_Accept(t *testing.T) {
	f := NewPathFilter("xml", []string{"samples/**", "*-draft.xml"})

	tests := []struct {
		path string
		want bool
	}{
		{"doc.xml", true},
		{"a/b/doc.xml", true},
		{"a/b/DOC.XML", true},
		{"doc.txt", false},
		{"doc.xml.bak", false},
		{"samples/doc.xml", false},
		{"a/samples/doc.xml", false},
		{"a/report-draft.xml", false},
		{".git/objects/x.xml", false},
		{"a/._doc.xml", false},
	}

	for _, tt := range tests {
		if got := f.Accept(tt.path); got != tt.want {
			t.Errorf("Accept(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPathFilter_SkipDir(t *testing.T) {
	f := NewPathFilter(".xml", []string{"archive/**"})

	tests := []struct {
		path string
		want bool
	}{
		{".git", true},
		{"archive", true},
		{"x/archive", true},
		{"data", false},
		{"archived", false},
	}
	for _, tt := range tests {
		if got := f.SkipDir(tt.path); got != tt.want {
			t.Errorf("SkipDir(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/tmp.xml", "tmp.xml", true},
		{"**/tmp.xml", "a/b/tmp.xml", true},
		{"**/tmp.xml", "a/b/other.xml", false},
		{"build/**", "build/x.xml", true},
		{"build/**", "src/build/x.xml", true},
		{"build/**", "build", true},
		{"build/**", "buildx/x.xml", false},
		{"*.bak", "a/b/c.bak", true},
		{"a/*.xml", "a/x.xml", true},
		{"exact.xml", "exact.xml", true},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}
