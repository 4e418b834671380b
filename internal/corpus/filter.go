package corpus

import (
	"path/filepath"
	"strings"
)

// DefaultExcludePatterns are skipped by every walk. They cover version control
// metadata and editor/OS droppings that sometimes carry a ".xml" suffix.
var DefaultExcludePatterns = []string{
	".git/**", ".svn/**", ".hg/**",
	"__pycache__/**", ".DS_Store", "._*",
}

// PathFilter decides which corpus files are visited.
type PathFilter struct {
	extension string
	patterns  []string
}

// NewPathFilter creates a filter accepting files with the given extension
// (with or without the leading dot) that match none of the default or extra
// exclusion patterns.
func NewPathFilter(extension string, exclude []string) *PathFilter {
	patterns := make([]string, 0, len(DefaultExcludePatterns)+len(exclude))
	patterns = append(patterns, DefaultExcludePatterns...)
	for _, p := range exclude {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &PathFilter{
		extension: NormalizeExtension(extension),
		patterns:  patterns,
	}
}

// NormalizeExtension returns ext with exactly one leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	return "." + strings.TrimPrefix(ext, ".")
}

// Extension returns the accepted file extension.
func (f *PathFilter) Extension() string {
	return f.extension
}

// Accept reports whether the file at relPath (relative to the corpus root)
// should be visited.
func (f *PathFilter) Accept(relPath string) bool {
	if !strings.EqualFold(filepath.Ext(relPath), f.extension) {
		return false
	}
	return !f.ShouldExclude(relPath)
}

// ShouldExclude returns true if relPath matches any exclusion pattern.
func (f *PathFilter) ShouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range f.patterns {
		if matchPattern(pattern, relPath) {
			return true
		}
	}
	return false
}

// SkipDir reports whether a whole directory can be pruned from the walk.
func (f *PathFilter) SkipDir(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range f.patterns {
		dir, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if relPath == dir || filepath.Base(relPath) == dir {
			return true
		}
	}
	return false
}

// matchPattern matches a slash-separated path against a glob pattern.
// "dir/**" matches the directory at any depth, "**/x" matches x at any depth,
// anything else goes through filepath.Match against the path and its base name.
func matchPattern(pattern, path string) bool {
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		parts := strings.Split(path, "/")
		for i := range parts {
			if matchSimplePattern(rest, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
		parts := strings.Split(path, "/")
		for i, part := range parts {
			if part == dir && i < len(parts)-1 {
				return true
			}
		}
		return false
	}

	return matchSimplePattern(pattern, path)
}

func matchSimplePattern(pattern, name string) bool {
	if pattern == name {
		return true
	}
	if matched, _ := filepath.Match(pattern, name); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, filepath.Base(name))
	return matched
}
