package selector

import (
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
)

// ParseError reports a document that could not be read or parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse document: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse document %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is a parsed XML document.
type Document struct {
	path string
	root *xmlquery.Node
}

// Parse reads an XML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if documentElement(root) == nil {
		return nil, &ParseError{Err: fmt.Errorf("no root element")}
	}
	return &Document{root: root}, nil
}

// ParseFile reads and parses the XML document at path.
func ParseFile(path string) (doc *Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ParseError{Path: path, Err: cerr}
		}
	}()

	root, err := xmlquery.Parse(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if documentElement(root) == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("no root element")}
	}
	return &Document{path: path, root: root}, nil
}

// Path returns the file the document was read from, if any.
func (d *Document) Path() string {
	return d.path
}

// Root returns the document node.
func (d *Document) Root() *xmlquery.Node {
	return d.root
}

// RootElement returns the document's top-level element.
func (d *Document) RootElement() *xmlquery.Node {
	return documentElement(d.root)
}

func documentElement(root *xmlquery.Node) *xmlquery.Node {
	if root == nil {
		return nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}
