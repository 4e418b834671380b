package selector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/sha1n/eml-vocab/internal/domain"
)

// descendantPrefix makes a selector search at any depth below the context node.
const descendantPrefix = ".//"

// leadingCall matches a first location step written as a function call.
var leadingCall = regexp.MustCompile(`^[./\s]*([A-Za-z_][\w.\-]*(?::[A-Za-z_][\w.\-]*)?)\s*\(`)

// nodeTests are the calls allowed as a location step.
var nodeTests = map[string]bool{
	"text":                   true,
	"node":                   true,
	"comment":                true,
	"processing-instruction": true,
}

// SelectorError reports a syntactically invalid selector.
type SelectorError struct {
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q: %v", e.Selector, e.Err)
}

func (e *SelectorError) Unwrap() error {
	return e.Err
}

// Selector is a compiled path expression.
type Selector struct {
	raw  string
	expr string
	xp   *xpath.Expr
}

// Compile compiles a selector that is evaluated relative to the document root.
// Selectors not already searching at arbitrary depth are prefixed with ".//".
func Compile(s string) (*Selector, error) {
	return compile(s, Normalize(s))
}

// CompileRelative compiles a sub-query evaluated from a context node as is.
func CompileRelative(s string) (*Selector, error) {
	return compile(s, strings.TrimSpace(s))
}

// MustCompile is like Compile but panics on error.
func MustCompile(s string) *Selector {
	sel, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func compile(raw, expr string) (*Selector, error) {
	if expr == "" {
		return nil, &SelectorError{Selector: raw, Err: fmt.Errorf("empty expression")}
	}
	// Prefixing a function call compiles but never selects a node
	if m := leadingCall.FindStringSubmatch(raw); m != nil && !nodeTests[m[1]] {
		return nil, &SelectorError{Selector: raw, Err: fmt.Errorf("%s() does not select nodes", m[1])}
	}
	xp, err := xpath.Compile(expr)
	if err != nil {
		return nil, &SelectorError{Selector: raw, Err: err}
	}
	return &Selector{raw: raw, expr: expr, xp: xp}, nil
}

// Normalize returns the expression actually evaluated for selector s.
// Expressions starting with "//", ".//" or "/" are kept; anything else is
// prefixed with ".//" (a leading "./" is folded into the prefix).
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return s
	case strings.HasPrefix(s, descendantPrefix), strings.HasPrefix(s, "/"):
		return s
	case strings.HasPrefix(s, "./"):
		return descendantPrefix + s[2:]
	default:
		return descendantPrefix + s
	}
}

// String returns the evaluated expression.
func (s *Selector) String() string {
	return s.expr
}

// Raw returns the selector as given by the caller.
func (s *Selector) Raw() string {
	return s.raw
}

// Select returns the nodes matched in doc.
func (s *Selector) Select(doc *Document) (nodes []*xmlquery.Node, err error) {
	return s.selectFrom(doc.Root())
}

// Evaluate returns the matches in doc with their tag, structural path and
// direct text.
func (s *Selector) Evaluate(doc *Document) ([]domain.MatchedNode, error) {
	nodes, err := s.Select(doc)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.MatchedNode, 0, len(nodes))
	for _, n := range nodes {
		if m, ok := Match(n); ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// First returns the first node matched from the context node n. ok is false
// when nothing matches.
func (s *Selector) First(n *xmlquery.Node) (match *xmlquery.Node, ok bool) {
	nodes, err := s.selectFrom(n)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

// FirstText compiles expr relative to n and returns the trimmed text of its
// first match. Element matches yield their direct text.
func FirstText(n *xmlquery.Node, expr string) (string, bool, error) {
	sel, err := CompileRelative(expr)
	if err != nil {
		return "", false, err
	}
	m, ok := sel.First(n)
	if !ok {
		return "", false, nil
	}
	if m.Type == xmlquery.ElementNode {
		return DirectText(m), true, nil
	}
	return strings.TrimSpace(m.InnerText()), true, nil
}

// selectFrom evaluates the expression from top. The xpath engine panics on
// some evaluation errors (e.g. bad function arguments); those are returned as
// errors.
func (s *Selector) selectFrom(top *xmlquery.Node) (nodes []*xmlquery.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to evaluate selector %q: %v", s.expr, r)
		}
	}()
	return xmlquery.QuerySelectorAll(top, s.xp), nil
}
