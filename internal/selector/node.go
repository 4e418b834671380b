package selector

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/sha1n/eml-vocab/internal/domain"
)

// Match converts a selected node into a MatchedNode.
// ok is false for node types that carry no tag (comments, declarations, the
// document itself).
func Match(n *xmlquery.Node) (domain.MatchedNode, bool) {
	switch n.Type {
	case xmlquery.ElementNode:
		return domain.MatchedNode{
			Tag:  n.Data,
			Path: StructuralPath(n),
			Text: DirectText(n),
		}, true
	case xmlquery.AttributeNode:
		return domain.MatchedNode{
			Tag:  "@" + n.Data,
			Path: StructuralPath(n),
			Text: strings.TrimSpace(n.InnerText()),
		}, true
	case xmlquery.TextNode, xmlquery.CharDataNode:
		if n.Parent == nil || n.Parent.Type != xmlquery.ElementNode {
			return domain.MatchedNode{}, false
		}
		return domain.MatchedNode{
			Tag:  n.Parent.Data,
			Path: StructuralPath(n),
			Text: strings.TrimSpace(n.Data),
		}, true
	default:
		return domain.MatchedNode{}, false
	}
}

// DirectText returns the trimmed text an element holds before its first child
// node that is not text. Text of descendant elements is not included.
func DirectText(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.TextNode && c.Type != xmlquery.CharDataNode {
			break
		}
		sb.WriteString(c.Data)
	}
	return strings.TrimSpace(sb.String())
}

// StructuralPath returns an unambiguous location of n from the document root,
// e.g. "/eml/dataset/dataTable[2]/physical". A step carries a 1-based index
// only when the parent holds more than one element with the same name.
func StructuralPath(n *xmlquery.Node) string {
	var steps []string
	cur := n
	switch n.Type {
	case xmlquery.AttributeNode:
		steps = append(steps, "@"+n.Data)
		cur = n.Parent
	case xmlquery.TextNode, xmlquery.CharDataNode:
		steps = append(steps, "text()")
		cur = n.Parent
	}

	for ; cur != nil && cur.Type == xmlquery.ElementNode; cur = cur.Parent {
		steps = append(steps, elementStep(cur))
	}

	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(steps[i])
	}
	return sb.String()
}

func elementStep(n *xmlquery.Node) string {
	if n.Parent == nil {
		return n.Data
	}
	pos, total := 0, 0
	for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
		if s.Type != xmlquery.ElementNode || s.Data != n.Data {
			continue
		}
		total++
		if s == n {
			pos = total
		}
	}
	if total <= 1 {
		return n.Data
	}
	return n.Data + "[" + strconv.Itoa(pos) + "]"
}
