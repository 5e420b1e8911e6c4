// Package xml provides the generic XML tree the ST-Bridge extractors walk,
// plus XPath queries and pretty-printing used by the query tooling.
//
// Security Notes:
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties (no external entity
//     fetching).
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element.
type Node struct {
	node *xmlquery.Node
}

// FormatOptions controls XML formatting behavior.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// Parse parses XML data and returns a Document. A document that is not
// well-formed yields a *errors.ParseError carrying the offending line.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		perr := &stberrors.ParseError{Format: "XML", Message: err.Error(), Err: err}
		var syn *xml.SyntaxError
		if errors.As(err, &syn) || locateSyntaxError(data, &syn) {
			perr.Line = syn.Line
			perr.Message = syn.Msg
		}
		return nil, perr
	}
	return &Document{root: root}, nil
}

// locateSyntaxError re-scans data with a strict decoder to recover the line
// of the first well-formedness error.
func locateSyntaxError(data []byte, out **xml.SyntaxError) bool {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	for {
		_, err := decoder.Token()
		if err == nil {
			continue
		}
		return errors.As(err, out)
	}
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(d.root, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first matching node.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	node := xmlquery.QuerySelector(d.root, compiled)
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Format pretty-prints a node and its subtree.
func (n *Node) Format(opts FormatOptions) []byte {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var buf bytes.Buffer
	if n.node != nil {
		formatNode(&buf, n.node, 0, opts.Indent)
	}
	return buf.Bytes()
}

// formatNode recursively formats an XML node.
func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.ElementNode:
		writeIndent(w, depth, indent)
		w.WriteString("<")
		if n.Prefix != "" {
			w.WriteString(n.Prefix)
			w.WriteString(":")
		}
		w.WriteString(n.Data)
		for _, attr := range n.Attr {
			w.WriteString(" ")
			if attr.Name.Space != "" {
				w.WriteString(attr.Name.Space)
				w.WriteString(":")
			}
			w.WriteString(attr.Name.Local)
			w.WriteString("=\"")
			xml.EscapeText(w, []byte(attr.Value))
			w.WriteString("\"")
		}

		hasElementChildren := false
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.ElementNode {
				hasElementChildren = true
				break
			}
		}
		text := strings.TrimSpace(n.InnerText())

		if !hasElementChildren && text == "" {
			w.WriteString("/>\n")
			return
		}
		w.WriteString(">")
		if !hasElementChildren {
			xml.EscapeText(w, []byte(text))
		} else {
			w.WriteString("\n")
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == xmlquery.ElementNode {
					formatNode(w, child, depth+1, indent)
				}
			}
			writeIndent(w, depth, indent)
		}
		w.WriteString("</")
		if n.Prefix != "" {
			w.WriteString(n.Prefix)
			w.WriteString(":")
		}
		w.WriteString(n.Data)
		w.WriteString(">\n")

	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			formatNode(w, child, depth, indent)
		}
	}
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Children returns the child element nodes in document order.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Child returns the first direct child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n.node == nil {
		return nil
	}
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == name {
			return &Node{node: child}
		}
	}
	return nil
}

// ChildrenNamed returns the direct child elements with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of an unprefixed attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n.node == nil {
		return "", false
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == name && attr.Name.Space == "" {
			return attr.Value, true
		}
	}
	return "", false
}

// Attributes returns all attributes of the node.
func (n *Node) Attributes() map[string]string {
	if n.node == nil {
		return nil
	}

	attrs := make(map[string]string, len(n.node.Attr))
	for _, attr := range n.node.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

// Path returns the element's location as an index-qualified path, e.g.
// /ST_BRIDGE/StbModel/StbNodes/StbNode[3]. Indexes count same-named siblings
// and are 1-based, as in XPath.
func (n *Node) Path() string {
	if n == nil || n.node == nil {
		return ""
	}
	var segments []string
	for cur := n.node; cur != nil && cur.Type == xmlquery.ElementNode; cur = cur.Parent {
		seg := cur.Data
		if cur.Parent != nil && cur.Parent.Type == xmlquery.ElementNode {
			idx, total := siblingIndex(cur)
			if total > 1 {
				seg += "[" + strconv.Itoa(idx) + "]"
			}
		}
		segments = append(segments, seg)
	}
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(segments[i])
	}
	return b.String()
}

// siblingIndex returns the 1-based position of n among its same-named
// siblings and how many such siblings exist.
func siblingIndex(n *xmlquery.Node) (idx, total int) {
	for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
		if s.Type != xmlquery.ElementNode || s.Data != n.Data {
			continue
		}
		total++
		if s == n {
			idx = total
		}
	}
	return idx, total
}
