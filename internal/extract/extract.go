// Package extract pulls repeated report entries out of an HTML document.
//
// A report is a sequence of entry blocks, each with a title and labeled
// detail rows:
//
//	<div class="business-idea">
//	  <h3>Mobile Money Agent Network</h3>
//	  <div class="detail-row">
//	    <div class="detail-label">Startup cost:</div>
//	    <div class="detail-content">KES 50,000</div>
//	  </div>
//	</div>
//
// Selectors are CSS selectors compiled with cascadia, so the layout of other
// reports can be described without code changes.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for extraction.
var (
	ErrInvalidSelector = errors.New("invalid selector")
	ErrParse           = errors.New("failed to parse HTML")
)

// Default selectors.
const (
	DefaultEntry   = ".business-idea"
	DefaultTitle   = "h3"
	DefaultRow     = ".detail-row"
	DefaultLabel   = ".detail-label"
	DefaultContent = ".detail-content"
)

// Selectors locates entries and their parts. Title, Row, Label and Content
// are matched inside the enclosing element.
type Selectors struct {
	Entry   string
	Title   string
	Row     string
	Label   string
	Content string
}

// DefaultSelectors returns the selectors for the business ideas report layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Entry:   DefaultEntry,
		Title:   DefaultTitle,
		Row:     DefaultRow,
		Label:   DefaultLabel,
		Content: DefaultContent,
	}
}

// withDefaults fills empty selectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	if s.Entry == "" {
		s.Entry = d.Entry
	}
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Row == "" {
		s.Row = d.Row
	}
	if s.Label == "" {
		s.Label = d.Label
	}
	if s.Content == "" {
		s.Content = d.Content
	}
	return s
}

// Validate compiles every selector.
func (s Selectors) Validate() error {
	_, err := s.withDefaults().compile()
	return err
}

type compiled struct {
	entry, title, row, label, content cascadia.Selector
}

func (s Selectors) compile() (*compiled, error) {
	var c compiled
	for _, item := range []struct {
		name string
		src  string
		dst  *cascadia.Selector
	}{
		{"entry", s.Entry, &c.entry},
		{"title", s.Title, &c.title},
		{"row", s.Row, &c.row},
		{"label", s.Label, &c.label},
		{"content", s.Content, &c.content},
	} {
		sel, err := cascadia.Compile(item.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidSelector, item.name, item.src, err)
		}
		*item.dst = sel
	}
	return &c, nil
}

// Field is one labeled detail row.
type Field struct {
	Label   string
	Content string
}

// Entry is one repeated block of the report.
type Entry struct {
	Title  string
	Fields []Field
}

// Document is the structured content of a report.
type Document struct {
	Title   string // <title>, else first <h1>, else empty
	Entries []Entry
}

// Parse reads an HTML document and returns its entries in document order.
// Labels and contents are kept verbatim apart from surrounding whitespace.
// Rows missing a label or content are skipped. A document without entries
// is not an error.
func Parse(r io.Reader, sel Selectors) (*Document, error) {
	c, err := sel.withDefaults().compile()
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc := &Document{Title: documentTitle(root)}

	for _, node := range c.entry.MatchAll(root) {
		entry := Entry{}
		if t := c.title.MatchFirst(node); t != nil {
			entry.Title = Text(t)
		}

		for _, row := range c.row.MatchAll(node) {
			label := c.label.MatchFirst(row)
			content := c.content.MatchFirst(row)
			if label == nil || content == nil {
				continue
			}
			entry.Fields = append(entry.Fields, Field{
				Label:   Text(label),
				Content: Text(content),
			})
		}

		doc.Entries = append(doc.Entries, entry)
	}

	return doc, nil
}

// Text returns the concatenated text of n and its descendants, trimmed.
// Script and style contents are ignored.
func Text(n *html.Node) string {
	var b strings.Builder
	collectText(&b, n)
	return strings.TrimSpace(b.String())
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// documentTitle returns the <title> text, falling back to the first <h1>.
func documentTitle(root *html.Node) string {
	if t := findFirst(root, atom.Title); t != nil {
		if text := Text(t); text != "" {
			return text
		}
	}
	if h := findFirst(root, atom.H1); h != nil {
		return Text(h)
	}
	return ""
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// CollapseSpace joins runs of whitespace into single spaces, for display.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
