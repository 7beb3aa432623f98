package extract

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const reportHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Business Ideas Report</title>
  <style>.business-idea { color: red; }</style>
</head>
<body>
  <h1>Ignored heading</h1>
  <div class="business-idea">
    <h3>Mobile Money Agent Network</h3>
    <div class="detail-row">
      <div class="detail-label">Startup cost:</div>
      <div class="detail-content">KES 50,000</div>
    </div>
    <div class="detail-row">
      <div class="detail-label">Market:</div>
      <div class="detail-content">  Rural   towns  </div>
    </div>
  </div>
  <div class="business-idea">
    <h3>Solar Kiosk</h3>
    <div class="detail-row">
      <div class="detail-label">Startup cost:</div>
      <div class="detail-content">KES <b>120,000</b></div>
    </div>
    <div class="detail-row">
      <div class="detail-label">Orphan label</div>
    </div>
  </div>
</body>
</html>`

// ---------------------------------------------------------------------------
// TestParse - Entry Extraction
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader(reportHTML), Selectors{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Business Ideas Report" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(doc.Entries))
	}

	first := doc.Entries[0]
	if first.Title != "Mobile Money Agent Network" {
		t.Errorf("first title = %q", first.Title)
	}
	if len(first.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(first.Fields))
	}
	if first.Fields[0] != (Field{Label: "Startup cost:", Content: "KES 50,000"}) {
		t.Errorf("first field = %+v", first.Fields[0])
	}
	if first.Fields[1].Content != "Rural   towns" {
		t.Errorf("content should be trimmed but kept verbatim inside, got %q", first.Fields[1].Content)
	}

	second := doc.Entries[1]
	if len(second.Fields) != 1 {
		t.Fatalf("expected row without content to be skipped, got %+v", second.Fields)
	}
	if second.Fields[0].Content != "KES 120,000" {
		t.Errorf("nested markup content = %q", second.Fields[0].Content)
	}
}

func TestParse_CustomSelectors(t *testing.T) {
	t.Parallel()

	input := `<html><body>
<section class="idea"><h2>Tea Stall</h2>
  <p class="row"><span class="k">Cost</span><span class="v">Low</span></p>
</section>
</body></html>`

	doc, err := Parse(strings.NewReader(input), Selectors{
		Entry:   "section.idea",
		Title:   "h2",
		Row:     "p.row",
		Label:   ".k",
		Content: ".v",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Entries) != 1 || doc.Entries[0].Title != "Tea Stall" {
		t.Fatalf("entries = %+v", doc.Entries)
	}
	if got := doc.Entries[0].Fields; len(got) != 1 || got[0].Label != "Cost" || got[0].Content != "Low" {
		t.Errorf("fields = %+v", got)
	}
}

func TestParse_NoEntries(t *testing.T) {
	t.Parallel()

	doc, err := Parse(strings.NewReader("<html><body><h1>Only a heading</h1></body></html>"), Selectors{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(doc.Entries))
	}
	if doc.Title != "Only a heading" {
		t.Errorf("expected h1 fallback title, got %q", doc.Title)
	}
}

func TestParse_InvalidSelector(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("<html></html>"), Selectors{Entry: "div[["})
	if !errors.Is(err, ErrInvalidSelector) {
		t.Errorf("expected ErrInvalidSelector, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestSelectorsValidate - Selector Compilation
// ---------------------------------------------------------------------------

func TestSelectorsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sel     Selectors
		wantErr bool
	}{
		{name: "zero value uses defaults", sel: Selectors{}},
		{name: "defaults", sel: DefaultSelectors()},
		{name: "valid custom", sel: Selectors{Entry: "article > .card"}},
		{name: "invalid label", sel: Selectors{Label: ":not("}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.sel.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestText - Text Collection
// ---------------------------------------------------------------------------

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "<p> hello </p>", want: "hello"},
		{name: "nested", input: "<p>a <em>b</em> c</p>", want: "a b c"},
		{name: "line break", input: "<p>one<br>two</p>", want: "one\ntwo"},
		{name: "script ignored", input: "<p>x<script>var y = 1;</script></p>", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, err := html.Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			p := findFirstElement(root, "p")
			if p == nil {
				t.Fatal("no <p> element")
			}
			if got := Text(p); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	if got := CollapseSpace("  a \n\t b   c "); got != "a b c" {
		t.Errorf("CollapseSpace() = %q", got)
	}
}

func findFirstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
