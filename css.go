package html2pdf

import (
	"fmt"
	"html"
	"strings"
)

// defaultFontFamily is the font stack for Chrome header and footer templates.
const defaultFontFamily = "sans-serif"

// buildPageBreaksCSS generates the print stylesheet for the page-break hints.
// Selectors are validated by Format.Validate; empty groups emit nothing.
func buildPageBreaksCSS(pb PageBreaks) string {
	var buf strings.Builder

	if sel := joinSelectors(pb.AvoidInside); sel != "" {
		fmt.Fprintf(&buf, `
/* Page breaks: keep together */
%s {
  break-inside: avoid;
  page-break-inside: avoid;
}
`, sel)
	}

	if sel := joinSelectors(pb.AvoidAfter); sel != "" {
		fmt.Fprintf(&buf, `
/* Page breaks: keep with next */
%s {
  break-after: avoid;
  page-break-after: avoid;
}
`, sel)
	}

	if sel := joinSelectors(pb.Before); sel != "" {
		fmt.Fprintf(&buf, `
/* Page breaks: new page */
%s {
  break-before: page;
  page-break-before: always;
}
`, sel)
	}

	return buf.String()
}

// buildPrintCSS returns the stylesheet injected by the HTML renderers.
// The print background rule keeps report colors when printing.
func buildPrintCSS(f *Format) string {
	css := buildPageBreaksCSS(f.PageBreaks)
	if css == "" {
		return ""
	}
	return `
/* Print */
html {
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
}
` + css
}

func joinSelectors(selectors []string) string {
	var kept []string
	for _, s := range selectors {
		if s = strings.TrimSpace(s); s != "" && !strings.ContainsAny(s, "{};") {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// chromePlaceholders maps the header/footer placeholders to the classes
// Chrome fills in when printing.
var chromePlaceholders = []struct {
	placeholder string
	class       string
}{
	{"[page]", "pageNumber"},
	{"[topage]", "totalPages"},
	{"[title]", "title"},
	{"[date]", "date"},
}

// buildChromeTemplate turns header or footer text into a Chrome print template.
// Literal text is HTML-escaped; placeholders become class spans.
func buildChromeTemplate(text string, fontSize float64) string {
	if text == "" {
		return "<span></span>"
	}

	content := html.EscapeString(text)
	for _, p := range chromePlaceholders {
		content = strings.ReplaceAll(content, p.placeholder, fmt.Sprintf(`<span class="%s"></span>`, p.class))
	}

	if fontSize <= 0 {
		fontSize = DefaultFooterFontSize
	}

	return fmt.Sprintf(`<div style="font-size: %gpt; font-family: %s; color: #666; width: 100%%; text-align: center;">%s</div>`,
		fontSize, defaultFontFamily, content)
}

// injectStyle inserts css as a <style> block before </head>, after <body>,
// or at the start of the document, in that order of preference.
func injectStyle(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	block := "<style>" + strings.ReplaceAll(css, "</", `<\/`) + "</style>"

	if idx := indexTagFold(htmlContent, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}

	if idx := indexTagFold(htmlContent, "<body"); idx != -1 {
		if end := strings.Index(htmlContent[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return htmlContent[:pos] + block + htmlContent[pos:]
		}
	}

	return block + htmlContent
}

// indexTagFold returns the byte offset of the first match of tag in s,
// ignoring ASCII case. tag must be lowercase ASCII. Offsets index s itself,
// so non-ASCII text before the match cannot shift them.
func indexTagFold(s, tag string) int {
	for i := 0; i+len(tag) <= len(s); i++ {
		match := true
		for j := 0; j < len(tag); j++ {
			c := s[i+j]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != tag[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
