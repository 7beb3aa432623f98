// Package html2pdf converts HTML reports to PDF by falling back through a
// fixed list of rendering engines until one succeeds.
//
// # Quick Start
//
// Build the backends, hand them to a Sequencer and run a plan:
//
//	chrome := html2pdf.NewChromeBackend(html2pdf.ChromeOptions{}, logger)
//	defer chrome.Close()
//
//	seq := html2pdf.NewSequencer([]html2pdf.Backend{
//	    chrome,
//	    html2pdf.NewWkhtmltopdfBackend("", logger),
//	    html2pdf.NewStructuredBackend(extract.DefaultSelectors(), logger),
//	}, html2pdf.WithLogger(logger))
//
//	outcome := seq.Run(ctx, html2pdf.Plan{
//	    Input:  "business_ideas_report.html",
//	    Output: "business_ideas_report.pdf",
//	    Format: html2pdf.DefaultFormat(),
//	})
//	if err := outcome.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Backends
//
// Four backends are built in, named for ParseBackendNames:
//
//   - chrome: a local headless Chrome driven by go-rod. Implements Installer,
//     which downloads a managed Chromium.
//   - remote-chrome: an already running browser reached over the DevTools
//     protocol with chromedp.
//   - wkhtmltopdf: the wkhtmltopdf binary.
//   - structured: a pure Go fallback that extracts the report entries with
//     CSS selectors and lays them out with fpdf. Always available.
//
// DefaultOrder is chrome, wkhtmltopdf, structured.
//
// # Formatting
//
// Format is the one formatting description shared by every backend: page
// size, margins, header and footer text, minimum font size, print media and
// page-break hints. Each backend translates what it can express and drops
// the rest. Header and footer text accept the [page], [topage], [title] and
// [date] placeholders.
//
// # Failure Handling
//
// A failing backend never aborts the run. Each attempt is recorded as a
// Result with an ErrorKind, and when every backend fails the Reporter
// receives the steps from ManualInstructions. Outcome.Err joins
// ErrAllBackendsFailed with each attempt error, so errors.Is works on both.
//
// # Browser Requirements
//
// In containers and CI runners Chrome usually needs ChromeOptions.NoSandbox.
// Use ChromeOptions.BrowserBin to pick a specific Chrome binary.
package html2pdf
