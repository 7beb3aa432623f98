package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/hints"
)

// bytesPerMB converts output sizes for display.
const bytesPerMB = 1024 * 1024

// Compile-time interface implementation check.
var _ html2pdf.Reporter = (*consoleReporter)(nil)

// consoleReporter prints sequencer progress as human-readable lines.
// Progress goes to out; failures of the whole run and the manual
// instructions go to errOut. Quiet mode keeps only the latter.
type consoleReporter struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	hinted map[string]bool
}

func newConsoleReporter(out, errOut io.Writer, quiet bool) *consoleReporter {
	return &consoleReporter{out: out, errOut: errOut, quiet: quiet, hinted: make(map[string]bool)}
}

func (r *consoleReporter) Start(plan html2pdf.Plan, backends []string) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, "Converting %s -> %s\n", plan.Input, plan.Output)
	fmt.Fprintf(r.out, "Backends: %s\n", strings.Join(backends, ", "))
}

func (r *consoleReporter) Attempt(index, total int, backend string) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, "[%d/%d] Trying %s...\n", index, total, backend)
}

func (r *consoleReporter) AttemptFailed(index, total int, res html2pdf.Result) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, "[%d/%d] %s failed: %v%s\n", index, total, res.Backend, res.Err, r.hintOnce(res))
}

func (r *consoleReporter) Succeeded(res html2pdf.Result) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, "PDF created with %s: %s (%.2f MB, %v)\n",
		res.Backend, res.Output, float64(res.Size)/bytesPerMB, res.Duration.Round(time.Millisecond))
}

func (r *consoleReporter) AllFailed(_ html2pdf.Plan, instructions []string) {
	fmt.Fprintln(r.errOut, "All backends failed. To create the PDF manually:")
	for _, step := range instructions {
		fmt.Fprintf(r.errOut, "  %s\n", step)
	}
}

// hintOnce returns the hint for res unless it was already printed.
// A missing input fails every attempt the same way.
func (r *consoleReporter) hintOnce(res html2pdf.Result) string {
	hint := hintFor(res)
	if hint == "" || r.hinted[hint] {
		return ""
	}
	r.hinted[hint] = true
	return hint
}

// hintFor picks an actionable hint for a failed attempt.
func hintFor(res html2pdf.Result) string {
	switch {
	case res.Kind() == html2pdf.KindMissingInput:
		return hints.ForMissingInput()
	case errors.Is(res.Err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(res.Err, html2pdf.ErrWritePDF):
		return hints.ForOutputDirectory()
	}

	unavailable := res.Kind() == html2pdf.KindBackendUnavailable
	switch res.Backend {
	case html2pdf.BackendChrome:
		return hints.ForChrome(unavailable)
	case html2pdf.BackendRemoteChrome:
		return hints.ForRemoteChrome(!unavailable)
	case html2pdf.BackendWkhtmltopdf:
		if unavailable {
			return hints.ForWkhtmltopdf()
		}
	case html2pdf.BackendStructured:
		return hints.ForStructured()
	}
	return ""
}
