package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
}

// backendFlags selects and configures the rendering backends.
type backendFlags struct {
	order           string
	install         bool
	timeout         string
	browserBin      string
	noSandbox       bool
	remoteURL       string
	wkhtmltopdfPath string
}

// formatFlags holds page formatting flags.
type formatFlags struct {
	title          string
	pageSize       string
	margins        string
	headerText     string
	footerText     string
	noFooter       bool
	headerFontSize float64
	footerFontSize float64
	minFontSize    float64
	printMedia     bool
	dateFormat     string
}

// pageBreakFlags holds page break hints as CSS selectors.
type pageBreakFlags struct {
	avoidInside []string
	avoidAfter  []string
	before      []string
	disabled    bool
}

// extractFlags holds the selectors of the structured fallback.
type extractFlags struct {
	entry   string
	title   string
	row     string
	label   string
	content string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	backends   backendFlags
	format     formatFlags
	pageBreaks pageBreakFlags
	extract    extractFlags

	set *flag.FlagSet
}

// changed reports whether the named flag was set on the command line.
func (f *convertFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug diagnostics")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
}

// addBackendFlags adds backend selection flags to a FlagSet.
func addBackendFlags(fs *flag.FlagSet, f *backendFlags) {
	fs.StringVarP(&f.order, "backends", "b", "", "comma-separated backend order (chrome,remote-chrome,wkhtmltopdf,structured)")
	fs.BoolVar(&f.install, "install", false, "install missing backends on demand")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-backend timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (containers, CI)")
	fs.StringVar(&f.remoteURL, "remote-url", "", "DevTools endpoint of a remote Chrome (ws://host:9222)")
	fs.StringVar(&f.wkhtmltopdfPath, "wkhtmltopdf-path", "", "wkhtmltopdf binary")
}

// addFormatFlags adds page formatting flags to a FlagSet.
func addFormatFlags(fs *flag.FlagSet, f *formatFlags) {
	fs.StringVar(&f.title, "title", "", "document title (\"\" = from <title>)")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: a3, a4, a5, letter, legal")
	fs.StringVarP(&f.margins, "margins", "m", "", "margins: 0.75in, \"1cm 2cm\", or \"10mm 15mm 10mm 15mm\"")
	fs.StringVar(&f.headerText, "header-text", "", "header text ([page], [topage], [title], [date])")
	fs.StringVar(&f.footerText, "footer-text", "", "footer text (default \"Page [page] of [topage]\")")
	fs.BoolVar(&f.noFooter, "no-footer", false, "disable the footer")
	fs.Float64Var(&f.headerFontSize, "header-font-size", 0, "header font size in points")
	fs.Float64Var(&f.footerFontSize, "footer-font-size", 0, "footer font size in points")
	fs.Float64Var(&f.minFontSize, "min-font-size", 0, "minimum font size in points (0 = off)")
	fs.BoolVar(&f.printMedia, "print-media", true, "apply the document's print stylesheet")
	fs.StringVar(&f.dateFormat, "date-format", "", "[date] format: iso, european, us, long, or tokens")
}

// addPageBreakFlags adds page break flags to a FlagSet.
func addPageBreakFlags(fs *flag.FlagSet, f *pageBreakFlags) {
	fs.StringSliceVar(&f.avoidInside, "avoid-break-inside", nil, "selectors kept on one page")
	fs.StringSliceVar(&f.avoidAfter, "avoid-break-after", nil, "selectors kept with the next element")
	fs.StringSliceVar(&f.before, "break-before", nil, "selectors starting a new page")
	fs.BoolVar(&f.disabled, "no-page-breaks", false, "disable page break hints")
}

// addExtractFlags adds the structured fallback selectors to a FlagSet.
func addExtractFlags(fs *flag.FlagSet, f *extractFlags) {
	fs.StringVar(&f.entry, "entry-selector", "", "entry block selector (default .business-idea)")
	fs.StringVar(&f.title, "title-selector", "", "entry title selector (default h3)")
	fs.StringVar(&f.row, "row-selector", "", "detail row selector (default .detail-row)")
	fs.StringVar(&f.label, "label-selector", "", "detail label selector (default .detail-label)")
	fs.StringVar(&f.content, "content-selector", "", "detail content selector (default .detail-content)")
}

// parseConvertFlags parses convert command flags and returns positional args.
// usage runs on -h/--help; parse errors are returned, not printed.
func parseConvertFlags(args []string, usage func()) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet(cmdConvert, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &convertFlags{set: fs}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF file")

	addCommonFlags(fs, &f.common)
	addBackendFlags(fs, &f.backends)
	addFormatFlags(fs, &f.format)
	addPageBreakFlags(fs, &f.pageBreaks)
	addExtractFlags(fs, &f.extract)

	fs.Usage = usage

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// doctorFlags holds flags for the doctor and install commands.
type doctorFlags struct {
	common   commonFlags
	backends backendFlags
	json     bool

	set *flag.FlagSet
}

// parseDoctorFlags parses doctor and install flags.
func parseDoctorFlags(name string, args []string, usage func()) (*doctorFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &doctorFlags{set: fs}

	addCommonFlags(fs, &f.common)
	addBackendFlags(fs, &f.backends)
	fs.BoolVar(&f.json, "json", false, "output JSON")

	fs.Usage = usage

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// asConvertFlags lets doctor and install share the settings resolution of convert.
func (d *doctorFlags) asConvertFlags() *convertFlags {
	return &convertFlags{common: d.common, backends: d.backends, set: d.set}
}
