package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf <command> [flags] [args]")
	fmt.Fprintln(w, "       html2pdf <input.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert an HTML report to PDF (default)")
	fmt.Fprintln(w, "  doctor     Check which backends can run")
	fmt.Fprintln(w, "  install    Install a backend (chrome)")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf convert <input.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert an HTML report to PDF, falling back through the backends in order")
	fmt.Fprintln(w, "until one succeeds. When all fail, manual instructions are printed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file (optional if HTML2PDF_INPUT or config input is set)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>        Output PDF (default: input with .pdf)")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Backends:")
	fmt.Fprintln(w, "  -b, --backends <list>      Order: chrome,remote-chrome,wkhtmltopdf,structured")
	fmt.Fprintln(w, "      --install              Install missing backends on demand")
	fmt.Fprintln(w, "  -t, --timeout <duration>   Per-backend timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --browser-bin <path>   Chrome/Chromium binary")
	fmt.Fprintln(w, "      --no-sandbox           Disable the Chrome sandbox (containers, CI)")
	fmt.Fprintln(w, "      --remote-url <url>     DevTools endpoint (ws://host:9222)")
	fmt.Fprintln(w, "      --wkhtmltopdf-path <p> wkhtmltopdf binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>        Page size: a3, a4, a5, letter, legal")
	fmt.Fprintln(w, "  -m, --margins <s>          0.75in, \"1cm 2cm\", or \"10mm 15mm 10mm 15mm\"")
	fmt.Fprintln(w, "      --title <s>            Document title (\"\" = from <title>)")
	fmt.Fprintln(w, "      --min-font-size <pt>   Minimum font size (0 = off)")
	fmt.Fprintln(w, "      --print-media          Apply the print stylesheet (default true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Header/Footer:")
	fmt.Fprintln(w, "      --header-text <s>      Header text")
	fmt.Fprintln(w, "      --footer-text <s>      Footer text (default \"Page [page] of [topage]\")")
	fmt.Fprintln(w, "                             Placeholders: [page], [topage], [title], [date]")
	fmt.Fprintln(w, "      --no-footer            Disable the footer")
	fmt.Fprintln(w, "      --header-font-size <pt>")
	fmt.Fprintln(w, "      --footer-font-size <pt>")
	fmt.Fprintln(w, "      --date-format <s>      [date] format for the structured fallback")
	fmt.Fprintln(w, "                             Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                             Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page Breaks:")
	fmt.Fprintln(w, "      --avoid-break-inside <sel,...>  Keep elements on one page")
	fmt.Fprintln(w, "      --avoid-break-after <sel,...>   Keep elements with the next one")
	fmt.Fprintln(w, "      --break-before <sel,...>        Start elements on a new page")
	fmt.Fprintln(w, "      --no-page-breaks                Disable page break hints")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Structured Fallback:")
	fmt.Fprintln(w, "      --entry-selector <sel>    Repeated entry block (default .business-idea)")
	fmt.Fprintln(w, "      --title-selector <sel>    Entry title (default h3)")
	fmt.Fprintln(w, "      --row-selector <sel>      Detail row (default .detail-row)")
	fmt.Fprintln(w, "      --label-selector <sel>    Detail label (default .detail-label)")
	fmt.Fprintln(w, "      --content-selector <sel>  Detail content (default .detail-content)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0  PDF created")
	fmt.Fprintln(w, "  1  General error or interrupted")
	fmt.Fprintln(w, "  2  Invalid flags or config")
	fmt.Fprintln(w, "  3  Input not found")
	fmt.Fprintln(w, "  4  All backends failed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  html2pdf business_ideas_report.html")
	fmt.Fprintln(w, "  html2pdf report.html -o out/report.pdf --margins \"1cm\" -p letter")
	fmt.Fprintln(w, "  html2pdf report.html -b wkhtmltopdf,structured")
	fmt.Fprintln(w, "  HTML2PDF_NO_SANDBOX=1 html2pdf report.html --install")
}

// printCommonUsage prints flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Show debug diagnostics")
	fmt.Fprintln(w, "      --log-level <s>        debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>       console, json")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Probe every backend and report which ones can run.")
	fmt.Fprintln(w, "Honors the same config, environment and backend flags as convert.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                 Output JSON")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w, "  -b, --backends <list>      Conversion order to check")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printInstallUsage prints usage for the install command.
func printInstallUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf install [backend...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Install backends that support it. Defaults to chrome, which downloads")
	fmt.Fprintln(w, "a managed Chromium. Already available backends are left untouched.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printHelp prints help for a specific command or general usage.
func printHelp(command string, w io.Writer) bool {
	switch command {
	case "", cmdHelp:
		printUsage(w)
	case cmdConvert:
		printConvertUsage(w)
	case cmdDoctor:
		printDoctorUsage(w)
	case cmdInstall:
		printInstallUsage(w)
	case cmdVersion:
		fmt.Fprintln(w, "Usage: html2pdf version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	default:
		return false
	}
	return true
}
