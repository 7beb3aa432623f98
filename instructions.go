package html2pdf

import (
	"fmt"
	"path/filepath"
)

// ManualInstructions returns the numbered steps for producing the PDF by hand
// when every backend failed.
func ManualInstructions(input, output string) []string {
	name := filepath.Base(output)
	if output == "" {
		name = "report.pdf"
	}
	return []string{
		fmt.Sprintf("1. Open the file: %s", input),
		"2. Open it in your web browser (Chrome, Firefox, etc.)",
		"3. Use Ctrl+P (Cmd+P on macOS) to print",
		"4. Select 'Save as PDF' as the destination",
		fmt.Sprintf("5. Save as '%s'", name),
	}
}
