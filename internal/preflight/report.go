package preflight

import (
	"fmt"
	"io"
	"strings"
)

// Summary statuses reported by Summarize.
const (
	SummaryReady        = "ready"
	SummaryWithWarnings = "ready_with_warnings"
	SummaryFailed       = "failed"
)

// Report condenses a set of results for display.
type Report struct {
	Status   string   `json:"status"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Summarize classifies results. Critical failures become errors; any other
// result that did not pass becomes a warning.
func Summarize(results []CheckResult) Report {
	var rep Report
	for _, r := range results {
		line := r.Name + ": " + r.Message
		switch {
		case r.IsCritical():
			rep.Errors = append(rep.Errors, line)
		case r.Status != StatusPass:
			rep.Warnings = append(rep.Warnings, line)
		}
	}

	switch {
	case len(rep.Errors) > 0:
		rep.Status = SummaryFailed
	case len(rep.Warnings) > 0:
		rep.Status = SummaryWithWarnings
	default:
		rep.Status = SummaryReady
	}
	return rep
}

// SummaryStatus returns Summarize(results).Status.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	return Summarize(results).Status
}

// PrintResults writes one line per result followed by the summary.
func (c *Checker) PrintResults(results []CheckResult) {
	w := c.output
	title := "Endfield Launcher Check"
	_, _ = fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(w, "      %s\n", r.Details)
		}
	}

	rep := Summarize(results)
	_, _ = fmt.Fprintf(w, "\nStatus: %s\n", strings.ToUpper(rep.Status))
	printList(w, "error", rep.Errors)
	printList(w, "warning", rep.Warnings)
}

func printList(w io.Writer, kind string, lines []string) {
	if len(lines) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%d %s(s):\n", len(lines), kind)
	for _, l := range lines {
		_, _ = fmt.Fprintf(w, "  - %s\n", l)
	}
}
