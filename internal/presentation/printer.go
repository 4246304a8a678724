package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"offload/internal/app"
	"offload/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

const scanStep = 25

type Printer struct {
	Writer  io.Writer
	Verbose bool
}

// Header describes a run before it starts.
type Header struct {
	Source      string
	Destination string
	Structure   string
	Prefix      string
	Filename    string
	Mode        domain.TransferMode
	DryRun      bool
}

func (p Printer) PrintPlan(h Header, c *app.Collection) {
	verb := "Copying"
	if h.Mode == domain.ModeMove {
		verb = "Moving"
	}
	if h.DryRun {
		verb += " (dry run)"
	}
	fmt.Fprintf(p.Writer, "%s %d files (%s)\n", verb, c.Count(), domain.HumanSize(c.TotalSize()))
	fmt.Fprintf(p.Writer, "  from %s\n  to   %s\n", h.Source, h.Destination)
	fmt.Fprintf(p.Writer, "  structure %s, prefix %s, filename %s\n", h.Structure, h.Prefix, h.Filename)
	fmt.Fprintln(p.Writer)

	lines := make([]string, 0, c.Count())
	for _, item := range c.Items {
		lines = append(lines, fmt.Sprintf("%s  %s", item.RelativePath, item.Snapshot.ModTime.Format("2006-01-02 15:04")))
	}
	if !p.Verbose {
		lines = truncate(lines)
	}
	for _, line := range lines {
		fmt.Fprintln(p.Writer, line)
	}
	fmt.Fprintln(p.Writer)
}

// PrintProgress writes one plain line per snapshot, for terminals without the
// interactive view.
func (p Printer) PrintProgress(pr app.Progress) {
	if pr.Finished {
		fmt.Fprintf(p.Writer, "[100%%] %s\n", pr.Action)
		return
	}
	eta := "unknown"
	if pr.RemainingKnown {
		eta = domain.DescribeDuration(pr.Remaining)
	}
	file := ""
	if pr.File != "" {
		file = " | " + pr.File
	}
	fmt.Fprintf(p.Writer, "[%3.0f%%] %s%s %s\n", pr.Percentage, pr.Action, file, faint("(remaining: "+eta+")"))
}

// PrintScan reports metadata read-ahead every scanStep files and once at the
// end.
func (p Printer) PrintScan(current, total int) {
	if total <= 0 || (current%scanStep != 0 && current != total) {
		return
	}
	fmt.Fprintf(p.Writer, "[%3.0f%%] Reading metadata %d/%d\n", float64(current)/float64(total)*100, current, total)
}

func (p Printer) PrintSummary(res app.Result, dryRun bool) {
	fmt.Fprintln(p.Writer)
	if dryRun {
		fmt.Fprintln(p.Writer, yellow("Dry run, no files were written."))
	}
	fmt.Fprintf(p.Writer, "Processed %d files (%s) in %s.\n", res.Processed, domain.HumanSize(res.Bytes), domain.DescribeDuration(res.Elapsed))
	fmt.Fprintln(p.Writer, kindLine(res.Kinds))
	fmt.Fprintf(p.Writer, "%s %d  %s %d  %s %d  %s %d\n",
		green("Successful"), res.Counts[domain.StatusSuccessful],
		cyan("Skipped"), res.Counts[domain.StatusSkipped],
		red("Failed"), res.Counts[domain.StatusFailed],
		yellow("Not started"), res.Counts[domain.StatusNotStarted],
	)

	if res.Cancelled {
		fmt.Fprintln(p.Writer, yellow("Offload was cancelled."))
	}
	if res.Aborted {
		fmt.Fprintln(p.Writer, red("Offload aborted: destination is no longer reachable."))
	}

	if len(res.Folders) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Destination folders:")
		p.printList(res.Folders)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, "Skipped (already in destination):")
		p.printList(res.Skipped)
	}
	if len(res.Failures) > 0 {
		fmt.Fprintln(p.Writer)
		fmt.Fprintln(p.Writer, red("Failed:"))
		for _, f := range res.Failures {
			fmt.Fprintf(p.Writer, "- %s -> %s: %s\n", f.Source, f.Destination, f.Reason)
		}
	}

	if res.Report.CSV != "" {
		fmt.Fprintln(p.Writer)
		fmt.Fprintf(p.Writer, "Report: %s\n", res.Report.CSV)
		if res.Report.HTML != "" {
			fmt.Fprintf(p.Writer, "        %s\n", res.Report.HTML)
		}
		if res.Report.Published != "" {
			fmt.Fprintf(p.Writer, "        %s\n", res.Report.Published)
		}
	}
}

func (p Printer) PrintVerify(res app.VerifyResult) {
	fmt.Fprintf(p.Writer, "Verified %d files, %d without a recorded checksum.\n", res.Checked, res.Unchecked)
	if res.OK() {
		fmt.Fprintln(p.Writer, green("All checksums match."))
		return
	}
	fmt.Fprintln(p.Writer, red(fmt.Sprintf("%d problems:", len(res.Problems))))
	for _, f := range res.Problems {
		fmt.Fprintf(p.Writer, "- %s: %s\n", f.Destination, f.Reason)
	}
}

func (p Printer) printList(lines []string) {
	if !p.Verbose {
		lines = truncate(lines)
	}
	for _, line := range lines {
		fmt.Fprintln(p.Writer, "  "+line)
	}
}

func kindLine(kinds map[domain.MediaKind]int) string {
	var parts []string
	for _, kind := range domain.MediaKinds {
		if n := kinds[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	if len(parts) == 0 {
		return "No media files."
	}
	return "Found " + strings.Join(parts, ", ") + " files."
}

// truncate keeps the first and last two lines of long lists.
func truncate(lines []string) []string {
	if len(lines) <= 4 {
		return lines
	}
	out := make([]string, 0, 5)
	out = append(out, lines[:2]...)
	out = append(out, "...")
	return append(out, lines[len(lines)-2:]...)
}
