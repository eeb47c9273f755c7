// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/careerstack/internal/db"
	"github.com/jonathan/careerstack/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// descriptionPreviewLines is how much of a description the job box shows
	descriptionPreviewLines = 6
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(clip(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(clip(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to width characters, marking the cut with "...".
func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-pads s with spaces to width characters.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// PrintJob outputs a human-readable summary of a scraped job.
func (p *Printer) PrintJob(job *types.JobData) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Platform: %s\n", job.Platform))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", orDash(job.Company)))
	sb.WriteString(fmt.Sprintf("Position: %s\n", orDash(job.Position)))
	sb.WriteString(fmt.Sprintf("Salary:   %s\n", orDash(job.Salary)))
	sb.WriteString(fmt.Sprintf("Apply:    %s\n", orDash(job.AppLink)))
	if job.CompanyURL != "" {
		sb.WriteString(fmt.Sprintf("Website:  %s\n", job.CompanyURL))
	}
	if job.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", job.Email))
	}

	if job.Description != "" {
		sb.WriteString("\n")
		lines := strings.Split(job.Description, "\n")
		count := min(len(lines), descriptionPreviewLines)
		for _, line := range lines[:count] {
			sb.WriteString(line + "\n")
		}
		if len(lines) > descriptionPreviewLines {
			sb.WriteString(fmt.Sprintf("... and %d more lines (%d blocks)\n",
				len(lines)-descriptionPreviewLines, len(job.DescriptionBlocks)))
		}
	}

	if len(job.Warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range job.Warnings {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
		}
	}

	p.printBox("SCRAPED JOB", sb.String())
}

// PrintAnalysis outputs the match score and summary.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %d/100 %s\n", result.Score, scoreBar(result.Score)))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(result.EmailOrEmpty())))
	sb.WriteString("\n")
	for _, line := range wrap(result.Summary, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	p.printBox("AI MATCH ANALYSIS", sb.String())
}

// scoreBar draws a 10-cell bar for a 0-100 score.
func scoreBar(score int) string {
	filled := max(0, min(10, (score+5)/10))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}

// wrap breaks text into lines of at most width characters at spaces.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

// PrintSavedJobs outputs the save history as a table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSavedJobs(jobs []db.SavedJob) {
	if len(jobs) == 0 {
		fmt.Fprintln(p.out, "No saved jobs.")
		return
	}

	fmt.Fprintf(p.out, "%-10s  %-9s  %5s  %-24s  %s\n", "SAVED", "PLATFORM", "SCORE", "COMPANY", "POSITION")
	for _, j := range jobs {
		score := "-"
		if j.Score != nil {
			score = fmt.Sprintf("%d", *j.Score)
		}
		fmt.Fprintf(p.out, "%-10s  %-9s  %5s  %-24s  %s\n",
			j.CreatedAt.Format("2006-01-02"), j.Platform, score, clip(j.Company, 24), j.Position)
	}
}

// PrintRuns outputs recorded scrape runs as a table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "No runs recorded.")
		return
	}

	fmt.Fprintf(p.out, "%-36s  %-16s  %7s  %s\n", "RUN", "STARTED", "SOURCES", "STATUS")
	for _, r := range runs {
		fmt.Fprintf(p.out, "%-36s  %-16s  %7d  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.SourceCount, r.Status)
	}
}

// PrintWarnings outputs one line per warning, at most maxItemsToShow.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []string) {
	count := min(len(warnings), maxItemsToShow)
	for _, w := range warnings[:count] {
		fmt.Fprintf(p.out, "⚠ %s\n", w)
	}
	if len(warnings) > maxItemsToShow {
		fmt.Fprintf(p.out, "  ... and %d more\n", len(warnings)-maxItemsToShow)
	}
}
