// Package observability provides formatted output utilities for the placement CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/placement-cell/internal/eligibility"
	"github.com/jonathan/placement-cell/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted CLI output
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
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEligibility outputs one student's evaluation against one company.
func (p *Printer) PrintEligibility(student *types.Student, company *types.Company, result *eligibility.Result) {
	if student == nil || company == nil || result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Student:  %s (%s)\n", student.Name, student.RollNumber))
	sb.WriteString(fmt.Sprintf("Branch:   %s, CGPA %.2f\n", student.Branch, student.CGPA))
	sb.WriteString(fmt.Sprintf("Company:  %s [%s]\n", company.Name, company.Status))
	sb.WriteString("\n")

	if result.IsEligible {
		sb.WriteString("✓ ELIGIBLE")
	} else {
		sb.WriteString(fmt.Sprintf("✗ NOT ELIGIBLE (%d rules failed)\n", len(result.Reasons)))
		for _, reason := range result.Reasons {
			sb.WriteString(fmt.Sprintf("  • %s\n", reason))
		}
	}

	p.printBox("ELIGIBILITY CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMigrations lists the schema versions applied by a migrate run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMigrations(applied []string) {
	if len(applied) == 0 {
		fmt.Fprintln(p.out, "Database schema is up to date")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applied %d migrations:\n\n", len(applied)))
	for _, v := range applied {
		sb.WriteString(fmt.Sprintf("  • %s\n", v))
	}
	p.printBox("MIGRATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSeedReport summarizes the demo records created by a seed run.
func (p *Printer) PrintSeedReport(users, students, companies []string) {
	var sb strings.Builder
	section := func(title string, items []string) {
		sb.WriteString(fmt.Sprintf("%s: %d created\n", title, len(items)))
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}

	section("Users", users)
	section("Students", students)
	section("Companies", companies)

	p.printBox("SEED DATA", strings.TrimSuffix(sb.String(), "\n"))
}
