package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"thali/internal/core"
)

// printer renders command output. Styles degrade to plain text when out is
// not a terminal.
type printer struct {
	out     io.Writer
	heading lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
}

func newPrinter(out io.Writer) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:     out,
		heading: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (p *printer) day(date core.Date, state core.State, sel core.Selections) {
	fmt.Fprintln(p.out, p.heading.Render(date.Display()), p.muted.Render("("+string(date)+")"))
	fmt.Fprintf(p.out, "  State:   %s\n", state)
	fmt.Fprintf(p.out, "  Morning: %s\n", yesNo(sel.Morning))
	fmt.Fprintf(p.out, "  Evening: %s\n", yesNo(sel.Evening))
}

func (p *printer) records(records []core.MealRecord) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, p.muted.Render("No records."))
		return
	}
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tMORNING\tEVENING")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Date, rec.Date.Display(), yesNo(rec.Morning), yesNo(rec.Evening))
	}
	_ = tw.Flush()
}

func (p *printer) aggregates(rng core.Range, agg core.Aggregates) {
	title := "All time"
	if !rng.IsZero() {
		title = fmt.Sprintf("%s to %s", orOpen(rng.Start), orOpen(rng.End))
	}
	fmt.Fprintln(p.out, p.heading.Render(title))
	fmt.Fprintf(p.out, "  Morning meals: %d\n", agg.Morning)
	fmt.Fprintf(p.out, "  Evening meals: %d\n", agg.Evening)
	fmt.Fprintf(p.out, "  Total meals:   %d\n", agg.Total)
	fmt.Fprintf(p.out, "  Days recorded: %d\n", agg.Days)
}

func (p *printer) done(format string, args ...any) {
	fmt.Fprintln(p.out, p.ok.Render(fmt.Sprintf(format, args...)))
}

func orOpen(d core.Date) string {
	if d == "" {
		return "..."
	}
	return string(d)
}
