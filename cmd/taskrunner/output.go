package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/util"
)

type table struct {
	headers []string
	rows    [][]string
	colors  []*color.Color
	widths  []int
}

func newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &table{headers: headers, widths: widths}
}

// addRow appends a row. c colors the whole row when not nil.
func (t *table) addRow(c *color.Color, row ...string) {
	for i, cell := range row {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, row)
	t.colors = append(t.colors, c)
}

func (t *table) render(w io.Writer) {
	header := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		header.Fprintf(w, "%-*s  ", t.widths[i], h)
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", t.widths[i])+"  ")
	}
	fmt.Fprintln(w)

	for r, row := range t.rows {
		line := ""
		for i, cell := range row {
			if i < len(t.widths) {
				line += fmt.Sprintf("%-*s  ", t.widths[i], cell)
			}
		}
		if c := t.colors[r]; c != nil {
			c.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}

func statusColor(s models.TaskStatus) *color.Color {
	switch s {
	case models.TaskStatusSucceeded:
		return color.New(color.FgGreen)
	case models.TaskStatusFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func runStatusColor(s models.RunStatus) *color.Color {
	switch s {
	case models.RunStatusSucceeded:
		return color.New(color.FgGreen, color.Bold)
	case models.RunStatusFailed:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

func printRun(w io.Writer, run models.Run) {
	fmt.Fprintf(w, "Run:     %s\n", run.ID)
	fmt.Fprintf(w, "Graph:   %s\n", run.Graph)
	fmt.Fprintf(w, "Workers: %d\n", run.Workers)
	fmt.Fprint(w, "Status:  ")
	runStatusColor(run.Status).Fprintln(w, run.Status)
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Took:    %s\n", util.FormatDuration(run.FinishedAt.Sub(run.StartedAt)))
	}
	fmt.Fprintln(w)
}

func printResults(w io.Writer, results []models.TaskResult) {
	t := newTable("TASK", "STATUS", "ATTEMPTS", "DURATION", "ERROR")
	for _, r := range results {
		t.addRow(statusColor(r.Status),
			r.Task,
			string(r.Status),
			fmt.Sprint(r.Attempts),
			util.FormatDuration(r.Duration()),
			util.Truncate(r.Error, 80),
		)
	}
	t.render(w)
}

func printSummary(w io.Writer, s *models.RunSummary) {
	printRun(w, s.Run)
	printResults(w, s.Results)
	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d cancelled\n",
		s.Count(models.TaskStatusSucceeded),
		s.Count(models.TaskStatusFailed),
		s.Count(models.TaskStatusCancelled),
	)
}
