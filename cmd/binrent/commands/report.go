package commands

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"binrent/internal/bench"
	"binrent/internal/model"
	"binrent/internal/opt"
)

var (
	colorAccent = lipgloss.Color("#874BFD")
	colorGood   = lipgloss.Color("#00FF99")
	colorBad    = lipgloss.Color("#FF0055")
	colorSub    = lipgloss.Color("#64748B")

	titleStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(colorSub)
	goodStyle   = lipgloss.NewStyle().Foreground(colorGood).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(colorBad).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSub)
)

func formatObjective(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return errorStyle.Render("infeasible")
	}
	return fmt.Sprintf("%.2f", v)
}

// printSolve writes the item->bin pairs, the objective and the elapsed time.
func printSolve(w io.Writer, inst opt.Instance, res opt.Result) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s on %d items / %d bins (budget %.2f)", res.Algorithm, len(inst.Items), len(inst.Bins), inst.Budget)))
	for _, p := range res.Solution.Pairs() {
		fmt.Fprintf(w, "  %s -> %s\n", p.Item, p.Bin)
	}
	if un := model.Unassigned(inst.Items, res.Solution); len(un) > 0 {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("unassigned:"), strings.Join(un, ", "))
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("objective:"), formatObjective(res.Objective))
	fmt.Fprintf(w, "%s %.2f  %s %.2f  %s %.2f\n",
		labelStyle.Render("cost:"), res.Solution.TotalCost(),
		labelStyle.Render("profit:"), res.Solution.Profit(),
		labelStyle.Render("budget left:"), res.Solution.BudgetRes)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("elapsed:"), res.Elapsed)
}

// printBench renders one row per solver in a bordered table.
func printBench(w io.Writer, inst opt.Instance, rows []model.BenchmarkRow) {
	header := []string{"algorithm", "objective", "gap", "optimal", "ms"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		obj := "-"
		if r.Objective != nil {
			obj = fmt.Sprintf("%.2f", *r.Objective)
		} else if r.Error != "" {
			obj = r.Error
		}
		gap := "-"
		if r.Gap != nil {
			gap = fmt.Sprintf("%.2f", *r.Gap)
		}
		optimal := ""
		if r.Optimal {
			optimal = "yes"
		}
		cells = append(cells, []string{r.Algorithm, obj, gap, optimal, fmt.Sprintf("%.3f", r.ElapsedMs)})
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], len(c))
		}
	}

	lines := []string{renderRow(header, widths, headerStyle)}
	for i, row := range cells {
		style := cellStyle
		if rows[i].Gap != nil && *rows[i].Gap <= 1e-9 {
			style = cellStyle.Foreground(colorGood)
		}
		if !rows[i].Feasible {
			style = cellStyle.Foreground(colorBad)
		}
		lines = append(lines, renderRow(row, widths, style))
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("benchmark: %d items / %d bins, budget %.2f", len(inst.Items), len(inst.Bins), inst.Budget)))
	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	if len(rows) > 0 && rows[0].Algorithm == bench.ExactName && rows[0].Optimal {
		fmt.Fprintln(w, goodStyle.Render("oracle proved optimality"))
	}
}

func renderRow(cols []string, widths []int, style lipgloss.Style) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = style.Width(widths[i] + 2).Render(c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}
