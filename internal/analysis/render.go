package analysis

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wastenet/wastenet-go/internal/analytics"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	borderColor = lipgloss.Color("#4A4A4A")
)

// newTable returns a bordered table with the shared styles. Columns listed
// in numeric are right-aligned.
func newTable(headers []string, rows [][]string, numeric func(col int) bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numeric != nil && numeric(col):
				return numberStyle
			default:
				return cellStyle
			}
		})
}

// renderCounts draws one aggregation table with a per-group total column.
func renderCounts(title string, t analytics.Table) string {
	if t.Empty() {
		return titleStyle.Render(title) + "\n" + mutedStyle.Render("no predictions") + "\n"
	}

	headers := append([]string{t.Key}, t.Classes...)
	headers = append(headers, "total")

	rows := make([][]string, 0, len(t.Groups))
	for _, group := range t.Groups {
		row := []string{group}
		sum := 0
		for _, n := range t.Row(group) {
			row = append(row, strconv.Itoa(n))
			sum += n
		}
		rows = append(rows, append(row, strconv.Itoa(sum)))
	}

	tbl := newTable(headers, rows, func(col int) bool { return col > 0 })
	return titleStyle.Render(title) + "\n" + tbl.String() + "\n"
}

// ClassificationRow is one line of classify output.
type ClassificationRow struct {
	File       string
	Class      string
	Confidence float64
	Err        error
}

func renderClassifications(rows []ClassificationRow) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r.Err != nil {
			cells = append(cells, []string{r.File, errorStyle.Render("error"), r.Err.Error()})
			continue
		}
		cells = append(cells, []string{r.File, r.Class, fmt.Sprintf("%.3f", r.Confidence)})
	}
	return newTable([]string{"image", "class", "confidence"}, cells, nil).String() + "\n"
}
