package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shorekits/pkg/concurrency/okvl"
)

const modeColumnWidth = 4

// RenderTable renders a table with headers and data. colWidths gives the
// minimum width of each column; wider cells widen their column.
func RenderTable(headers []string, data [][]string, colWidths []int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(len(h), colWidths[i])
		for _, row := range data {
			if i < len(row) {
				widths[i] = max(widths[i], len(row[i]))
			}
		}
	}

	var b strings.Builder

	headerCells := make([]string, len(headers))
	for i, header := range headers {
		headerCells[i] = TableHeaderStyle.Render(PadString(header, widths[i]))
	}
	b.WriteString(strings.Join(headerCells, " ") + "\n")

	separator := make([]string, len(widths))
	for i, width := range widths {
		separator[i] = strings.Repeat("─", width+2)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(MutedColor).Render(strings.Join(separator, "┼")) + "\n")

	for _, row := range data {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = CellStyle.Render(PadString(cell, widths[i]))
		}
		b.WriteString(strings.Join(cells, " ") + "\n")
	}

	return b.String()
}

// RenderModeMatrix renders a 6x6 table indexed by element modes. cell returns
// the text for the row mode r and column mode c.
func RenderModeMatrix(title string, cell func(r, c okvl.ElementLockMode) string) string {
	var b strings.Builder
	b.WriteString(RenderTitle("▦", title) + "\n")

	header := []string{PadString("", modeColumnWidth)}
	for _, c := range okvl.AllElementModes {
		header = append(header, PadString(c.String(), modeColumnWidth))
	}
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = TableHeaderStyle.Render(h)
	}
	b.WriteString(strings.Join(cells, " ") + "\n")

	for _, r := range okvl.AllElementModes {
		row := []string{TableHeaderStyle.Render(PadString(r.String(), modeColumnWidth))}
		for _, c := range okvl.AllElementModes {
			text := PadString(cell(r, c), modeColumnWidth)
			if m, err := okvl.ParseElementLockMode(strings.TrimSpace(text)); err == nil {
				row = append(row, ModeStyle(m).Render(text))
			} else {
				row = append(row, CellStyle.Render(text))
			}
		}
		b.WriteString(strings.Join(row, " ") + "\n")
	}
	return b.String()
}

// RenderTables renders all four element-mode tables.
func RenderTables() string {
	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "-"
	}

	compat := RenderModeMatrix("Compatibility (requested \\ granted)", func(r, c okvl.ElementLockMode) string {
		return yesNo(okvl.Compatible(r, c))
	})
	implied := RenderModeMatrix("Implication (left implied by right)", func(r, c okvl.ElementLockMode) string {
		return yesNo(okvl.ImpliedBy(r, c))
	})
	combine := RenderModeMatrix("Combine (supremum)", func(r, c okvl.ElementLockMode) string {
		return okvl.CombineElements(r, c).String()
	})

	parentRows := make([][]string, 0, len(okvl.AllElementModes))
	for _, m := range okvl.AllElementModes {
		parentRows = append(parentRows, []string{m.String(), okvl.ParentMode(m).String()})
	}
	parent := RenderTitle("▦", "Parent intent") + "\n" +
		RenderTable([]string{"mode", "parent"}, parentRows, []int{modeColumnWidth, modeColumnWidth})

	return lipgloss.JoinVertical(lipgloss.Left, compat, implied, combine, parent)
}

// RenderLockMode renders every slot of lm as a one-row table: the
// partitions, then the key, then the gap.
func RenderLockMode(lm okvl.LockMode) string {
	slots := lm.Slots()

	headers := make([]string, 0, len(slots))
	for i := 0; i < okvl.Partitions; i++ {
		headers = append(headers, fmt.Sprintf("p%d", i))
	}
	headers = append(headers, "key", "gap")

	headerCells := make([]string, len(headers))
	modeCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = TableHeaderStyle.Render(PadString(h, modeColumnWidth))
		modeCells[i] = ModeStyle(slots[i]).Render(PadString(slots[i].String(), modeColumnWidth))
	}

	return strings.Join(headerCells, " ") + "\n" + strings.Join(modeCells, " ") + "\n"
}

// KeyValue is one labelled line of a detail box.
type KeyValue struct {
	Label string
	Value string
}

// RenderDetails renders labelled values inside a bordered box.
func RenderDetails(title string, pairs []KeyValue) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p.Label))
	}

	lines := []string{LabelStyle.Render(title), ""}
	for _, p := range pairs {
		lines = append(lines, LabelStyle.Render(PadString(p.Label+":", width+1))+" "+ValueStyle.Render(p.Value))
	}
	return DetailStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
