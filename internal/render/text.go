package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// columnGap separates adjacent text columns
const columnGap = 2

// WriteText writes rows as an aligned plain-text table.
// Columns are padded by terminal display width, so full-width names line up.
// When colored is set, failed rows are printed in red and the header in bold.
func WriteText(w io.Writer, rows []Row, colored bool) error {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, []string{"#", "商品名", "価格", "容量", "説明"})
	for i, row := range rows {
		description := ""
		if len(row.Description) > 0 {
			description = row.Description[0]
		}
		cells = append(cells, []string{fmt.Sprint(i + 1), row.Name, row.Price, row.Capacity, description})
	}

	widths := make([]int, len(cells[0]))
	for _, line := range cells {
		for col, cell := range line {
			widths[col] = max(widths[col], runewidth.StringWidth(cell))
		}
	}

	for i, line := range cells {
		text := alignLine(line, widths)
		switch {
		case i == 0:
			text = colorize(text, colored, color.Bold)
		case rows[i-1].HasError:
			text = colorize(text, colored, color.FgRed)
		}
		if _, err := io.WriteString(w, text+"\n"); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	return nil
}

// alignLine pads every cell but the last to its column width
func alignLine(line []string, widths []int) string {
	var b strings.Builder
	for col, cell := range line {
		if col == len(line)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(runewidth.FillRight(cell, widths[col]+columnGap))
	}
	return strings.TrimRight(b.String(), " ")
}

func colorize(text string, colored bool, attr color.Attribute) string {
	if !colored {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}
