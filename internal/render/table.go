package render

import "fmt"

const (
	cellPadding     = 3.0
	cellLineHeight  = 3.5
	tableTitleSpace = 10.0
	minColumnWidth  = 15.0
)

var (
	tableTitleStyle = Style{Family: FontFamily, Bold: true, Size: 14, Color: Black}
	tableHeadStyle  = Style{Family: FontFamily, Bold: true, Size: 8, Color: White}
	tableBodyStyle  = Style{Family: FontFamily, Size: 8, Color: Black}
)

// table is a titled grid. Widths are relative hints scaled to the content
// width; nil sizes columns from their content.
type table struct {
	name   string
	title  string
	head   []string
	rows   [][]string
	widths []float64
}

// row is a table row wrapped to its column widths.
type row struct {
	cells  [][]string
	height float64
}

// drawTable places t at the cursor. The header row is filled and repeated
// at the top of every page the table continues on. Rows are never split;
// a row that does not fit starts a new page.
func (l *layout) drawTable(t table) {
	c := l.canvas
	widths := l.columnWidths(t)

	head := l.wrapRow(t.head, widths, tableHeadStyle)
	rows := make([]row, len(t.rows))
	for i, cells := range t.rows {
		rows[i] = l.wrapRow(cells, widths, tableBodyStyle)
	}

	need := head.height
	if t.title != "" {
		need += tableTitleSpace
	}
	if len(rows) > 0 {
		need += rows[0].height
	}
	c.ensure(need)

	if t.title != "" {
		c.text("table:"+t.name+":title", MarginLeft, c.y, t.title, tableTitleStyle)
		c.y += tableTitleSpace
	}

	drawHead := func() {
		l.drawRow("table:"+t.name+":head", head, widths, HeaderBlue, tableHeadStyle, true)
	}
	drawHead()

	freshPage := false
	for i, r := range rows {
		if !c.fits(r.height) && !freshPage {
			c.newPage()
			drawHead()
			freshPage = true
		}

		fill := White
		striped := i%2 == 1
		if striped {
			fill = StripeGrey
		}
		l.drawRow(fmt.Sprintf("table:%s:row:%d", t.name, i), r, widths, fill, tableBodyStyle, striped)
		freshPage = false
	}

	c.y += tableSpacing
}

func (l *layout) drawRow(tag string, r row, widths []float64, fill RGB, style Style, filled bool) {
	c := l.canvas
	x := MarginLeft
	for i, w := range widths {
		var bg *RGB
		if filled {
			bg = &fill
		}
		c.rect(tag, x, c.y, w, r.height, bg, &BorderGrey)

		var cell []string
		if i < len(r.cells) {
			cell = r.cells[i]
		}
		for j, line := range cell {
			baseline := c.y + cellPadding + float64(j+1)*cellLineHeight - 0.8
			c.text(tag, x+cellPadding, baseline, line, style)
		}
		x += w
	}
	c.y += r.height
}

func (l *layout) wrapRow(cells []string, widths []float64, style Style) row {
	r := row{cells: make([][]string, len(widths))}
	maxLines := 1
	for i, w := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		lines := wrapText(l.m, text, w-2*cellPadding, style)
		r.cells[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	r.height = float64(maxLines)*cellLineHeight + 2*cellPadding
	return r
}

// columnWidths scales the hints, or the widest cell of each column, to fill
// the content width.
func (l *layout) columnWidths(t table) []float64 {
	desired := make([]float64, len(t.head))
	if len(t.widths) == len(t.head) {
		copy(desired, t.widths)
	} else {
		for i, h := range t.head {
			desired[i] = l.m.StringWidth(h, tableHeadStyle)
		}
		for _, cells := range t.rows {
			for i := range desired {
				if i >= len(cells) {
					break
				}
				if w := l.m.StringWidth(cells[i], tableBodyStyle); w > desired[i] {
					desired[i] = w
				}
			}
		}
		for i := range desired {
			desired[i] = min(max(desired[i]+2*cellPadding, minColumnWidth), ContentWidth/2)
		}
	}

	total := 0.0
	for _, w := range desired {
		total += w
	}
	widths := make([]float64, len(desired))
	for i, w := range desired {
		widths[i] = w * ContentWidth / total
	}
	return widths
}
