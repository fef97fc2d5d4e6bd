package render

// Vertical rhythm in millimetres.
const (
	lineHeight      = 6.0  // body text line
	labelAdvance    = 8.0  // bold label to first text line
	blockSpacing    = 5.0  // after a text block, and for an empty one
	headingSpacing  = 9.0  // after a section heading's last line
	keepWithHeading = 20.0 // content kept on the same page as its heading
	tableSpacing    = 15.0 // after a table
	imageAdvance    = 8.0  // image line to its path line
	pathAdvance     = 12.0 // after an image path line
)

// canvas tracks the page being filled and the vertical cursor.
type canvas struct {
	out  *Output
	page *Page
	y    float64
}

func newCanvas() *canvas {
	c := &canvas{out: &Output{}}
	c.newPage()
	return c
}

// newPage appends a blank page and moves the cursor to the top margin.
func (c *canvas) newPage() {
	c.page = &Page{}
	c.out.Pages = append(c.out.Pages, c.page)
	c.y = MarginTop
}

// atTop reports whether nothing has been placed on the current page yet.
func (c *canvas) atTop() bool {
	return c.y <= MarginTop
}

// fits reports whether h millimetres fit between the cursor and the bottom
// limit.
func (c *canvas) fits(h float64) bool {
	return c.y+h <= BottomLimit
}

// ensure starts a new page when h does not fit. A fresh page is never
// abandoned, so content taller than a page overflows instead of looping.
func (c *canvas) ensure(h float64) {
	if !c.fits(h) && !c.atTop() {
		c.newPage()
	}
}

func (c *canvas) text(tag string, x, y float64, s string, style Style) {
	c.page.Ops = append(c.page.Ops, Op{
		Kind:  OpText,
		Tag:   tag,
		X:     x,
		Y:     y,
		Text:  s,
		Style: style,
	})
}

func (c *canvas) rect(tag string, x, y, w, h float64, fill, border *RGB) {
	c.page.Ops = append(c.page.Ops, Op{
		Kind:   OpRect,
		Tag:    tag,
		X:      x,
		Y:      y,
		W:      w,
		H:      h,
		Fill:   fill,
		Border: border,
	})
}
