// Package render lays an invention disclosure form out on fixed-size pages
// and serializes the result to PDF.
//
// Layout and serialization are separate steps. Render produces an Output:
// pages of positioned, tagged drawing operations in millimetres. WritePDF
// turns an Output into PDF bytes. Tests assert on the Output directly.
package render

import "strings"

// Page geometry in millimetres (A4 portrait).
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	MarginLeft   = 15.0
	MarginRight  = 15.0
	MarginTop    = 20.0
	BottomLimit  = 277.0
	ContentWidth = PageWidth - MarginLeft - MarginRight

	// FirstPageStartY is where content begins below the form header.
	FirstPageStartY = 60.0
)

// RGB is a colour with 0-255 channels.
type RGB struct {
	R, G, B int
}

var (
	Black        = RGB{0, 0, 0}
	White        = RGB{255, 255, 255}
	HeaderBlue   = RGB{66, 139, 202}
	NoticeYellow = RGB{255, 255, 0}
	StripeGrey   = RGB{245, 245, 245}
	BorderGrey   = RGB{200, 200, 200}
)

// Style selects a core font and colour for text.
type Style struct {
	Family string // core font family, e.g. "Helvetica"
	Bold   bool
	Size   float64 // points
	Color  RGB
}

// OpKind distinguishes drawing operations.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
)

// Op is one drawing operation. Text ops draw Text with its baseline at
// (X, Y). Rect ops cover X, Y, W, H and are filled with Fill when set and
// outlined with Border when set.
type Op struct {
	Kind   OpKind
	Tag    string
	X, Y   float64
	W, H   float64
	Text   string
	Style  Style
	Fill   *RGB
	Border *RGB
}

// Page holds the operations drawn on one page, in drawing order.
type Page struct {
	Ops []Op
}

// Output is a laid out document.
type Output struct {
	Pages []*Page
}

// PageCount returns the number of pages.
func (o *Output) PageCount() int {
	return len(o.Pages)
}

// Placed is an operation together with its zero-based page index.
type Placed struct {
	Page int
	Op   Op
}

// Find returns every operation whose tag equals tag or starts with tag
// followed by ':', in document order.
func (o *Output) Find(tag string) []Placed {
	var found []Placed
	for i, p := range o.Pages {
		for _, op := range p.Ops {
			if op.Tag == tag || strings.HasPrefix(op.Tag, tag+":") {
				found = append(found, Placed{Page: i, Op: op})
			}
		}
	}
	return found
}

// Text returns the text of every text operation on page i joined by
// newlines.
func (o *Output) Text(i int) string {
	var lines []string
	for _, op := range o.Pages[i].Ops {
		if op.Kind == OpText {
			lines = append(lines, op.Text)
		}
	}
	return strings.Join(lines, "\n")
}
