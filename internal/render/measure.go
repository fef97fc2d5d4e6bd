package render

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// FontFamily is the core font every text op uses.
const FontFamily = "Helvetica"

// Measurer reports the width of text in millimetres.
type Measurer interface {
	StringWidth(text string, style Style) float64
}

// Encode maps text to the Windows-1252 bytes the PDF core fonts use.
// Text is NFC-normalized first so combining sequences map to single code
// points; tabs become spaces, other control characters are dropped and
// runes outside the code page become '?'.
func Encode(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t':
			b.WriteByte(' ')
		case r < utf8.RuneSelf && unicode.IsControl(r):
			// dropped
		case r < utf8.RuneSelf:
			b.WriteByte(byte(r))
		default:
			if c, ok := charmap.Windows1252.EncodeRune(r); ok {
				b.WriteByte(c)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

// fontStyle returns the fpdf style string.
func fontStyle(s Style) string {
	if s.Bold {
		return "B"
	}
	return ""
}

// FontMeasurer measures text with the PDF core font metrics, so layout
// matches what WritePDF draws.
type FontMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
}

// NewFontMeasurer creates a measurer backed by fpdf's core font tables.
func NewFontMeasurer() *FontMeasurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &FontMeasurer{pdf: pdf}
}

// StringWidth returns the width of text in mm.
func (m *FontMeasurer) StringWidth(text string, style Style) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(style.Family, fontStyle(style), style.Size)
	return m.pdf.GetStringWidth(Encode(text))
}
