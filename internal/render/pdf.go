package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const borderWidth = 0.2

// WritePDF serializes out as an A4 PDF. Every Output page becomes exactly
// one PDF page.
func WritePDF(out *Output, title string, w io.Writer) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetLineWidth(borderWidth)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetCreator("idfbuilder", false)

	for _, page := range out.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			draw(pdf, op)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func draw(pdf *fpdf.Fpdf, op Op) {
	switch op.Kind {
	case OpRect:
		style := ""
		if op.Fill != nil {
			pdf.SetFillColor(op.Fill.R, op.Fill.G, op.Fill.B)
			style += "F"
		}
		if op.Border != nil {
			pdf.SetDrawColor(op.Border.R, op.Border.G, op.Border.B)
			style += "D"
		}
		if style != "" {
			pdf.Rect(op.X, op.Y, op.W, op.H, style)
		}
	case OpText:
		if op.Text == "" {
			return
		}
		pdf.SetFont(op.Style.Family, fontStyle(op.Style), op.Style.Size)
		pdf.SetTextColor(op.Style.Color.R, op.Style.Color.G, op.Style.Color.B)
		pdf.Text(op.X, op.Y, Encode(op.Text))
	}
}
