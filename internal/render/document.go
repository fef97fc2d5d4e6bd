package render

import (
	"fmt"
	"path"
	"strings"

	"idfbuilder/internal/domain/models/idf"
)

const (
	formTitle    = "INVENTION DISCLOSURE FORM (IDF)"
	instructions = "INSTRUCTIONS: Complete this form in full, dated and signed. Email to IP Manager at:"

	defaultUploadPrefix = "/uploads"
	minHeaderFontSize   = 7.0
)

var (
	organizationStyle = Style{Family: FontFamily, Bold: true, Size: 16, Color: White}
	formTitleStyle    = Style{Family: FontFamily, Bold: true, Size: 14, Color: White}
	instructionStyle  = Style{Family: FontFamily, Size: 10, Color: Black}
	headingStyle      = Style{Family: FontFamily, Bold: true, Size: 12, Color: Black}
	labelStyle        = Style{Family: FontFamily, Bold: true, Size: 11, Color: Black}
	bodyStyle         = Style{Family: FontFamily, Size: 10, Color: Black}
	pathStyle         = Style{Family: FontFamily, Size: 8, Color: Black}
)

var inventorColumns = []string{"Name", "ID", "Nationality", "Employer", "% Inventorship", "Address", "Phone", "Email"}

// Relative inventor column widths, scaled to the content width.
var inventorWidths = []float64{30, 20, 25, 25, 20, 40, 20, 30}

// Options controls the parts of the form that do not come from the
// document.
type Options struct {
	OrganizationName string
	IPManagerEmail   string
	// UploadPrefix marks image entries that reference stored uploads.
	UploadPrefix string
}

// Renderer lays documents out. It is safe for concurrent use when its
// Measurer is.
type Renderer struct {
	m    Measurer
	opts Options
}

// NewRenderer creates a renderer measuring with the PDF core fonts.
func NewRenderer(opts Options) *Renderer {
	return NewRendererWithMeasurer(NewFontMeasurer(), opts)
}

func NewRendererWithMeasurer(m Measurer, opts Options) *Renderer {
	if opts.UploadPrefix == "" {
		opts.UploadPrefix = defaultUploadPrefix
	}
	opts.UploadPrefix = strings.TrimRight(opts.UploadPrefix, "/")
	return &Renderer{m: m, opts: opts}
}

// layout is the state of a single Render call.
type layout struct {
	canvas *canvas
	m      Measurer
	opts   Options
}

// Render lays doc out as numbered sections 1 to 8. The inventor table is
// always drawn; the prior art, disclosure and publication plan sections
// only when they have rows.
func (r *Renderer) Render(doc idf.Document) *Output {
	l := &layout{canvas: newCanvas(), m: r.m, opts: r.opts}

	l.header()

	l.heading(1, "1. DATE: "+doc.Date)
	l.heading(2, "2. TITLE: "+doc.Title)

	l.heading(3, "3. INVENTOR DETAILS:")
	l.drawTable(inventorTable(doc.Inventors))

	l.heading(4, "4. ABSTRACT OF THE INVENTION:")
	l.textBlock("abstract", "", doc.Abstract)

	l.heading(5, "5. THE INVENTION:")
	inv := doc.Invention
	l.textBlock("description", "DESCRIPTION:", inv.Description)
	l.textBlock("keywords", "KEYWORDS:", inv.Keywords.String())
	l.textBlock("background", "BACKGROUND:", inv.Background)
	l.textBlock("problem", "PROBLEM:", inv.Problem)
	l.textBlock("components", "COMPONENTS:", inv.Components.String())
	l.textBlock("advantages", "ADVANTAGES:", inv.Advantages)
	l.textBlock("additionaldata", "ADDITIONAL DATA:", inv.AdditionalData)
	l.images(inv.UploadedImages)
	l.textBlock("results", "RESULTS:", inv.Results.String())

	if len(doc.PriorArt) > 0 {
		l.heading(6, "6. PRIOR ART:")
		l.drawTable(priorArtTable(doc.PriorArt))
	}
	if len(doc.Disclosure) > 0 {
		l.heading(7, "7. DISCLOSURE:")
		l.drawTable(disclosureTable(doc.Disclosure))
	}
	if len(doc.Plans) > 0 {
		l.heading(8, "8. PUBLICATION PLANS:")
		l.drawTable(plansTable(doc.Plans))
	}

	return l.canvas.out
}

// header draws the three coloured bands at the top of the first page.
func (l *layout) header() {
	c := l.canvas
	c.rect("header:organization", 0, 0, PageWidth, 20, &HeaderBlue, nil)
	if name := strings.TrimSpace(l.opts.OrganizationName); name != "" {
		c.text("header:organization", MarginLeft, 12, name, l.shrinkToFit(name, organizationStyle))
	}

	c.rect("header:title", 0, 20, PageWidth, 15, &HeaderBlue, nil)
	c.text("header:title", MarginLeft, 30, formTitle, formTitleStyle)

	notice := instructions
	if email := strings.TrimSpace(l.opts.IPManagerEmail); email != "" {
		notice += " " + email
	}
	c.rect("header:instructions", 0, 35, PageWidth, 15, &NoticeYellow, nil)
	c.text("header:instructions", MarginLeft, 45, notice, l.shrinkToFit(notice, instructionStyle))

	c.y = FirstPageStartY
}

// shrinkToFit lowers the font size until text fits on one line.
func (l *layout) shrinkToFit(text string, style Style) Style {
	for style.Size > minHeaderFontSize && l.m.StringWidth(text, style) > ContentWidth {
		style.Size -= 0.5
	}
	return style
}

// heading draws a numbered section title and keeps it on the same page as
// the start of its content.
func (l *layout) heading(n int, text string) {
	c := l.canvas
	lines := wrapText(l.m, text, ContentWidth, headingStyle)
	height := float64(len(lines)) * lineHeight

	c.ensure(height + keepWithHeading)
	tag := fmt.Sprintf("heading:%d", n)
	for i, line := range lines {
		c.text(tag, MarginLeft, c.y+float64(i)*lineHeight, line, headingStyle)
	}
	c.y += height + headingSpacing
}

// textBlock draws an optional bold label followed by wrapped body text. A
// block that fits on a fresh page is moved there whole; a longer one starts
// where it is and flows across pages, but its label always stays with its
// first line.
func (l *layout) textBlock(key, label, text string) {
	c := l.canvas
	lines := wrapText(l.m, text, ContentWidth, bodyStyle)

	// The label row is reserved even when there is no label.
	need := labelAdvance + float64(len(lines))*lineHeight
	if !c.fits(need) {
		if need <= BottomLimit-MarginTop {
			c.ensure(need)
		} else {
			c.ensure(labelAdvance + lineHeight)
		}
	}

	if label != "" {
		c.text("label:"+key, MarginLeft, c.y, label, labelStyle)
	}
	c.y += labelAdvance
	for _, line := range lines {
		c.ensure(lineHeight)
		c.text("text:"+key, MarginLeft, c.y, line, bodyStyle)
		c.y += lineHeight
	}
	c.y += blockSpacing
}

// images lists image references. Stored uploads show their file name and
// path; any other entry is printed as given. Blank entries are skipped.
func (l *layout) images(paths []string) {
	if len(paths) == 0 {
		return
	}
	l.textBlock("images", "UPLOADED IMAGES:", "")

	c := l.canvas
	for i, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tag := fmt.Sprintf("image:%d", i)

		if strings.HasPrefix(p, l.opts.UploadPrefix+"/") {
			c.ensure(imageAdvance + pathAdvance)
			c.text(tag, MarginLeft, c.y, "• Image: "+path.Base(p), bodyStyle)
			c.y += imageAdvance
			c.text(tag+":path", MarginLeft, c.y, "  Path: "+p, pathStyle)
			c.y += pathAdvance
			continue
		}

		for _, line := range wrapText(l.m, "• "+p, ContentWidth, bodyStyle) {
			c.ensure(imageAdvance)
			c.text(tag, MarginLeft, c.y, line, bodyStyle)
			c.y += imageAdvance
		}
	}
}

func inventorTable(rows []idf.Inventor) table {
	t := table{name: "inventors", head: inventorColumns, widths: inventorWidths}
	for _, inv := range rows {
		t.rows = append(t.rows, []string{
			inv.Name, inv.ID, inv.Nationality, inv.Employer,
			inv.Inventorship, inv.Address, inv.Phone, inv.Email,
		})
	}
	return t
}

func priorArtTable(rows []idf.PriorArtItem) table {
	t := table{name: "prior_art", head: []string{"Title", "Authors", "Published", "Publication Date"}}
	for _, r := range rows {
		t.rows = append(t.rows, []string{r.Title, r.Authors, r.Published, r.PublicationDate})
	}
	return t
}

func disclosureTable(rows []idf.DisclosureItem) table {
	t := table{name: "disclosure", head: []string{"Title", "Authors", "Published", "Date"}}
	for _, r := range rows {
		t.rows = append(t.rows, []string{r.Title, r.Authors, r.Published, r.Date})
	}
	return t
}

func plansTable(rows []idf.PublicationPlan) table {
	t := table{name: "plans", head: []string{"Title", "Authors", "Disclosed", "Date"}}
	for _, r := range rows {
		t.rows = append(t.rows, []string{r.Title, r.Authors, r.Disclosed, r.Date})
	}
	return t
}
