package reportfixture

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/mcp-table-report/internal/layout"
)

// glyphWidth is the advance of every glyph in the embedded font widths, in
// thousandths of an em. It matches the half-em estimate used for text boxes.
const glyphWidth = 500

// StampSize is the side of the square image drawn when Report.Stamp is set, in points
const StampSize = 20.0

// Info holds the document information dictionary written into the PDF
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate string
}

// SampleInfo returns metadata matching Sample.
func SampleInfo() Info {
	return Info{
		Title:        "Patient examination report",
		Author:       "Petrova A. S.",
		Subject:      "Vital signs",
		Keywords:     "pulse, temperature, saturation",
		Creator:      "reportfixture",
		Producer:     "mcp-table-report",
		CreationDate: "D:20240314090000+00'00'",
	}
}

// PDF renders the report as a single page PDF. Grid lines are stroked paths,
// text uses Helvetica with fixed glyph widths, and a stamp image is painted
// when requested.
func (r Report) PDF(info Info) []byte {
	var content strings.Builder
	content.WriteString("0.5 w\n")
	for _, l := range r.gridLines() {
		fmt.Fprintf(&content, "%s %s m %s %s l S\n", num(l.BBox.X0), num(l.BBox.Y0), num(l.BBox.X1), num(l.BBox.Y1))
	}
	if r.Stamp {
		x, y := r.StampOrigin()
		fmt.Fprintf(&content, "q %s 0 0 %s %s %s cm /Im1 Do Q\n", num(StampSize), num(StampSize), num(x), num(y))
	}
	for _, t := range append(r.legendTexts(), r.cellTexts()...) {
		fmt.Fprintf(&content, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n",
			num(t.FontSize), num(t.BBox.X0), num(t.BBox.Y0), escape(t.Text))
	}

	doc := &pdfWriter{}
	doc.add("<< /Type /Catalog /Pages 2 0 R >>")
	doc.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	xobjects := ""
	if r.Stamp {
		xobjects = " /XObject << /Im1 6 0 R >>"
	}
	doc.add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Contents 4 0 R "+
		"/Resources << /Font << /F1 5 0 R >>%s >> >>",
		num(r.Geometry.PageWidth), num(r.Geometry.PageHeight), xobjects))
	doc.addStream("", []byte(content.String()))

	widths := strings.TrimSpace(strings.Repeat(fmt.Sprintf("%d ", glyphWidth), 126-32+1))
	doc.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>")

	doc.addStream("/Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray "+
		"/BitsPerComponent 8 /Filter /FlateDecode ", deflate([]byte{0x00, 0xff, 0xff, 0x00}))

	doc.add(fmt.Sprintf("<< /Title (%s) /Author (%s) /Subject (%s) /Keywords (%s) /Creator (%s) "+
		"/Producer (%s) /CreationDate (%s) >>",
		escape(info.Title), escape(info.Author), escape(info.Subject), escape(info.Keywords),
		escape(info.Creator), escape(info.Producer), escape(info.CreationDate)))

	return doc.bytes(7)
}

// WritePDF writes the rendered report to path.
func (r Report) WritePDF(path string, info Info) error {
	if err := os.WriteFile(path, r.PDF(info), 0o600); err != nil {
		return fmt.Errorf("failed to write report PDF: %w", err)
	}
	return nil
}

// StampOrigin returns the lower-left corner of the stamp image, below the legend.
func (r Report) StampOrigin() (x, y float64) {
	g := r.Geometry
	return g.Margin, g.Margin
}

// StampBBox returns where the stamp image is painted.
func (r Report) StampBBox() layout.BBox {
	x, y := r.StampOrigin()
	return layout.BBox{X0: x, Y0: y, X1: x + StampSize, Y1: y + StampSize}
}

type pdfWriter struct {
	objects []string
}

func (w *pdfWriter) add(body string) {
	w.objects = append(w.objects, body)
}

func (w *pdfWriter) addStream(dict string, data []byte) {
	w.add(fmt.Sprintf("<< %s/Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
}

func (w *pdfWriter) bytes(infoObj int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, len(w.objects))
	for i, obj := range w.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(w.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(w.objects)+1, infoObj, xref)
	return buf.Bytes()
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}

// num formats a coordinate without exponent notation, which content streams do not allow.
func num(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
