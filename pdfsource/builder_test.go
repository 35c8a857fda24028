package pdfsource

import (
	"bytes"
	"fmt"
	"strings"
)

// pdfBuilder assembles a minimal uncompressed PDF with a correct xref table
type pdfBuilder struct {
	objects []string
}

// add appends an object body and returns its object number
func (b *pdfBuilder) add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// set replaces the body of an object reserved with add
func (b *pdfBuilder) set(num int, body string) {
	b.objects[num-1] = body
}

func stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

func (b *pdfBuilder) bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, xref)
	return buf.Bytes()
}

const fontDict = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>"

func helvetica() string {
	return fmt.Sprintf(fontDict, strings.TrimSpace(strings.Repeat("500 ", 95)))
}

// samplePDF builds a two-page document:
//
// page 1 (media box inherited, 612x792): two text lines and one image
// page 2 (own media box, 300x400): a heading and a ruled 2x2 table
func samplePDF() []byte {
	b := &pdfBuilder{}
	catalog := b.add("")
	pages := b.add("")
	font := b.add(helvetica())
	img := b.add(stream("/Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8", "\xff"))

	content1 := b.add(stream("", strings.Join([]string{
		"BT /F1 12 Tf 72 700 Td (Hello world) Tj ET",
		"BT /F1 12 Tf 72 686 Td (Second line) Tj ET",
		"q 200 0 0 100 72 400 cm /Im1 Do Q",
	}, "\n")))

	content2 := b.add(stream("", strings.Join([]string{
		"BT /F1 10 Tf 50 350 Td (Summary) Tj ET",
		"50 300 200 1 re f",
		"50 280 200 1 re f",
		"50 260 200 1 re f",
		"50 260 1 41 re f",
		"150 260 1 41 re f",
		"250 260 1 41 re f",
		"BT /F1 10 Tf 55 285 Td (Name) Tj ET",
		"BT /F1 10 Tf 155 285 Td (Age) Tj ET",
		"BT /F1 10 Tf 55 265 Td (Bob) Tj ET",
		"BT /F1 10 Tf 155 265 Td (42) Tj ET",
	}, "\n")))

	resources := fmt.Sprintf("<< /Font << /F1 %d 0 R >> /XObject << /Im1 %d 0 R >> >>", font, img)
	page1 := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Resources %s /Contents %d 0 R >>", pages, resources, content1))
	page2 := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 300 400] /Resources %s /Contents %d 0 R >>", pages, resources, content2))

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
	b.set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R %d 0 R] /Count 2 /MediaBox [0 0 612 792] >>", page1, page2))
	return b.bytes(catalog)
}

// formPDF builds a one-page document whose image is painted inside a
// translated form XObject
func formPDF() []byte {
	b := &pdfBuilder{}
	catalog := b.add("")
	pages := b.add("")
	img := b.add(stream("/Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8", "\xff"))
	form := b.add(stream(
		fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 100 100] /Matrix [1 0 0 1 10 20] /Resources << /XObject << /Pic %d 0 R >> >>", img),
		"q 50 0 0 40 0 0 cm /Pic Do Q"))
	content := b.add(stream("", "q 1 0 0 1 100 100 cm /Fm1 Do Q"))
	page := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 200 300] /Resources << /XObject << /Fm1 %d 0 R >> >> /Contents %d 0 R >>", pages, form, content))

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
	b.set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page))
	return b.bytes(catalog)
}

// brokenPDF builds a one-page 200x300 document whose content stream has a
// rectangle operator with too few operands
func brokenPDF() []byte {
	b := &pdfBuilder{}
	catalog := b.add("")
	pages := b.add("")
	content := b.add(stream("", "10 20 re f"))
	page := b.add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 200 300] /Resources << >> /Contents %d 0 R >>", pages, content))

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
	b.set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page))
	return b.bytes(catalog)
}
