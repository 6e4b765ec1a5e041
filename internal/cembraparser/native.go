package cembraparser

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strings"

	"fjacquet/beancount-import/internal/logging"

	"github.com/ledongthuc/pdf"
)

// defaultPageHeight is A4 in points, used when a page has no MediaBox.
const defaultPageHeight = 842.0

// NativeExtractor implements PDFExtractor in-process with ledongthuc/pdf.
// Glyphs are grouped into rows by baseline and split into fragments at
// horizontal gaps wider than one em, approximating pdftohtml's output.
type NativeExtractor struct {
	FirstPage int
	logger    logging.Logger
}

// NewNativeExtractor creates a NativeExtractor starting at firstPage.
func NewNativeExtractor(firstPage int, logger logging.Logger) *NativeExtractor {
	if firstPage <= 0 {
		firstPage = DefaultFirstPage
	}
	return &NativeExtractor{FirstPage: firstPage, logger: logger}
}

type pdf2xmlDocument struct {
	XMLName xml.Name      `xml:"pdf2xml"`
	Pages   []pdf2xmlPage `xml:"page"`
}

type pdf2xmlPage struct {
	Number int           `xml:"number,attr"`
	Texts  []pdf2xmlText `xml:"text"`
}

type pdf2xmlText struct {
	Top   int    `xml:"top,attr"`
	Left  int    `xml:"left,attr"`
	Width int    `xml:"width,attr"`
	Value string `xml:",chardata"`
}

// ExtractXML reads the PDF and renders its pages as a pdf2xml document.
func (e *NativeExtractor) ExtractXML(ctx context.Context, pdfPath string) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	doc := pdf2xmlDocument{}
	for i := e.FirstPage; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts := layoutFragments(page.Content().Text, pageHeight(page))
		doc.Pages = append(doc.Pages, pdf2xmlPage{Number: i, Texts: texts})
		if e.logger != nil {
			e.logger.Debug("Extracted page fragments",
				logging.Field{Key: logging.FieldPage, Value: i},
				logging.Field{Key: logging.FieldCount, Value: len(texts)})
		}
	}

	body, err := xml.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, fmt.Errorf("error encoding pdf2xml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func pageHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return defaultPageHeight
	}
	return box.Index(3).Float64() - box.Index(1).Float64()
}

// layoutFragments groups glyphs into rows (top of page first) and splits
// each row into fragments, in reading order.
func layoutFragments(glyphs []pdf.Text, height float64) []pdf2xmlText {
	rows := make(map[int][]pdf.Text)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		y := int(math.Round(g.Y))
		rows[y] = append(rows[y], g)
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var out []pdf2xmlText
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(a, b int) bool { return row[a].X < row[b].X })

		var (
			b     strings.Builder
			left  float64
			right float64
		)
		flush := func() {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, pdf2xmlText{
					Top:   int(math.Round(height - float64(y))),
					Left:  int(math.Round(left)),
					Width: int(math.Round(right - left)),
					Value: s,
				})
			}
			b.Reset()
		}
		for i, g := range row {
			em := g.FontSize
			if em < 1 {
				em = 1
			}
			if i > 0 && g.X-right > em {
				flush()
			}
			if b.Len() == 0 {
				left = g.X
			}
			b.WriteString(g.S)
			right = g.X + g.W
		}
		flush()
	}
	return out
}
