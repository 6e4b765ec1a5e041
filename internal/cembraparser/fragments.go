package cembraparser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Fragment is one child element of a page. Text holds the element's direct
// text when it has exactly one direct text span; otherwise Valid is false
// and the fragment is an empty slot.
type Fragment struct {
	Name  string
	Text  string
	Valid bool
}

// Page is one child element of the document root, with its fragments in
// document order. Number is the page's "number" attribute when it holds a
// positive integer, otherwise the page's 1-based position in the document.
type Page struct {
	Number    int
	Fragments []Fragment
}

// ShapeError reports XML that parses but does not have the root/page/fragment
// layout, or XML that does not parse at all.
type ShapeError struct {
	Page   int
	Offset int64
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("page %d (offset %d): %v", e.Page, e.Offset, e.Err)
	}
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// Location formats the fault position for error reports.
func (e *ShapeError) Location() string {
	if e.Page > 0 {
		return "page " + strconv.Itoa(e.Page)
	}
	return "offset " + strconv.FormatInt(e.Offset, 10)
}

var (
	errNoRoot        = errors.New("document has no root element")
	errMultipleRoots = errors.New("document has more than one root element")
	errStrayText     = errors.New("unexpected character data")
)

// fragmentState collects the direct text runs of the fragment being read.
// A run is the character data between two element boundaries; only runs
// with non-whitespace content count as spans.
type fragmentState struct {
	name  string
	run   []byte
	text  string
	spans int
}

func (f *fragmentState) boundary() {
	if len(bytes.TrimSpace(f.run)) > 0 {
		f.spans++
		f.text = string(f.run)
	}
	f.run = f.run[:0]
}

func (f *fragmentState) fragment() Fragment {
	f.boundary()
	if f.spans != 1 {
		return Fragment{Name: f.name}
	}
	return Fragment{Name: f.name, Text: f.text, Valid: true}
}

// DecodePages reads a pdf2xml-style document: a root element whose child
// elements are pages, whose child elements are text fragments. Comments,
// processing instructions and directives are ignored. Non-whitespace text
// directly under the root or a page is a ShapeError.
func DecodePages(r io.Reader) ([]Page, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		pages    []Page
		depth    int
		rootSeen bool
		current  *Page
		frag     *fragmentState
	)

	shapeErr := func(err error) error {
		page := 0
		if current != nil {
			page = current.Number
		}
		return &ShapeError{Page: page, Offset: dec.InputOffset(), Err: err}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, shapeErr(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch depth {
			case 0:
				if rootSeen {
					return nil, shapeErr(errMultipleRoots)
				}
				rootSeen = true
			case 1:
				pages = append(pages, Page{Number: pageNumber(t, len(pages)+1)})
				current = &pages[len(pages)-1]
			case 2:
				frag = &fragmentState{name: t.Name.Local}
			case 3:
				frag.boundary()
			}
			depth++

		case xml.EndElement:
			depth--
			switch depth {
			case 1:
				current = nil
			case 2:
				current.Fragments = append(current.Fragments, frag.fragment())
				frag = nil
			case 3:
				frag.boundary()
			}

		case xml.CharData:
			switch depth {
			case 0, 1, 2:
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, shapeErr(fmt.Errorf("%w %q", errStrayText, string(bytes.TrimSpace(t))))
				}
			case 3:
				frag.run = append(frag.run, t...)
			}
		}
	}

	if !rootSeen {
		return nil, &ShapeError{Offset: dec.InputOffset(), Err: errNoRoot}
	}
	return pages, nil
}

// pageNumber keeps the source PDF numbering pdftohtml writes on each page,
// so a statement converted from page 2 onwards reports page 2 first.
func pageNumber(el xml.StartElement, position int) int {
	for _, attr := range el.Attr {
		if attr.Name.Local != "number" {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(attr.Value)); err == nil && n > 0 {
			return n
		}
	}
	return position
}
