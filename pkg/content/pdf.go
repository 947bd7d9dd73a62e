// Package content reads page counts and page text out of downloaded PDFs.
package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var (
	errEmptyPDFPath   = errors.New("pdf path is empty")
	errPageOutOfRange = errors.New("page out of range")
	errNoPageContent  = errors.New("page has no content")
	errNoPagesInPDF   = errors.New("pdf has no pages")
	errBadContent     = errors.New("malformed page content")
)

// Operations reported in ToolError.
const (
	OpPageCount = "page count"
	OpPageText  = "page text"
)

// ToolError reports a failure of a PDF reading step for one file.
type ToolError struct {
	Op   string
	Path string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// PageCount returns the number of pages of the PDF at path, as recorded in
// its page tree.
func PageCount(path string) (int, error) {
	if path == "" {
		return 0, &ToolError{Op: OpPageCount, Path: path, Err: errEmptyPDFPath}
	}

	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, &ToolError{Op: OpPageCount, Path: path, Err: err}
	}
	return n, nil
}

// PageLines returns the text of a single page as lines, top to bottom.
// Pages are numbered from 1.
func PageLines(path string, page int) (lines []string, err error) {
	if path == "" {
		return nil, &ToolError{Op: OpPageText, Path: path, Err: errEmptyPDFPath}
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ToolError{Op: OpPageText, Path: path, Err: err}
	}
	defer file.Close()

	if page < 1 || page > reader.NumPage() {
		return nil, &ToolError{
			Op:   OpPageText,
			Path: path,
			Err:  fmt.Errorf("%w: %d of %d", errPageOutOfRange, page, reader.NumPage()),
		}
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return nil, &ToolError{Op: OpPageText, Path: path, Err: errNoPageContent}
	}

	// The content stream interpreter panics on malformed operators.
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = &ToolError{Op: OpPageText, Path: path, Err: fmt.Errorf("%w: %v", errBadContent, r)}
		}
	}()
	return textLines(p.Content().Text), nil
}

// PageText is PageLines joined with newlines.
func PageText(path string, page int) (string, error) {
	lines, err := PageLines(path, page)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// LastPage returns the page count of the PDF and the lines of its final page.
func LastPage(path string) (int, []string, error) {
	pages, err := PageCount(path)
	if err != nil {
		return 0, nil, err
	}
	if pages < 1 {
		return 0, nil, &ToolError{Op: OpPageCount, Path: path, Err: errNoPagesInPDF}
	}

	lines, err := PageLines(path, pages)
	if err != nil {
		return pages, nil, err
	}
	return pages, lines, nil
}

// Reader exposes the package functions behind an interface so callers can
// substitute them in tests.
type Reader interface {
	LastPage(path string) (int, []string, error)
}

// PDFReader implements Reader with PageCount and PageLines.
type PDFReader struct{}

// NewPDFReader creates a new PDF reader.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// LastPage implements Reader.
func (PDFReader) LastPage(path string) (int, []string, error) {
	return LastPage(path)
}
