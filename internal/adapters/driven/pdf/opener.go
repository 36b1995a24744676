// Package pdf extracts ERP export tables from PDF files.
//
// pdfcpu checks that a file is readable and counts its pages before any
// decoding starts; ledongthuc/pdf then extracts the text of one page at a
// time, grouped into a header and data rows by position.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/logger"
)

// Ensure Opener implements the interface.
var _ driven.PDFOpener = (*Opener)(nil)

// Opener opens ERP exports.
type Opener struct {
	conf *model.Configuration
}

// NewOpener creates an opener. Validation is relaxed: ERP exports often
// carry minor structural defects that do not affect their text.
func NewOpener() *Opener {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Opener{conf: conf}
}

// Open validates the file and returns a lazy page source.
func (o *Opener) Open(ctx context.Context, path string) (driven.PageSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := o.pageCount(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDecode, path, err)
	}

	file, reader, err := openReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDecode, path, err)
	}

	if n := reader.NumPage(); n != pages {
		logger.For("pdf").Warn("%s: page count mismatch (pdfcpu %d, reader %d)", path, pages, n)
		pages = min(pages, n)
	}

	return &Source{file: file, reader: reader, pages: pages, path: path}, nil
}

func (o *Opener) pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return api.PageCount(f, o.conf)
}

// openReader wraps pdf.Open, which panics on some malformed trailers.
func openReader(path string) (file *os.File, reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			if file != nil {
				file.Close()
			}
			file, reader, err = nil, nil, fmt.Errorf("malformed file: %v", r)
		}
	}()
	return pdf.Open(path)
}

// Source is a driven.PageSource over one open PDF.
type Source struct {
	file   *os.File
	reader *pdf.Reader
	pages  int
	path   string
}

// NumPages returns the number of pages in the export.
func (s *Source) NumPages() int {
	return s.pages
}

// Page extracts the table on a zero-based page.
func (s *Source) Page(ctx context.Context, index int) (table *domain.Table, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= s.pages {
		return nil, fmt.Errorf("%w: page %d out of range (%d pages)", domain.ErrDecode, index+1, s.pages)
	}

	defer func() {
		if r := recover(); r != nil {
			table, err = nil, fmt.Errorf("%w: %s page %d: %v", domain.ErrDecode, s.path, index+1, r)
		}
	}()

	p := s.reader.Page(index + 1)
	if p.V.IsNull() {
		return nil, nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("%w: %s page %d: %v", domain.ErrDecode, s.path, index+1, err)
	}
	return buildTable(rows), nil
}

// Close releases the file.
func (s *Source) Close() error {
	return s.file.Close()
}
