// Package pagesplit knows the physical page structure of the supported
// document formats. It implements ports.DocumentSplitter.
package pagesplit

import (
	"fmt"
	"mime"
	"strings"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeText = "text/plain"
)

type formatSplitter interface {
	pageCount(doc domain.Document) (int, error)
	slice(doc domain.Document, chunk domain.PageChunk) (domain.Content, error)
}

// Splitter dispatches on the document MIME type.
type Splitter struct {
	formats map[string]formatSplitter
}

func New() *Splitter {
	return &Splitter{
		formats: map[string]formatSplitter{
			mimePDF:  newPDFSplitter(),
			mimeXLSX: &xlsxSplitter{},
			mimeText: &plainSplitter{},
		},
	}
}

func (s *Splitter) PageCount(doc domain.Document) (int, error) {
	format, err := s.formatFor(doc)
	if err != nil {
		return 0, err
	}
	return format.pageCount(doc)
}

func (s *Splitter) Slice(doc domain.Document, chunk domain.PageChunk) (domain.Content, error) {
	format, err := s.formatFor(doc)
	if err != nil {
		return domain.Content{}, err
	}
	if chunk.FirstPage < 1 || chunk.LastPage < chunk.FirstPage {
		return domain.Content{}, fmt.Errorf("pagesplit: invalid chunk range %d-%d", chunk.FirstPage, chunk.LastPage)
	}
	return format.slice(doc, chunk)
}

func (s *Splitter) formatFor(doc domain.Document) (formatSplitter, error) {
	mimeType := normalizeMime(doc.MimeType)
	format, ok := s.formats[mimeType]
	if !ok {
		return nil, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.format",
			fmt.Errorf("unsupported mime type %q", doc.MimeType))
	}
	return format, nil
}

func normalizeMime(raw string) string {
	mimeType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mimeType
}

// plainSplitter treats a text document as a single page.
type plainSplitter struct{}

func (*plainSplitter) pageCount(doc domain.Document) (int, error) {
	if len(doc.Data) == 0 {
		return 0, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.text", fmt.Errorf("empty document"))
	}
	return 1, nil
}

func (*plainSplitter) slice(doc domain.Document, _ domain.PageChunk) (domain.Content, error) {
	return domain.Content{MimeType: mimeText, Data: doc.Data}, nil
}
