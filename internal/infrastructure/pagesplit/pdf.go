package pagesplit

import (
	"bytes"
	"fmt"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// pdfSplitter counts pages with a strict parser and slices page ranges
// with pdfcpu in relaxed validation mode, since scanned documents are
// often produced by imperfect scanner firmware.
type pdfSplitter struct {
	conf *model.Configuration
}

func newPDFSplitter() *pdfSplitter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfSplitter{conf: conf}
}

func (s *pdfSplitter) pageCount(doc domain.Document) (int, error) {
	reader, err := ledongthuc.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return 0, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.pdf", fmt.Errorf("parse pdf: %w", err))
	}
	pages := reader.NumPage()
	if pages <= 0 {
		return 0, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.pdf", fmt.Errorf("pdf reports %d pages", pages))
	}
	return pages, nil
}

func (s *pdfSplitter) slice(doc domain.Document, chunk domain.PageChunk) (domain.Content, error) {
	selected := []string{fmt.Sprintf("%d-%d", chunk.FirstPage, chunk.LastPage)}

	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(doc.Data), &out, selected, s.conf); err != nil {
		return domain.Content{}, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.pdf",
			fmt.Errorf("trim pages %d-%d: %w", chunk.FirstPage, chunk.LastPage, err))
	}
	return domain.Content{MimeType: mimePDF, Data: out.Bytes()}, nil
}
