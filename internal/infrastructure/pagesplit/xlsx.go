package pagesplit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// xlsxSplitter treats each worksheet as one page and renders sliced
// sheets as tab-separated text for the AI collaborator.
type xlsxSplitter struct{}

func (*xlsxSplitter) pageCount(doc domain.Document) (int, error) {
	book, err := openWorkbook(doc)
	if err != nil {
		return 0, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return 0, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.xlsx", fmt.Errorf("workbook has no sheets"))
	}
	return len(sheets), nil
}

func (*xlsxSplitter) slice(doc domain.Document, chunk domain.PageChunk) (domain.Content, error) {
	book, err := openWorkbook(doc)
	if err != nil {
		return domain.Content{}, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if chunk.LastPage > len(sheets) {
		return domain.Content{}, fmt.Errorf("pagesplit: sheet range %d-%d exceeds %d sheets",
			chunk.FirstPage, chunk.LastPage, len(sheets))
	}

	var text strings.Builder
	for page := chunk.FirstPage; page <= chunk.LastPage; page++ {
		sheet := sheets[page-1]
		rows, err := book.GetRows(sheet)
		if err != nil {
			return domain.Content{}, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.xlsx",
				fmt.Errorf("read sheet %q: %w", sheet, err))
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		fmt.Fprintf(&text, "=== %s ===\n", sheet)
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteByte('\n')
		}
	}
	return domain.Content{MimeType: mimeText, Data: []byte(text.String())}, nil
}

func openWorkbook(doc domain.Document) (*excelize.File, error) {
	book, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, domain.WrapError(domain.ErrMalformedDocument, "pagesplit.xlsx", fmt.Errorf("parse workbook: %w", err))
	}
	return book, nil
}
