package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
)

const defaultChunkWorkers = 4

// AnalyzeDocumentUseCase turns a scanned document of any size into one
// MergeReport and one ExtractedRecord. Oversized documents are summarized
// chunk by chunk; field extraction runs exactly once, over the merged
// summary, never inside the chunk loop.
type AnalyzeDocumentUseCase struct {
	splitter ports.DocumentSplitter
	intel    ports.DocumentIntelligence
	workers  int
}

func NewAnalyzeDocumentUseCase(
	splitter ports.DocumentSplitter,
	intel ports.DocumentIntelligence,
	workers int,
) *AnalyzeDocumentUseCase {
	if workers <= 0 {
		workers = defaultChunkWorkers
	}
	return &AnalyzeDocumentUseCase{
		splitter: splitter,
		intel:    intel,
		workers:  workers,
	}
}

func (uc *AnalyzeDocumentUseCase) Analyze(
	ctx context.Context,
	doc domain.Document,
	policy domain.ChunkPolicy,
) (domain.MergeReport, domain.ExtractedRecord, error) {
	policy = policy.Normalize()

	pages, err := uc.splitter.PageCount(doc)
	if err != nil {
		return domain.MergeReport{}, domain.ExtractedRecord{}, malformed("count pages", err)
	}
	if pages <= 0 {
		return domain.MergeReport{}, domain.ExtractedRecord{}, malformed("count pages", fmt.Errorf("document reports %d pages", pages))
	}

	var report domain.MergeReport
	if pages <= policy.SplitThreshold {
		report, err = uc.analyzeWhole(ctx, doc, pages)
	} else {
		report, err = uc.analyzeChunked(ctx, doc, pages, policy)
	}
	if err != nil {
		return report, domain.ExtractedRecord{}, err
	}

	fields, err := uc.intel.ExtractFields(ctx, report.MergedSummary)
	if err != nil {
		return report, domain.ExtractedRecord{}, domain.WrapError(domain.ErrAnalysisFailed, "extract fields", err)
	}

	return report, domain.RecordFromFields(fields), nil
}

func (uc *AnalyzeDocumentUseCase) analyzeWhole(ctx context.Context, doc domain.Document, pages int) (domain.MergeReport, error) {
	summary, err := uc.intel.Summarize(ctx, domain.Content{MimeType: doc.MimeType, Data: doc.Data})
	if err != nil {
		return domain.MergeReport{}, domain.WrapError(domain.ErrAnalysisFailed, "summarize document", err)
	}

	chunk := domain.PageChunk{Sequence: 1, FirstPage: 1, LastPage: pages}
	return domain.MergeReport{
		TotalPages:       pages,
		ChunkCount:       1,
		SuccessfulChunks: 1,
		MergedSummary:    summary,
		WasSplit:         false,
		Results:          []domain.ChunkResult{{Sequence: 1, Chunk: chunk, Summary: summary}},
	}, nil
}

func (uc *AnalyzeDocumentUseCase) analyzeChunked(
	ctx context.Context,
	doc domain.Document,
	pages int,
	policy domain.ChunkPolicy,
) (domain.MergeReport, error) {
	chunks := planChunks(pages, policy.ChunkPages)
	results := uc.summarizeChunks(ctx, doc, chunks)

	report := domain.MergeReport{
		TotalPages: pages,
		ChunkCount: len(chunks),
		WasSplit:   true,
		Results:    results,
	}

	// All chunks have been attempted by now; merge in sequence order so the
	// text follows page order no matter which call finished first.
	var merged strings.Builder
	for _, res := range results {
		if !res.Succeeded() {
			report.FailedChunks++
			continue
		}
		report.SuccessfulChunks++
		if merged.Len() > 0 {
			merged.WriteString("\n\n")
		}
		fmt.Fprintf(&merged, "[pages %d-%d]\n%s", res.Chunk.FirstPage, res.Chunk.LastPage, res.Summary)
	}

	if report.SuccessfulChunks == 0 {
		return report, domain.WrapError(domain.ErrAnalysisFailed, "summarize chunks",
			fmt.Errorf("all %d chunks failed, first error: %w", report.ChunkCount, firstChunkErr(results)))
	}

	report.MergedSummary = merged.String()
	return report, nil
}

// summarizeChunks fans the chunk calls out over a bounded pool and blocks
// until every chunk has either a summary or an error. A failed chunk is
// recorded, not fatal.
func (uc *AnalyzeDocumentUseCase) summarizeChunks(
	ctx context.Context,
	doc domain.Document,
	chunks []domain.PageChunk,
) []domain.ChunkResult {
	results := make([]domain.ChunkResult, len(chunks))

	var eg errgroup.Group
	eg.SetLimit(uc.workers)
	for i, chunk := range chunks {
		eg.Go(func() error {
			results[i] = uc.summarizeChunk(ctx, doc, chunk)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func (uc *AnalyzeDocumentUseCase) summarizeChunk(ctx context.Context, doc domain.Document, chunk domain.PageChunk) domain.ChunkResult {
	res := domain.ChunkResult{Sequence: chunk.Sequence, Chunk: chunk}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	content, err := uc.splitter.Slice(doc, chunk)
	if err != nil {
		res.Err = fmt.Errorf("slice pages %d-%d: %w", chunk.FirstPage, chunk.LastPage, err)
		return res
	}

	summary, err := uc.intel.Summarize(ctx, content)
	if err != nil {
		res.Err = fmt.Errorf("summarize pages %d-%d: %w", chunk.FirstPage, chunk.LastPage, err)
		return res
	}

	res.Summary = summary
	return res
}

// planChunks partitions [1..pages] into fixed-size, contiguous,
// non-overlapping ranges. The last chunk takes whatever remains.
func planChunks(pages, chunkPages int) []domain.PageChunk {
	chunks := make([]domain.PageChunk, 0, (pages+chunkPages-1)/chunkPages)
	for first := 1; first <= pages; first += chunkPages {
		last := first + chunkPages - 1
		if last > pages {
			last = pages
		}
		chunks = append(chunks, domain.PageChunk{
			Sequence:  len(chunks) + 1,
			FirstPage: first,
			LastPage:  last,
		})
	}
	return chunks
}

func firstChunkErr(results []domain.ChunkResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return errors.New("no chunk results")
}

func malformed(operation string, err error) error {
	if domain.IsKind(err, domain.ErrMalformedDocument) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return domain.WrapError(domain.ErrMalformedDocument, operation, err)
}
