package ports

import (
	"context"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// DocumentFiler is the inbound contract for the full ingestion state
// machine: analyze, deduplicate, name, file and persist one document.
type DocumentFiler interface {
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestionResult, error)
}

// DocumentAnalyzer is the inbound contract for chunked analysis on its own,
// without filing.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc domain.Document, policy domain.ChunkPolicy) (domain.MergeReport, domain.ExtractedRecord, error)
}
