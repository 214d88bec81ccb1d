package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
)

// IngestPolicy holds the product trade-offs the orchestrator must not decide
// on its own.
type IngestPolicy struct {
	// BlockOnPartialUpload fails the ingestion when either artifact upload
	// fails. Off by default: losing already-extracted structured data is
	// worse than an incomplete file reference.
	BlockOnPartialUpload bool
}

// IngestDocumentUseCase drives the full state machine from upload to
// persisted record: Received, Analyzing, Deduplicating, Resolving,
// Uploading, Persisting, Done.
type IngestDocumentUseCase struct {
	analyzer ports.DocumentAnalyzer
	guard    *DuplicateGuard
	abbrevs  *AbbreviationResolver
	folders  *FolderResolver
	gateways ports.GatewaySelector
	records  ports.RecordStore
	events   ports.EventPublisher
	routes   domain.RouteTable
	policy   IngestPolicy
}

func NewIngestDocumentUseCase(
	analyzer ports.DocumentAnalyzer,
	guard *DuplicateGuard,
	abbrevs *AbbreviationResolver,
	folders *FolderResolver,
	gateways ports.GatewaySelector,
	records ports.RecordStore,
	events ports.EventPublisher,
	routes domain.RouteTable,
	policy IngestPolicy,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		analyzer: analyzer,
		guard:    guard,
		abbrevs:  abbrevs,
		folders:  folders,
		gateways: gateways,
		records:  records,
		events:   events,
		routes:   routes,
		policy:   policy,
	}
}

func (uc *IngestDocumentUseCase) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestionResult, error) {
	route, err := uc.validate(req)
	if err != nil {
		return nil, err
	}

	// Analyzing
	doc := domain.Document{Filename: req.Filename, MimeType: req.MimeType, Data: req.Data}
	report, extracted, err := uc.analyzer.Analyze(ctx, doc, route.Chunk)
	if err != nil {
		return nil, err
	}
	if extracted.Empty() {
		return nil, domain.WrapError(domain.ErrAnalysisFailed, "field extraction",
			errors.New("extraction produced an empty record"))
	}

	// Deduplicating. Existing records are fetched once and read-only from
	// here on.
	existing, err := uc.records.FindByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("fetch existing records: %w", err)
	}
	if dup, matched := uc.guard.IsDuplicate(extracted, existing); dup {
		return nil, &domain.DuplicateError{Matched: matched}
	}

	// Resolving: short code first, then the destination folder.
	abbrev := uc.abbrevs.Resolve(ctx, extracted.CanonicalName, extracted.AbbreviationHint)
	folder, err := uc.folders.Resolve(ctx, req.Category, route.ExpandPath(req.OwnerName), route.CreateMissing)
	if err != nil {
		return nil, err
	}

	// Uploading: original and summary are independent; each outcome is
	// tracked on its own.
	base := buildFilename(req.OwnerName, req.Category, abbrev, extracted.IssueDate)
	gw := uc.gateways.ForCategory(req.Category)
	original, summary := uploadArtifacts(ctx, gw, folder.ID,
		artifact{name: base + extensionOf(req.Filename), data: req.Data},
		artifact{name: base + "_summary.txt", data: []byte(report.MergedSummary)},
	)
	if uc.policy.BlockOnPartialUpload && (!original.Uploaded() || !summary.Uploaded()) {
		return nil, &domain.UploadPartialError{Original: original, Summary: summary}
	}

	// Persisting: the record reflects whatever file ids were actually
	// obtained.
	rec := &domain.DocumentRecord{
		ID:              uuid.NewString(),
		OwnerID:         req.OwnerID,
		Category:        req.Category,
		CanonicalName:   extracted.CanonicalName,
		Abbreviation:    abbrev,
		DocumentNumber:  extracted.DocumentNumber,
		IssueDate:       extracted.IssueDate,
		ValidDate:       extracted.ValidDate,
		LastEndorsement: extracted.LastEndorsement,
		Summary:         report.MergedSummary,
		OriginalFileID:  original.FileID,
		SummaryFileID:   summary.FileID,
		FolderID:        folder.ID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := uc.records.Insert(ctx, rec); err != nil {
		return nil, domain.WrapError(domain.ErrPersistenceFailed, "insert record", err)
	}

	// Done. The filed event is a post-commit signal, never a reason to fail.
	if uc.events != nil {
		if err := uc.events.PublishRecordFiled(ctx, rec.ID); err != nil {
			slog.Warn("record_filed_publish_failed", "record_id", rec.ID, "error", err)
		}
	}

	return &domain.IngestionResult{
		State:    domain.StateDone,
		Record:   rec,
		Report:   report,
		Folder:   folder,
		Original: original,
		Summary:  summary,
	}, nil
}

func (uc *IngestDocumentUseCase) validate(req domain.IngestRequest) (domain.CategoryRoute, error) {
	if len(req.Data) == 0 {
		return domain.CategoryRoute{}, domain.WrapError(domain.ErrInvalidInput, "validate request", errors.New("empty document body"))
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return domain.CategoryRoute{}, domain.WrapError(domain.ErrInvalidInput, "validate request", errors.New("owner id is required"))
	}
	route, ok := uc.routes[req.Category]
	if !ok {
		return domain.CategoryRoute{}, domain.WrapError(domain.ErrInvalidInput, "validate request",
			fmt.Errorf("no filing route for category %q", req.Category))
	}
	return route, nil
}

type artifact struct {
	name string
	data []byte
}

func uploadArtifacts(ctx context.Context, gw ports.StorageGateway, folderID string, orig, summ artifact) (domain.ArtifactOutcome, domain.ArtifactOutcome) {
	outcomes := [2]domain.ArtifactOutcome{{Name: orig.name}, {Name: summ.name}}
	artifacts := [2]artifact{orig, summ}

	var wg sync.WaitGroup
	for i := range artifacts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gw.UploadFile(ctx, folderID, artifacts[i].name, artifacts[i].data)
			if err != nil {
				outcomes[i].Error = err.Error()
				return
			}
			outcomes[i].FileID = id
		}()
	}
	wg.Wait()

	return outcomes[0], outcomes[1]
}

// buildFilename produces {entity}_{doc_type}_{abbreviation}_{issue_date}.
// The abbreviation stands in for the canonical name, which is far too long
// for a filename.
func buildFilename(ownerName string, category domain.DocumentCategory, abbrev, issueDate string) string {
	date := strings.TrimSpace(issueDate)
	if parsed, ok := domain.ParseCivilDate(date); ok {
		date = parsed.Format("2006-01-02")
	}
	if date == "" {
		date = "undated"
	}
	parts := []string{ownerName, string(category), abbrev, date}
	return sanitizeFilename(strings.Join(parts, "_"))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document"
	}
	return base
}

func extensionOf(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ".bin"
	}
	return ext
}
