package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

type analyzerFake struct {
	report    domain.MergeReport
	extracted domain.ExtractedRecord
	err       error
	calls     int
}

func (f *analyzerFake) Analyze(context.Context, domain.Document, domain.ChunkPolicy) (domain.MergeReport, domain.ExtractedRecord, error) {
	f.calls++
	if f.err != nil {
		return domain.MergeReport{}, domain.ExtractedRecord{}, f.err
	}
	return f.report, f.extracted, nil
}

type recordStoreFake struct {
	existing  []domain.DocumentRecord
	findErr   error
	insertErr error
	inserted  []*domain.DocumentRecord
}

func (f *recordStoreFake) FindByOwner(context.Context, string) ([]domain.DocumentRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.existing, nil
}

func (f *recordStoreFake) Insert(_ context.Context, rec *domain.DocumentRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

type eventsFake struct {
	published []string
	err       error
}

func (f *eventsFake) PublishRecordFiled(_ context.Context, recordID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordID)
	return nil
}

func testRoutes() domain.RouteTable {
	return domain.RouteTable{
		domain.CategoryCertificate: {
			PathSegments:  []string{"Ships", "{owner}", "Certificates"},
			CreateMissing: true,
			Chunk:         domain.ChunkPolicy{SplitThreshold: 15, ChunkPages: 12},
		},
		domain.CategoryPassport: {
			PathSegments:  []string{"Crew", "{owner}", "Passports"},
			CreateMissing: false,
			Chunk:         domain.ChunkPolicy{SplitThreshold: 15, ChunkPages: 12},
		},
	}
}

func analyzedRecord() domain.ExtractedRecord {
	return domain.ExtractedRecord{
		CanonicalName:   "Safety Management Certificate",
		DocumentNumber:  "SMC-2024-0042",
		IssueDate:       "2024-05-01",
		ValidDate:       "2029-05-01",
		LastEndorsement: "2025-04-12",
	}
}

type ingestFixture struct {
	analyzer *analyzerFake
	records  *recordStoreFake
	events   *eventsFake
	gateway  *gatewayFake
	abbrevs  *abbrevStoreFake
	policy   IngestPolicy
}

func (fx *ingestFixture) build() *IngestDocumentUseCase {
	selector := staticSelector{fx.gateway}
	return NewIngestDocumentUseCase(
		fx.analyzer,
		NewDuplicateGuard(),
		NewAbbreviationResolver(fx.abbrevs),
		NewFolderResolver(selector),
		selector,
		fx.records,
		fx.events,
		testRoutes(),
		fx.policy,
	)
}

func newIngestFixture() *ingestFixture {
	gw := newGatewayFake()
	gw.children["root"] = []domain.FolderHandle{{ID: "f-ships", Name: "Ships", ParentID: "root"}}
	return &ingestFixture{
		analyzer: &analyzerFake{
			report: domain.MergeReport{
				TotalPages:       10,
				ChunkCount:       1,
				SuccessfulChunks: 1,
				MergedSummary:    "a ten page certificate",
			},
			extracted: analyzedRecord(),
		},
		records: &recordStoreFake{},
		events:  &eventsFake{},
		gateway: gw,
		abbrevs: &abbrevStoreFake{},
	}
}

func certRequest() domain.IngestRequest {
	return domain.IngestRequest{
		OwnerID:   "ship-7",
		OwnerName: "MV Aurora",
		Category:  domain.CategoryCertificate,
		Filename:  "scan0042.pdf",
		MimeType:  "application/pdf",
		Data:      []byte("%PDF-1.7"),
	}
}

func TestIngestHappyPathPersistsRecordAndBothArtifacts(t *testing.T) {
	fx := newIngestFixture()
	uc := fx.build()

	res, err := uc.Ingest(context.Background(), certRequest())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.State != domain.StateDone {
		t.Fatalf("expected done state, got %s", res.State)
	}
	if !res.Original.Uploaded() || !res.Summary.Uploaded() {
		t.Fatalf("expected both artifacts uploaded: %+v / %+v", res.Original, res.Summary)
	}
	if res.Original.FileID == res.Summary.FileID {
		t.Fatalf("artifact file ids must be distinct")
	}

	if len(fx.records.inserted) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(fx.records.inserted))
	}
	rec := fx.records.inserted[0]
	if rec.OriginalFileID == "" || rec.SummaryFileID == "" {
		t.Fatalf("record missing file ids: %+v", rec)
	}
	if rec.Abbreviation != "SMC" {
		t.Fatalf("expected generated abbreviation SMC, got %q", rec.Abbreviation)
	}

	wantName := "MV_Aurora_certificate_SMC_2024-05-01"
	if !strings.HasPrefix(res.Original.Name, wantName) || !strings.HasSuffix(res.Original.Name, ".pdf") {
		t.Fatalf("unexpected original filename %q", res.Original.Name)
	}
	if !strings.HasPrefix(res.Summary.Name, wantName) || !strings.HasSuffix(res.Summary.Name, "_summary.txt") {
		t.Fatalf("unexpected summary filename %q", res.Summary.Name)
	}

	// Missing segments under Ships were auto-created.
	if len(fx.gateway.createdIn) != 2 {
		t.Fatalf("expected MV Aurora and Certificates folders created, got %v", fx.gateway.createdIn)
	}
	if len(fx.events.published) != 1 || fx.events.published[0] != rec.ID {
		t.Fatalf("expected filed event for %s, got %v", rec.ID, fx.events.published)
	}
}

func TestIngestDuplicateShortCircuitsBeforeAnySideEffect(t *testing.T) {
	fx := newIngestFixture()
	fx.records.existing = []domain.DocumentRecord{{
		ID:              "rec-old",
		CanonicalName:   "safety management certificate",
		DocumentNumber:  "smc-2024-0042",
		IssueDate:       "01.05.2024",
		ValidDate:       "01.05.2029",
		LastEndorsement: "12.04.2025",
	}}
	uc := fx.build()

	_, err := uc.Ingest(context.Background(), certRequest())
	if !domain.IsKind(err, domain.ErrDuplicateDetected) {
		t.Fatalf("expected ErrDuplicateDetected, got %v", err)
	}

	var dup *domain.DuplicateError
	if !errors.As(err, &dup) || dup.Matched == nil || dup.Matched.ID != "rec-old" {
		t.Fatalf("expected conflicting record attached, got %v", err)
	}
	if len(fx.records.inserted) != 0 {
		t.Fatalf("duplicate must not persist a record")
	}
	if len(fx.gateway.uploads) != 0 || len(fx.gateway.createdIn) != 0 {
		t.Fatalf("duplicate must not touch storage: uploads=%v created=%v", fx.gateway.uploads, fx.gateway.createdIn)
	}
}

func TestIngestRenewedCertificateIsNotADuplicate(t *testing.T) {
	fx := newIngestFixture()
	existing := domain.DocumentRecord{
		ID:              "rec-old",
		CanonicalName:   "Safety Management Certificate",
		DocumentNumber:  "SMC-2024-0042",
		IssueDate:       "2024-05-01",
		ValidDate:       "2029-05-01",
		LastEndorsement: "2024-04-12", // earlier endorsement
	}
	fx.records.existing = []domain.DocumentRecord{existing}
	uc := fx.build()

	if _, err := uc.Ingest(context.Background(), certRequest()); err != nil {
		t.Fatalf("renewed certificate must file as a new record, got %v", err)
	}
}

func TestIngestDestinationNotFoundWhenCreationDisallowed(t *testing.T) {
	fx := newIngestFixture()
	uc := fx.build()

	req := certRequest()
	req.Category = domain.CategoryPassport
	req.OwnerName = "A. Mariner"

	_, err := uc.Ingest(context.Background(), req)
	if !domain.IsKind(err, domain.ErrDestinationNotFound) {
		t.Fatalf("expected ErrDestinationNotFound, got %v", err)
	}
	var notFound *domain.DestinationNotFoundError
	if !errors.As(err, &notFound) || notFound.Segment != "Crew" {
		t.Fatalf("expected missing segment Crew, got %v", err)
	}
	if len(fx.records.inserted) != 0 {
		t.Fatalf("must not persist after destination failure")
	}
}

func TestIngestPartialUploadStillPersistsByDefault(t *testing.T) {
	fx := newIngestFixture()
	fx.gateway.uploadErrIn = "_summary"
	uc := fx.build()

	res, err := uc.Ingest(context.Background(), certRequest())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !res.Original.Uploaded() || res.Summary.Uploaded() {
		t.Fatalf("expected original-only upload, got %+v / %+v", res.Original, res.Summary)
	}
	if res.Summary.Error == "" {
		t.Fatalf("summary failure must be recorded, not hidden")
	}

	if len(fx.records.inserted) != 1 {
		t.Fatalf("record must persist with the file ids actually obtained")
	}
	rec := fx.records.inserted[0]
	if rec.OriginalFileID == "" || rec.SummaryFileID != "" {
		t.Fatalf("unexpected file ids: %+v", rec)
	}
}

func TestIngestPartialUploadBlocksPersistenceUnderStrictPolicy(t *testing.T) {
	fx := newIngestFixture()
	fx.gateway.uploadErrIn = "_summary"
	fx.policy = IngestPolicy{BlockOnPartialUpload: true}
	uc := fx.build()

	_, err := uc.Ingest(context.Background(), certRequest())
	if !domain.IsKind(err, domain.ErrUploadPartial) {
		t.Fatalf("expected ErrUploadPartial, got %v", err)
	}
	var partial *domain.UploadPartialError
	if !errors.As(err, &partial) || !partial.Original.Uploaded() || partial.Summary.Uploaded() {
		t.Fatalf("expected per-artifact detail on partial upload, got %v", err)
	}
	if len(fx.records.inserted) != 0 {
		t.Fatalf("strict policy must not persist on partial upload")
	}
}

func TestIngestEmptyExtractionFailsAnalysis(t *testing.T) {
	fx := newIngestFixture()
	fx.analyzer.extracted = domain.ExtractedRecord{}
	uc := fx.build()

	_, err := uc.Ingest(context.Background(), certRequest())
	if !domain.IsKind(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed for empty extraction, got %v", err)
	}
}

func TestIngestValidatesInput(t *testing.T) {
	uc := newIngestFixture().build()

	empty := certRequest()
	empty.Data = nil
	if _, err := uc.Ingest(context.Background(), empty); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty body, got %v", err)
	}

	unrouted := certRequest()
	unrouted.Category = domain.CategorySurveyReport
	if _, err := uc.Ingest(context.Background(), unrouted); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unrouted category, got %v", err)
	}
}

func TestIngestPersistenceFailure(t *testing.T) {
	fx := newIngestFixture()
	fx.records.insertErr = errors.New("connection reset")
	uc := fx.build()

	_, err := uc.Ingest(context.Background(), certRequest())
	if !domain.IsKind(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
}

func TestIngestPublishFailureDoesNotFailIngestion(t *testing.T) {
	fx := newIngestFixture()
	fx.events.err = errors.New("broker unavailable")
	uc := fx.build()

	res, err := uc.Ingest(context.Background(), certRequest())
	if err != nil {
		t.Fatalf("publish failure must not fail ingestion, got %v", err)
	}
	if res.State != domain.StateDone {
		t.Fatalf("expected done state, got %s", res.State)
	}
}
