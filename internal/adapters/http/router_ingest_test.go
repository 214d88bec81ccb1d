package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

type filerFake struct {
	err    error
	result *domain.IngestionResult
	last   domain.IngestRequest
}

func (f *filerFake) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestionResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.IngestionResult{
		State: domain.StateDone,
		Record: &domain.DocumentRecord{
			ID:            "rec-1",
			OwnerID:       req.OwnerID,
			Category:      req.Category,
			CanonicalName: "Safety Management Certificate",
			CreatedAt:     time.Now().UTC(),
		},
		Report:   domain.MergeReport{TotalPages: 3, ChunkCount: 1, SuccessfulChunks: 1},
		Folder:   domain.FolderHandle{ID: "f-9", Name: "Certificates"},
		Original: domain.ArtifactOutcome{Name: "doc.pdf", FileID: "file-1"},
		Summary:  domain.ArtifactOutcome{Name: "doc_summary.txt", FileID: "file-2"},
	}, nil
}

func newIngestHandler(filer *filerFake) http.Handler {
	return NewRouter(filer, nil, Options{RateLimitPerSecond: 1000, RateLimitBurst: 1000}).Handler()
}

func ingestRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "scan0042.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.7 fake")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%s) error = %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/ingestions", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func certFields() map[string]string {
	return map[string]string{
		"owner_id":   "ship-7",
		"owner_name": "MV Aurora",
		"category":   "certificate",
	}
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newIngestHandler(&filerFake{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestIngestDocumentSuccess(t *testing.T) {
	filer := &filerFake{}
	handler := newIngestHandler(filer)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, ingestRequest(t, certFields()))

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["state"] != "done" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if filer.last.OwnerID != "ship-7" || filer.last.Category != domain.CategoryCertificate {
		t.Fatalf("unexpected request passed to filer: %+v", filer.last)
	}
	if filer.last.Filename != "scan0042.pdf" || len(filer.last.Data) == 0 {
		t.Fatalf("expected file payload in request: %+v", filer.last)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestIngestDocumentMissingMultipartField(t *testing.T) {
	handler := newIngestHandler(&filerFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/ingestions", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestIngestDocumentMissingOwner(t *testing.T) {
	handler := newIngestHandler(&filerFake{})

	fields := certFields()
	delete(fields, "owner_name")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, ingestRequest(t, fields))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestIngestDocumentUnknownCategory(t *testing.T) {
	handler := newIngestHandler(&filerFake{})

	fields := certFields()
	fields["category"] = "invoice"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, ingestRequest(t, fields))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestIngestDocumentMethodNotAllowed(t *testing.T) {
	handler := newIngestHandler(&filerFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/ingestions", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
