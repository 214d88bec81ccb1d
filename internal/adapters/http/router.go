package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
	"github.com/kirillkom/fleetdocs/internal/observability/metrics"
)

// Options tunes the inbound traffic gates in front of the ingestion
// pipeline.
type Options struct {
	Service             string
	MaxUploadBytes      int64
	RateLimitPerSecond  float64
	RateLimitBurst      int
	MaxConcurrentIngest int
}

func (o Options) normalize() Options {
	if o.Service == "" {
		o.Service = "fleetdocs-api"
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 64 << 20
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 10
	}
	if o.MaxConcurrentIngest <= 0 {
		o.MaxConcurrentIngest = 8
	}
	return o
}

type Router struct {
	filer   ports.DocumentFiler
	metrics *metrics.HTTPServerMetrics
	opts    Options
}

func NewRouter(filer ports.DocumentFiler, m *metrics.HTTPServerMetrics, opts Options) *Router {
	return &Router{
		filer:   filer,
		metrics: m,
		opts:    opts.normalize(),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ingestions", rt.ingestDocument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxConcurrentIngest, 50*time.Millisecond)
	if rt.opts.RateLimitPerSecond > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitPerSecond, rt.opts.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.opts.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ingestDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read uploaded file: " + err.Error()})
		return
	}

	ownerID := strings.TrimSpace(r.FormValue("owner_id"))
	ownerName := strings.TrimSpace(r.FormValue("owner_name"))
	if ownerID == "" || ownerName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "owner_id and owner_name are required"})
		return
	}
	category, ok := domain.ParseCategory(strings.TrimSpace(r.FormValue("category")))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown document category"})
		return
	}

	req := domain.IngestRequest{
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Category:  category,
		Filename:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		Data:      data,
		Received:  time.Now().UTC(),
	}

	start := time.Now()
	if rt.metrics != nil {
		rt.metrics.IngestionStarted()
	}

	result, err := rt.filer.Ingest(r.Context(), req)

	if rt.metrics != nil {
		outcome := "done"
		if err != nil {
			outcome = outcomeOf(err)
		}
		rt.metrics.IngestionFinished(rt.opts.Service, string(category), outcome, time.Since(start))
		if err == nil {
			rt.metrics.RecordAnalysis(rt.opts.Service, string(category), result.Report.ChunkCount, result.Report.FailedChunks)
		}
		if domain.IsKind(err, domain.ErrDuplicateDetected) {
			rt.metrics.RecordDuplicate(rt.opts.Service, string(category))
		}
	}

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func outcomeOf(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrDuplicateDetected):
		return "duplicate"
	case domain.IsKind(err, domain.ErrDestinationNotFound):
		return "destination_not_found"
	case domain.IsKind(err, domain.ErrMalformedDocument):
		return "malformed"
	case domain.IsKind(err, domain.ErrAnalysisFailed):
		return "analysis_failed"
	case domain.IsKind(err, domain.ErrUploadPartial):
		return "upload_partial"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	body := map[string]any{"error": err.Error()}

	var dup *domain.DuplicateError
	if errors.As(err, &dup) && dup.Matched != nil {
		body["conflicting_record"] = dup.Matched
	}
	var dest *domain.DestinationNotFoundError
	if errors.As(err, &dest) {
		body["missing_segment"] = dest.Segment
		body["path"] = strings.Join(dest.Path, "/")
	}
	var partial *domain.UploadPartialError
	if errors.As(err, &partial) {
		body["original"] = partial.Original
		body["summary"] = partial.Summary
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
