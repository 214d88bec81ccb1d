package domain

import "time"

type DocumentCategory string

const (
	CategoryCertificate  DocumentCategory = "certificate"
	CategoryPassport     DocumentCategory = "passport"
	CategorySurveyReport DocumentCategory = "survey_report"
	CategoryAuditReport  DocumentCategory = "audit_report"
)

func ParseCategory(s string) (DocumentCategory, bool) {
	switch DocumentCategory(s) {
	case CategoryCertificate, CategoryPassport, CategorySurveyReport, CategoryAuditReport:
		return DocumentCategory(s), true
	default:
		return "", false
	}
}

// Document is the raw upload. It lives for the duration of one ingestion
// request and is never persisted as-is.
type Document struct {
	Filename string
	MimeType string
	Data     []byte
}

// Content is a payload handed to the AI collaborator: either a byte slice
// of the original format or extracted plain text.
type Content struct {
	MimeType string
	Data     []byte
}

// PageChunk is a contiguous, non-overlapping page range of an oversized
// document. FirstPage and LastPage are 1-based and inclusive.
type PageChunk struct {
	Sequence  int
	FirstPage int
	LastPage  int
}

func (c PageChunk) Pages() int {
	return c.LastPage - c.FirstPage + 1
}

// ChunkResult records the outcome of analyzing one PageChunk. Exactly one
// of Summary or Err is meaningful.
type ChunkResult struct {
	Sequence int
	Chunk    PageChunk
	Summary  string
	Err      error
}

func (r ChunkResult) Succeeded() bool {
	return r.Err == nil
}

// MergeReport is the fully assembled outcome of chunked analysis. It is the
// sole input to field extraction and must account for every chunk, failed
// ones included, before extraction runs.
type MergeReport struct {
	TotalPages       int           `json:"total_pages"`
	ChunkCount       int           `json:"chunk_count"`
	SuccessfulChunks int           `json:"successful_chunks"`
	FailedChunks     int           `json:"failed_chunks"`
	MergedSummary    string        `json:"-"`
	WasSplit         bool          `json:"was_split"`
	Results          []ChunkResult `json:"-"`
}

// ChunkPolicy carries the observed split constants. They are policy, not
// format-derived, so they stay configurable per document category.
type ChunkPolicy struct {
	// SplitThreshold is the page count above which a document is chunked.
	SplitThreshold int
	// ChunkPages is the fixed chunk size; the last chunk may be shorter.
	ChunkPages int
}

func (p ChunkPolicy) Normalize() ChunkPolicy {
	out := p
	if out.SplitThreshold <= 0 {
		out.SplitThreshold = 15
	}
	if out.ChunkPages <= 0 {
		out.ChunkPages = 12
	}
	return out
}

type IngestionState string

const (
	StateReceived      IngestionState = "received"
	StateAnalyzing     IngestionState = "analyzing"
	StateDeduplicating IngestionState = "deduplicating"
	StateResolving     IngestionState = "resolving"
	StateUploading     IngestionState = "uploading"
	StatePersisting    IngestionState = "persisting"
	StateDone          IngestionState = "done"
	StateFailed        IngestionState = "failed"
)

// ArtifactOutcome tracks one of the two stored artifacts independently, so
// "original uploaded, summary missing" stays distinguishable from total
// upload failure.
type ArtifactOutcome struct {
	Name   string `json:"name"`
	FileID string `json:"file_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (a ArtifactOutcome) Uploaded() bool {
	return a.FileID != ""
}

// IngestionResult is what the entry point returns on success. Upload
// failures that did not block persistence stay visible in Original/Summary.
type IngestionResult struct {
	State    IngestionState  `json:"state"`
	Record   *DocumentRecord `json:"record"`
	Report   MergeReport     `json:"report"`
	Folder   FolderHandle    `json:"folder"`
	Original ArtifactOutcome `json:"original"`
	Summary  ArtifactOutcome `json:"summary"`
}

type IngestRequest struct {
	OwnerID   string
	OwnerName string
	Category  DocumentCategory
	Filename  string
	MimeType  string
	Data      []byte
	Received  time.Time
}
