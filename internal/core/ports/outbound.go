package ports

import (
	"context"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// DocumentIntelligence is the AI extraction collaborator. It is a black
// box: it owns no chunking or merge logic.
type DocumentIntelligence interface {
	// Summarize produces a free-text summary of one document or chunk.
	Summarize(ctx context.Context, content domain.Content) (string, error)
	// ExtractFields maps a merged summary to a flat field map.
	ExtractFields(ctx context.Context, summaryText string) (map[string]string, error)
}

// DocumentSplitter knows the physical page structure of a document.
type DocumentSplitter interface {
	// PageCount returns the number of pages, or an error wrapping
	// domain.ErrMalformedDocument when the format is unparseable.
	PageCount(doc domain.Document) (int, error)
	// Slice extracts the content of one page chunk.
	Slice(doc domain.Document, chunk domain.PageChunk) (domain.Content, error)
}

// StorageGateway is the remote, user-managed file hierarchy. Listing order
// is assumed stable within a single call only.
type StorageGateway interface {
	Root(ctx context.Context) (domain.FolderHandle, error)
	ListChildren(ctx context.Context, parentID string) ([]domain.FolderHandle, error)
	// CreateFolder wraps domain.ErrConflict when the name already exists,
	// so callers can re-list and adopt the winner of a creation race.
	CreateFolder(ctx context.Context, parentID, name string) (domain.FolderHandle, error)
	UploadFile(ctx context.Context, parentID, name string, data []byte) (string, error)
}

// GatewaySelector picks the storage gateway credential class for a document
// category. The mapping is configuration, not core logic.
type GatewaySelector interface {
	ForCategory(category domain.DocumentCategory) StorageGateway
}

// RecordStore persists filed document records.
type RecordStore interface {
	FindByOwner(ctx context.Context, ownerID string) ([]domain.DocumentRecord, error)
	Insert(ctx context.Context, rec *domain.DocumentRecord) error
}

// AbbreviationStore holds the user-managed name-to-code mappings.
// IncrementUsage must be a single store-level operation; concurrent
// ingestions may hit the same mapping.
type AbbreviationStore interface {
	Get(ctx context.Context, canonicalKey string) (*domain.AbbreviationMapping, error)
	IncrementUsage(ctx context.Context, canonicalKey string) error
}

// EventPublisher signals that a record has been filed. Best effort; a
// publish failure never fails the ingestion that produced the record.
type EventPublisher interface {
	PublishRecordFiled(ctx context.Context, recordID string) error
}
