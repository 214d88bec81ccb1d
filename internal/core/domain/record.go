package domain

import (
	"strings"
	"time"
)

// Field names the AI collaborator is expected to populate. Anything else it
// returns is kept verbatim in ExtractedRecord.Fields.
const (
	FieldCanonicalName   = "canonical_name"
	FieldDocumentNumber  = "document_number"
	FieldIssueDate       = "issue_date"
	FieldValidDate       = "valid_date"
	FieldLastEndorsement = "last_endorsement"
	FieldAbbreviation    = "abbreviation"
)

// ExtractedRecord is the flat field map produced by exactly one extraction
// pass over a complete MergeReport.
type ExtractedRecord struct {
	CanonicalName    string            `json:"canonical_name"`
	DocumentNumber   string            `json:"document_number"`
	IssueDate        string            `json:"issue_date"`
	ValidDate        string            `json:"valid_date"`
	LastEndorsement  string            `json:"last_endorsement"`
	AbbreviationHint string            `json:"abbreviation_hint,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// RecordFromFields lifts the well-known keys out of a raw field map and
// keeps the remainder untouched.
func RecordFromFields(fields map[string]string) ExtractedRecord {
	rec := ExtractedRecord{Fields: map[string]string{}}
	for k, v := range fields {
		v = strings.TrimSpace(v)
		switch strings.ToLower(strings.TrimSpace(k)) {
		case FieldCanonicalName:
			rec.CanonicalName = v
		case FieldDocumentNumber:
			rec.DocumentNumber = v
		case FieldIssueDate:
			rec.IssueDate = v
		case FieldValidDate:
			rec.ValidDate = v
		case FieldLastEndorsement:
			rec.LastEndorsement = v
		case FieldAbbreviation:
			rec.AbbreviationHint = v
		default:
			rec.Fields[k] = v
		}
	}
	return rec
}

func (r ExtractedRecord) Empty() bool {
	return r.CanonicalName == "" &&
		r.DocumentNumber == "" &&
		r.IssueDate == "" &&
		r.ValidDate == "" &&
		r.LastEndorsement == "" &&
		len(r.Fields) == 0
}

// DocumentRecord is the persisted, deduplicated record of a filed document.
type DocumentRecord struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"owner_id"`
	Category        DocumentCategory `json:"category"`
	CanonicalName   string           `json:"canonical_name"`
	Abbreviation    string           `json:"abbreviation"`
	DocumentNumber  string           `json:"document_number"`
	IssueDate       string           `json:"issue_date"`
	ValidDate       string           `json:"valid_date"`
	LastEndorsement string           `json:"last_endorsement"`
	Summary         string           `json:"summary,omitempty"`
	OriginalFileID  string           `json:"original_file_id,omitempty"`
	SummaryFileID   string           `json:"summary_file_id,omitempty"`
	FolderID        string           `json:"folder_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// AbbreviationMapping is a long-lived, user-managed mapping from a canonical
// document name to its short code. UsageCount is mutated only through the
// store's atomic increment.
type AbbreviationMapping struct {
	CanonicalKey string    `json:"canonical_key"`
	Abbreviation string    `json:"abbreviation"`
	UsageCount   int64     `json:"usage_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeKey is the lookup normalization for abbreviation mappings and
// text field comparison: lower-cased, inner whitespace collapsed.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// FolderHandle identifies a folder in the external storage hierarchy. It is
// valid for one ingestion only; the hierarchy is user-managed and may change
// between requests.
type FolderHandle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}
