package usecase

import (
	"testing"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

func baseCandidate() domain.ExtractedRecord {
	return domain.ExtractedRecord{
		CanonicalName:   "Safety Management Certificate",
		DocumentNumber:  "SMC-2024-0042",
		IssueDate:       "2024-05-01",
		ValidDate:       "2029-05-01",
		LastEndorsement: "2025-04-12",
	}
}

func baseExisting() domain.DocumentRecord {
	return domain.DocumentRecord{
		ID:              "rec-1",
		CanonicalName:   "safety management certificate",
		DocumentNumber:  "smc-2024-0042",
		IssueDate:       "01.05.2024",
		ValidDate:       "01.05.2029",
		LastEndorsement: "12.04.2025",
	}
}

func TestIsDuplicateAllFiveFieldsMatch(t *testing.T) {
	guard := NewDuplicateGuard()
	existing := baseExisting()

	dup, matched := guard.IsDuplicate(baseCandidate(), []domain.DocumentRecord{existing})
	if !dup {
		t.Fatalf("expected duplicate for identical five fields")
	}
	if matched == nil || matched.ID != "rec-1" {
		t.Fatalf("expected matched record rec-1, got %+v", matched)
	}
}

func TestIsDuplicateSingleDifferingFieldIsNotDuplicate(t *testing.T) {
	guard := NewDuplicateGuard()

	mutations := map[string]func(*domain.ExtractedRecord){
		"canonical_name":   func(r *domain.ExtractedRecord) { r.CanonicalName = "Safe Manning Certificate" },
		"document_number":  func(r *domain.ExtractedRecord) { r.DocumentNumber = "SMC-2024-0043" },
		"issue_date":       func(r *domain.ExtractedRecord) { r.IssueDate = "2024-05-02" },
		"valid_date":       func(r *domain.ExtractedRecord) { r.ValidDate = "2030-05-01" },
		"last_endorsement": func(r *domain.ExtractedRecord) { r.LastEndorsement = "2026-04-12" },
	}

	for field, mutate := range mutations {
		candidate := baseCandidate()
		mutate(&candidate)
		if dup, _ := guard.IsDuplicate(candidate, []domain.DocumentRecord{baseExisting()}); dup {
			t.Fatalf("candidate differing in %s must not be a duplicate", field)
		}
	}
}

func TestIsDuplicatePresentVersusAbsentIsNotDuplicate(t *testing.T) {
	guard := NewDuplicateGuard()

	// A renewed certificate that gained an endorsement must never collapse
	// into the old record.
	candidate := baseCandidate()
	candidate.LastEndorsement = ""
	if dup, _ := guard.IsDuplicate(candidate, []domain.DocumentRecord{baseExisting()}); dup {
		t.Fatalf("absent endorsement vs present endorsement must not be a duplicate")
	}

	existing := baseExisting()
	existing.LastEndorsement = ""
	if dup, _ := guard.IsDuplicate(baseCandidate(), []domain.DocumentRecord{existing}); dup {
		t.Fatalf("present endorsement vs absent endorsement must not be a duplicate")
	}

	// Both absent is a match for that field.
	candidate = baseCandidate()
	candidate.LastEndorsement = ""
	if dup, _ := guard.IsDuplicate(candidate, []domain.DocumentRecord{existing}); !dup {
		t.Fatalf("both-absent endorsement should compare equal")
	}
}

func TestIsDuplicateDateComparisonIsFormatInvariant(t *testing.T) {
	guard := NewDuplicateGuard()

	candidate := baseCandidate()
	candidate.IssueDate = "1 May 2024"
	candidate.ValidDate = "May 1, 2029"

	if dup, _ := guard.IsDuplicate(candidate, []domain.DocumentRecord{baseExisting()}); !dup {
		t.Fatalf("same calendar dates in different formats must compare equal")
	}
}

func TestIsDuplicateNoExistingRecords(t *testing.T) {
	guard := NewDuplicateGuard()
	if dup, matched := guard.IsDuplicate(baseCandidate(), nil); dup || matched != nil {
		t.Fatalf("empty record set must never report a duplicate")
	}
}
