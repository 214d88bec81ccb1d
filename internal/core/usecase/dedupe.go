package usecase

import (
	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// DuplicateGuard enforces exact five-field equality before a new record is
// accepted. A renewed certificate differing only in its last endorsement is
// a new record, not a duplicate.
type DuplicateGuard struct{}

func NewDuplicateGuard() *DuplicateGuard {
	return &DuplicateGuard{}
}

// IsDuplicate reports whether the candidate matches an existing record in
// all five of canonical name, document number, issue date, valid date and
// last endorsement. Text compares case-insensitively with whitespace
// collapsed; dates compare as calendar dates regardless of format. Any
// single differing field, including present-vs-absent, means not a
// duplicate. The matched record is returned for manual resolution.
func (g *DuplicateGuard) IsDuplicate(candidate domain.ExtractedRecord, existing []domain.DocumentRecord) (bool, *domain.DocumentRecord) {
	for i := range existing {
		if matchesAllFields(candidate, &existing[i]) {
			return true, &existing[i]
		}
	}
	return false, nil
}

func matchesAllFields(c domain.ExtractedRecord, r *domain.DocumentRecord) bool {
	return domain.TextEqual(c.CanonicalName, r.CanonicalName) &&
		domain.TextEqual(c.DocumentNumber, r.DocumentNumber) &&
		domain.DatesEqual(c.IssueDate, r.IssueDate) &&
		domain.DatesEqual(c.ValidDate, r.ValidDate) &&
		domain.DatesEqual(c.LastEndorsement, r.LastEndorsement)
}
