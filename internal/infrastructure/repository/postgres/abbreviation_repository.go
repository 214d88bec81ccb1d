package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// AbbreviationRepository holds the user-managed abbreviation mappings. It
// implements ports.AbbreviationStore.
type AbbreviationRepository struct {
	db *sql.DB
}

func NewAbbreviationRepository(db *sql.DB) *AbbreviationRepository {
	return &AbbreviationRepository{db: db}
}

func (r *AbbreviationRepository) Get(ctx context.Context, canonicalKey string) (*domain.AbbreviationMapping, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT canonical_key, abbreviation, usage_count, updated_at
FROM abbreviation_mappings
WHERE canonical_key = $1
`, canonicalKey)

	var mapping domain.AbbreviationMapping
	err := row.Scan(&mapping.CanonicalKey, &mapping.Abbreviation, &mapping.UsageCount, &mapping.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrMappingNotFound, "abbreviation.get",
				fmt.Errorf("no mapping for %q", canonicalKey))
		}
		return nil, fmt.Errorf("scan abbreviation mapping: %w", err)
	}
	return &mapping, nil
}

// IncrementUsage is a single statement so concurrent ingestions hitting the
// same mapping never lose a count.
func (r *AbbreviationRepository) IncrementUsage(ctx context.Context, canonicalKey string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE abbreviation_mappings
SET usage_count = usage_count + 1, updated_at = NOW()
WHERE canonical_key = $1
`, canonicalKey)
	if err != nil {
		return fmt.Errorf("increment abbreviation usage: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment abbreviation usage: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrMappingNotFound, "abbreviation.increment",
			fmt.Errorf("no mapping for %q", canonicalKey))
	}
	return nil
}
