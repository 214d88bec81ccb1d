package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// RecordRepository persists filed document records. It implements
// ports.RecordStore.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, owner_id, category, canonical_name, abbreviation, document_number,
	issue_date, valid_date, last_endorsement, summary,
	original_file_id, summary_file_id, folder_id, created_at
FROM document_records
WHERE owner_id = $1
ORDER BY created_at DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query records by owner: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord
	for rows.Next() {
		var rec domain.DocumentRecord
		var category string
		err := rows.Scan(
			&rec.ID, &rec.OwnerID, &category, &rec.CanonicalName, &rec.Abbreviation, &rec.DocumentNumber,
			&rec.IssueDate, &rec.ValidDate, &rec.LastEndorsement, &rec.Summary,
			&rec.OriginalFileID, &rec.SummaryFileID, &rec.FolderID, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Category = domain.DocumentCategory(category)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) Insert(ctx context.Context, rec *domain.DocumentRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO document_records (
	id, owner_id, category, canonical_name, abbreviation, document_number,
	issue_date, valid_date, last_endorsement, summary,
	original_file_id, summary_file_id, folder_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		rec.ID, rec.OwnerID, string(rec.Category), rec.CanonicalName, rec.Abbreviation, rec.DocumentNumber,
		rec.IssueDate, rec.ValidDate, rec.LastEndorsement, rec.Summary,
		rec.OriginalFileID, rec.SummaryFileID, rec.FolderID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}
