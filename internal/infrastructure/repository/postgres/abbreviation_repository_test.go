package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

func TestAbbreviationRepositoryGetReturnsMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAbbreviationRepository(db)
	rows := sqlmock.NewRows([]string{"canonical_key", "abbreviation", "usage_count", "updated_at"}).
		AddRow("safety management certificate", "SMC", int64(12), time.Now())

	mock.ExpectQuery("FROM abbreviation_mappings").
		WithArgs("safety management certificate").
		WillReturnRows(rows)

	mapping, err := repo.Get(context.Background(), "safety management certificate")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if mapping.Abbreviation != "SMC" || mapping.UsageCount != 12 {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAbbreviationRepositoryGetMissingIsMappingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAbbreviationRepository(db)
	mock.ExpectQuery("FROM abbreviation_mappings").
		WithArgs("unknown key").
		WillReturnRows(sqlmock.NewRows([]string{"canonical_key", "abbreviation", "usage_count", "updated_at"}))

	_, err = repo.Get(context.Background(), "unknown key")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected mapping not found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAbbreviationRepositoryIncrementUsageSingleStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAbbreviationRepository(db)
	mock.ExpectExec("usage_count = usage_count \\+ 1").
		WithArgs("safety management certificate").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementUsage(context.Background(), "safety management certificate"); err != nil {
		t.Fatalf("IncrementUsage() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAbbreviationRepositoryIncrementUsageMissingMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewAbbreviationRepository(db)
	mock.ExpectExec("UPDATE abbreviation_mappings").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.IncrementUsage(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected mapping not found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
