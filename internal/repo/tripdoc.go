// Package repo contains all document store access for the Tripboard API.
// Trip documents are stored as raw JSON exactly as clients and importers wrote
// them; shaping them into view-models is the overview package's job.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripboard/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripDocRepo defines the persistence operations for raw trip documents.
type TripDocRepo interface {
	// Create stores a raw record and returns it with its generated id and
	// created_at populated.
	Create(ctx context.Context, data domain.RawTripRecord) (domain.TripDocument, error)

	// GetByID returns domain.ErrNotFound if no document has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TripDocument, error)

	// List returns every document in arrival order (oldest first).
	List(ctx context.Context) ([]domain.TripDocument, error)

	// ListPaged returns one page of documents in arrival order and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.TripDocument, int64, error)

	// Delete returns domain.ErrNotFound if no document has that id.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripDocRepo is the Postgres implementation of TripDocRepo.
type pgTripDocRepo struct {
	db db
}

// NewTripDocRepo constructs a TripDocRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripDocRepo(db db) TripDocRepo {
	return &pgTripDocRepo{db: db}
}

const docColumns = `id, data, created_at`

// Create inserts the raw record into the jsonb data column.
func (r *pgTripDocRepo) Create(ctx context.Context, data domain.RawTripRecord) (domain.TripDocument, error) {
	const q = `
		INSERT INTO trip_documents (data)
		VALUES (@data)
		RETURNING ` + docColumns

	if data == nil {
		data = domain.RawTripRecord{}
	}
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"data": map[string]any(data)})
	doc, err := scanDoc(row)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("repo.TripDocRepo.Create: %w", err)
	}
	return doc, nil
}

// GetByID retrieves a document by primary key.
func (r *pgTripDocRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TripDocument, error) {
	const q = `SELECT ` + docColumns + ` FROM trip_documents WHERE id = @id`

	doc, err := scanDoc(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("repo.TripDocRepo.GetByID: %w", err)
	}
	return doc, nil
}

// List returns all documents ordered by arrival. seq breaks created_at ties
// inside one transaction.
func (r *pgTripDocRepo) List(ctx context.Context) ([]domain.TripDocument, error) {
	const q = `SELECT ` + docColumns + ` FROM trip_documents ORDER BY created_at, seq`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripDocRepo.List: %w", err)
	}
	docs, err := collectDocs(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripDocRepo.List: %w", err)
	}
	return docs, nil
}

// ListPaged returns one page of documents and the total number stored.
func (r *pgTripDocRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.TripDocument, int64, error) {
	const countQ = `SELECT count(*) FROM trip_documents`
	const q = `
		SELECT ` + docColumns + `
		FROM trip_documents
		ORDER BY created_at, seq
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripDocRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripDocRepo.ListPaged: %w", err)
	}
	docs, err := collectDocs(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripDocRepo.ListPaged: %w", err)
	}
	return docs, total, nil
}

// Delete removes a document by primary key.
func (r *pgTripDocRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trip_documents WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripDocRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripDocRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDoc maps a single row into a domain.TripDocument. jsonb decodes through
// encoding/json, so numbers arrive as float64.
func scanDoc(s scanner) (domain.TripDocument, error) {
	var (
		d    domain.TripDocument
		id   pgtype.UUID
		data map[string]any
	)

	if err := s.Scan(&id, &data, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripDocument{}, domain.ErrNotFound
		}
		return domain.TripDocument{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.Data = domain.RawTripRecord(data)
	return d, nil
}

func collectDocs(rows pgx.Rows) ([]domain.TripDocument, error) {
	defer rows.Close()

	var docs []domain.TripDocument
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return docs, nil
}
