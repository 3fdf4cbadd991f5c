package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
	"hairfit/internal/sqlinline"
)

// HistoryRepositoryPG implements domain.HistoryRepository backed by PostgreSQL.
type HistoryRepositoryPG struct {
	db    infra.SQLExecutor
	newID func() string
}

// NewHistoryRepository creates a new HistoryRepositoryPG.
func NewHistoryRepository(db infra.SQLExecutor) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{db: db, newID: uuid.NewString}
}

// Create inserts a record and returns it as stored.
func (r *HistoryRepositoryPG) Create(ctx context.Context, rec domain.NewHistoryRecord) (*domain.HistoryRecord, error) {
	memberID := ""
	if rec.MemberID != nil {
		memberID = *rec.MemberID
	}
	row := r.db.QueryRow(ctx, sqlinline.QInsertHistory,
		r.newID(),
		memberID,
		rec.OriginalPhotoPath,
		rec.ReferenceStyleID,
		rec.ResultPhotoPath,
	)
	out, err := scanHistory(row)
	if err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	return out, nil
}

// List returns records newest first, optionally for one member.
func (r *HistoryRepositoryPG) List(ctx context.Context, memberID string, offset, limit int) ([]domain.HistoryRecord, error) {
	offset, limit = clampPage(offset, limit)
	rows, err := r.db.Query(ctx, sqlinline.QListHistory, memberID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []domain.HistoryRecord{}
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// GetByID fetches one record.
func (r *HistoryRepositoryPG) GetByID(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	rec, err := scanHistory(r.db.QueryRow(ctx, sqlinline.QSelectHistoryByID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: history %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	return rec, nil
}

// Delete removes one record.
func (r *HistoryRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteHistory, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: history %s", domain.ErrNotFound, id)
	}
	return nil
}

func scanHistory(row pgx.Row) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	if err := row.Scan(
		&rec.ID,
		&rec.MemberID,
		&rec.OriginalPhotoPath,
		&rec.ReferenceStyleID,
		&rec.ResultPhotoPath,
		&rec.IsSynced,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

var _ domain.HistoryRepository = (*HistoryRepositoryPG)(nil)
