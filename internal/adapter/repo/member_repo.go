package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
	"hairfit/internal/sqlinline"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// MemberRepositoryPG implements domain.MemberRepository backed by PostgreSQL.
type MemberRepositoryPG struct {
	db infra.SQLExecutor
}

// NewMemberRepository creates a new MemberRepositoryPG.
func NewMemberRepository(db infra.SQLExecutor) *MemberRepositoryPG {
	return &MemberRepositoryPG{db: db}
}

// List returns members newest first.
func (r *MemberRepositoryPG) List(ctx context.Context, offset, limit int) ([]domain.Member, error) {
	offset, limit = clampPage(offset, limit)
	rows, err := r.db.Query(ctx, sqlinline.QListMembers, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// GetByID fetches one member.
func (r *MemberRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	m, err := scanMember(r.db.QueryRow(ctx, sqlinline.QSelectMemberByID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: member %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// Upsert creates the member or updates name and phone. Empty memo and photo
// keep the stored values. An empty id gets a fresh uuid.
func (r *MemberRepositoryPG) Upsert(ctx context.Context, m domain.Member) (*domain.Member, error) {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, errors.New("upsert member: name is required")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	var memo, photo string
	if m.Memo != nil {
		memo = strings.TrimSpace(*m.Memo)
	}
	if m.PhotoPath != nil {
		photo = strings.TrimSpace(*m.PhotoPath)
	}
	out, err := scanMember(r.db.QueryRow(ctx, sqlinline.QUpsertMember, m.ID, m.Name, strings.TrimSpace(m.Phone), memo, photo))
	if err != nil {
		return nil, fmt.Errorf("upsert member: %w", err)
	}
	return out, nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	if err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Memo, &m.PhotoPath, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

var _ domain.MemberRepository = (*MemberRepositoryPG)(nil)
