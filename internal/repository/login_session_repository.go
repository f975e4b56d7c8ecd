package repository

import (
	"context"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// LoginSessionRepository appends to the login audit trail. Sessions are
// never updated or deleted.
type LoginSessionRepository interface {
	Create(ctx context.Context, session *domain.LoginSession) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.LoginSession, error)
	LatestByUser(ctx context.Context, userID string) (*domain.LoginSession, error)
}

type loginSessionRepository struct {
	db persistence.Querier
}

// NewLoginSessionRepository returns a Postgres-backed implementation.
func NewLoginSessionRepository(db persistence.Querier) LoginSessionRepository {
	return &loginSessionRepository{db: db}
}

func (r *loginSessionRepository) Create(ctx context.Context, session *domain.LoginSession) error {
	const query = `
        INSERT INTO login_sessions (user_id, network_id, location)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query,
		session.UserID,
		session.NetworkID,
		session.Location,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *loginSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.LoginSession, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, user_id, network_id, location, created_at
        FROM login_sessions WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LoginSession
	for rows.Next() {
		var session domain.LoginSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.NetworkID, &session.Location, &session.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}

func (r *loginSessionRepository) LatestByUser(ctx context.Context, userID string) (*domain.LoginSession, error) {
	const query = `
        SELECT id, user_id, network_id, location, created_at
        FROM login_sessions WHERE user_id=$1
        ORDER BY created_at DESC LIMIT 1`
	q := persistence.QuerierFrom(ctx, r.db)

	var session domain.LoginSession
	if err := q.QueryRow(ctx, query, userID).Scan(
		&session.ID, &session.UserID, &session.NetworkID, &session.Location, &session.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
