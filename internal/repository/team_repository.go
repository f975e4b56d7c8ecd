package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// TeamRepository manages teams and their membership join table.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetByName(ctx context.Context, name string) (*domain.Team, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	ListTeamIDsByUser(ctx context.Context, userID string) ([]string, error)
	ListMemberIDs(ctx context.Context, teamID string) ([]string, error)
	ListByUserOrderedByLastMessage(ctx context.Context, userID string) ([]domain.Team, error)
}

type teamRepository struct {
	db persistence.Querier
}

// NewTeamRepository returns a Postgres-backed implementation.
func NewTeamRepository(db persistence.Querier) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name) VALUES ($1)
        RETURNING id, created_at, updated_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.getBy(ctx, `WHERE id=$1`, id)
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	return r.getBy(ctx, `WHERE name=$1`, name)
}

func (r *teamRepository) getBy(ctx context.Context, where string, arg any) (*domain.Team, error) {
	query := `SELECT id, name, created_at, updated_at FROM teams ` + where
	q := persistence.QuerierFrom(ctx, r.db)

	var team domain.Team
	if err := q.QueryRow(ctx, query, arg).Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	const query = `INSERT INTO team_users (team_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	q := persistence.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, query, teamID, userID)
	return err
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	const query = `DELETE FROM team_users WHERE team_id=$1 AND user_id=$2`
	q := persistence.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, query, teamID, userID)
	return err
}

func (r *teamRepository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	const query = `SELECT 1 FROM team_users WHERE team_id=$1 AND user_id=$2`
	q := persistence.QuerierFrom(ctx, r.db)

	var one int
	err := q.QueryRow(ctx, query, teamID, userID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *teamRepository) ListTeamIDsByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT team_id FROM team_users WHERE user_id=$1`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *teamRepository) ListMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	const query = `SELECT user_id FROM team_users WHERE team_id=$1`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByUserOrderedByLastMessage returns the caller's teams, most recently
// active conversation first.
func (r *teamRepository) ListByUserOrderedByLastMessage(ctx context.Context, userID string) ([]domain.Team, error) {
	const query = `
        SELECT t.id, t.name, t.created_at, t.updated_at
        FROM teams t
        JOIN team_users tu ON tu.team_id = t.id
        LEFT JOIN LATERAL (
            SELECT m.created_at FROM messages m
            WHERE m.team_id = t.id
            ORDER BY m.created_at DESC LIMIT 1
        ) last_msg ON TRUE
        WHERE tu.user_id = $1
        ORDER BY last_msg.created_at DESC NULLS LAST, t.name`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}
