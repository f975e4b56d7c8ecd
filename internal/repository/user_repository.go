package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUniquifier(ctx context.Context, uniquifier string) (*domain.User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.User, error)
}

type userRepository struct {
	db persistence.Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db persistence.Querier) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, name, email, password_hash, temp_password, about_me,
        last_seen, location, active, created_network_id, confirmed_network_id,
        confirmed_at, login_count, uniquifier, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, name, email, password_hash, temp_password, about_me,
            last_seen, location, active, created_network_id, confirmed_network_id,
            confirmed_at, login_count, uniquifier)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	rec := user.Record()
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query,
		rec.Username,
		rec.Name,
		rec.Email,
		rec.PasswordHash,
		rec.TempPassword,
		rec.AboutMe,
		rec.LastSeen,
		rec.Location,
		rec.Active,
		rec.CreatedNetworkID,
		rec.ConfirmedNetworkID,
		rec.ConfirmedAt,
		rec.LoginCount,
		rec.Uniquifier,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, name=$2, email=$3, password_hash=$4, temp_password=$5,
            about_me=$6, last_seen=$7, location=$8, active=$9, confirmed_network_id=$10,
            confirmed_at=$11, login_count=$12, updated_at=NOW()
        WHERE id=$13`
	rec := user.Record()
	q := persistence.QuerierFrom(ctx, r.db)
	cmd, err := q.Exec(ctx, query,
		rec.Username,
		rec.Name,
		rec.Email,
		rec.PasswordHash,
		rec.TempPassword,
		rec.AboutMe,
		rec.LastSeen,
		rec.Location,
		rec.Active,
		rec.ConfirmedNetworkID,
		rec.ConfirmedAt,
		rec.LoginCount,
		rec.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) GetByUniquifier(ctx context.Context, uniquifier string) (*domain.User, error) {
	return r.getBy(ctx, "uniquifier", uniquifier)
}

func (r *userRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + `=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	rec, err := scanUserRecord(q.QueryRow(ctx, query, value))
	if err != nil {
		return nil, err
	}
	user := domain.UserFromRecord(rec)
	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

func (r *userRepository) loadRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	const query = `
        SELECT r.id, r.name, r.level, r.description, r.created_at, r.updated_at
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.level`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Level, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *userRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	const query = `INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	q := persistence.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, query, userID, roleID)
	return err
}

func (r *userRepository) RevokeRole(ctx context.Context, userID, roleID string) error {
	const query = `DELETE FROM user_roles WHERE user_id=$1 AND role_id=$2`
	q := persistence.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, query, userID, roleID)
	return err
}

func (r *userRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		rec, err := scanUserRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *domain.UserFromRecord(rec))
	}
	return result, rows.Err()
}

func scanUserRecord(row pgx.Row) (domain.UserRecord, error) {
	var rec domain.UserRecord
	err := row.Scan(
		&rec.ID,
		&rec.Username,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.TempPassword,
		&rec.AboutMe,
		&rec.LastSeen,
		&rec.Location,
		&rec.Active,
		&rec.CreatedNetworkID,
		&rec.ConfirmedNetworkID,
		&rec.ConfirmedAt,
		&rec.LoginCount,
		&rec.Uniquifier,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}
