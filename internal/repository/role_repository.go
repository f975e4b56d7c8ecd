package repository

import (
	"context"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// RoleRepository reads the closed role enumeration. Rows are seeded by
// migration; there is no create path at runtime.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

type roleRepository struct {
	db persistence.Querier
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(db persistence.Querier) RoleRepository {
	return &roleRepository{db: db}
}

const roleColumns = `id, name, level, description, created_at, updated_at`

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getBy(ctx, `WHERE id=$1`, id)
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getBy(ctx, `WHERE name=$1`, name)
}

func (r *roleRepository) getBy(ctx context.Context, where string, arg any) (*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ` + where
	q := persistence.QuerierFrom(ctx, r.db)

	var role domain.Role
	if err := q.QueryRow(ctx, query, arg).Scan(
		&role.ID, &role.Name, &role.Level, &role.Description, &role.CreatedAt, &role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY level`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query)
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
