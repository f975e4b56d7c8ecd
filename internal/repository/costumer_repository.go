package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// CostumerRepository persists the people tickets are opened for.
type CostumerRepository interface {
	Create(ctx context.Context, costumer *domain.Costumer) error
	Update(ctx context.Context, costumer *domain.Costumer) error
	GetByID(ctx context.Context, id string) (*domain.Costumer, error)
}

type costumerRepository struct {
	db persistence.Querier
}

// NewCostumerRepository returns a Postgres-backed implementation.
func NewCostumerRepository(db persistence.Querier) CostumerRepository {
	return &costumerRepository{db: db}
}

func (r *costumerRepository) Create(ctx context.Context, costumer *domain.Costumer) error {
	const query = `
        INSERT INTO costumers (name, address_id) VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query, costumer.Name, costumer.AddressID).
		Scan(&costumer.ID, &costumer.CreatedAt, &costumer.UpdatedAt)
}

func (r *costumerRepository) Update(ctx context.Context, costumer *domain.Costumer) error {
	const query = `UPDATE costumers SET name=$1, address_id=$2, updated_at=NOW() WHERE id=$3`
	q := persistence.QuerierFrom(ctx, r.db)
	cmd, err := q.Exec(ctx, query, costumer.Name, costumer.AddressID, costumer.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *costumerRepository) GetByID(ctx context.Context, id string) (*domain.Costumer, error) {
	const query = `SELECT id, name, address_id, created_at, updated_at FROM costumers WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var costumer domain.Costumer
	if err := q.QueryRow(ctx, query, id).Scan(
		&costumer.ID, &costumer.Name, &costumer.AddressID, &costumer.CreatedAt, &costumer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &costumer, nil
}
