package repository

import (
	"context"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/pkg/util"
)

// TicketTypeRepository resolves ticket type lookups by natural key.
type TicketTypeRepository interface {
	LookupOrCreate(ctx context.Context, typeName string) (*domain.TicketType, error)
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	List(ctx context.Context) ([]domain.TicketType, error)
}

type ticketTypeRepository struct {
	db persistence.Querier
}

// NewTicketTypeRepository returns a Postgres-backed implementation.
func NewTicketTypeRepository(db persistence.Querier) TicketTypeRepository {
	return &ticketTypeRepository{db: db}
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	const query = `SELECT id, type, created_at, updated_at FROM ticket_types WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var tt domain.TicketType
	if err := q.QueryRow(ctx, query, id).Scan(&tt.ID, &tt.Type, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *ticketTypeRepository) LookupOrCreate(ctx context.Context, typeName string) (*domain.TicketType, error) {
	q := persistence.QuerierFrom(ctx, r.db)

	const sel = `SELECT id, type, created_at, updated_at FROM ticket_types WHERE type=$1`
	var tt domain.TicketType
	err := q.QueryRow(ctx, sel, typeName).Scan(&tt.ID, &tt.Type, &tt.CreatedAt, &tt.UpdatedAt)
	if err == nil {
		return &tt, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("ticket type lookup", err)
	}

	const ins = `
        INSERT INTO ticket_types (type) VALUES ($1)
        ON CONFLICT (type) DO NOTHING
        RETURNING id, type, created_at, updated_at`
	err = q.QueryRow(ctx, ins, typeName).Scan(&tt.ID, &tt.Type, &tt.CreatedAt, &tt.UpdatedAt)
	if err == nil {
		return &tt, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("ticket type insert", err)
	}
	if err := q.QueryRow(ctx, sel, typeName).Scan(&tt.ID, &tt.Type, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
		return nil, util.NewPersistenceError("ticket type re-read", err)
	}
	return &tt, nil
}

func (r *ticketTypeRepository) List(ctx context.Context) ([]domain.TicketType, error) {
	const query = `SELECT id, type, created_at, updated_at FROM ticket_types ORDER BY type`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(&tt.ID, &tt.Type, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, tt)
	}
	return result, rows.Err()
}

// TicketStageRepository reads the ordered stage set.
type TicketStageRepository interface {
	Create(ctx context.Context, stage *domain.TicketStage) error
	GetByID(ctx context.Context, id string) (*domain.TicketStage, error)
	GetByLevel(ctx context.Context, level int) (*domain.TicketStage, error)
	List(ctx context.Context) ([]domain.TicketStage, error)
}

type ticketStageRepository struct {
	db persistence.Querier
}

// NewTicketStageRepository returns a Postgres-backed implementation.
func NewTicketStageRepository(db persistence.Querier) TicketStageRepository {
	return &ticketStageRepository{db: db}
}

const stageColumns = `id, name, level, created_at, updated_at`

func (r *ticketStageRepository) Create(ctx context.Context, stage *domain.TicketStage) error {
	const query = `
        INSERT INTO ticket_stages (name, level) VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query, stage.Name, stage.Level).Scan(&stage.ID, &stage.CreatedAt, &stage.UpdatedAt)
}

func (r *ticketStageRepository) GetByID(ctx context.Context, id string) (*domain.TicketStage, error) {
	return r.getBy(ctx, `WHERE id=$1`, id)
}

func (r *ticketStageRepository) GetByLevel(ctx context.Context, level int) (*domain.TicketStage, error) {
	return r.getBy(ctx, `WHERE level=$1`, level)
}

func (r *ticketStageRepository) getBy(ctx context.Context, where string, arg any) (*domain.TicketStage, error) {
	query := `SELECT ` + stageColumns + ` FROM ticket_stages ` + where
	q := persistence.QuerierFrom(ctx, r.db)

	var stage domain.TicketStage
	if err := q.QueryRow(ctx, query, arg).Scan(&stage.ID, &stage.Name, &stage.Level, &stage.CreatedAt, &stage.UpdatedAt); err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *ticketStageRepository) List(ctx context.Context) ([]domain.TicketStage, error) {
	query := `SELECT ` + stageColumns + ` FROM ticket_stages ORDER BY level`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStage
	for rows.Next() {
		var stage domain.TicketStage
		if err := rows.Scan(&stage.ID, &stage.Name, &stage.Level, &stage.CreatedAt, &stage.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, stage)
	}
	return result, rows.Err()
}

// ServiceRepository resolves catalog services by name.
type ServiceRepository interface {
	LookupOrCreate(ctx context.Context, name string) (*domain.Service, error)
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

type serviceRepository struct {
	db persistence.Querier
}

// NewServiceRepository returns a Postgres-backed implementation.
func NewServiceRepository(db persistence.Querier) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	const query = `SELECT id, name, created_at, updated_at FROM services WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var svc domain.Service
	if err := q.QueryRow(ctx, query, id).Scan(&svc.ID, &svc.Name, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) LookupOrCreate(ctx context.Context, name string) (*domain.Service, error) {
	q := persistence.QuerierFrom(ctx, r.db)

	const sel = `SELECT id, name, created_at, updated_at FROM services WHERE name=$1`
	var svc domain.Service
	err := q.QueryRow(ctx, sel, name).Scan(&svc.ID, &svc.Name, &svc.CreatedAt, &svc.UpdatedAt)
	if err == nil {
		return &svc, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("service lookup", err)
	}

	const ins = `
        INSERT INTO services (name) VALUES ($1)
        ON CONFLICT (name) DO NOTHING
        RETURNING id, name, created_at, updated_at`
	err = q.QueryRow(ctx, ins, name).Scan(&svc.ID, &svc.Name, &svc.CreatedAt, &svc.UpdatedAt)
	if err == nil {
		return &svc, nil
	}
	if !IsNoRows(err) {
		return nil, util.NewPersistenceError("service insert", err)
	}
	if err := q.QueryRow(ctx, sel, name).Scan(&svc.ID, &svc.Name, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, util.NewPersistenceError("service re-read", err)
	}
	return &svc, nil
}
