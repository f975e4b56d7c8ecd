package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// TicketRepository encapsulates ticket persistence. Stage history lives in
// StageEventRepository; current stage is derived there.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByCurrentUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error)
	ListOverdue(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db persistence.Querier
}

// NewTicketRepository returns a Postgres-backed implementation.
func NewTicketRepository(db persistence.Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, name, title, info, deadline, closed, closed_at, type_id,
        create_network_id, create_user_id, costumer_id, service_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (name, title, info, deadline, closed, closed_at, type_id,
            create_network_id, create_user_id, costumer_id, service_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	rec := ticket.Record()
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query,
		rec.Name,
		rec.Title,
		rec.Info,
		rec.Deadline,
		rec.Closed,
		rec.ClosedAt,
		rec.TypeID,
		rec.CreateNetworkID,
		rec.CreateUserID,
		rec.CostumerID,
		rec.ServiceID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET name=$1, title=$2, info=$3, deadline=$4, closed=$5, closed_at=$6,
            type_id=$7, costumer_id=$8, service_id=$9, updated_at=NOW()
        WHERE id=$10`
	rec := ticket.Record()
	q := persistence.QuerierFrom(ctx, r.db)
	cmd, err := q.Exec(ctx, query,
		rec.Name,
		rec.Title,
		rec.Info,
		rec.Deadline,
		rec.Closed,
		rec.ClosedAt,
		rec.TypeID,
		rec.CostumerID,
		rec.ServiceID,
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

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	rec, err := scanTicketRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return domain.TicketFromRecord(rec), nil
}

// ListByCurrentUser returns tickets whose most recent stage event belongs to
// the user: the derived "currently assigned" relation.
func (r *ticketRepository) ListByCurrentUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	query := `
        SELECT ` + prefixedTicketColumns("t") + `
        FROM tickets t
        JOIN LATERAL (
            SELECT e.user_id FROM ticket_stage_events e
            WHERE e.ticket_id = t.id
            ORDER BY e.created_at DESC, e.seq DESC LIMIT 1
        ) current_event ON TRUE
        WHERE current_event.user_id = $1
        ORDER BY t.updated_at DESC
        LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *ticketRepository) ListOverdue(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	query := `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE closed = FALSE AND deadline < NOW()
        ORDER BY deadline
        LIMIT $1 OFFSET $2`
	return r.list(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		rec, err := scanTicketRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *domain.TicketFromRecord(rec))
	}
	return result, rows.Err()
}

func scanTicketRecord(row pgx.Row) (domain.TicketRecord, error) {
	var rec domain.TicketRecord
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Title,
		&rec.Info,
		&rec.Deadline,
		&rec.Closed,
		&rec.ClosedAt,
		&rec.TypeID,
		&rec.CreateNetworkID,
		&rec.CreateUserID,
		&rec.CostumerID,
		&rec.ServiceID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

func prefixedTicketColumns(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.title, ` + alias + `.info, ` +
		alias + `.deadline, ` + alias + `.closed, ` + alias + `.closed_at, ` + alias + `.type_id, ` +
		alias + `.create_network_id, ` + alias + `.create_user_id, ` + alias + `.costumer_id, ` +
		alias + `.service_id, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
