package repository

import (
	"context"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// StageEventRepository appends to a ticket's immutable workflow history.
// There is deliberately no update or delete: events are the audit trail.
type StageEventRepository interface {
	Create(ctx context.Context, event *domain.TicketStageEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStageEvent, error)
	CurrentByTicket(ctx context.Context, ticketID string) (*domain.TicketStageEvent, error)
}

type stageEventRepository struct {
	db persistence.Querier
}

// NewStageEventRepository returns a Postgres-backed implementation.
func NewStageEventRepository(db persistence.Querier) StageEventRepository {
	return &stageEventRepository{db: db}
}

func (r *stageEventRepository) Create(ctx context.Context, event *domain.TicketStageEvent) error {
	const query = `
        INSERT INTO ticket_stage_events (ticket_id, stage_id, user_id, info)
        VALUES ($1,$2,$3,$4)
        RETURNING id, seq, created_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query,
		event.TicketID,
		event.StageID,
		event.UserID,
		event.Info,
	).Scan(&event.ID, &event.Seq, &event.CreatedAt)
}

func (r *stageEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketStageEvent, error) {
	const query = `
        SELECT id, seq, ticket_id, stage_id, user_id, info, created_at
        FROM ticket_stage_events WHERE ticket_id=$1
        ORDER BY created_at, seq`
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStageEvent
	for rows.Next() {
		var event domain.TicketStageEvent
		if err := rows.Scan(&event.ID, &event.Seq, &event.TicketID, &event.StageID, &event.UserID, &event.Info, &event.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

// CurrentByTicket returns the most recent event; seq breaks creation-time
// ties so the derived current stage is deterministic.
func (r *stageEventRepository) CurrentByTicket(ctx context.Context, ticketID string) (*domain.TicketStageEvent, error) {
	const query = `
        SELECT id, seq, ticket_id, stage_id, user_id, info, created_at
        FROM ticket_stage_events WHERE ticket_id=$1
        ORDER BY created_at DESC, seq DESC LIMIT 1`
	q := persistence.QuerierFrom(ctx, r.db)

	var event domain.TicketStageEvent
	if err := q.QueryRow(ctx, query, ticketID).Scan(
		&event.ID, &event.Seq, &event.TicketID, &event.StageID, &event.UserID, &event.Info, &event.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}
