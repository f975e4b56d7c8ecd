package repository

import (
	"context"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// MessageRepository persists messages and per-user read receipts. Read
// state lives only in the receipts join table.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	MarkRead(ctx context.Context, messageID, userID string) (bool, error)
	HasRead(ctx context.Context, messageID, userID string) (bool, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]domain.Message, error)
	ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]domain.Message, error)
	ListReplies(ctx context.Context, parentID string) ([]domain.Message, error)
}

type messageRepository struct {
	db persistence.Querier
}

// NewMessageRepository returns a Postgres-backed implementation.
func NewMessageRepository(db persistence.Querier) MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, body, sender_user_id, destiny_user_id, team_id, parent_id,
        create_network_id, created_at`

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (body, sender_user_id, destiny_user_id, team_id, parent_id, create_network_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	q := persistence.QuerierFrom(ctx, r.db)
	return q.QueryRow(ctx, query,
		message.Body,
		message.SenderID,
		message.DestinyID,
		message.TeamID,
		message.ParentID,
		message.CreateNetworkID,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	q := persistence.QuerierFrom(ctx, r.db)

	var msg domain.Message
	if err := q.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.Body, &msg.SenderID, &msg.DestinyID, &msg.TeamID, &msg.ParentID,
		&msg.CreateNetworkID, &msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead inserts a read receipt, reporting whether a new one was written.
// Repeated reads are idempotent.
func (r *messageRepository) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	const query = `
        INSERT INTO message_reads (message_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (message_id, user_id) DO NOTHING`
	q := persistence.QuerierFrom(ctx, r.db)
	cmd, err := q.Exec(ctx, query, messageID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *messageRepository) HasRead(ctx context.Context, messageID, userID string) (bool, error) {
	const query = `SELECT 1 FROM message_reads WHERE message_id=$1 AND user_id=$2`
	q := persistence.QuerierFrom(ctx, r.db)

	var one int
	err := q.QueryRow(ctx, query, messageID, userID).Scan(&one)
	if IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UnreadCount counts messages addressed to the user without a receipt, in a
// single set-difference query.
func (r *messageRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	const query = `
        SELECT COUNT(*)
        FROM messages m
        LEFT JOIN message_reads mr ON mr.message_id = m.id AND mr.user_id = $1
        WHERE mr.message_id IS NULL
          AND m.sender_user_id <> $1
          AND (m.destiny_user_id = $1
               OR m.team_id IN (SELECT team_id FROM team_users WHERE user_id = $1))`
	q := persistence.QuerierFrom(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *messageRepository) ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]domain.Message, error) {
	query := `
        SELECT ` + messageColumns + ` FROM messages
        WHERE team_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	return r.list(ctx, query, teamID, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *messageRepository) ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]domain.Message, error) {
	query := `
        SELECT ` + messageColumns + ` FROM messages
        WHERE (sender_user_id=$1 AND destiny_user_id=$2)
           OR (sender_user_id=$2 AND destiny_user_id=$1)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`
	return r.list(ctx, query, userA, userB, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *messageRepository) ListReplies(ctx context.Context, parentID string) ([]domain.Message, error) {
	query := `
        SELECT ` + messageColumns + ` FROM messages
        WHERE parent_id=$1
        ORDER BY created_at`
	return r.list(ctx, query, parentID)
}

func (r *messageRepository) list(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	q := persistence.QuerierFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.Body, &msg.SenderID, &msg.DestinyID, &msg.TeamID, &msg.ParentID,
			&msg.CreateNetworkID, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
