package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/events"
	"github.com/atendo-hq/atendo/internal/persistence"
	"github.com/atendo-hq/atendo/internal/repository"
	"github.com/atendo-hq/atendo/pkg/util"
)

// UnreadCounterStore is the fast path for per-user unread counts. A miss
// falls back to a store recount.
type UnreadCounterStore interface {
	Incr(ctx context.Context, userID string) error
	Decr(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, value int64) error
}

// MessageService handles direct and team messaging with read receipts.
type MessageService struct {
	messages   repository.MessageRepository
	teams      repository.TeamRepository
	users      repository.UserRepository
	counter    UnreadCounterStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	TeamRepo    repository.TeamRepository
	UserRepo    repository.UserRepository
	Counter     UnreadCounterStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		teams:      deps.TeamRepo,
		users:      deps.UserRepo,
		counter:    deps.Counter,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// MessageSendInput describes an outgoing message. Exactly one of DestinyID
// and TeamID must be set. Private is accepted only to reject writes: privacy
// is derived from the destination.
type MessageSendInput struct {
	Body      string
	DestinyID *string
	TeamID    *string
	ParentID  *string
	Private   *bool
}

// Send validates the destination, persists the message and bumps recipient
// unread counters.
func (s *MessageService) Send(ctx context.Context, senderID, networkID string, input MessageSendInput) (*domain.Message, error) {
	if input.Private != nil {
		return nil, util.NewNotAssignable("private", "address the message to a user instead")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, util.NewValidationError("body required", nil)
	}
	if (input.DestinyID == nil) == (input.TeamID == nil) {
		return nil, util.NewValidationError("exactly one of destiny_user_id and team_id required", nil)
	}

	var recipients []string
	if input.DestinyID != nil {
		if _, err := s.users.GetByID(ctx, *input.DestinyID); err != nil {
			if repository.IsNoRows(err) {
				return nil, util.NewNotFound("destiny user", nil)
			}
			return nil, err
		}
		recipients = []string{*input.DestinyID}
	} else {
		if _, err := s.teams.GetByID(ctx, *input.TeamID); err != nil {
			if repository.IsNoRows(err) {
				return nil, util.NewNotFound("team", nil)
			}
			return nil, err
		}
		members, err := s.teams.ListMemberIDs(ctx, *input.TeamID)
		if err != nil {
			return nil, err
		}
		recipients = members
	}

	if input.ParentID != nil {
		parent, err := s.messages.GetByID(ctx, *input.ParentID)
		if err != nil {
			if repository.IsNoRows(err) {
				return nil, util.NewNotFound("parent message", nil)
			}
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, util.NewValidationError("replies cannot be nested", nil)
		}
	}

	message := &domain.Message{
		Body:            strings.TrimSpace(input.Body),
		SenderID:        senderID,
		DestinyID:       input.DestinyID,
		TeamID:          input.TeamID,
		ParentID:        input.ParentID,
		CreateNetworkID: networkID,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	for _, recipient := range recipients {
		if recipient == senderID {
			continue
		}
		if err := s.counter.Incr(ctx, recipient); err != nil && s.logger != nil {
			s.logger.Warn("unread counter increment failed",
				zap.String("user_id", recipient), zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		Type:    events.EventMessageSent,
		ActorID: senderID,
		Payload: events.MessageSentPayload{
			MessageID: message.ID,
			DestinyID: message.DestinyID,
			TeamID:    message.TeamID,
			ParentID:  message.ParentID,
		},
	})
	return message, nil
}

// MessageDetail pairs a message with the requesting reader's receipt state.
type MessageDetail struct {
	Message *domain.Message
	Read    bool
}

// Get returns a message the reader is allowed to see, with the reader's own
// read state.
func (s *MessageService) Get(ctx context.Context, messageID, readerID string) (*MessageDetail, error) {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, util.NewNotFound("message", nil)
		}
		return nil, err
	}
	if err := s.authorizeReader(ctx, message, readerID); err != nil {
		return nil, err
	}
	read, err := s.messages.HasRead(ctx, messageID, readerID)
	if err != nil {
		return nil, err
	}
	return &MessageDetail{Message: message, Read: read}, nil
}

// MarkRead records a read receipt. Marking twice is a no-op; the counter
// moves only on the first receipt.
func (s *MessageService) MarkRead(ctx context.Context, messageID, readerID string) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if repository.IsNoRows(err) {
			return util.NewNotFound("message", nil)
		}
		return err
	}
	if err := s.authorizeReader(ctx, message, readerID); err != nil {
		return err
	}

	inserted, err := s.messages.MarkRead(ctx, messageID, readerID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	if message.SenderID != readerID {
		if err := s.counter.Decr(ctx, readerID); err != nil && s.logger != nil {
			s.logger.Warn("unread counter decrement failed",
				zap.String("user_id", readerID), zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		Type:    events.EventMessageRead,
		ActorID: readerID,
		Payload: events.MessageReadPayload{MessageID: messageID, ReaderID: readerID},
	})
	return nil
}

// UnreadCount serves the counter, recounting from the store on a miss and
// reseeding the counter with the result.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.counter.Get(ctx, userID)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, persistence.ErrCounterMiss) && s.logger != nil {
		s.logger.Warn("unread counter read failed", zap.String("user_id", userID), zap.Error(err))
	}

	count, err = s.messages.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.counter.Set(ctx, userID, count); err != nil && s.logger != nil {
		s.logger.Warn("unread counter seed failed", zap.String("user_id", userID), zap.Error(err))
	}
	return count, nil
}

// ListTeamMessages returns a team's feed, newest first, to members only.
func (s *MessageService) ListTeamMessages(ctx context.Context, teamID, readerID string, limit, offset int) ([]domain.Message, error) {
	member, err := s.teams.IsMember(ctx, teamID, readerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, util.NewForbidden("not a member of this team")
	}
	return s.messages.ListByTeam(ctx, teamID, limit, offset)
}

// ListConversation returns direct messages exchanged between the reader and
// another user.
func (s *MessageService) ListConversation(ctx context.Context, readerID, otherID string, limit, offset int) ([]domain.Message, error) {
	return s.messages.ListBetween(ctx, readerID, otherID, limit, offset)
}

// ListReplies returns the replies under a message the reader can see.
func (s *MessageService) ListReplies(ctx context.Context, parentID, readerID string) ([]domain.Message, error) {
	if _, err := s.Get(ctx, parentID, readerID); err != nil {
		return nil, err
	}
	return s.messages.ListReplies(ctx, parentID)
}

// ListTeams returns the reader's teams ordered by most recent activity.
func (s *MessageService) ListTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	return s.teams.ListByUserOrderedByLastMessage(ctx, userID)
}

// authorizeReader admits the sender, the direct addressee and members of the
// target team. CanBeReadBy covers the first and last; the addressee of a
// direct message is admitted here so the receipt path stays open to them.
func (s *MessageService) authorizeReader(ctx context.Context, message *domain.Message, readerID string) error {
	if message.DestinyID != nil && *message.DestinyID == readerID {
		return nil
	}
	teamIDs, err := s.teams.ListTeamIDsByUser(ctx, readerID)
	if err != nil {
		return err
	}
	if !message.CanBeReadBy(readerID, teamIDs) {
		return util.NewForbidden("message not visible to this user")
	}
	return nil
}

func (s *MessageService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
