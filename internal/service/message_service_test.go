package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/events"
	"github.com/atendo-hq/atendo/pkg/util"
)

type messageFixture struct {
	svc      *MessageService
	users    *fakeUserRepo
	teams    *fakeTeamRepo
	messages *fakeMessageRepo
	counter  *fakeCounter

	alice, bob, carol string
	ops               string
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	users := newFakeUserRepo()
	alice := users.add(&domain.User{Username: "alice", Name: "Alice", Email: "alice@example.com"})
	bob := users.add(&domain.User{Username: "bob", Name: "Bob", Email: "bob@example.com"})
	carol := users.add(&domain.User{Username: "carol", Name: "Carol", Email: "carol@example.com"})

	teams := newFakeTeamRepo()
	ops := teams.addTeam("ops", alice.ID, bob.ID)

	messages := newFakeMessageRepo(teams)
	counter := newFakeCounter()

	svc := NewMessageService(MessageDependencies{
		MessageRepo: messages,
		TeamRepo:    teams,
		UserRepo:    users,
		Counter:     counter,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      zap.NewNop(),
	})

	return &messageFixture{
		svc: svc, users: users, teams: teams, messages: messages, counter: counter,
		alice: alice.ID, bob: bob.ID, carol: carol.ID, ops: ops,
	}
}

func TestSendRequiresExactlyOneTarget(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "hi"})
	assert.True(t, util.IsValidation(err), "no target")

	_, err = f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{
		Body: "hi", DestinyID: &f.bob, TeamID: &f.ops,
	})
	assert.True(t, util.IsValidation(err), "two targets")
}

func TestSendRejectsPrivateWrite(t *testing.T) {
	f := newMessageFixture(t)
	private := true

	_, err := f.svc.Send(context.Background(), f.alice, "network-1", MessageSendInput{
		Body: "hi", DestinyID: &f.bob, Private: &private,
	})
	require.Error(t, err)
	assert.True(t, util.IsNotAssignable(err))
}

func TestSendDirectIncrementsRecipientCounter(t *testing.T) {
	f := newMessageFixture(t)

	message, err := f.svc.Send(context.Background(), f.alice, "network-1", MessageSendInput{
		Body: "lunch?", DestinyID: &f.bob,
	})
	require.NoError(t, err)
	assert.True(t, message.IsPrivate())
	assert.Equal(t, int64(1), f.counter.values[f.bob])
	assert.Zero(t, f.counter.values[f.alice])
}

func TestSendTeamIncrementsMembersExceptSender(t *testing.T) {
	f := newMessageFixture(t)

	_, err := f.svc.Send(context.Background(), f.alice, "network-1", MessageSendInput{
		Body: "standup at 10", TeamID: &f.ops,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.counter.values[f.bob])
	assert.Zero(t, f.counter.values[f.alice], "sender does not count their own message")
	assert.Zero(t, f.counter.values[f.carol], "non-member gets nothing")
}

func TestSendRejectsNestedReply(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	root, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "root", TeamID: &f.ops})
	require.NoError(t, err)
	reply, err := f.svc.Send(ctx, f.bob, "network-1", MessageSendInput{Body: "reply", TeamID: &f.ops, ParentID: &root.ID})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "nested", TeamID: &f.ops, ParentID: &reply.ID})
	require.Error(t, err)
	assert.True(t, util.IsValidation(err))
}

func TestGetEnforcesReadability(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	message, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "ops only", TeamID: &f.ops})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, message.ID, f.bob)
	assert.NoError(t, err, "team member reads")

	_, err = f.svc.Get(ctx, message.ID, f.carol)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestMarkReadDecrementsOnlyOnFirstReceipt(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	message, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "standup", TeamID: &f.ops})
	require.NoError(t, err)
	require.Equal(t, int64(1), f.counter.values[f.bob])

	require.NoError(t, f.svc.MarkRead(ctx, message.ID, f.bob))
	assert.Zero(t, f.counter.values[f.bob])

	require.NoError(t, f.svc.MarkRead(ctx, message.ID, f.bob))
	assert.Zero(t, f.counter.values[f.bob], "second receipt is a no-op")
}

func TestDirectRecipientCanMarkRead(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	message, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "lunch?", DestinyID: &f.bob})
	require.NoError(t, err)
	require.Equal(t, int64(1), f.counter.values[f.bob])

	detail, err := f.svc.Get(ctx, message.ID, f.bob)
	require.NoError(t, err, "addressee reads their own message")
	assert.False(t, detail.Read)

	require.NoError(t, f.svc.MarkRead(ctx, message.ID, f.bob))
	assert.Zero(t, f.counter.values[f.bob])

	count, err := f.svc.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Zero(t, count, "receipt clears the addressee's unread count")

	detail, err = f.svc.Get(ctx, message.ID, f.bob)
	require.NoError(t, err)
	assert.True(t, detail.Read)

	// Being the addressee admits nobody else.
	_, err = f.svc.Get(ctx, message.ID, f.carol)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestMarkReadForbiddenForOutsider(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	message, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "ops", TeamID: &f.ops})
	require.NoError(t, err)

	err = f.svc.MarkRead(ctx, message.ID, f.carol)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestUnreadCountRecomputesOnMiss(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "one", TeamID: &f.ops})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "two", DestinyID: &f.bob})
	require.NoError(t, err)

	// Simulate a counter restart: the cached value disappears, the store
	// recount reseeds it.
	delete(f.counter.values, f.bob)

	count, err := f.svc.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, f.counter.misses)
	assert.Equal(t, int64(2), f.counter.values[f.bob], "counter reseeded")

	// Next read is a hit.
	count, err = f.svc.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 1, f.counter.misses)
}

func TestListTeamMessagesRequiresMembership(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.alice, "network-1", MessageSendInput{Body: "hello", TeamID: &f.ops})
	require.NoError(t, err)

	messages, err := f.svc.ListTeamMessages(ctx, f.ops, f.bob, 50, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = f.svc.ListTeamMessages(ctx, f.ops, f.carol, 50, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestSendUnknownRecipient(t *testing.T) {
	f := newMessageFixture(t)
	missing := "user-404"

	_, err := f.svc.Send(context.Background(), f.alice, "network-1", MessageSendInput{
		Body: "hi", DestinyID: &missing,
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}
