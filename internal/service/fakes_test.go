package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atendo-hq/atendo/internal/domain"
	"github.com/atendo-hq/atendo/internal/persistence"
)

// In-memory repository doubles. They honor the same contracts as the
// Postgres implementations: pgx.ErrNoRows on misses, mutation through the
// record shapes, insertion order preserved.

type fakeTicketRepo struct {
	tickets map[string]domain.TicketRecord
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.TicketRecord{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.nextID++
	rec := ticket.Record()
	rec.ID = fmt.Sprintf("ticket-%d", f.nextID)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.tickets[rec.ID] = rec
	*ticket = *domain.TicketFromRecord(rec)
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	rec := ticket.Record()
	if _, ok := f.tickets[rec.ID]; !ok {
		return pgx.ErrNoRows
	}
	rec.UpdatedAt = time.Now()
	f.tickets[rec.ID] = rec
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	rec, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return domain.TicketFromRecord(rec), nil
}

func (f *fakeTicketRepo) ListByCurrentUser(context.Context, string, int, int) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketRepo) ListOverdue(_ context.Context, _, _ int) ([]domain.Ticket, error) {
	now := time.Now()
	var out []domain.Ticket
	for _, rec := range f.tickets {
		ticket := domain.TicketFromRecord(rec)
		if ticket.IsOverdue(now) {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

type fakeStageRepo struct {
	stages []domain.TicketStage
	nextID int
}

func (f *fakeStageRepo) Create(_ context.Context, stage *domain.TicketStage) error {
	f.nextID++
	stage.ID = fmt.Sprintf("stage-%d", f.nextID)
	f.stages = append(f.stages, *stage)
	return nil
}

func (f *fakeStageRepo) GetByID(_ context.Context, id string) (*domain.TicketStage, error) {
	for _, s := range f.stages {
		if s.ID == id {
			stage := s
			return &stage, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStageRepo) GetByLevel(_ context.Context, level int) (*domain.TicketStage, error) {
	for _, s := range f.stages {
		if s.Level == level {
			stage := s
			return &stage, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStageRepo) List(context.Context) ([]domain.TicketStage, error) {
	out := append([]domain.TicketStage(nil), f.stages...)
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

type fakeStageEventRepo struct {
	events []domain.TicketStageEvent
	seq    int64
}

func (f *fakeStageEventRepo) Create(_ context.Context, event *domain.TicketStageEvent) error {
	f.seq++
	event.ID = fmt.Sprintf("event-%d", f.seq)
	event.Seq = f.seq
	event.CreatedAt = time.Now()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeStageEventRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketStageEvent, error) {
	var out []domain.TicketStageEvent
	for _, e := range f.events {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStageEventRepo) CurrentByTicket(_ context.Context, ticketID string) (*domain.TicketStageEvent, error) {
	var current *domain.TicketStageEvent
	for i := range f.events {
		e := f.events[i]
		if e.TicketID != ticketID {
			continue
		}
		if current == nil || e.CreatedAt.After(current.CreatedAt) ||
			(e.CreatedAt.Equal(current.CreatedAt) && e.Seq > current.Seq) {
			current = &f.events[i]
		}
	}
	if current == nil {
		return nil, pgx.ErrNoRows
	}
	event := *current
	return &event, nil
}

type fakeTypeRepo struct {
	types map[string]domain.TicketType
}

func newFakeTypeRepo(names ...string) *fakeTypeRepo {
	f := &fakeTypeRepo{types: map[string]domain.TicketType{}}
	for i, name := range names {
		id := fmt.Sprintf("type-%d", i+1)
		f.types[id] = domain.TicketType{ID: id, Type: name}
	}
	return f
}

func (f *fakeTypeRepo) LookupOrCreate(_ context.Context, typeName string) (*domain.TicketType, error) {
	for _, t := range f.types {
		if t.Type == typeName {
			found := t
			return &found, nil
		}
	}
	id := fmt.Sprintf("type-%d", len(f.types)+1)
	created := domain.TicketType{ID: id, Type: typeName}
	f.types[id] = created
	return &created, nil
}

func (f *fakeTypeRepo) GetByID(_ context.Context, id string) (*domain.TicketType, error) {
	t, ok := f.types[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTypeRepo) List(context.Context) ([]domain.TicketType, error) {
	var out []domain.TicketType
	for _, t := range f.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

type fakeServiceRepo struct {
	services map[string]domain.Service
}

func newFakeServiceRepo(names ...string) *fakeServiceRepo {
	f := &fakeServiceRepo{services: map[string]domain.Service{}}
	for i, name := range names {
		id := fmt.Sprintf("service-%d", i+1)
		f.services[id] = domain.Service{ID: id, Name: name}
	}
	return f
}

func (f *fakeServiceRepo) LookupOrCreate(_ context.Context, name string) (*domain.Service, error) {
	for _, s := range f.services {
		if s.Name == name {
			found := s
			return &found, nil
		}
	}
	id := fmt.Sprintf("service-%d", len(f.services)+1)
	created := domain.Service{ID: id, Name: name}
	f.services[id] = created
	return &created, nil
}

func (f *fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

type fakeCostumerRepo struct {
	costumers map[string]domain.Costumer
	nextID    int
}

func newFakeCostumerRepo() *fakeCostumerRepo {
	return &fakeCostumerRepo{costumers: map[string]domain.Costumer{}}
}

func (f *fakeCostumerRepo) Create(_ context.Context, costumer *domain.Costumer) error {
	f.nextID++
	costumer.ID = fmt.Sprintf("costumer-%d", f.nextID)
	f.costumers[costumer.ID] = *costumer
	return nil
}

func (f *fakeCostumerRepo) Update(_ context.Context, costumer *domain.Costumer) error {
	if _, ok := f.costumers[costumer.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.costumers[costumer.ID] = *costumer
	return nil
}

func (f *fakeCostumerRepo) GetByID(_ context.Context, id string) (*domain.Costumer, error) {
	c, ok := f.costumers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

type fakeUserRepo struct {
	users  map[string]domain.UserRecord
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.UserRecord{}}
}

func (f *fakeUserRepo) add(user *domain.User) *domain.User {
	f.nextID++
	rec := user.Record()
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	f.users[rec.ID] = rec
	return domain.UserFromRecord(rec)
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	*user = *f.add(user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	rec := user.Record()
	if _, ok := f.users[rec.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[rec.ID] = rec
	return nil
}

func (f *fakeUserRepo) getBy(match func(domain.UserRecord) bool) (*domain.User, error) {
	for _, rec := range f.users {
		if match(rec) {
			return domain.UserFromRecord(rec), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return f.getBy(func(r domain.UserRecord) bool { return r.ID == id })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.getBy(func(r domain.UserRecord) bool { return r.Username == username })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.getBy(func(r domain.UserRecord) bool { return r.Email == email })
}

func (f *fakeUserRepo) GetByUniquifier(_ context.Context, uniquifier string) (*domain.User, error) {
	return f.getBy(func(r domain.UserRecord) bool { return r.Uniquifier == uniquifier })
}

func (f *fakeUserRepo) AssignRole(context.Context, string, string) error { return nil }
func (f *fakeUserRepo) RevokeRole(context.Context, string, string) error { return nil }

func (f *fakeUserRepo) ListCreatedBetween(_ context.Context, from, to time.Time) ([]domain.User, error) {
	var result []domain.User
	for _, rec := range f.users {
		if !rec.CreatedAt.Before(from) && rec.CreatedAt.Before(to) {
			result = append(result, *domain.UserFromRecord(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type fakeRoleRepo struct {
	roles []domain.Role
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			role := r
			return &role, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			role := r
			return &role, nil
		}
	}
	return nil, pgx.ErrNoRows
}


func (f *fakeRoleRepo) List(context.Context) ([]domain.Role, error) {
	return append([]domain.Role(nil), f.roles...), nil
}

type fakeSessionRepo struct {
	sessions []domain.LoginSession
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.LoginSession) error {
	session.ID = fmt.Sprintf("session-%d", len(f.sessions)+1)
	session.CreatedAt = time.Now()
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.LoginSession, error) {
	var out []domain.LoginSession
	for i := len(f.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if f.sessions[i].UserID == userID {
			out = append(out, f.sessions[i])
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) LatestByUser(_ context.Context, userID string) (*domain.LoginSession, error) {
	for i := len(f.sessions) - 1; i >= 0; i-- {
		if f.sessions[i].UserID == userID {
			session := f.sessions[i]
			return &session, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeNetworkRepo struct {
	networks map[string]domain.Network
	nextID   int
}

func newFakeNetworkRepo() *fakeNetworkRepo {
	return &fakeNetworkRepo{networks: map[string]domain.Network{}}
}

func (f *fakeNetworkRepo) LookupOrCreate(_ context.Context, ip string) (*domain.Network, error) {
	for _, n := range f.networks {
		if n.IP == ip {
			network := n
			return &network, nil
		}
	}
	f.nextID++
	created := domain.Network{ID: fmt.Sprintf("network-%d", f.nextID), IP: ip, CreatedAt: time.Now()}
	f.networks[created.ID] = created
	return &created, nil
}

func (f *fakeNetworkRepo) GetByIP(_ context.Context, ip string) (*domain.Network, error) {
	for _, n := range f.networks {
		if n.IP == ip {
			network := n
			return &network, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeNetworkRepo) GetByID(_ context.Context, id string) (*domain.Network, error) {
	n, ok := f.networks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &n, nil
}

type fakeTeamRepo struct {
	teams   map[string]domain.Team
	members map[string][]string
	nextID  int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: map[string]domain.Team{}, members: map[string][]string{}}
}

func (f *fakeTeamRepo) addTeam(name string, memberIDs ...string) string {
	f.nextID++
	id := fmt.Sprintf("team-%d", f.nextID)
	f.teams[id] = domain.Team{ID: id, Name: name}
	f.members[id] = memberIDs
	return id
}

func (f *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	team.ID = f.addTeam(team.Name)
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (f *fakeTeamRepo) GetByName(_ context.Context, name string) (*domain.Team, error) {
	for _, t := range f.teams {
		if t.Name == name {
			team := t
			return &team, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeamRepo) AddMember(_ context.Context, teamID, userID string) error {
	for _, m := range f.members[teamID] {
		if m == userID {
			return nil
		}
	}
	f.members[teamID] = append(f.members[teamID], userID)
	return nil
}

func (f *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID string) error {
	kept := f.members[teamID][:0]
	for _, m := range f.members[teamID] {
		if m != userID {
			kept = append(kept, m)
		}
	}
	f.members[teamID] = kept
	return nil
}

func (f *fakeTeamRepo) IsMember(_ context.Context, teamID, userID string) (bool, error) {
	for _, m := range f.members[teamID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTeamRepo) ListTeamIDsByUser(_ context.Context, userID string) ([]string, error) {
	var out []string
	for teamID, members := range f.members {
		for _, m := range members {
			if m == userID {
				out = append(out, teamID)
			}
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListMemberIDs(_ context.Context, teamID string) ([]string, error) {
	return append([]string(nil), f.members[teamID]...), nil
}

func (f *fakeTeamRepo) ListByUserOrderedByLastMessage(ctx context.Context, userID string) ([]domain.Team, error) {
	ids, _ := f.ListTeamIDsByUser(ctx, userID)
	var out []domain.Team
	for _, id := range ids {
		out = append(out, f.teams[id])
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages map[string]domain.Message
	receipts map[string]map[string]bool
	teams    *fakeTeamRepo
	nextID   int
}

func newFakeMessageRepo(teams *fakeTeamRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: map[string]domain.Message{},
		receipts: map[string]map[string]bool{},
		teams:    teams,
	}
}

func (f *fakeMessageRepo) Create(_ context.Context, message *domain.Message) error {
	f.nextID++
	message.ID = fmt.Sprintf("message-%d", f.nextID)
	message.CreatedAt = time.Now()
	f.messages[message.ID] = *message
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id string) (*domain.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &m, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, messageID, userID string) (bool, error) {
	if f.receipts[messageID] == nil {
		f.receipts[messageID] = map[string]bool{}
	}
	if f.receipts[messageID][userID] {
		return false, nil
	}
	f.receipts[messageID][userID] = true
	return true, nil
}

func (f *fakeMessageRepo) HasRead(_ context.Context, messageID, userID string) (bool, error) {
	return f.receipts[messageID][userID], nil
}

func (f *fakeMessageRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	teamIDs, _ := f.teams.ListTeamIDsByUser(ctx, userID)
	inTeam := func(id *string) bool {
		if id == nil {
			return false
		}
		for _, t := range teamIDs {
			if t == *id {
				return true
			}
		}
		return false
	}

	var count int64
	for id, m := range f.messages {
		if m.SenderID == userID {
			continue
		}
		addressed := (m.DestinyID != nil && *m.DestinyID == userID) || inTeam(m.TeamID)
		if addressed && !f.receipts[id][userID] {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) ListByTeam(_ context.Context, teamID string, _, _ int) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.TeamID != nil && *m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListBetween(_ context.Context, userA, userB string, _, _ int) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.DestinyID == nil {
			continue
		}
		if (m.SenderID == userA && *m.DestinyID == userB) || (m.SenderID == userB && *m.DestinyID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListReplies(_ context.Context, parentID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.ParentID != nil && *m.ParentID == parentID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeCounter is an in-memory UnreadCounterStore; keys absent from the map
// report a miss like Redis does.
type fakeCounter struct {
	values map[string]int64
	misses int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{values: map[string]int64{}}
}

func (f *fakeCounter) Incr(_ context.Context, userID string) error {
	f.values[userID]++
	return nil
}

func (f *fakeCounter) Decr(_ context.Context, userID string) error {
	if f.values[userID] > 0 {
		f.values[userID]--
	}
	return nil
}

func (f *fakeCounter) Get(_ context.Context, userID string) (int64, error) {
	v, ok := f.values[userID]
	if !ok {
		f.misses++
		return 0, persistence.ErrCounterMiss
	}
	return v, nil
}

func (f *fakeCounter) Set(_ context.Context, userID string, value int64) error {
	f.values[userID] = value
	return nil
}
