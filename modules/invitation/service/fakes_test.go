package service

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"testing"
	"time"

	"setlist-api/core/cache"
	"setlist-api/core/mailer"
	"setlist-api/modules/invitation/entity"
	"setlist-api/modules/invitation/repository"
	projectentity "setlist-api/modules/project/entity"
	"setlist-api/modules/project/guard"
	userentity "setlist-api/modules/user/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type fakeInvitations struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]*entity.Invitation
	projects   *fakeProjects
	seq        time.Time
	collisions int
	// afterGet runs once after GetByToken returns, standing in for a
	// concurrent request that commits between the read and the write.
	afterGet func(inv *entity.Invitation)
}

func newFakeInvitations(projects *fakeProjects) *fakeInvitations {
	return &fakeInvitations{
		rows:     map[uuid.UUID]*entity.Invitation{},
		projects: projects,
		seq:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeInvitations) Create(_ context.Context, inv *entity.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !inv.Type.Valid() {
		return stderrors.New("unknown invitation type")
	}

	for _, r := range f.rows {
		if r.Token == inv.Token {
			f.collisions++
			return &pq.Error{Code: "23505"}
		}
	}
	inv.ID = uuid.New()
	f.seq = f.seq.Add(time.Second)
	inv.CreatedAt = f.seq
	inv.UpdatedAt = f.seq
	cp := *inv
	f.rows[inv.ID] = &cp
	return nil
}

func (f *fakeInvitations) GetByToken(_ context.Context, token string) (*entity.Invitation, error) {
	f.mu.Lock()
	var found *entity.Invitation
	for _, r := range f.rows {
		if r.Token == token {
			cp := *r
			found = &cp
			break
		}
	}
	hook := f.afterGet
	f.afterGet = nil
	f.mu.Unlock()

	if found != nil && hook != nil {
		hook(found)
	}
	return found, nil
}

func (f *fakeInvitations) sorted(match func(*entity.Invitation) bool) []entity.Invitation {
	out := []entity.Invitation{}
	for _, r := range f.rows {
		if match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeInvitations) ListForRecipientInProject(_ context.Context, projectID uuid.UUID, recipientID uuid.UUID) ([]entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(r *entity.Invitation) bool {
		return r.ProjectID == projectID && r.IsRecipient(recipientID)
	}), nil
}

func (f *fakeInvitations) GetLatestCodeInvitation(_ context.Context, projectID uuid.UUID, email string) (*entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.sorted(func(r *entity.Invitation) bool {
		return r.ProjectID == projectID && r.Type == entity.TypeCodeInvitation && r.Email != nil && *r.Email == email
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (f *fakeInvitations) ListPendingForRecipient(_ context.Context, recipientID uuid.UUID) ([]entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(r *entity.Invitation) bool {
		return r.IsRecipient(recipientID) && r.IsPending()
	}), nil
}

func (f *fakeInvitations) ListByProject(_ context.Context, projectID uuid.UUID) ([]entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(r *entity.Invitation) bool { return r.ProjectID == projectID }), nil
}

func (f *fakeInvitations) Accept(ctx context.Context, inv *entity.Invitation, memberID uuid.UUID) error {
	f.mu.Lock()
	row, ok := f.rows[inv.ID]
	if !ok || !row.IsPending() {
		f.mu.Unlock()
		return repository.ErrNotPending
	}
	row.Status = entity.StatusAccepted
	row.RecipientID = inv.RecipientID
	f.mu.Unlock()

	inv.Status = entity.StatusAccepted
	f.projects.addMember(inv.ProjectID, memberID)
	return nil
}

func (f *fakeInvitations) Decline(_ context.Context, inv *entity.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[inv.ID]
	if !ok || !row.IsPending() {
		return repository.ErrNotPending
	}
	row.Status = entity.StatusDeclined
	inv.Status = entity.StatusDeclined
	return nil
}

func (f *fakeInvitations) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeInvitations) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// seed stores a row as-is, bypassing token generation.
func (f *fakeInvitations) seed(inv entity.Invitation) *entity.Invitation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Token == "" {
		inv.Token = inv.ID.String()
	}
	f.seq = f.seq.Add(time.Second)
	inv.CreatedAt = f.seq
	f.rows[inv.ID] = &inv
	return &inv
}

type fakeProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*projectentity.Project
	members  map[uuid.UUID]map[uuid.UUID]bool
	users    *fakeUsers
}

func (f *fakeProjects) addMember(projectID, userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[projectID] == nil {
		f.members[projectID] = map[uuid.UUID]bool{}
	}
	f.members[projectID][userID] = true
}

func (f *fakeProjects) memberSet(projectID uuid.UUID) map[uuid.UUID]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]bool{}
	for id := range f.members[projectID] {
		out[id] = true
	}
	return out
}

func (f *fakeProjects) GetByID(_ context.Context, id uuid.UUID) (*projectentity.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects[id], nil
}

func (f *fakeProjects) IsMember(_ context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[projectID][userID], nil
}

func (f *fakeProjects) IsMemberByEmail(_ context.Context, projectID uuid.UUID, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.members[projectID] {
		if u := f.users.users[id]; u != nil && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProjects) SharesProject(_ context.Context, a uuid.UUID, b uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m[a] && m[b] {
			return true, nil
		}
	}
	return false, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*userentity.User
	total int
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*userentity.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*userentity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	if f.total > 0 {
		return f.total, nil
	}
	return len(f.users), nil
}

type sentMail struct {
	To   string
	Kind mailer.Kind
	Data mailer.Data
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) SendKind(_ context.Context, to string, kind mailer.Kind, data mailer.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return stderrors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{To: to, Kind: kind, Data: data})
	return nil
}

type notice struct {
	UserID  uuid.UUID
	Exclude uuid.UUID
	Fanout  bool
	Content string
	Type    string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *fakeNotifier) NotifyProjectMembers(_ context.Context, content, notificationType, _ string, _ uuid.UUID, _ map[string]any, excludeUserID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{Exclude: excludeUserID, Fanout: true, Content: content, Type: notificationType})
	return nil
}

func (n *fakeNotifier) CreateSingleNotification(_ context.Context, userID uuid.UUID, content, notificationType, _ string, _ *uuid.UUID, _ map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{UserID: userID, Content: content, Type: notificationType})
	return nil
}

// fixture wires the service to in-memory collaborators. The clock is frozen
// at fixture.now and can be moved by assigning to it.
type fixture struct {
	svc         *InvitationService
	invitations *fakeInvitations
	projects    *fakeProjects
	users       *fakeUsers
	mail        *fakeMailer
	notifier    *fakeNotifier
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := &fakeUsers{users: map[uuid.UUID]*userentity.User{}}
	projects := &fakeProjects{
		projects: map[uuid.UUID]*projectentity.Project{},
		members:  map[uuid.UUID]map[uuid.UUID]bool{},
		users:    users,
	}
	invitations := newFakeInvitations(projects)
	mail := &fakeMailer{}
	notifier := &fakeNotifier{}

	f := &fixture{
		invitations: invitations,
		projects:    projects,
		users:       users,
		mail:        mail,
		notifier:    notifier,
		now:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewInvitationService(invitations, projects, users, guard.NewGuard(projects), mail, notifier, cache.NewLocalLocker(), Settings{
		BaseURL:         "https://setlist.test",
		MaxUsers:        100,
		UserCapMargin:   5,
		CodeTTL:         7 * 24 * time.Hour,
		CodeCooldown:    3600 * time.Second,
		CodeMaxAttempts: 3,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) user(name string, public bool) *userentity.User {
	u := &userentity.User{ID: uuid.New(), Username: name, Email: name + "@example.com", IsPublic: public}
	f.users.users[u.ID] = u
	return u
}

func (f *fixture) project(name string, public bool, members ...*userentity.User) *projectentity.Project {
	p := &projectentity.Project{ID: uuid.New(), Name: name, IsPublic: public}
	if len(members) > 0 {
		p.OwnerID = members[0].ID
	}
	f.projects.projects[p.ID] = p
	for _, m := range members {
		f.projects.addMember(p.ID, m.ID)
	}
	return p
}

func ptr[T any](v T) *T { return &v }
