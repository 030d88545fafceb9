package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"setlist-api/core/errors"
	"setlist-api/core/mailer"
	"setlist-api/core/queue"
	"setlist-api/modules/event/dto"
	"setlist-api/modules/event/entity"
	projectentity "setlist-api/modules/project/entity"
	"setlist-api/modules/project/guard"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	events     map[uuid.UUID]*entity.Event
	exceptions map[uuid.UUID]map[string]*entity.EventException
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		events:     map[uuid.UUID]*entity.Event{},
		exceptions: map[uuid.UUID]map[string]*entity.EventException{},
	}
}

func (f *fakeEvents) CreateAll(_ context.Context, events []*entity.Event) error {
	for _, e := range events {
		e.ID = uuid.New()
		e.CreatedAt = time.Now()
		e.UpdatedAt = e.CreatedAt
		cp := *e
		f.events[e.ID] = &cp
	}
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) ListByProject(_ context.Context, projectID uuid.UUID) ([]entity.Event, error) {
	out := []entity.Event{}
	for _, e := range f.events {
		if e.ProjectID == projectID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvents) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.events, id)
	delete(f.exceptions, id)
	return nil
}

func (f *fakeEvents) UpsertException(_ context.Context, x *entity.EventException) error {
	if f.exceptions[x.EventID] == nil {
		f.exceptions[x.EventID] = map[string]*entity.EventException{}
	}
	key := entity.FormatDate(x.ExceptionDate)
	if prev, ok := f.exceptions[x.EventID][key]; ok {
		x.ID = prev.ID
		x.CreatedAt = prev.CreatedAt
	} else {
		x.ID = uuid.New()
		x.CreatedAt = time.Now()
	}
	cp := *x
	f.exceptions[x.EventID][key] = &cp
	return nil
}

func (f *fakeEvents) ListExceptions(_ context.Context, eventID uuid.UUID) ([]entity.EventException, error) {
	out := []entity.EventException{}
	for _, x := range f.exceptions[eventID] {
		out = append(out, *x)
	}
	return out, nil
}

type fakeProjects struct {
	projects map[uuid.UUID]*projectentity.Project
	members  map[uuid.UUID][]projectentity.Member
}

func (f *fakeProjects) GetByID(_ context.Context, id uuid.UUID) (*projectentity.Project, error) {
	return f.projects[id], nil
}

func (f *fakeProjects) ListMembers(_ context.Context, projectID uuid.UUID) ([]projectentity.Member, error) {
	return f.members[projectID], nil
}

func (f *fakeProjects) IsMember(_ context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error) {
	for _, m := range f.members[projectID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type scheduled struct {
	EventID uuid.UUID
	At      time.Time
}

type fakeScheduler struct {
	calls []scheduled
	err   error
}

func (s *fakeScheduler) ScheduleEventReminder(_ context.Context, p queue.EventReminderPayload, at time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, scheduled{EventID: p.EventID, At: at})
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	to   []string
	data []mailer.Data
	fail map[string]bool
}

func (m *fakeMailer) SendKind(_ context.Context, to string, kind mailer.Kind, data mailer.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind != mailer.KindEventReminder {
		return stderrors.New("unexpected kind " + string(kind))
	}
	if m.fail[to] {
		return stderrors.New("smtp: mailbox unavailable")
	}
	m.to = append(m.to, to)
	m.data = append(m.data, data)
	return nil
}

type fanout struct {
	ProjectID uuid.UUID
	Type      string
	Exclude   uuid.UUID
}

type fakeNotifier struct {
	fanouts []fanout
}

func (n *fakeNotifier) NotifyProjectMembers(_ context.Context, _, notificationType, _ string, projectID uuid.UUID, _ map[string]any, excludeUserID uuid.UUID) error {
	n.fanouts = append(n.fanouts, fanout{ProjectID: projectID, Type: notificationType, Exclude: excludeUserID})
	return nil
}

func (n *fakeNotifier) CreateSingleNotification(context.Context, uuid.UUID, string, string, string, *uuid.UUID, map[string]any) error {
	return nil
}

type fixture struct {
	svc       *EventService
	events    *fakeEvents
	projects  *fakeProjects
	scheduler *fakeScheduler
	mail      *fakeMailer
	notifier  *fakeNotifier
	now       time.Time

	project *projectentity.Project
	owner   projectentity.Member
	guest   projectentity.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	owner := projectentity.Member{UserID: uuid.New(), Username: "owner", Email: "owner@example.com"}
	guest := projectentity.Member{UserID: uuid.New(), Username: "guest", Email: "guest@example.com"}
	p := &projectentity.Project{ID: uuid.New(), OwnerID: owner.UserID, Name: "Tour"}

	f := &fixture{
		events: newFakeEvents(),
		projects: &fakeProjects{
			projects: map[uuid.UUID]*projectentity.Project{p.ID: p},
			members:  map[uuid.UUID][]projectentity.Member{p.ID: {owner, guest}},
		},
		scheduler: &fakeScheduler{},
		mail:      &fakeMailer{fail: map[string]bool{}},
		notifier:  &fakeNotifier{},
		now:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		project:   p,
		owner:     owner,
		guest:     guest,
	}
	f.svc = NewEventService(f.events, f.projects, guard.NewGuard(f.projects), f.scheduler, f.mail, f.notifier, Settings{
		BaseURL:      "https://setlist.test",
		ReminderLead: time.Hour,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func request(start time.Time, hint string) *dto.CreateEventRequest {
	req := &dto.CreateEventRequest{
		Title:     "Rehearsal",
		Location:  "Studio B",
		StartDate: start,
		EndDate:   start.Add(24 * time.Hour),
	}
	if hint != "" {
		req.Recurrence = &hint
	}
	return req
}

func TestCreateEventWeeklyHintAddsTenRows(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)

	resp, appErr := f.svc.CreateEvent(context.Background(), f.owner.UserID, f.project.ID, request(start, "weekly"))
	require.Nil(t, appErr)

	require.Len(t, resp.Occurrences, 10)
	assert.Len(t, f.events.events, 11)
	assert.Equal(t, start, resp.Event.StartDate)
	assert.Equal(t, time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC), resp.Occurrences[0].StartDate)
	assert.Equal(t, start.AddDate(0, 0, 70), resp.Occurrences[9].StartDate)
	assert.Equal(t, start.AddDate(0, 0, 71), resp.Occurrences[9].EndDate)

	require.NotNil(t, resp.Event.Recurrence)
	assert.Equal(t, "weekly", *resp.Event.Recurrence)
	for _, o := range resp.Occurrences {
		assert.Nil(t, o.Recurrence, "copies are standalone events")
		assert.Equal(t, "Rehearsal", o.Title)
		assert.NotEqual(t, uuid.Nil, o.ID)
	}

	// base starts 9h after now, so every row gets a reminder one hour ahead
	require.Len(t, f.scheduler.calls, 11)
	assert.Equal(t, resp.Event.ID, f.scheduler.calls[0].EventID)
	assert.Equal(t, start.Add(-time.Hour), f.scheduler.calls[0].At)

	require.Len(t, f.notifier.fanouts, 1)
	assert.Equal(t, f.owner.UserID, f.notifier.fanouts[0].Exclude)
}

func TestCreateEventUnknownHintStoresOnlyBase(t *testing.T) {
	f := newFixture(t)
	start := f.now.Add(48 * time.Hour)

	resp, appErr := f.svc.CreateEvent(context.Background(), f.owner.UserID, f.project.ID, request(start, "fortnightly"))
	require.Nil(t, appErr)
	assert.Empty(t, resp.Occurrences)
	assert.Len(t, f.events.events, 1)
	require.NotNil(t, resp.Event.Recurrence)
	assert.Equal(t, "fortnightly", *resp.Event.Recurrence)
}

func TestCreateEventSkipsPastReminders(t *testing.T) {
	f := newFixture(t)
	start := f.now.Add(30 * time.Minute)

	_, appErr := f.svc.CreateEvent(context.Background(), f.owner.UserID, f.project.ID, request(start, "weekly"))
	require.Nil(t, appErr)

	// the base reminder would fire before now; the ten copies are in the future
	assert.Len(t, f.scheduler.calls, 10)
}

func TestCreateEventSchedulerFailureKeepsEvent(t *testing.T) {
	f := newFixture(t)
	f.scheduler.err = stderrors.New("redis: connection refused")

	resp, appErr := f.svc.CreateEvent(context.Background(), f.owner.UserID, f.project.ID, request(f.now.Add(48*time.Hour), ""))
	require.Nil(t, appErr)
	assert.Contains(t, f.events.events, resp.Event.ID)
}

func TestCreateEventRequiresMembership(t *testing.T) {
	f := newFixture(t)

	_, appErr := f.svc.CreateEvent(context.Background(), uuid.New(), f.project.ID, request(f.now, ""))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
	assert.Empty(t, f.events.events)

	_, appErr = f.svc.CreateEvent(context.Background(), f.owner.UserID, uuid.New(), request(f.now, ""))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestGetDeleteAndListGuarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, appErr := f.svc.CreateEvent(ctx, f.owner.UserID, f.project.ID, request(f.now.Add(48*time.Hour), ""))
	require.Nil(t, appErr)
	id := created.Event.ID
	stranger := uuid.New()

	_, appErr = f.svc.GetEvent(ctx, stranger, id)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	_, appErr = f.svc.ListProjectEvents(ctx, stranger, f.project.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	list, appErr := f.svc.ListProjectEvents(ctx, f.guest.UserID, f.project.ID)
	require.Nil(t, appErr)
	assert.Len(t, list, 1)

	appErr = f.svc.DeleteEvent(ctx, stranger, id)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	require.Nil(t, f.svc.DeleteEvent(ctx, f.guest.UserID, id))
	_, appErr = f.svc.GetEvent(ctx, f.owner.UserID, id)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestUpsertExceptionOnePerDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, appErr := f.svc.CreateEvent(ctx, f.owner.UserID, f.project.ID, request(f.now.Add(48*time.Hour), ""))
	require.Nil(t, appErr)
	id := created.Event.ID

	first, appErr := f.svc.UpsertException(ctx, f.owner.UserID, id, &dto.ExceptionRequest{ExceptionDate: "2024-01-08", IsCancelled: true})
	require.Nil(t, appErr)
	assert.Equal(t, "cancelled", first.Status)
	assert.Equal(t, "2024-01-08", first.ExceptionDate)

	start := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	second, appErr := f.svc.UpsertException(ctx, f.guest.UserID, id, &dto.ExceptionRequest{
		ExceptionDate: "2024-01-08", RescheduledStart: &start, RescheduledEnd: &end,
	})
	require.Nil(t, appErr)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "moved", second.Status)

	list, appErr := f.svc.ListExceptions(ctx, f.owner.UserID, id)
	require.Nil(t, appErr)
	require.Len(t, list, 1)
	assert.Equal(t, "moved", list[0].Status)

	detail, appErr := f.svc.GetEvent(ctx, f.owner.UserID, id)
	require.Nil(t, appErr)
	assert.Len(t, detail.Exceptions, 1)

	_, appErr = f.svc.UpsertException(ctx, f.owner.UserID, id, &dto.ExceptionRequest{ExceptionDate: "08/01/2024"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)

	_, appErr = f.svc.UpsertException(ctx, uuid.New(), id, &dto.ExceptionRequest{ExceptionDate: "2024-01-15"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
}

func TestReminderTaskEmailsEveryMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, appErr := f.svc.CreateEvent(ctx, f.owner.UserID, f.project.ID, request(f.now.Add(2*time.Hour), ""))
	require.Nil(t, appErr)
	f.notifier.fanouts = nil

	task, err := queue.NewEventReminderTask(queue.EventReminderPayload{EventID: created.Event.ID})
	require.NoError(t, err)

	mux := asynq.NewServeMux()
	NewReminderHandler(f.svc).Register(mux)
	require.NoError(t, mux.ProcessTask(ctx, task))

	assert.ElementsMatch(t, []string{"owner@example.com", "guest@example.com"}, f.mail.to)
	for _, d := range f.mail.data {
		assert.Equal(t, "Rehearsal", d.EventTitle)
		assert.Equal(t, "Tour", d.ProjectName)
		assert.Equal(t, "Studio B", d.EventLocation)
		assert.Equal(t, "https://setlist.test/events/"+created.Event.ID.String(), d.ActionURL)
	}

	require.Len(t, f.notifier.fanouts, 1)
	assert.Equal(t, "event_reminder", f.notifier.fanouts[0].Type)
	assert.Equal(t, uuid.Nil, f.notifier.fanouts[0].Exclude)
}

func TestReminderContinuesPastMailFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, _ := f.svc.CreateEvent(ctx, f.owner.UserID, f.project.ID, request(f.now.Add(2*time.Hour), ""))
	f.mail.fail["owner@example.com"] = true

	require.NoError(t, f.svc.SendReminder(ctx, created.Event.ID))
	assert.Equal(t, []string{"guest@example.com"}, f.mail.to)
}

func TestReminderSkipsDeletedAndStartedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendReminder(ctx, uuid.New()))

	created, _ := f.svc.CreateEvent(ctx, f.owner.UserID, f.project.ID, request(f.now.Add(2*time.Hour), ""))
	f.now = f.now.Add(3 * time.Hour)
	require.NoError(t, f.svc.SendReminder(ctx, created.Event.ID))

	assert.Empty(t, f.mail.to)
}
