package seed

import (
	"context"
	"strings"
	"testing"

	"devevent/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sample = `
admin:
  login: admin
  password: changeme
events:
  - title: React Summit 2026
    description: The biggest React conference
    overview: Two days of talks
    image: /images/event1.png
    venue: Beurs van Berlage
    location: Amsterdam, Netherlands
    date: May 12, 2026
    time: "09:00"
    mode: hybrid
    audience: Frontend developers
    agenda: [Keynote, Panels]
    organizer: GitNation
    tags: [react, frontend]
  - title: PyCon US 2026
    description: Python community conference
    overview: Tutorials, talks and sprints
    image: /images/event4.png
    venue: Salt Palace Convention Center
    location: Salt Lake City, UT, USA
    date: "2026-04-08"
    time: "09:00"
    mode: offline
    audience: Pythonistas
    agenda: [Tutorials]
    organizer: PSF
    tags: [python]
`

type memoryStore struct {
	bySlug map[string]model.Event
}

func (m *memoryStore) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	if e, ok := m.bySlug[slug]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *memoryStore) CreateEvent(ctx context.Context, fields model.Event) (model.Event, error) {
	event := fields
	if err := model.NormalizeEvent(&event, model.AllFields()); err != nil {
		return model.Event{}, err
	}
	if err := model.ValidateEvent(event); err != nil {
		return model.Event{}, err
	}
	m.bySlug[event.Slug] = event
	return event, nil
}

type memoryUsers struct {
	users []model.UserData
}

func (m *memoryUsers) UpsertUser(ctx context.Context, user model.UserData) error {
	m.users = append(m.users, user)
	return nil
}

func TestParse(t *testing.T) {
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	require.NotNil(t, file.Admin)
	assert.Equal(t, "admin", file.Admin.Login)
	require.Len(t, file.Events, 2)
	assert.Equal(t, []string{"Keynote", "Panels"}, file.Events[0].Agenda)
	assert.Equal(t, "09:00", file.Events[0].Time)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("events:\n  - title: x\n    speakers: [a]\n"))
	assert.Error(t, err)
}

func TestRunIsIdempotent(t *testing.T) {
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	store := &memoryStore{bySlug: map[string]model.Event{}}
	users := &memoryUsers{}
	seeder := NewSeeder(store, users, zap.NewNop())
	seeder.bcryptCost = bcrypt.MinCost

	report, err := seeder.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 2}, report)
	assert.Equal(t, "2026-05-12", store.bySlug["react-summit-2026"].Date)

	report, err = seeder.Run(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 2}, report)

	require.Len(t, users.users, 2)
	admin := users.users[0]
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte("changeme")))
}

func TestRunStopsOnInvalidEvent(t *testing.T) {
	file := File{Events: []EventSeed{{Title: "Broken", Time: "9:00"}}}
	seeder := NewSeeder(&memoryStore{bySlug: map[string]model.Event{}}, &memoryUsers{}, zap.NewNop())

	_, err := seeder.Run(context.Background(), file)
	assert.Error(t, err)
}
