package handlers_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"devevent/database"
	"devevent/handlers"
	"devevent/model"
	"devevent/query"
	"devevent/router"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key"

type Test struct {
	description  string
	method       string
	route        string
	token        string
	bodyinput    []byte
	expectedCode int
	expectedBody string
}

type fakeFinder struct {
	events []model.Event
	err    error
}

func (f *fakeFinder) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.events {
		if e.Slug == slug {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeFinder) FindWhere(ctx context.Context, criteria database.EventCriteria) ([]model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Event{}
	for _, e := range f.events {
		if e.Id == criteria.ExcludeId {
			continue
		}
		if len(criteria.AnyTags) > 0 && !sharesTag(criteria.AnyTags, e.Tags) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeEventStore struct {
	created []model.Event
}

func (s *fakeEventStore) CreateEvent(ctx context.Context, fields model.Event) (model.Event, error) {
	event := fields
	if err := model.NormalizeEvent(&event, model.AllFields()); err != nil {
		return model.Event{}, err
	}
	if err := model.ValidateEvent(event); err != nil {
		return model.Event{}, err
	}
	event.Id = primitive.NewObjectID()
	s.created = append(s.created, event)
	return event, nil
}

func (s *fakeEventStore) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.Event, string, error) {
	for i, e := range s.created {
		if e.Id.Hex() == id {
			previous := e.Slug
			changed := patch.Apply(&e)
			if err := model.NormalizeEvent(&e, changed); err != nil {
				return model.Event{}, "", err
			}
			s.created[i] = e
			return e, previous, nil
		}
	}
	return model.Event{}, "", database.ErrNotFound
}

type fakeBookings struct {
	knownEvents map[string]bool
	created     []model.Booking
}

func (b *fakeBookings) CreateBooking(ctx context.Context, eventId string, email string) (model.Booking, error) {
	email = model.NormalizeEmail(email)
	if err := model.ValidateEmail(email); err != nil {
		return model.Booking{}, err
	}
	if !b.knownEvents[eventId] {
		return model.Booking{}, &database.ReferenceError{Entity: "event", Id: eventId}
	}
	id, _ := primitive.ObjectIDFromHex(eventId)
	booking := model.Booking{Id: primitive.NewObjectID(), EventId: id, Email: email}
	b.created = append(b.created, booking)
	return booking, nil
}

func (b *fakeBookings) ListByEvent(ctx context.Context, eventId string) ([]model.Booking, error) {
	out := []model.Booking{}
	for _, booking := range b.created {
		if booking.EventId.Hex() == eventId {
			out = append(out, booking)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[string]model.UserData
}

func (u *fakeUsers) GetUserData(ctx context.Context, login string) (*model.UserData, error) {
	if user, ok := u.users[login]; ok {
		return &user, nil
	}
	return nil, nil
}

type recordingCache struct {
	invalidated []string
}

func (r *recordingCache) Invalidate(ctx context.Context, slugs ...string) {
	r.invalidated = append(r.invalidated, slugs...)
}

type recordingNotifier struct {
	slugs []string
}

func (n *recordingNotifier) BookingCreated(ctx context.Context, booking model.Booking, slug string) error {
	n.slugs = append(n.slugs, slug)
	return nil
}

type fixture struct {
	app      *fiber.App
	finder   *fakeFinder
	store    *fakeEventStore
	bookings *fakeBookings
	notifier *recordingNotifier
	cache    *recordingCache
	events   []model.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	events := []model.Event{
		{Id: primitive.NewObjectID(), Title: "React Summit 2026", Slug: "react-summit-2026", Tags: []string{"react", "frontend"}},
		{Id: primitive.NewObjectID(), Title: "Google I/O 2026", Slug: "google-io-2026", Tags: []string{"frontend", "android"}},
		{Id: primitive.NewObjectID(), Title: "PyCon US 2026", Slug: "pycon-us-2026", Tags: []string{"python"}},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		finder:   &fakeFinder{events: events},
		store:    &fakeEventStore{},
		bookings: &fakeBookings{knownEvents: map[string]bool{events[0].Id.Hex(): true}},
		notifier: &recordingNotifier{},
		cache:    &recordingCache{},
		events:   events,
	}

	h := handlers.New(handlers.Deps{
		Events:     query.NewFacade(f.finder),
		EventStore: f.store,
		Bookings:   f.bookings,
		Users: &fakeUsers{users: map[string]model.UserData{
			"fake_admin": {Login: "fake_admin", HashedPassword: string(hash), Role: model.RoleAdmin},
			"visitor":    {Login: "visitor", HashedPassword: string(hash), Role: "user"},
		}},
		Notifier:   f.notifier,
		Cache:      f.cache,
		SigningKey: testSigningKey,
		Logger:     zap.NewNop(),
	})

	f.app = fiber.New()
	router.SetupRoutes(f.app, h, testSigningKey)
	return f
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"username": "tester",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

func (f *fixture) run(t *testing.T, test Test) string {
	t.Helper()
	method := test.method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequest(method, test.route, bytes.NewBuffer(test.bodyinput))
	require.NoError(t, err)
	if test.bodyinput != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if test.token != "" {
		req.Header.Set("Authorization", "Bearer "+test.token)
	}

	res, err := f.app.Test(req, -1)
	require.NoError(t, err)

	body := new(strings.Builder)
	_, err = io.Copy(body, res.Body)
	if err != nil {
		assert.Fail(t, "Invalid test, error occured while body parsing")
	}

	assert.Equalf(t, test.expectedCode, res.StatusCode, test.description)
	if test.expectedBody != "" {
		assert.Containsf(t, body.String(), test.expectedBody, test.description)
	}
	return body.String()
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	bs, err := json.Marshal(v)
	require.NoError(t, err)
	return bs
}

func sharesTag(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
