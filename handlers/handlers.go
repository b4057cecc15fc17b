package handlers

import (
	"context"

	"devevent/database"
	"devevent/model"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type EventReader interface {
	FetchEventBySlug(ctx context.Context, slug string) (model.Event, error)
	FetchSimilarEvents(ctx context.Context, slug string) ([]model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
}

type EventWriter interface {
	CreateEvent(ctx context.Context, fields model.Event) (model.Event, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.Event, string, error)
}

type BookingWriter interface {
	CreateBooking(ctx context.Context, eventId string, email string) (model.Booking, error)
	ListByEvent(ctx context.Context, eventId string) ([]model.Booking, error)
}

type UserFinder interface {
	GetUserData(ctx context.Context, login string) (*model.UserData, error)
}

type BookingNotifier interface {
	BookingCreated(ctx context.Context, booking model.Booking, slug string) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, slugs ...string)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Events     EventReader
	EventStore EventWriter
	Bookings   BookingWriter
	Users      UserFinder
	Notifier   BookingNotifier
	Cache      CacheInvalidator
	Health     HealthChecker
	SigningKey string
	Logger     *zap.Logger
}

type Handler struct {
	events     EventReader
	eventStore EventWriter
	bookings   BookingWriter
	users      UserFinder
	notifier   BookingNotifier
	cache      CacheInvalidator
	health     HealthChecker
	signingKey string
	logger     *zap.Logger
}

func New(deps Deps) *Handler {
	h := &Handler{
		events:     deps.Events,
		eventStore: deps.EventStore,
		bookings:   deps.Bookings,
		users:      deps.Users,
		notifier:   deps.Notifier,
		cache:      deps.Cache,
		health:     deps.Health,
		signingKey: deps.SigningKey,
		logger:     deps.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.notifier == nil {
		h.notifier = nopNotifier{}
	}
	if h.cache == nil {
		h.cache = nopCache{}
	}
	return h
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if h.health == nil {
		return c.JSON(fiber.Map{"status": "success", "message": "ok", "data": nil})
	}
	if err := h.health.Ping(c.UserContext()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "database is not reachable",
			"data":    nil})
	}
	return c.JSON(fiber.Map{"status": "success", "message": "ok", "data": nil})
}

type nopNotifier struct{}

func (nopNotifier) BookingCreated(ctx context.Context, booking model.Booking, slug string) error {
	return nil
}

type nopCache struct{}

func (nopCache) Invalidate(ctx context.Context, slugs ...string) {}

var _ EventWriter = (*database.EventStore)(nil)
var _ BookingWriter = (*database.BookingStore)(nil)
var _ UserFinder = (*database.UserStore)(nil)
var _ HealthChecker = (*database.Connector)(nil)
