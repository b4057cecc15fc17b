package handlers

import (
	stderrors "errors"
	"net/url"

	"devevent/database"
	"devevent/errors"
	"devevent/middleware"
	"devevent/model"
	"devevent/query"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) GetEvents(c *fiber.Ctx) error {
	events, err := h.events.ListEvents(c.UserContext())
	if err != nil {
		h.logger.Error("list events failed", zap.String("request_id", middleware.GetRequestId(c)), zap.Error(err))
		return errors.RaiseFromError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Events fetched successfully", "events": events})
}

// GetEventBySlug keeps its own response shape: the 500 body carries the
// underlying message for operators.
func (h *Handler) GetEventBySlug(c *fiber.Ctx) error {
	slug, err := url.PathUnescape(c.Params("slug"))
	if err != nil {
		slug = ""
	}

	event, err := h.events.FetchEventBySlug(c.UserContext(), slug)
	if err != nil {
		var validationErr *model.ValidationError
		switch {
		case stderrors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid or missing slug parameter"})
		case stderrors.Is(err, database.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Event with slug '" + query.NormalizeSlug(slug) + "' not found"})
		}

		h.logger.Error("error fetching event by slug",
			zap.String("slug", slug),
			zap.String("request_id", middleware.GetRequestId(c)),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch event",
			"error":   err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Event fetched successfully", "event": event})
}

// GetSimilarEvents always answers 200. Any failure is logged and served as
// an empty list so "related events" widgets never break a page.
func (h *Handler) GetSimilarEvents(c *fiber.Ctx) error {
	slug, _ := url.PathUnescape(c.Params("slug"))

	events, err := h.events.FetchSimilarEvents(c.UserContext(), slug)
	if err != nil {
		h.logger.Warn("similar events lookup failed",
			zap.String("slug", slug),
			zap.String("request_id", middleware.GetRequestId(c)),
			zap.Error(err))
		events = []model.Event{}
	}
	return c.JSON(events)
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	fields := new(model.Event)
	if err := c.BodyParser(fields); err != nil {
		return errors.RaiseBadRequestError(c, "unacceptable event parameters: "+err.Error())
	}

	event, err := h.eventStore.CreateEvent(c.UserContext(), *fields)
	if err != nil {
		h.logWriteError(c, "create event failed", err)
		return errors.RaiseFromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "event created",
		"data":    event})
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	patch := new(model.EventPatch)
	if err := c.BodyParser(patch); err != nil {
		return errors.RaiseBadRequestError(c, "unacceptable event parameters: "+err.Error())
	}

	event, previousSlug, err := h.eventStore.UpdateEvent(c.UserContext(), c.Params("id"), *patch)
	if err != nil {
		h.logWriteError(c, "update event failed", err)
		return errors.RaiseFromError(c, err)
	}
	h.cache.Invalidate(c.UserContext(), previousSlug, event.Slug)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "event updated",
		"data":    event})
}

func (h *Handler) GetEventBookings(c *fiber.Ctx) error {
	bookings, err := h.bookings.ListByEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		h.logWriteError(c, "list bookings failed", err)
		return errors.RaiseFromError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "bookings fetched",
		"data":    bookings})
}

// caller mistakes are not worth more than a debug line
func (h *Handler) logWriteError(c *fiber.Ctx, msg string, err error) {
	fields := []zap.Field{zap.String("request_id", middleware.GetRequestId(c)), zap.Error(err)}
	if errors.StatusFor(err) >= fiber.StatusInternalServerError {
		h.logger.Error(msg, fields...)
		return
	}
	h.logger.Debug(msg, fields...)
}
