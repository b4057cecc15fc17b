package handlers

import (
	"context"
	"time"

	"devevent/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const notifyTimeout = 3 * time.Second

type bookingRequest struct {
	EventId string `json:"eventId"`
	Slug    string `json:"slug"`
	Email   string `json:"email"`
}

// CreateBooking answers only with a success flag. The reason for a failure
// goes to the log, not to the caller.
func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	req := new(bookingRequest)
	if err := c.BodyParser(req); err != nil {
		h.logger.Warn("create booking failed",
			zap.String("request_id", middleware.GetRequestId(c)),
			zap.Error(err))
		return c.JSON(fiber.Map{"success": false})
	}

	booking, err := h.bookings.CreateBooking(c.UserContext(), req.EventId, req.Email)
	if err != nil {
		h.logger.Error("create booking failed",
			zap.String("request_id", middleware.GetRequestId(c)),
			zap.String("event_id", req.EventId),
			zap.String("slug", req.Slug),
			zap.Error(err))
		return c.JSON(fiber.Map{"success": false})
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := h.notifier.BookingCreated(ctx, booking, req.Slug); err != nil {
		h.logger.Warn("booking notification failed",
			zap.String("booking_id", booking.Id.Hex()),
			zap.Error(err))
	}

	return c.JSON(fiber.Map{"success": true})
}
