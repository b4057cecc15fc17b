package router

import (
	"devevent/handlers"
	"devevent/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, h *handlers.Handler, signingKey string) {
	api := app.Group("/", middleware.RequestId(), logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	api.Get("/healthz", h.Health)

	//Login
	login := api.Group("/login")
	login.Post("/", h.Login)

	admin := []fiber.Handler{middleware.Authorize(signingKey), middleware.RequireAdmin()}

	//Events
	events := api.Group("/api/events")
	events.Get("/", h.GetEvents)
	events.Get("/:slug", h.GetEventBySlug)
	events.Get("/:slug/similar", h.GetSimilarEvents)
	events.Post("/", append(admin, h.CreateEvent)...)
	events.Patch("/:id", append(admin, h.UpdateEvent)...)
	events.Get("/:id/bookings", append(admin, h.GetEventBookings)...)

	//Bookings
	bookings := api.Group("/api/bookings")
	bookings.Post("/", h.CreateBooking)
}
