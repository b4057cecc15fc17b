package errors

import (
	stderrors "errors"

	"devevent/database"
	"devevent/model"

	"github.com/gofiber/fiber/v2"
)

func RaiseError(context *fiber.Ctx, status int, message string, data string) error {
	return context.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    data})
}

func RaisePermissionsError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusUnauthorized, "lack of permissions", data)
}

func RaiseForbiddenError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusForbidden, "forbidden", data)
}

func RaiseInternalServerError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusInternalServerError, "internal error", data)
}

func RaiseBadRequestError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusBadRequest, "bad request", data)
}

func RaiseNotFoundError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusNotFound, "resource not found", data)
}

func RaiseUnprocessableError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusUnprocessableEntity, "unknown reference", data)
}

func RaiseUnavailableError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusServiceUnavailable, "service unavailable", data)
}

// StatusFor maps the service error types onto HTTP statuses.
func StatusFor(err error) int {
	var validationErr *model.ValidationError
	var referenceErr *database.ReferenceError
	var connectionErr *database.ConnectionError
	switch {
	case err == nil:
		return fiber.StatusOK
	case stderrors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case stderrors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound
	case stderrors.As(err, &referenceErr):
		return fiber.StatusUnprocessableEntity
	case stderrors.As(err, &connectionErr):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RaiseFromError writes the envelope for err. Caller correctable errors keep
// their message; everything else is reported without internal detail.
func RaiseFromError(context *fiber.Ctx, err error) error {
	switch StatusFor(err) {
	case fiber.StatusBadRequest:
		return RaiseBadRequestError(context, err.Error())
	case fiber.StatusNotFound:
		return RaiseNotFoundError(context, err.Error())
	case fiber.StatusUnprocessableEntity:
		return RaiseUnprocessableError(context, err.Error())
	case fiber.StatusServiceUnavailable:
		return RaiseUnavailableError(context, "database is not reachable")
	default:
		return RaiseInternalServerError(context, "unexpected server error")
	}
}
