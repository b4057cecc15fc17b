package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const RequestIdKey string = "requestid"

// RequestId tags every request with a uuid, echoed in X-Request-ID.
func RequestId() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: RequestIdKey,
	})
}

func GetRequestId(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIdKey).(string)
	return id
}
