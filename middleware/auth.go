package middleware

import (
	"devevent/errors"
	"devevent/model"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const IdentityKey string = "identity"

// Authorize validates the bearer token. With no signing key every request is
// refused, an empty HMAC key would accept forged tokens.
func Authorize(signingKey string) fiber.Handler {
	if signingKey == "" {
		return func(c *fiber.Ctx) error {
			return errors.RaisePermissionsError(c, "authentication is not configured")
		}
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(signingKey),
		ErrorHandler: jwtError,
		ContextKey:   IdentityKey,
	})
}

// RequireAdmin must run after Authorize.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdminRole(c) {
			return errors.RaiseForbiddenError(c, "only admin can perform this operation")
		}
		return c.Next()
	}
}

func IsAdminRole(c *fiber.Ctx) bool {
	token, ok := c.Locals(IdentityKey).(*jwt.Token)
	if !ok {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == model.RoleAdmin
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}
