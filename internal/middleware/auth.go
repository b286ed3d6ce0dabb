package middleware

import (
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected verifies the HS256 session token issued by the identity
// provider and stores it in c.Locals("user").
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg))
}

// JWTOptional lets requests without an Authorization header through
// untouched. A header that is present must still carry a valid token.
func JWTOptional(cfg *config.Config) fiber.Handler {
	jc := jwtConfig(cfg)
	jc.Filter = func(c *fiber.Ctx) bool {
		return c.Get(fiber.HeaderAuthorization) == ""
	}
	return jwtware.New(jc)
}

func jwtConfig(cfg *config.Config) jwtware.Config {
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}
}
