package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDLocalKey is the key used to store the authenticated user id in Fiber's context locals.
	UserIDLocalKey = "user_id"
	// RoleLocalKey is the key used to store the authenticated user's role in Fiber's context locals.
	RoleLocalKey = "role"
)

// Auth returns a middleware that validates a Bearer JWT signed with the
// given HMAC secret and stores the subject and role claims in context
// locals for downstream handlers.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			return unauthorized(c, "missing bearer token")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "invalid token claims")
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return unauthorized(c, "invalid token claims")
		}
		role, _ := claims["role"].(string)

		c.Locals(UserIDLocalKey, sub)
		c.Locals(RoleLocalKey, role)

		return c.Next()
	}
}

// RequireRole gates a route to users carrying the given role claim. Must
// run after Auth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r, _ := c.Locals(RoleLocalKey).(string); r != role {
			return forbidden(c)
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"request_id": localString(c, RequestIDLocalKey),
		"error": fiber.Map{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"request_id": localString(c, RequestIDLocalKey),
		"error": fiber.Map{
			"code":    "FORBIDDEN",
			"message": "insufficient role",
		},
	})
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
