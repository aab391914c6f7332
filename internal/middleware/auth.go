package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/feedback-go-api/internal/utils"
)

const (
	// RoleAdmin may read every stored feedback record.
	RoleAdmin = "admin"
	// RoleTeacher may read every stored feedback record.
	RoleTeacher = "teacher"
)

// JWTProtected returns a middleware that validates HMAC signed JWT bearer tokens and stores
// the subject and role in the request locals.
func JWTProtected(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		scheme, tokenString, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if subject, err := claims.GetSubject(); err == nil && subject != "" {
			c.Locals("user_id", subject)
		}
		if role := roleFromClaims(claims); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

// RequireRole ensures that the authenticated caller holds one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		if _, ok := allowed[normalizeRole(role)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func roleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			if role := normalizeRole(v); role != "" {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					if role := normalizeRole(s); role != "" {
						return role
					}
				}
			}
		}
	}
	return ""
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
