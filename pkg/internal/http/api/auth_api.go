package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/pulsohq/pulso/pkg/internal/http/exts"
	"github.com/pulsohq/pulso/pkg/internal/security"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func doLogin(c *fiber.Ctx) error {
	var data struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	key := fmt.Sprintf("%s|%s", c.IP(), data.Username)
	if loginLimiter.Blocked(key) {
		return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts")
	}

	account, err := services.Authenticate(data.Username, data.Password)
	if err != nil {
		loginLimiter.RegisterFailure(key)
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := security.IssueToken(account.ID, account.Username, account.Role)
	if err != nil {
		return err
	}
	loginLimiter.Reset(key)

	log.Info().Str("username", account.Username).Msg("Account logged in.")

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func doLogout(c *fiber.Ctx) error {
	token := resolveToken(c)
	if len(token) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "no token provided")
	}

	claims, err := security.ParseToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	tokenBlacklist.Blacklist(token, expiresAt)

	return c.SendStatus(fiber.StatusNoContent)
}

func authRequired(c *fiber.Ctx) error {
	token := resolveToken(c)
	if len(token) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "no token provided")
	}
	if tokenBlacklist.IsBlacklisted(token) {
		return fiber.NewError(fiber.StatusUnauthorized, "token has been revoked")
	}

	claims, err := security.ParseToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	c.Locals("user", claims)
	return c.Next()
}

func resolveToken(c *fiber.Ctx) string {
	bearer := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(bearer, "Bearer ") {
		return bearer[7:]
	}
	return ""
}
