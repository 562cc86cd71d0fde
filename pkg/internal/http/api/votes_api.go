package api

import (
	"github.com/pulsohq/pulso/pkg/internal/http/exts"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

// registerVote is the public voting endpoint. The rate limit is keyed by the
// submitter's address and answers 429 without touching storage; it never
// rejects based on what is being voted for.
func registerVote(c *fiber.Ctx) error {
	var data services.VoteRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if !voteLimiter.Allow(c.IP()) {
		return fiber.NewError(fiber.StatusTooManyRequests, "too many votes from this address")
	}

	receipt, err := services.RegisterVote(data, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(receipt)
}
