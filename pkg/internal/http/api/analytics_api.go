package api

import (
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func getVoteSummary(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	summary, err := services.SummarizeVotes(uint(surveyId))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
