package api

import (
	"time"

	"github.com/pulsohq/pulso/pkg/internal/http/exts"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

type surveyPayload struct {
	Title       string         `json:"title" validate:"required,min=3,max=255"`
	Description string         `json:"description" validate:"max=1000"`
	IsActive    *bool          `json:"is_active" validate:"required"`
	ExpiredAt   *time.Time     `json:"expired_at"`
	Metadata    map[string]any `json:"metadata"`
}

func (p surveyPayload) toModel() models.Survey {
	return models.Survey{
		Title:       p.Title,
		Description: p.Description,
		IsActive:    p.IsActive != nil && *p.IsActive,
		ExpiredAt:   p.ExpiredAt,
		Metadata:    datatypes.JSONMap(p.Metadata),
	}
}

func listSurveys(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)
	onlyActive := c.QueryBool("active", false)
	includeDeleted := c.QueryBool("includeDeleted", false)

	surveys, count, err := services.ListSurvey(take, offset, onlyActive, includeDeleted)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  surveys,
	})
}

func getSurvey(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	survey, err := services.GetSurvey(uint(surveyId), c.QueryBool("includeDeleted", false))
	if err != nil {
		return err
	}
	return c.JSON(survey)
}

func getSurveyStructure(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	survey, err := services.GetSurveyStructure(
		uint(surveyId),
		c.QueryBool("includeInactiveOptions", false),
		c.QueryBool("includeDeleted", false),
	)
	if err != nil {
		return err
	}
	return c.JSON(survey)
}

func createSurvey(c *fiber.Ctx) error {
	var data surveyPayload
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	survey, err := services.NewSurvey(data.toModel())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(survey)
}

func createSurveyBatch(c *fiber.Ctx) error {
	var data struct {
		Surveys []surveyPayload `json:"surveys" validate:"required,dive"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	surveys, err := services.NewSurveyBatch(lo.Map(data.Surveys, func(p surveyPayload, _ int) models.Survey {
		return p.toModel()
	}))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(surveys)
}

func updateSurvey(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	var data surveyPayload
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	survey, err := services.UpdateSurvey(uint(surveyId), data.toModel())
	if err != nil {
		return err
	}
	return c.JSON(survey)
}

func restoreSurvey(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	survey, err := services.RestoreSurvey(uint(surveyId))
	if err != nil {
		return err
	}
	return c.JSON(survey)
}

func deleteSurvey(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	if err := services.DeleteSurvey(uint(surveyId)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
