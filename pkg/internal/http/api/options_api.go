package api

import (
	"github.com/pulsohq/pulso/pkg/internal/http/exts"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listOptions(c *fiber.Ctx) error {
	questionId, _ := c.ParamsInt("questionId")
	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)
	onlyActive := c.QueryBool("active", false)

	options, count, err := services.ListOption(uint(questionId), take, offset, onlyActive)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  options,
	})
}

func createOption(c *fiber.Ctx) error {
	questionId, _ := c.ParamsInt("questionId")

	var data struct {
		Text     string `json:"text" validate:"required,min=1,max=255"`
		IsActive *bool  `json:"is_active" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	option, err := services.NewOption(models.Option{
		Text:       data.Text,
		IsActive:   *data.IsActive,
		QuestionID: uint(questionId),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(option)
}

func createOptionBatch(c *fiber.Ctx) error {
	questionId, _ := c.ParamsInt("questionId")

	var data struct {
		Options []struct {
			Text     string `json:"text" validate:"required,min=1,max=255"`
			IsActive *bool  `json:"is_active" validate:"required"`
		} `json:"options" validate:"required,dive"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	payload := make([]models.Option, 0, len(data.Options))
	for _, item := range data.Options {
		payload = append(payload, models.Option{Text: item.Text, IsActive: *item.IsActive})
	}

	options, err := services.NewOptionBatch(uint(questionId), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(options)
}

func updateOption(c *fiber.Ctx) error {
	optionId, _ := c.ParamsInt("optionId")

	var data struct {
		Text     string `json:"text" validate:"required,min=1,max=255"`
		IsActive *bool  `json:"is_active" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	option, err := services.UpdateOption(uint(optionId), models.Option{
		Text:     data.Text,
		IsActive: *data.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(option)
}

func deleteOption(c *fiber.Ctx) error {
	optionId, _ := c.ParamsInt("optionId")

	if err := services.DeleteOption(uint(optionId)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
