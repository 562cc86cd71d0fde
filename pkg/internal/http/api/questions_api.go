package api

import (
	"github.com/pulsohq/pulso/pkg/internal/http/exts"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listQuestions(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")
	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	questions, count, err := services.ListQuestion(uint(surveyId), take, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  questions,
	})
}

func createQuestion(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	var data struct {
		Text  string `json:"text" validate:"required,min=3,max=500"`
		Order int    `json:"order" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	question, err := services.NewQuestion(models.Question{
		Text:     data.Text,
		Order:    data.Order,
		SurveyID: uint(surveyId),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func createQuestionBatch(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")

	var data struct {
		Questions []struct {
			Text  string `json:"text" validate:"required,min=3,max=500"`
			Order int    `json:"order" validate:"required"`
		} `json:"questions" validate:"required,dive"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	payload := make([]models.Question, 0, len(data.Questions))
	for _, item := range data.Questions {
		payload = append(payload, models.Question{Text: item.Text, Order: item.Order})
	}

	questions, err := services.NewQuestionBatch(uint(surveyId), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(questions)
}

func updateQuestion(c *fiber.Ctx) error {
	questionId, _ := c.ParamsInt("questionId")

	var data struct {
		Text  string `json:"text" validate:"required,min=3,max=500"`
		Order int    `json:"order" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	question, err := services.UpdateQuestion(uint(questionId), models.Question{
		Text:  data.Text,
		Order: data.Order,
	})
	if err != nil {
		return err
	}
	return c.JSON(question)
}

func deleteQuestion(c *fiber.Ctx) error {
	questionId, _ := c.ParamsInt("questionId")

	if err := services.DeleteQuestion(uint(questionId)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
