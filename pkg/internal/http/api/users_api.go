package api

import (
	"github.com/pulsohq/pulso/pkg/internal/http/exts"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/pulsohq/pulso/pkg/internal/security"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func adminOnly(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*security.AccountClaims)
	if user == nil || user.Role != models.AccountRoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "admin role required")
	}
	return nil
}

func listAccounts(c *fiber.Ctx) error {
	if err := adminOnly(c); err != nil {
		return err
	}

	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	accounts, count, err := services.ListAccount(take, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  accounts,
	})
}

func getAccount(c *fiber.Ctx) error {
	if err := adminOnly(c); err != nil {
		return err
	}

	userId, _ := c.ParamsInt("userId")

	account, err := services.GetAccount(uint(userId))
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func createAccount(c *fiber.Ctx) error {
	if err := adminOnly(c); err != nil {
		return err
	}

	var data struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required,oneof=admin viewer"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.NewAccount(data.Username, data.Password, data.Role)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func updateAccount(c *fiber.Ctx) error {
	if err := adminOnly(c); err != nil {
		return err
	}

	userId, _ := c.ParamsInt("userId")

	var data struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Role     string `json:"role" validate:"required,oneof=admin viewer"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.UpdateAccount(uint(userId), data.Username, data.Role)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func deleteAccount(c *fiber.Ctx) error {
	if err := adminOnly(c); err != nil {
		return err
	}

	userId, _ := c.ParamsInt("userId")

	if err := services.DeleteAccount(uint(userId)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func updateAccountPassword(c *fiber.Ctx) error {
	if err := adminOnly(c); err != nil {
		return err
	}

	userId, _ := c.ParamsInt("userId")

	var data struct {
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.UpdateAccountPassword(uint(userId), data.Password); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
