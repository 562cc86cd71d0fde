package http

import (
	"errors"

	pkg "github.com/pulsohq/pulso/pkg/internal"
	"github.com/pulsohq/pulso/pkg/internal/http/api"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type App struct {
	app *fiber.App
}

func NewServer() *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          pkg.AppName,
		AppName:               pkg.AppName + " v" + pkg.AppVersion,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             1 << 20,
		ErrorHandler:          errorHandler,
	})

	app.Use(correlationMiddleware())

	api.MapAPIs(app, "/api")

	return &App{app}
}

// errorHandler translates the service error taxonomy into transport codes:
// missing resources become 404, rule violations 400 with a machine-readable
// reason, everything unexpected 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    notFound.Error(),
			"resource": notFound.Resource,
		})
	}

	var rule *services.RuleError
	if errors.As(err, &rule) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  rule.Message,
			"reason": rule.Reason,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("An error occurred when handling request...")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("http.bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting the http server.")
	}
}

// Fiber exposes the raw instance for tests.
func (v *App) Fiber() *fiber.App {
	return v.app
}
