package api

import (
	"time"

	"github.com/pulsohq/pulso/pkg/internal/cache"
	"github.com/pulsohq/pulso/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
)

const overviewCacheKey = "dashboard-overview"

func getDashboardOverview(c *fiber.Ctx) error {
	ttl := time.Duration(viper.GetInt("dashboard.cache_ttl_seconds")) * time.Second
	if ttl > 0 && cache.C != nil {
		if cached, ok := cache.Get(c.Context(), overviewCacheKey); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	overview, err := services.GetDashboardOverview()
	if err != nil {
		return err
	}

	if ttl > 0 && cache.C != nil {
		if encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(overview); err == nil {
			cache.Set(c.Context(), overviewCacheKey, encoded, ttl)
		}
	}

	return c.JSON(overview)
}

func getSurveyDashboard(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")
	from, to := parseRange(c)

	dashboard, err := services.GetSurveyDashboard(uint(surveyId), from, to)
	if err != nil {
		return err
	}
	return c.JSON(dashboard)
}

func getSurveyAudience(c *fiber.Ctx) error {
	surveyId, _ := c.ParamsInt("surveyId")
	from, to := parseRange(c)

	audience, err := services.GetSurveyAudience(uint(surveyId), from, to)
	if err != nil {
		return err
	}
	return c.JSON(audience)
}

func parseRange(c *fiber.Ctx) (*time.Time, *time.Time) {
	var from, to *time.Time
	if val, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		from = &val
	}
	if val, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		to = &val
	}
	return from, to
}
