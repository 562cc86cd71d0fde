package api

import (
	"time"

	"github.com/pulsohq/pulso/pkg/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

var (
	loginLimiter   *security.RateLimiter
	voteLimiter    *security.RateLimiter
	tokenBlacklist *security.TokenBlacklist
)

func MapAPIs(app *fiber.App, baseURL string) {
	loginWindow := viper.GetInt64("security.login_window_ms")
	if loginWindow <= 0 {
		loginWindow = 60_000
	}
	loginAttempts := viper.GetInt("security.login_max_attempts")
	if loginAttempts <= 0 {
		loginAttempts = 5
	}
	votesPerMinute := viper.GetInt("votes.rate_limit_per_minute")
	if votesPerMinute <= 0 {
		votesPerMinute = 30
	}

	loginLimiter = security.NewRateLimiter(time.Duration(loginWindow)*time.Millisecond, loginAttempts, nil)
	voteLimiter = security.NewRateLimiter(time.Minute, votesPerMinute, nil)
	tokenBlacklist = security.NewTokenBlacklist(nil)

	api := app.Group(baseURL)
	{
		auth := api.Group("/auth")
		{
			auth.Post("/login", doLogin)
			auth.Post("/logout", doLogout)
		}

		api.Post("/votes", registerVote)
		api.Get("/surveys/:surveyId/structure", getSurveyStructure)

		admin := api.Group("/admin", authRequired)
		{
			admin.Get("/surveys", listSurveys)
			admin.Post("/surveys", createSurvey)
			admin.Post("/surveys/batch", createSurveyBatch)
			admin.Get("/surveys/:surveyId", getSurvey)
			admin.Put("/surveys/:surveyId", updateSurvey)
			admin.Patch("/surveys/:surveyId/restore", restoreSurvey)
			admin.Delete("/surveys/:surveyId", deleteSurvey)

			admin.Get("/surveys/:surveyId/questions", listQuestions)
			admin.Post("/surveys/:surveyId/questions", createQuestion)
			admin.Post("/surveys/:surveyId/questions/batch", createQuestionBatch)
			admin.Put("/questions/:questionId", updateQuestion)
			admin.Delete("/questions/:questionId", deleteQuestion)

			admin.Get("/questions/:questionId/options", listOptions)
			admin.Post("/questions/:questionId/options", createOption)
			admin.Post("/questions/:questionId/options/batch", createOptionBatch)
			admin.Put("/options/:optionId", updateOption)
			admin.Delete("/options/:optionId", deleteOption)

			admin.Get("/dashboard/overview", getDashboardOverview)
			admin.Get("/dashboard/surveys/:surveyId", getSurveyDashboard)
			admin.Get("/dashboard/surveys/:surveyId/audience", getSurveyAudience)
			admin.Get("/analytics/surveys/:surveyId/votes", getVoteSummary)

			admin.Get("/users", listAccounts)
			admin.Post("/users", createAccount)
			admin.Get("/users/:userId", getAccount)
			admin.Put("/users/:userId", updateAccount)
			admin.Delete("/users/:userId", deleteAccount)
			admin.Put("/users/:userId/password", updateAccountPassword)
		}
	}
}
