package services

import (
	"testing"
	"time"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/spf13/viper"
)

func TestAutoDatabaseCleanupPurgesOldSessions(t *testing.T) {
	openTestDatabase(t)
	viper.Set("privacy.retention_days", 90)

	old := models.ResponseSession{SurveyID: 1, Status: models.ResponseStatusCompleted}
	if err := database.C.Create(&old).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -120)
	if err := database.C.Model(&old).Update("created_at", stale).Error; err != nil {
		t.Fatalf("backdating failed: %v", err)
	}

	fresh := models.ResponseSession{SurveyID: 1, Status: models.ResponseStatusCompleted}
	if err := database.C.Create(&fresh).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	DoAutoDatabaseCleanup()

	var remaining int64
	if err := database.C.Unscoped().Model(&models.ResponseSession{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("only the fresh session should survive, got %d", remaining)
	}

	var survivor models.ResponseSession
	if err := database.C.First(&survivor).Error; err != nil {
		t.Fatalf("survivor load failed: %v", err)
	}
	if survivor.ID != fresh.ID {
		t.Fatalf("the wrong session survived: %d", survivor.ID)
	}
}

func TestAutoDatabaseCleanupDefaultsRetention(t *testing.T) {
	openTestDatabase(t)
	viper.Set("privacy.retention_days", 0)
	t.Cleanup(func() { viper.Set("privacy.retention_days", 90) })

	recent := models.ResponseSession{SurveyID: 1, Status: models.ResponseStatusCompleted}
	if err := database.C.Create(&recent).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// A misconfigured retention of zero must not wipe the table.
	DoAutoDatabaseCleanup()

	if countRows(t, &models.ResponseSession{}) != 1 {
		t.Fatalf("recent session should survive the default retention")
	}
}
