package services

import (
	"time"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DoAutoDatabaseCleanup purges response sessions older than the configured
// retention period. Scheduled from main; safe to run at any time.
func DoAutoDatabaseCleanup() {
	retentionDays := viper.GetInt("privacy.retention_days")
	if retentionDays <= 0 {
		retentionDays = 90
	}
	threshold := time.Now().AddDate(0, 0, -retentionDays)

	tx := database.C.Unscoped().
		Where("created_at < ?", threshold).
		Delete(&models.ResponseSession{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when cleaning up response sessions...")
		return
	}
	if tx.RowsAffected > 0 {
		log.Info().
			Int64("removed", tx.RowsAffected).
			Int("retention_days", retentionDays).
			Msg("Retention cleanup removed old response sessions.")
	}
}
