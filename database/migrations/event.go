package migrations

import (
	"kayit.link/configs/configslog"
	"kayit.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateEventsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating events, event_details & form_fields tables...")
	err := db.AutoMigrate(&models.Event{}, &models.EventDetail{}, &models.FormField{})
	if err != nil {
		configslog.Log.Error("Failed to migrate events, event_details & form_fields tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Events, event_details & form_fields tables migrated successfully")
	return nil
}
