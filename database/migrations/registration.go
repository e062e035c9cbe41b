package migrations

import (
	"kayit.link/configs/configslog"
	"kayit.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateRegistrationsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating registrations table...")
	err := db.AutoMigrate(&models.Registration{})
	if err != nil {
		configslog.Log.Error("Failed to migrate registrations table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Registrations table migrated successfully")
	return nil
}
