package migrations

import (
	"kayit.link/configs/configslog"
	"kayit.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// check_ins.registration_id üzerindeki unique index eşzamanlı okutmalarda
// tek check-in garantisinin kendisidir; AutoMigrate bu index'i model
// tag'inden oluşturur.
func MigrateCheckInsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating check_ins table...")
	err := db.AutoMigrate(&models.CheckIn{})
	if err != nil {
		configslog.Log.Error("Failed to migrate check_ins table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Check_ins table migrated successfully")
	return nil
}
