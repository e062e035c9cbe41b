package seeders

import (
	"errors"
	"time"

	"kayit.link/configs/configslog"
	"kayit.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const demoEventSlug = "tanitim-etkinligi"

// SeedDemoEvent yeni kurulumda panelin boş görünmemesi için örnek bir
// etkinlik oluşturur. Slug zaten varsa dokunulmaz.
func SeedDemoEvent(db *gorm.DB) error {
	var existingEvent models.Event
	result := db.Where("slug = ?", demoEventSlug).First(&existingEvent)
	if result.Error == nil {
		configslog.SLog.Infof("Örnek etkinlik '%s' zaten mevcut, oluşturma atlanıyor.", demoEventSlug)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Örnek etkinlik kontrol edilirken veritabanı hatası",
			zap.String("slug", demoEventSlug), zap.Error(result.Error))
		return result.Error
	}

	var adminUser models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id ASC").First(&adminUser).Error; err != nil {
		configslog.Log.Error("Örnek etkinlik için yönetici hesabı bulunamadı", zap.Error(err))
		return err
	}

	start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)
	end := start.Add(4 * time.Hour)
	demoEvent := models.Event{
		Slug:          demoEventSlug,
		CreatorUserID: adminUser.ID,
		IsEnabled:     true,
		Detail: models.EventDetail{
			Title:       "Tanıtım Etkinliği",
			Description: "Platformu denemek için oluşturulmuş örnek etkinlik. Düzenleyebilir veya arşivleyebilirsiniz.",
			StartDate:   start,
			EndDate:     &end,
			Location:    "Online",
			ThemeColor:  "#1d4ed8",
		},
		FormFields: []models.FormField{
			{FieldKey: models.SystemFieldKeyName, Label: "ชื่อ - นามสกุล", Type: models.FieldTypeText, Required: true, Category: models.FieldCategorySystem, DisplayOrder: 0},
			{FieldKey: models.SystemFieldKeyEmail, Label: "อีเมล", Type: models.FieldTypeEmail, Required: true, Category: models.FieldCategorySystem, DisplayOrder: 1},
			{Label: "Katılım Şekli", Type: models.FieldTypeRadio, Required: true, Category: models.FieldCategoryCustom, Options: models.StringList{"Yerinde", "Online"}, DisplayOrder: 2},
		},
	}

	if err := db.Create(&demoEvent).Error; err != nil {
		configslog.Log.Error("Örnek etkinlik oluşturulamadı", zap.String("slug", demoEventSlug), zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Örnek etkinlik '%s' başarıyla oluşturuldu (ID: %d).", demoEventSlug, demoEvent.ID)
	return nil
}
