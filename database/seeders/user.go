package seeders

import (
	"errors"
	"os"

	"kayit.link/configs/configslog"
	"kayit.link/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser ilk yönetici hesabını oluşturur. Hesap zaten varsa
// dokunulmaz; şifre sadece ilk oluşturmada ADMIN_PASSWORD'den okunur.
func SeedSystemUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@kayit.link"
	}

	var existingUser models.User
	result := db.Where("email = ?", email).First(&existingUser)
	if result.Error == nil {
		configslog.SLog.Infof("Sistem yöneticisi '%s' zaten mevcut, oluşturma atlanıyor.", email)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Sistem yöneticisi kontrol edilirken veritabanı hatası",
			zap.String("email", email), zap.Error(result.Error))
		return result.Error
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return errors.New("ilk yönetici için ADMIN_PASSWORD ortam değişkeni tanımlanmalı")
	}
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("Yönetici şifresi hashlenemedi", zap.Error(err))
		return err
	}

	adminUser := models.User{
		Name:         "System Admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		configslog.Log.Error("Sistem yöneticisi oluşturulamadı", zap.String("email", email), zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Sistem yöneticisi '%s' başarıyla oluşturuldu (ID: %d).", email, adminUser.ID)
	return nil
}
