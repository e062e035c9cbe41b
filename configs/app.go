package configs

import (
	"os"

	"kayit.link/configs/configsdatabase"
	"kayit.link/configs/configslog"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// LoadEnv .env dosyasını yükler. Dosya yoksa (örn. production'da gerçek env
// değişkenleri kullanılıyorsa) sessizce devam edilir.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		// Logger bu aşamada henüz kurulmamış olabilir.
		if !os.IsNotExist(err) && configslog.SLog != nil {
			configslog.SLog.Warnf(".env dosyası yüklenemedi: %v", err)
		}
	}
}

// GetDB configsdatabase üzerinden açık bağlantıyı döndürür.
// Servis ve repository katmanları DB'ye bu fonksiyonla erişir.
func GetDB() *gorm.DB {
	return configsdatabase.GetDB()
}
