package models

import (
	"time"
)

// eventDateLayouts formlardan kabul edilen tarih biçimleri.
// İlki tarayıcıların datetime-local girdisinin ürettiği biçimdir.
var eventDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseEventDate form girdisinden gelen etkinlik tarihini çözümler.
func ParseEventDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range eventDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// EventDetail etkinliğin görünüm ve e-posta ayarlarını içerir.
type EventDetail struct {
	BaseModel
	EventID uint `gorm:"uniqueIndex;not null"` // events.id FK

	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	StartDate   time.Time  `gorm:"index;type:timestamptz"`
	EndDate     *time.Time `gorm:"type:timestamptz"`
	Location    string     `gorm:"type:varchar(255)"`
	ThemeColor  string     `gorm:"type:varchar(20);default:'#000000'"`
	BannerURL   string     `gorm:"type:varchar(500)"`

	// Onay e-postası özelleştirmeleri (boşsa varsayılan şablon kullanılır)
	EmailSubject       string `gorm:"type:varchar(255)"`
	EmailBody          string `gorm:"type:text"`
	EmailAttachmentURL string `gorm:"type:varchar(500)"`
}
