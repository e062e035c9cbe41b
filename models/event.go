package models

// Event etkinliğin ana kaydıdır. Slug public kayıt sayfasının adresidir.
// Silme işlemi fiziksel değildir: IsEnabled=false yapılır (arşivleme),
// çünkü kayıtlar etkinliğe referans vermeye devam eder.
type Event struct {
	BaseModel
	Slug          string `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatorUserID uint   `gorm:"index;not null"`
	IsEnabled     bool   `gorm:"default:true;index"`

	// GORM İlişkileri
	Detail        EventDetail    `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FormFields    []FormField    `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Registrations []Registration `gorm:"foreignKey:EventID"`
}
