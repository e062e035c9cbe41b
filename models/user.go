package models

// UserRole sistemdeki hesap rollerini tanımlar.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN" // Etkinlik ve kayıt yönetimi
	RoleStaff UserRole = "STAFF" // Sadece check-in ekranı
)

// User panel ve check-in ekranına giriş yapabilen hesap.
// Katılımcılar (attendee) hesap açmaz, sadece public form doldurur.
type User struct {
	BaseModel
	Name         string   `gorm:"type:varchar(100);not null"`
	Email        string   `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string   `gorm:"type:varchar(255);not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'STAFF';index"`
	IsActive     bool     `gorm:"default:true;index"`
}

// IsAdmin kullanıcının yönetici olup olmadığını döndürür.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
