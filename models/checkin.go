package models

import (
	"time"
)

// CheckIn bir kaydın giriş okutmasıdır. RegistrationID üzerindeki unique
// index sistemin merkezi invariant'ıdır: bir kayıt için en fazla bir CheckIn
// satırı olabilir. Eşzamanlı okutmalarda doğruluk uygulama kilidiyle değil
// bu constraint ile sağlanır.
type CheckIn struct {
	BaseModel
	RegistrationID uint      `gorm:"uniqueIndex;not null"`
	StaffID        uint      `gorm:"index;not null"`
	ScannedAt      time.Time `gorm:"index;type:timestamptz;not null"`
}
