package models

import (
	"time"

	"gorm.io/gorm"
)

// ContextUserIDKey işlemi yapan kullanıcının ID'sini context üzerinden
// BaseModel hook'larına taşımak için kullanılır.
type contextKey string

const ContextUserIDKey contextKey = "user_id"

// BaseModel tüm modellerde ortak alanları ve audit bilgisini taşır.
type BaseModel struct {
	ID        uint           `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedBy *uint          `gorm:"index"`
	UpdatedBy *uint
	DeletedBy *uint
}

// BeforeCreate context'te user_id varsa CreatedBy'ı doldurur.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if userID, ok := userIDFromContext(tx); ok {
		m.CreatedBy = &userID
	}
	return nil
}

// BeforeUpdate context'te user_id varsa UpdatedBy'ı doldurur.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if userID, ok := userIDFromContext(tx); ok {
		m.UpdatedBy = &userID
	}
	return nil
}

func userIDFromContext(tx *gorm.DB) (uint, bool) {
	if tx.Statement == nil || tx.Statement.Context == nil {
		return 0, false
	}
	userID, ok := tx.Statement.Context.Value(ContextUserIDKey).(uint)
	return userID, ok && userID != 0
}
