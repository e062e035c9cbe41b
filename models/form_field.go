package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FieldType form alanı tiplerini tanımlar.
type FieldType string

const (
	FieldTypeText     FieldType = "TEXT"
	FieldTypeEmail    FieldType = "EMAIL"
	FieldTypePhone    FieldType = "PHONE"
	FieldTypeNumber   FieldType = "NUMBER"
	FieldTypeSelect   FieldType = "SELECT"
	FieldTypeRadio    FieldType = "RADIO"
	FieldTypeCheckbox FieldType = "CHECKBOX"
	FieldTypeDate     FieldType = "DATE"
)

// IsCategorical alan cevaplarının dashboard'da sayılabilir olup olmadığını döndürür.
func (t FieldType) IsCategorical() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio || t == FieldTypeCheckbox
}

// Valid bilinen bir alan tipi olup olmadığını döndürür.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePhone, FieldTypeNumber,
		FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeDate:
		return true
	}
	return false
}

// FieldCategory alanın sistem alanı mı (ad/e-posta gibi rezerve) yoksa
// organizatörün eklediği özel alan mı olduğunu ayırır.
type FieldCategory string

const (
	FieldCategorySystem FieldCategory = "SYSTEM"
	FieldCategoryCustom FieldCategory = "CUSTOM"
)

// Sistem alanlarının sabit anahtarları. Her etkinlikte bulunur, silinemezler.
const (
	SystemFieldKeyName  = "__name__"
	SystemFieldKeyEmail = "__email__"
)

// StringList JSON dizisi olarak saklanan string listesi (SELECT/RADIO/CHECKBOX seçenekleri).
type StringList []string

// Value driver.Valuer implementasyonu.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan sql.Scanner implementasyonu.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("StringList: desteklenmeyen sütun tipi")
	}
}

// FormField bir etkinliğin kayıt formundaki tek bir alanı tanımlar.
// FieldKey alan düzenlense bile sabit kalır; kayıt cevapları bu anahtarla
// saklandığı için form değişiklikleri eski cevapları koparmaz.
type FormField struct {
	BaseModel
	EventID      uint          `gorm:"not null;index;index:idx_form_fields_event_key,unique"`
	FieldKey     string        `gorm:"type:varchar(64);not null;index:idx_form_fields_event_key,unique"`
	Label        string        `gorm:"type:varchar(255);not null"`
	Type         FieldType     `gorm:"type:varchar(20);not null;default:'TEXT'"`
	Category     FieldCategory `gorm:"type:varchar(20);not null;default:'CUSTOM';index"`
	Required     bool          `gorm:"default:false"`
	Options      StringList    `gorm:"type:jsonb"`
	DisplayOrder int           `gorm:"not null;default:0;index"`
	AllowOther   bool          `gorm:"default:false"`
}

// BeforeCreate FieldKey verilmemişse kalıcı bir anahtar üretir.
func (f *FormField) BeforeCreate(tx *gorm.DB) error {
	if err := f.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if f.FieldKey == "" {
		f.FieldKey = uuid.NewString()
	}
	return nil
}

// IsSystem alanın rezerve sistem alanı olup olmadığını döndürür.
func (f *FormField) IsSystem() bool { return f.Category == FieldCategorySystem }
