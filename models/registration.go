package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// RegStatus kayıt durumlarını tanımlar.
type RegStatus string

const (
	RegStatusPending   RegStatus = "PENDING"
	RegStatusConfirmed RegStatus = "CONFIRMED"
	RegStatusCancelled RegStatus = "CANCELLED"
)

// AnswerValue tek bir form cevabıdır: düz metin ya da (CHECKBOX için)
// seçilen değerlerin listesi. İkisinden yalnızca biri doludur.
type AnswerValue struct {
	Text string
	List []string
}

// IsList cevabın çoklu seçim olup olmadığını döndürür.
func (v AnswerValue) IsList() bool { return v.List != nil }

// IsEmpty cevabın boş/falsy olup olmadığını döndürür.
func (v AnswerValue) IsEmpty() bool {
	if v.IsList() {
		return len(v.List) == 0
	}
	return v.Text == ""
}

// String cevabın görüntülenecek halini döndürür.
func (v AnswerValue) String() string {
	if v.IsList() {
		out := ""
		for i, s := range v.List {
			if i > 0 {
				out += ", "
			}
			out += s
		}
		return out
	}
	return v.Text
}

// MarshalJSON listeyi JSON dizisi, metni JSON string olarak yazar.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON string, dizi ve (eski kayıtlar için) sayı/bool değerlerini kabul eder.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue{Text: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		*v = AnswerValue{List: list}
		return nil
	}
	// Eski kayıtlarda sayı veya bool görülebiliyor; string'e çevirip sakla.
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = AnswerValue{Text: fmt.Sprintf("%v", raw)}
	return nil
}

// AnswerMap alan anahtarından (FieldKey veya etiket) cevaba eşlemedir.
// JSONB sütunu olarak saklanır; form tanımı değişse de açık şema korunur.
type AnswerMap map[string]AnswerValue

// Value driver.Valuer implementasyonu.
func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		m = AnswerMap{}
	}
	return json.Marshal(m)
}

// Scan sql.Scanner implementasyonu.
func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnswerMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("AnswerMap: desteklenmeyen sütun tipi")
	}
}

// Registration bir katılımcının etkinlik kaydıdır.
// ReferenceCode sistem genelinde (etkinlikten bağımsız) benzersizdir;
// benzersizlik bu sütundaki unique constraint ile garanti edilir,
// üretici fonksiyon garanti vermez.
type Registration struct {
	BaseModel
	EventID       uint      `gorm:"index;not null"`
	ReferenceCode string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Status        RegStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Answers       AnswerMap `gorm:"type:jsonb"`

	// GORM İlişkileri
	Event   Event    `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CheckIn *CheckIn `gorm:"foreignKey:RegistrationID"`
}
