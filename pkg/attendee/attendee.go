// Package attendee yarı yapılandırılmış kayıt cevaplarından katılımcının
// ad/e-posta/telefon bilgisini çıkarır. Fonksiyon deterministik ve totaldir:
// ne olursa olsun bir sonuç döner, asla panic etmez. Her dashboard satırında
// ve her check-in ekranında çağrılır.
package attendee

import (
	"sort"
	"strings"

	"kayit.link/models"
)

// Info çıkarılan katılımcı bilgisi.
type Info struct {
	Name  string
	Email string
	Phone string
}

// Bilgi bulunamadığında dönen sabitler.
const (
	UnknownName = "Unknown"
	NotAvail    = "N/A"
)

// Etiket desenleri hem Latin hem Thai alan adlarını tanır. Eski kurulumların
// verisi Thai etiketlerle anahtarlandığı için bunlar bilinçli olarak korunuyor.
var (
	namePatterns  = []string{"name", "ชื่อ", "นาม"}
	emailPatterns = []string{"email", "อีเมล"}
	phonePatterns = []string{"phone", "เบอร์โทร", "โทรศัพท์"}

	legacyNameKeys  = []string{models.SystemFieldKeyName, "name", "default_name", "ชื่อ-นามสกุล", "ชื่อ - นามสกุล", "ชื่อ"}
	legacyEmailKeys = []string{models.SystemFieldKeyEmail, "email", "default_email", "อีเมล"}
	legacyPhoneKeys = []string{"__phone__", "phone", "default_phone", "tel", "เบอร์โทรศัพท์", "โทรศัพท์"}
)

// Extract cevap haritasından ad, e-posta ve telefon çıkarır. Alan tanımları
// verilmişse önce onlar üzerinden eşleştirme yapılır; verilmemişse bilinen
// anahtarlar ve son çare sezgisel taramalar kullanılır.
//
// Özellik başına çözümleme sırası (ilk eşleşme kazanır):
//  1. SYSTEM kategorili/rezerve alanın cevabı (FieldKey veya etiketle)
//  2. Etiketi desene uyan ya da tipi EMAIL/PHONE olan alanın cevabı
//  3. Bilinen eski anahtarlar (name, email, __name__, Thai karşılıkları...)
//  4. Sezgisel tarama (e-posta: '@' ve '.' içeren ilk değer; ad: '@' içermeyen ilk metin)
//  5. "Unknown" / "N/A"
func Extract(answers models.AnswerMap, fields []models.FormField) Info {
	if answers == nil {
		answers = models.AnswerMap{}
	}

	name := fromFields(answers, fields, models.SystemFieldKeyName, namePatterns, "")
	if name == "" {
		name = fromKeys(answers, legacyNameKeys)
	}
	if name == "" {
		name = byKeyPattern(answers, namePatterns)
	}
	if name == "" {
		name = firstNonEmailValue(answers)
	}
	if name == "" {
		name = UnknownName
	}

	email := fromFields(answers, fields, models.SystemFieldKeyEmail, emailPatterns, models.FieldTypeEmail)
	if email == "" {
		email = fromKeys(answers, legacyEmailKeys)
	}
	if email == "" {
		email = firstEmailValue(answers)
	}
	if email == "" {
		email = NotAvail
	}

	phone := fromFields(answers, fields, "", phonePatterns, models.FieldTypePhone)
	if phone == "" {
		phone = fromKeys(answers, legacyPhoneKeys)
	}
	if phone == "" {
		phone = NotAvail
	}

	return Info{Name: name, Email: email, Phone: phone}
}

// fromFields alan tanımları üzerinden eşleşen ilk alanın cevabını döndürür.
// Önce rezerve sistem alanı, sonra etiket/tip eşleşmesi denenir.
func fromFields(answers models.AnswerMap, fields []models.FormField, systemKey string, patterns []string, typ models.FieldType) string {
	if len(fields) == 0 {
		return ""
	}

	if systemKey != "" {
		for _, f := range fields {
			if f.FieldKey == systemKey || (f.IsSystem() && matchesAny(f.Label, patterns)) {
				if v := answerFor(answers, f); v != "" {
					return v
				}
			}
		}
	}

	for _, f := range fields {
		if matchesAny(f.Label, patterns) || (typ != "" && f.Type == typ) {
			if v := answerFor(answers, f); v != "" {
				return v
			}
		}
	}
	return ""
}

// answerFor alanın cevabını önce FieldKey, sonra etiket anahtarıyla arar.
// Eski kayıtlar etiketle anahtarlanmış olabilir.
func answerFor(answers models.AnswerMap, f models.FormField) string {
	if v, ok := answers[f.FieldKey]; ok && !v.IsEmpty() {
		return v.String()
	}
	if v, ok := answers[f.Label]; ok && !v.IsEmpty() {
		return v.String()
	}
	return ""
}

func fromKeys(answers models.AnswerMap, keys []string) string {
	for _, key := range keys {
		if v, ok := answers[key]; ok && !v.IsEmpty() {
			return v.String()
		}
	}
	return ""
}

func matchesAny(label string, patterns []string) bool {
	lower := strings.ToLower(label)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// sortedKeys map taramalarını deterministik yapmak için anahtarları sıralar.
func sortedKeys(answers models.AnswerMap) []string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// byKeyPattern anahtarı desenlerden birini içeren ilk dolu cevabı döndürür.
func byKeyPattern(answers models.AnswerMap, patterns []string) string {
	for _, key := range sortedKeys(answers) {
		if v := answers[key]; !v.IsEmpty() && matchesAny(key, patterns) {
			return v.String()
		}
	}
	return ""
}

// firstEmailValue '@' ve '.' içeren ilk metin cevabı döndürür.
func firstEmailValue(answers models.AnswerMap) string {
	for _, key := range sortedKeys(answers) {
		v := answers[key]
		if v.IsList() || v.IsEmpty() {
			continue
		}
		if strings.Contains(v.Text, "@") && strings.Contains(v.Text, ".") {
			return v.Text
		}
	}
	return ""
}

// firstNonEmailValue '@' içermeyen ilk metin cevabı döndürür (ad için son çare).
func firstNonEmailValue(answers models.AnswerMap) string {
	for _, key := range sortedKeys(answers) {
		v := answers[key]
		if v.IsList() || v.IsEmpty() {
			continue
		}
		if !strings.Contains(v.Text, "@") {
			return v.Text
		}
	}
	return ""
}
