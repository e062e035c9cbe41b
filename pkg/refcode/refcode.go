// Package refcode katılımcılara gösterilen kısa referans kodlarını üretir
// ve tarayıcıdan/QR okuyucudan gelen girdiyi koda normalize eder.
package refcode

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

// Prefix tüm referans kodlarının sabit ön eki.
const Prefix = "REF-"

// Pattern geçerli bir referans kodunun biçimi: REF- + 8 büyük hex karakter.
var Pattern = regexp.MustCompile(`^REF-[0-9A-F]{8}$`)

// Generate 4 baytlık kriptografik rastgele değerden bir kod üretir.
// Kod tek başına benzersizlik garantisi taşımaz (çakışma olasılığı 1/2^32);
// benzersizliği veritabanındaki unique constraint sağlar, çağıran taraf
// çakışmada yeniden üretmek zorundadır.
func Generate() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand'ın başarısız olması işletim sistemi seviyesinde bir
		// arızadır; bu durumda kod üretmeye devam etmek anlamsız.
		panic("refcode: rastgele bayt okunamadı: " + err.Error())
	}
	return Prefix + strings.ToUpper(hex.EncodeToString(buf))
}

// urlLike girdinin bir check-in URL'i olup olmadığını kabaca tanır.
var urlLike = regexp.MustCompile(`^https?://|/check-in/`)

// Normalize serbest girdiyi koda çevirir: URL benzeri girdilerde son path
// parçası kod kabul edilir, aksi halde girdinin tamamı. Sonuç trim'lenir ve
// büyük harfe çevrilir. Boş girdi boş string döndürür.
func Normalize(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if urlLike.MatchString(s) {
		s = strings.TrimRight(s, "/")
		if idx := strings.LastIndex(s, "/"); idx >= 0 {
			s = s[idx+1:]
		}
		// Query string taşıyan QR içerikleri görüldü; kod kısmını ayıkla.
		if idx := strings.IndexAny(s, "?#"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.ToUpper(strings.TrimSpace(s))
}
