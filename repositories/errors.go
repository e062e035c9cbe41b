package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository katmanının sınır hataları. Servisler sürücüye özgü hata
// metinlerini değil bu sentinel'leri tanır.
var (
	// ErrNotFound aranan kayıt yok.
	ErrNotFound = errors.New("kayıt bulunamadı")
	// ErrDuplicateKey bir unique constraint ihlal edildi. Referans kodu
	// çakışmasında "yeniden dene", check-in yarışında "zaten yapılmış"
	// anlamına gelir; ikisi de beklenen, kurtarılabilir durumlardır.
	ErrDuplicateKey = errors.New("benzersizlik kısıtı ihlali")
)

// IsDuplicateKey verilen hatanın unique constraint ihlali olup olmadığını
// söyler. GORM'un TranslateError çevirisi esas alınır; çeviri yapılamayan
// sürücü hataları için Postgres mesajına bakılır.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
