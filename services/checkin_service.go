package services

import (
	"context"
	"errors"
	"time"

	"kayit.link/configs/configslog"
	"kayit.link/pkg/attendee"
	"kayit.link/pkg/refcode"
	"kayit.link/repositories"

	"go.uber.org/zap"
)

// CheckInServiceError özel servis hataları
type CheckInServiceError string

func (e CheckInServiceError) Error() string { return string(e) }

const (
	ErrCheckInInvalidInput CheckInServiceError = "referans kodu boş olamaz"
	ErrCheckInNotFound     CheckInServiceError = "kayıt bulunamadı"
	ErrCheckInUnauthorized CheckInServiceError = "check-in için giriş yapılmalı"
	ErrCheckInFailed       CheckInServiceError = "check-in işlemi başarısız oldu"
)

// Scanner arayüzüne dönen sonuç mesajları. QR okuyucu istemcisi bu
// metinleri olduğu gibi gösterdiği için değiştirilmemeli.
const (
	MsgCheckInSuccess   = "Check-in Successful"
	MsgAlreadyCheckedIn = "Already checked in!"
	MsgConcurrentScan   = "Already checked in (concurrent request)"
)

// CheckInAttendee sonuç ekranında gösterilen katılımcı bilgisi.
type CheckInAttendee struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	EventTitle  string     `json:"event_title"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"` // Daha önce yapılmış check-in'in zamanı
}

// CheckInResult bir okutma denemesinin sonucudur. "Zaten check-in yapılmış"
// hata değil beklenen bir sonuçtur; bu yüzden error olarak değil Success=false
// olan bir sonuç değeri olarak döner.
type CheckInResult struct {
	Success  bool
	Message  string
	Attendee *CheckInAttendee
}

// ICheckInService check-in işlemleri için arayüz.
type ICheckInService interface {
	CheckIn(ctx context.Context, rawCode string, staffID uint) (*CheckInResult, error)
	ManualCheckIn(ctx context.Context, registrationID uint, adminUserID uint) error
	UndoCheckIn(ctx context.Context, registrationID uint, adminUserID uint) error
	GetRecentCheckIns(ctx context.Context, eventID uint, limit int) ([]RecentCheckIn, error)
}

// RecentCheckIn son okutmalar listesinin bir satırı.
type RecentCheckIn struct {
	RegistrationID uint
	ReferenceCode  string
	Name           string
	Email          string
	ScannedAt      time.Time
}

// CheckInService ICheckInService arayüzünü uygular.
//
// Kayıt başına en fazla bir check-in invariant'ı burada "önce oku sonra yaz"
// kontrolüyle DEĞİL, check_ins.registration_id üzerindeki unique constraint
// ile sağlanır: adım 2'deki "check-in yok" gözlemi, adım 5 çalışana kadar
// eşzamanlı bir okutucu tarafından bayatlatılmış olabilir. Constraint ihlali
// bu yüzden arıza değil, beklenen ve kurtarılabilir bir sonuçtur.
type CheckInService struct {
	registrationRepo repositories.IRegistrationRepository
	checkInRepo      repositories.ICheckInRepository
}

// NewCheckInService yeni bir CheckInService örneği oluşturur.
func NewCheckInService() ICheckInService {
	return &CheckInService{
		registrationRepo: repositories.NewRegistrationRepository(),
		checkInRepo:      repositories.NewCheckInRepository(),
	}
}

// newCheckInServiceWithRepos testlerde sahte repository'lerle kurulum için.
func newCheckInServiceWithRepos(reg repositories.IRegistrationRepository, ci repositories.ICheckInRepository) *CheckInService {
	return &CheckInService{registrationRepo: reg, checkInRepo: ci}
}

// CheckIn okutulan/girilen kodu kayda çözer ve idempotent check-in yapar.
// Girdi çıplak kod veya check-in URL'i (/check-in/auto/<kod>) olabilir;
// karşılaştırma her zaman büyük harfle yapılır.
func (s *CheckInService) CheckIn(ctx context.Context, rawCode string, staffID uint) (*CheckInResult, error) {
	// 1. Normalize et
	code := refcode.Normalize(rawCode)
	if code == "" {
		return nil, ErrCheckInInvalidInput
	}

	// 2. Kaydı bul (Event ve mevcut CheckIn ile birlikte)
	registration, err := s.registrationRepo.FindByReferenceCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		configslog.Log.Error("CheckIn: kayıt aranırken hata", zap.String("code", code), zap.Error(err))
		return nil, ErrCheckInFailed
	}

	info := attendee.Extract(registration.Answers, registration.Event.FormFields)
	display := &CheckInAttendee{
		Name:       info.Name,
		Email:      info.Email,
		EventTitle: registration.Event.Detail.Title,
	}

	// 3. Zaten check-in yapılmışsa: hata değil, beklenen mükerrer okutma.
	if registration.CheckIn != nil {
		scannedAt := registration.CheckIn.ScannedAt
		display.CheckedInAt = &scannedAt
		return &CheckInResult{Success: false, Message: MsgAlreadyCheckedIn, Attendee: display}, nil
	}

	// 4. Görevli kimliği zorunlu
	if staffID == 0 {
		return nil, ErrCheckInUnauthorized
	}

	// 5. Atomik yazma: CheckIn satırı + kayıt durumu birlikte.
	checkIn, err := s.checkInRepo.CreateWithStatus(ctx, registration.ID, staffID)
	if err != nil {
		// 6. Yarışı kaybettik: adım 2 ile 5 arasında başka bir görevli
		// kazandı. Mükerrer yan etki yok, çağırana hata taşınmaz.
		if repositories.IsDuplicateKey(err) {
			configslog.SLog.Infof("Eşzamanlı check-in yakalandı: %s (staff: %d)", code, staffID)
			return &CheckInResult{Success: false, Message: MsgConcurrentScan, Attendee: display}, nil
		}
		configslog.Log.Error("CheckIn: yazma hatası", zap.String("code", code), zap.Uint("staff_id", staffID), zap.Error(err))
		return nil, ErrCheckInFailed
	}

	// 7. Başarı
	configslog.SLog.Infof("Check-in tamamlandı: %s -> %s (staff: %d)", code, info.Name, staffID)
	scannedAt := checkIn.ScannedAt
	display.CheckedInAt = &scannedAt
	return &CheckInResult{Success: true, Message: MsgCheckInSuccess, Attendee: display}, nil
}

// ManualCheckIn admin panelinden, QR okutmadan yapılan check-in'dir.
// Kayıt zaten check-in yapılmışsa sessizce başarı sayılır.
func (s *CheckInService) ManualCheckIn(ctx context.Context, registrationID uint, adminUserID uint) error {
	if registrationID == 0 || adminUserID == 0 {
		return ErrCheckInInvalidInput
	}
	_, err := s.checkInRepo.CreateWithStatus(ctx, registrationID, adminUserID)
	if err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil
		}
		configslog.Log.Error("ManualCheckIn: yazma hatası", zap.Uint("registration_id", registrationID), zap.Error(err))
		return ErrCheckInFailed
	}
	return nil
}

// UndoCheckIn admin'in bir check-in'i geri almasıdır; kayıt tekrar
// check-in yapılmamış duruma döner.
func (s *CheckInService) UndoCheckIn(ctx context.Context, registrationID uint, adminUserID uint) error {
	if registrationID == 0 || adminUserID == 0 {
		return ErrCheckInInvalidInput
	}
	err := s.checkInRepo.DeleteByRegistrationID(ctx, registrationID, adminUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCheckInNotFound
		}
		return ErrCheckInFailed
	}
	return nil
}

// GetRecentCheckIns etkinliğin son okutmalarını katılımcı bilgileriyle döndürür.
func (s *CheckInService) GetRecentCheckIns(ctx context.Context, eventID uint, limit int) ([]RecentCheckIn, error) {
	checkIns, err := s.checkInRepo.FindRecentByEventID(ctx, eventID, limit)
	if err != nil {
		return nil, ErrCheckInFailed
	}

	recent := make([]RecentCheckIn, 0, len(checkIns))
	for _, ci := range checkIns {
		registration, err := s.registrationRepo.FindByID(ctx, ci.RegistrationID)
		if err != nil {
			configslog.SLog.Warnf("Son check-in satırı için kayıt yüklenemedi: %d", ci.RegistrationID)
			continue
		}
		info := attendee.Extract(registration.Answers, registration.Event.FormFields)
		recent = append(recent, RecentCheckIn{
			RegistrationID: registration.ID,
			ReferenceCode:  registration.ReferenceCode,
			Name:           info.Name,
			Email:          info.Email,
			ScannedAt:      ci.ScannedAt,
		})
	}
	return recent, nil
}

// Arayüz uyumluluğu kontrolü
var _ ICheckInService = (*CheckInService)(nil)
