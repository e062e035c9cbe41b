package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"kayit.link/configs/configslog"
	"kayit.link/configs/configsmailer"
	"kayit.link/models"
	"kayit.link/pkg/attendee"
	"kayit.link/pkg/queryparams"
	"kayit.link/pkg/refcode"
	"kayit.link/repositories"

	"go.uber.org/zap"
)

// RegistrationServiceError özel servis hataları
type RegistrationServiceError string

func (e RegistrationServiceError) Error() string { return string(e) }

const (
	ErrRegEventNotFound      RegistrationServiceError = "etkinlik bulunamadı veya kayıt alımı kapalı"
	ErrRegMissingRequired    RegistrationServiceError = "zorunlu alanlar doldurulmalı"
	ErrRegistrationNotFound  RegistrationServiceError = "kayıt bulunamadı"
	ErrRegistrationFailed    RegistrationServiceError = "kayıt oluşturulamadı, lütfen tekrar deneyin"
	ErrRegistrationOpFailed  RegistrationServiceError = "kayıt işlemi sırasında bir hata oluştu"
	ErrRegInvalidStatus      RegistrationServiceError = "geçersiz kayıt durumu"
)

// maxReferenceCodeAttempts referans kodu çakışmasında yapılacak en fazla
// deneme sayısı. 32 bitlik rastgele uzayda çakışma pratikte görülmez;
// üçüncü denemenin de çakışması veri sorununa işarettir.
const maxReferenceCodeAttempts = 3

// formFieldPrefix kayıt formundaki cevap alanlarının input adlarında
// kullanılan önek. "field_<fieldKey>" -> "<fieldKey>"
const formFieldPrefix = "field_"

// "Diğer" seçeneğine izin veren alanlarda serbest metin girdisi
// "field_<fieldKey>_other" adıyla gelir; select/radio seçiminde
// otherOptionValue işaretçisi bu metinle değiştirilir.
const (
	otherOptionValue = "__other__"
	otherFieldSuffix = "_other"
)

// IRegistrationService kayıt işlemleri için arayüz.
type IRegistrationService interface {
	Register(ctx context.Context, slug string, form map[string][]string) (*models.Registration, error)
	GetRegistrationByID(ctx context.Context, id uint) (*models.Registration, error)
	GetRegistrationByCode(ctx context.Context, code string) (*models.Registration, error)
	GetAllRegistrationsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateRegistration(ctx context.Context, id uint, status models.RegStatus, answers models.AnswerMap, updatedByUserID uint) error
	ExportCSV(ctx context.Context, eventID uint, search string) ([]byte, string, error)
}

// RegistrationService IRegistrationService arayüzünü uygular.
type RegistrationService struct {
	registrationRepo repositories.IRegistrationRepository
	eventRepo        repositories.IEventRepository
	mailer           *configsmailer.Mailer
}

// NewRegistrationService yeni bir RegistrationService örneği oluşturur.
func NewRegistrationService() IRegistrationService {
	return &RegistrationService{
		registrationRepo: repositories.NewRegistrationRepository(),
		eventRepo:        repositories.NewEventRepository(),
		mailer:           configsmailer.NewMailerFromEnv(),
	}
}

// newRegistrationServiceWithRepos testlerde sahte bağımlılıklarla kurulum için.
func newRegistrationServiceWithRepos(reg repositories.IRegistrationRepository, ev repositories.IEventRepository, mailer *configsmailer.Mailer) *RegistrationService {
	return &RegistrationService{registrationRepo: reg, eventRepo: ev, mailer: mailer}
}

// Register herkese açık kayıt formunu işler. Form girdileri
// "field_<fieldKey>" adlarıyla gelir; cevaplar fieldKey ile saklanır,
// böylece alan etiketi sonradan değişse de cevaplar alanına bağlı kalır.
//
// Referans kodu rastgele üretilir ve unique constraint'e yazılarak
// doğrulanır: çakışma yakalanırsa yeni kodla tekrar denenir, başka her
// hata ilk denemede işlemi sonlandırır.
func (s *RegistrationService) Register(ctx context.Context, slug string, form map[string][]string) (*models.Registration, error) {
	event, err := s.eventRepo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRegEventNotFound
		}
		configslog.Log.Error("Register: etkinlik aranırken hata", zap.String("slug", slug), zap.Error(err))
		return nil, ErrRegistrationOpFailed
	}

	answers, err := BuildAnswers(event.FormFields, form, true)
	if err != nil {
		return nil, err
	}

	var registration *models.Registration
	for attempt := 1; attempt <= maxReferenceCodeAttempts; attempt++ {
		candidate := &models.Registration{
			EventID:       event.ID,
			ReferenceCode: refcode.Generate(),
			Status:        models.RegStatusConfirmed,
			Answers:       answers,
		}
		err = s.registrationRepo.Create(ctx, candidate)
		if err == nil {
			registration = candidate
			break
		}
		if !repositories.IsDuplicateKey(err) {
			configslog.Log.Error("Register: kayıt yazılamadı",
				zap.String("slug", slug), zap.Uint("event_id", event.ID), zap.Error(err))
			return nil, ErrRegistrationFailed
		}
		configslog.SLog.Warnf("Referans kodu çakıştı, yeniden deneniyor (%d/%d): %s",
			attempt, maxReferenceCodeAttempts, candidate.ReferenceCode)
	}
	if registration == nil {
		configslog.Log.Error("Register: referans kodu denemeleri tükendi", zap.Uint("event_id", event.ID))
		return nil, ErrRegistrationFailed
	}

	// Onay e-postası bir yan etkidir; başarısızlığı loglanır ama kayıt
	// akışını asla geri döndürmez.
	s.sendConfirmationEmail(event, registration)

	return registration, nil
}

// BuildAnswers form girdilerini alan anahtarlarına çevirir. Checkbox
// alanları çok değerli, diğerleri tek değerlidir. enforceRequired public
// kayıt formunda açıktır; admin düzenlemesinde cevaplar serbestçe silinebilir.
func BuildAnswers(fields []models.FormField, form map[string][]string, enforceRequired bool) (models.AnswerMap, error) {
	answers := models.AnswerMap{}
	for _, field := range fields {
		values := form[formFieldPrefix+field.FieldKey]

		var other string
		if field.AllowOther {
			if extra := form[formFieldPrefix+field.FieldKey+otherFieldSuffix]; len(extra) > 0 {
				other = strings.TrimSpace(extra[0])
			}
		}

		if field.Type == models.FieldTypeCheckbox {
			selected := make([]string, 0, len(values))
			for _, v := range values {
				if trimmed := strings.TrimSpace(v); trimmed != "" && trimmed != otherOptionValue {
					selected = append(selected, trimmed)
				}
			}
			if other != "" {
				selected = append(selected, other)
			}
			if enforceRequired && field.Required && len(selected) == 0 {
				return nil, ErrRegMissingRequired
			}
			if len(selected) > 0 {
				answers[field.FieldKey] = models.AnswerValue{List: selected}
			}
			continue
		}

		var value string
		if len(values) > 0 {
			value = strings.TrimSpace(values[0])
		}
		if value == otherOptionValue {
			value = other
		}
		if enforceRequired && field.Required && value == "" {
			return nil, ErrRegMissingRequired
		}
		if value != "" {
			answers[field.FieldKey] = models.AnswerValue{Text: value}
		}
	}
	return answers, nil
}

func (s *RegistrationService) sendConfirmationEmail(event *models.Event, registration *models.Registration) {
	if s.mailer == nil {
		return
	}
	info := attendee.Extract(registration.Answers, event.FormFields)
	if info.Email == attendee.NotAvail {
		configslog.SLog.Infof("Kayıtta e-posta adresi yok, onay e-postası atlandı: %s", registration.ReferenceCode)
		return
	}

	data := configsmailer.ConfirmationData{
		To:            info.Email,
		Name:          info.Name,
		EventTitle:    event.Detail.Title,
		ReferenceCode: registration.ReferenceCode,
		EventDate:     event.Detail.StartDate,
		CustomSubject: event.Detail.EmailSubject,
		CustomBody:    event.Detail.EmailBody,
		AttachmentURL: event.Detail.EmailAttachmentURL,
	}
	if err := s.mailer.SendConfirmation(data); err != nil {
		configslog.Log.Error("Onay e-postası gönderilemedi",
			zap.String("reference_code", registration.ReferenceCode),
			zap.String("to", info.Email), zap.Error(err))
	}
}

// GetRegistrationByID ID'ye göre tek bir kaydı ilişkileriyle getirir.
func (s *RegistrationService) GetRegistrationByID(ctx context.Context, id uint) (*models.Registration, error) {
	registration, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, ErrRegistrationOpFailed
	}
	return registration, nil
}

// GetRegistrationByCode kayıt başarı sayfası için referans koduyla arama yapar.
func (s *RegistrationService) GetRegistrationByCode(ctx context.Context, code string) (*models.Registration, error) {
	normalized := refcode.Normalize(code)
	if normalized == "" {
		return nil, ErrRegistrationNotFound
	}
	registration, err := s.registrationRepo.FindByReferenceCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, ErrRegistrationOpFailed
	}
	return registration, nil
}

// GetAllRegistrationsPaginated admin tablosu için filtreli/sayfalı liste döndürür.
func (s *RegistrationService) GetAllRegistrationsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	registrations, totalCount, err := s.registrationRepo.FindAllPaginated(ctx, params)
	if err != nil {
		configslog.Log.Error("Kayıtlar listelenirken hata", zap.Error(err))
		return nil, ErrRegistrationOpFailed
	}
	return queryparams.NewPaginatedResult(registrations, totalCount, params), nil
}

// UpdateRegistration admin düzenlemesiyle durum ve cevapları günceller.
func (s *RegistrationService) UpdateRegistration(ctx context.Context, id uint, status models.RegStatus, answers models.AnswerMap, updatedByUserID uint) error {
	switch status {
	case models.RegStatusPending, models.RegStatusConfirmed, models.RegStatusCancelled:
	default:
		return ErrRegInvalidStatus
	}

	registration, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRegistrationNotFound
		}
		return ErrRegistrationOpFailed
	}

	registration.Status = status
	if answers != nil {
		registration.Answers = answers
	}

	ctx = contextWithUserID(ctx, updatedByUserID)
	if err := s.registrationRepo.Update(ctx, registration); err != nil {
		configslog.Log.Error("Kayıt güncellenemedi", zap.Uint("id", id), zap.Error(err))
		return ErrRegistrationOpFailed
	}
	return nil
}

// ExportCSV filtrelenmiş kayıtları CSV olarak üretir ve dosya adını döndürür.
// Tek etkinlik seçiliyse sütunlar o etkinliğin form alanlarından türetilir,
// tüm etkinlikler için ortak katılımcı sütunları kullanılır.
func (s *RegistrationService) ExportCSV(ctx context.Context, eventID uint, search string) ([]byte, string, error) {
	registrations, err := s.registrationRepo.FindAllForExport(ctx, eventID, search)
	if err != nil {
		configslog.Log.Error("CSV dışa aktarımı için kayıtlar okunamadı", zap.Error(err))
		return nil, "", ErrRegistrationOpFailed
	}

	var fields []models.FormField
	if eventID != 0 {
		event, err := s.eventRepo.FindByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, "", ErrRegEventNotFound
			}
			return nil, "", ErrRegistrationOpFailed
		}
		fields = event.FormFields
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Reference Code", "Event", "Status", "Registered At", "Checked-in At"}
	if eventID != 0 {
		for _, field := range fields {
			header = append(header, field.Label)
		}
	} else {
		header = append(header, "Name", "Email", "Phone")
	}
	if err := w.Write(header); err != nil {
		return nil, "", ErrRegistrationOpFailed
	}

	for _, reg := range registrations {
		checkedInAt := ""
		if reg.CheckIn != nil {
			checkedInAt = reg.CheckIn.ScannedAt.Format(time.RFC3339)
		}
		row := []string{
			reg.ReferenceCode,
			reg.Event.Detail.Title,
			string(reg.Status),
			reg.CreatedAt.Format(time.RFC3339),
			checkedInAt,
		}
		if eventID != 0 {
			for _, field := range fields {
				answer, ok := reg.Answers[field.FieldKey]
				if !ok {
					// Eski kayıtlar cevapları etiketle saklamış olabilir.
					answer = reg.Answers[field.Label]
				}
				row = append(row, answer.String())
			}
		} else {
			info := attendee.Extract(reg.Answers, reg.Event.FormFields)
			row = append(row, info.Name, info.Email, info.Phone)
		}
		if err := w.Write(row); err != nil {
			return nil, "", ErrRegistrationOpFailed
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", ErrRegistrationOpFailed
	}

	filename := fmt.Sprintf("registrations-%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// Arayüz uyumluluğu kontrolü
var _ IRegistrationService = (*RegistrationService)(nil)
