package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"kayit.link/configs"
	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/pkg/queryparams"
	"kayit.link/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventServiceError özel servis hataları
type EventServiceError string

func (e EventServiceError) Error() string { return string(e) }

const (
	ErrEventNotFound       EventServiceError = "etkinlik bulunamadı"
	ErrEventCreationFailed EventServiceError = "etkinlik oluşturulamadı"
	ErrEventUpdateFailed   EventServiceError = "etkinlik güncellenemedi"
	ErrEventArchiveFailed  EventServiceError = "etkinlik arşivlenemedi"
	ErrEventInvalidInput   EventServiceError = "geçersiz girdi verisi"
	ErrEventSlugTaken      EventServiceError = "bu adres (slug) zaten kullanılıyor"
)

// slugPattern public URL'de kullanılan etkinlik adresinin biçimi.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = validator.New()

// Kayıt formunda her zaman bulunan kilitli alanlar. FieldKey'leri sabittir,
// böylece katılımcı bilgisi çıkarımı etiket dilinden bağımsız çalışır.
var defaultSystemFields = []models.FormField{
	{FieldKey: models.SystemFieldKeyName, Label: "ชื่อ - นามสกุล", Type: models.FieldTypeText, Required: true, Category: models.FieldCategorySystem},
	{FieldKey: models.SystemFieldKeyEmail, Label: "อีเมล", Type: models.FieldTypeEmail, Required: true, Category: models.FieldCategorySystem},
}

// FormFieldInput form tasarımcısından gelen tek bir alan tanımı.
// FieldKey boşsa yeni alandır ve kaydedilirken üretilir; doluysa mevcut
// alan güncellenir ve eski cevaplar anahtara bağlı kalmaya devam eder.
type FormFieldInput struct {
	FieldKey   string
	Label      string           `validate:"required,max=200"`
	Type       models.FieldType `validate:"required"`
	Required   bool
	Options    []string
	AllowOther bool
	Category   models.FieldCategory
}

// EventInput etkinlik oluşturma/güncelleme formunun DTO'su.
type EventInput struct {
	Slug         string `validate:"required,min=3,max=80"`
	Title        string `validate:"required,max=200"`
	Description  string
	StartDate    string `validate:"required"` // "2006-01-02T15:04" (datetime-local)
	EndDate      string
	Location     string `validate:"max=255"`
	ThemeColor   string `validate:"omitempty,hexcolor"`
	BannerURL    string `validate:"omitempty,url"`
	EmailSubject string `validate:"max=255"`
	EmailBody    string
	AttachmentURL string `validate:"omitempty,url"`
	IsEnabled    bool
	Fields       []FormFieldInput
}

// IEventService etkinlik işlemleri için arayüz.
type IEventService interface {
	CreateEvent(ctx context.Context, creatorUserID uint, input EventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	GetActiveEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	GetAllEventsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	GetAllActiveEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id uint, updatingUserID uint, input EventInput) error
	ArchiveEvent(ctx context.Context, id uint, archivingUserID uint) error
	GetEventCount(ctx context.Context) (int64, error)
}

// EventService IEventService arayüzünü uygular.
type EventService struct {
	repo repositories.IEventRepository
	db   *gorm.DB // Transaction için
}

// NewEventService yeni bir EventService örneği oluşturur.
func NewEventService() IEventService {
	return &EventService{
		repo: repositories.NewEventRepository(),
		db:   configs.GetDB(),
	}
}

// --- Yardımcı Metodlar ---

// contextWithUserID audit kolonları (created_by/updated_by) için kullanıcıyı
// GORM hook'larının okuyacağı context'e koyar.
func contextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, models.ContextUserIDKey, userID)
}

// ValidateEventInput temel validasyonları yapar.
func ValidateEventInput(input EventInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrEventInvalidInput, err)
	}
	if !slugPattern.MatchString(input.Slug) {
		return fmt.Errorf("%w: adres sadece küçük harf, rakam ve tire içerebilir", ErrEventInvalidInput)
	}
	if _, err := models.ParseEventDate(input.StartDate); err != nil {
		return fmt.Errorf("%w: başlangıç tarihi çözümlenemedi", ErrEventInvalidInput)
	}
	if input.EndDate != "" {
		if _, err := models.ParseEventDate(input.EndDate); err != nil {
			return fmt.Errorf("%w: bitiş tarihi çözümlenemedi", ErrEventInvalidInput)
		}
	}
	for _, field := range input.Fields {
		if !field.Type.Valid() {
			return fmt.Errorf("%w: bilinmeyen alan tipi %q", ErrEventInvalidInput, field.Type)
		}
		if field.Type.IsCategorical() && len(field.Options) == 0 {
			return fmt.Errorf("%w: %q alanı için en az bir seçenek girilmeli", ErrEventInvalidInput, field.Label)
		}
	}
	return nil
}

// buildFormFields form tasarımcısı girdisini model listesine çevirir.
// Kilitli sistem alanları her zaman listenin başında yer alır; tasarımcıdan
// gelen kopyaları (etiket/zorunluluk değişiklikleri korunarak) yutulur.
func buildFormFields(inputs []FormFieldInput) []models.FormField {
	fields := make([]models.FormField, 0, len(inputs)+len(defaultSystemFields))

	system := make(map[string]models.FormField, len(defaultSystemFields))
	for _, def := range defaultSystemFields {
		system[def.FieldKey] = def
	}
	for _, in := range inputs {
		if def, ok := system[in.FieldKey]; ok {
			def.Label = strings.TrimSpace(in.Label)
			if def.Label == "" {
				def.Label = system[in.FieldKey].Label
			}
			system[in.FieldKey] = def
		}
	}
	for _, def := range defaultSystemFields {
		fields = append(fields, system[def.FieldKey])
	}

	for _, in := range inputs {
		if _, ok := system[in.FieldKey]; ok {
			continue
		}
		options := make([]string, 0, len(in.Options))
		for _, opt := range in.Options {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				options = append(options, trimmed)
			}
		}
		fields = append(fields, models.FormField{
			FieldKey:   in.FieldKey, // boşsa BeforeCreate üretir
			Label:      strings.TrimSpace(in.Label),
			Type:       in.Type,
			Required:   in.Required,
			Options:    options,
			AllowOther: in.AllowOther && in.Type.IsCategorical(),
			Category:   models.FieldCategoryCustom,
		})
	}
	return fields
}

func (s *EventService) buildDetail(input EventInput) models.EventDetail {
	startDate, _ := models.ParseEventDate(input.StartDate)
	detail := models.EventDetail{
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		StartDate:          startDate,
		Location:           strings.TrimSpace(input.Location),
		ThemeColor:         input.ThemeColor,
		BannerURL:          input.BannerURL,
		EmailSubject:       strings.TrimSpace(input.EmailSubject),
		EmailBody:          input.EmailBody,
		EmailAttachmentURL: input.AttachmentURL,
	}
	if input.EndDate != "" {
		endDate, _ := models.ParseEventDate(input.EndDate)
		detail.EndDate = &endDate
	}
	return detail
}

// --- Servis Metodları ---

// CreateEvent yeni bir etkinliği detayı ve form alanlarıyla birlikte oluşturur.
func (s *EventService) CreateEvent(ctx context.Context, creatorUserID uint, input EventInput) (*models.Event, error) {
	// 1. Validasyon
	if err := ValidateEventInput(input); err != nil {
		return nil, err
	}
	if creatorUserID == 0 {
		return nil, fmt.Errorf("%w: Geçersiz oluşturan kullanıcı ID", ErrEventInvalidInput)
	}

	// 2. Slug kontrolü (asıl güvence DB'deki unique index'tir)
	exists, err := s.repo.SlugExists(ctx, input.Slug, 0)
	if err != nil {
		return nil, ErrEventCreationFailed
	}
	if exists {
		return nil, ErrEventSlugTaken
	}

	// 3. Transaction: Event + Detail + FormFields birlikte yazılır
	var createdEvent *models.Event
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextWithUserID(ctx, creatorUserID)
		eventRepoTx := repositories.NewEventRepositoryTx(tx)

		event := models.Event{
			Slug:          input.Slug,
			CreatorUserID: creatorUserID,
			IsEnabled:     true,
			Detail:        s.buildDetail(input),
			FormFields:    buildFormFields(input.Fields),
		}
		if err := eventRepoTx.Create(txCtx, &event); err != nil {
			if repositories.IsDuplicateKey(err) {
				return ErrEventSlugTaken
			}
			return ErrEventCreationFailed
		}
		createdEvent = &event
		return nil
	})
	if txErr != nil {
		if !errors.Is(txErr, ErrEventSlugTaken) {
			configslog.Log.Error("Etkinlik oluşturulamadı", zap.String("slug", input.Slug), zap.Error(txErr))
		}
		return nil, txErr
	}

	configslog.SLog.Infof("Etkinlik oluşturuldu: ID %d, Başlık: %s, Slug: %s",
		createdEvent.ID, createdEvent.Detail.Title, createdEvent.Slug)
	return createdEvent, nil
}

// GetEventByID etkinliği detay ve alanlarıyla getirir.
func (s *EventService) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// GetEventBySlug arşivlenmişler dahil slug ile etkinlik getirir (panel için).
func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// GetActiveEventBySlug sadece kayıt alımı açık etkinlikleri getirir (public sayfa).
func (s *EventService) GetActiveEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// GetAllEventsPaginated admin listesi için sayfalı etkinlik listesi döndürür.
func (s *EventService) GetAllEventsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	events, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		configslog.Log.Error("Etkinlikler listelenirken hata", zap.Error(err))
		return nil, err
	}
	return queryparams.NewPaginatedResult(events, totalCount, params), nil
}

// GetAllActiveEvents filtre seçenekleri için aktif etkinlikleri döndürür.
func (s *EventService) GetAllActiveEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindAllActive(ctx)
}

// UpdateEvent etkinliği, detayını ve form alanlarını günceller.
// Form alanları FieldKey üzerinden eşleştirilir: mevcut anahtarlar korunur,
// listeden çıkarılan özel alanlar silinir, yeniler eklenir. Sistem alanları
// hiçbir zaman silinmez.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, updatingUserID uint, input EventInput) error {
	if err := ValidateEventInput(input); err != nil {
		return err
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEventNotFound
		}
		return ErrEventUpdateFailed
	}

	if input.Slug != event.Slug {
		exists, err := s.repo.SlugExists(ctx, input.Slug, id)
		if err != nil {
			return ErrEventUpdateFailed
		}
		if exists {
			return ErrEventSlugTaken
		}
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextWithUserID(ctx, updatingUserID)
		eventRepoTx := repositories.NewEventRepositoryTx(tx)

		event.Slug = input.Slug
		event.IsEnabled = input.IsEnabled
		if err := eventRepoTx.Update(txCtx, event); err != nil {
			if repositories.IsDuplicateKey(err) {
				return ErrEventSlugTaken
			}
			return ErrEventUpdateFailed
		}

		detail := s.buildDetail(input)
		detail.ID = event.Detail.ID
		detail.EventID = event.ID
		if err := eventRepoTx.UpdateDetail(txCtx, &detail); err != nil {
			return ErrEventUpdateFailed
		}

		if err := eventRepoTx.ReplaceFormFields(txCtx, event.ID, buildFormFields(input.Fields)); err != nil {
			return ErrEventUpdateFailed
		}
		return nil
	})
	if txErr != nil {
		if !errors.Is(txErr, ErrEventSlugTaken) {
			configslog.Log.Error("Etkinlik güncellenemedi", zap.Uint("id", id), zap.Error(txErr))
		}
		return txErr
	}

	configslog.SLog.Infof("Etkinlik güncellendi: ID %d, Slug: %s", id, input.Slug)
	return nil
}

// ArchiveEvent etkinliği yayından kaldırır; kayıtlar ve check-in geçmişi
// raporlama için yerinde kalır.
func (s *EventService) ArchiveEvent(ctx context.Context, id uint, archivingUserID uint) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEventNotFound
		}
		return ErrEventArchiveFailed
	}
	if err := s.repo.Archive(ctx, event, archivingUserID); err != nil {
		configslog.Log.Error("Etkinlik arşivlenemedi", zap.Uint("id", id), zap.Error(err))
		return ErrEventArchiveFailed
	}
	configslog.SLog.Infof("Etkinlik arşivlendi: ID %d (işlemi yapan: %d)", id, archivingUserID)
	return nil
}

// GetEventCount toplam etkinlik sayısını döndürür.
func (s *EventService) GetEventCount(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}

// Arayüz uyumluluğu kontrolü
var _ IEventService = (*EventService)(nil)
