package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kayit.link/configs"
	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IRegistrationRepository kayıt veritabanı işlemleri için arayüz.
// Create unique constraint ihlalini ErrDuplicateKey olarak ayrıştırır;
// kayıt servisi referans kodu retry döngüsünü bu ayrıma dayandırır.
type IRegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	FindByID(ctx context.Context, id uint) (*models.Registration, error)
	FindByReferenceCode(ctx context.Context, code string) (*models.Registration, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Registration, int64, error)
	FindAllForExport(ctx context.Context, eventID uint, search string) ([]models.Registration, error)
	FindAllByEventID(ctx context.Context, eventID uint) ([]models.Registration, error)
	Update(ctx context.Context, registration *models.Registration) error
	CountByEventID(ctx context.Context, eventID uint) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// RegistrationRepository IRegistrationRepository arayüzünü uygular.
type RegistrationRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Registration]
}

// NewRegistrationRepository yeni bir RegistrationRepository örneği oluşturur.
func NewRegistrationRepository() IRegistrationRepository {
	return newRegistrationRepository(configs.GetDB())
}

// NewRegistrationRepositoryTx transaction'lı repository örneği oluşturur.
func NewRegistrationRepositoryTx(tx *gorm.DB) IRegistrationRepository {
	return newRegistrationRepository(tx)
}

func newRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	base := NewBaseRepository[models.Registration](db)
	base.SetAllowedSortColumns([]string{"id", "created_at", "reference_code", "status"})
	return &RegistrationRepository{db: db, base: base}
}

func (r *RegistrationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Create yeni bir kayıt satırı ekler. Referans kodu unique sütununa çarparsa
// ErrDuplicateKey döner; diğer hatalar olduğu gibi yukarı taşınır.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration == nil || registration.EventID == 0 || registration.ReferenceCode == "" {
		return errors.New("eksik bilgiyle kayıt oluşturulamaz")
	}
	err := r.getDB(ctx).Create(registration).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		configslog.Log.Error("RegistrationRepository.Create: DB error",
			zap.Uint("event_id", registration.EventID), zap.Error(err))
		return err
	}
	return nil
}

// FindByID kaydı etkinlik, form alanları ve check-in ile birlikte bulur.
func (r *RegistrationRepository) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Registration ID")
	}
	var registration models.Registration
	err := r.getDB(ctx).
		Preload("Event.Detail").
		Preload("Event.FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.display_order ASC") }).
		Preload("CheckIn").
		First(&registration, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("RegistrationRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &registration, nil
}

// FindByReferenceCode tam eşleşmeyle kaydı bulur. Check-in servisi adım 2'de
// bunu çağırır; Event ve mevcut CheckIn önceden yüklenir.
func (r *RegistrationRepository) FindByReferenceCode(ctx context.Context, code string) (*models.Registration, error) {
	if code == "" {
		return nil, errors.New("aranacak referans kodu boş olamaz")
	}
	var registration models.Registration
	err := r.getDB(ctx).
		Preload("Event.Detail").
		Preload("Event.FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.display_order ASC") }).
		Preload("CheckIn").
		Where("reference_code = ?", code).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("RegistrationRepository.FindByReferenceCode: DB error", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &registration, nil
}

// applyRegistrationFilters etkinlik filtresi ve serbest aramayı uygular.
// Arama referans kodunda ve cevap haritasının bilinen anahtarlarında yapılır
// (form builder'ın kullandığı name/email/firstName/lastName anahtarları).
func (r *RegistrationRepository) applyRegistrationFilters(db *gorm.DB, params queryparams.ListParams) *gorm.DB {
	query := db.
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("events.is_enabled = ?", true) // Arşivlenen etkinliklerin kayıtları listelenmez

	if params.EventID != 0 {
		query = query.Where("registrations.event_id = ?", params.EventID)
	}
	if params.Status != "" {
		query = query.Where("registrations.status = ?", strings.ToUpper(params.Status))
	}
	if params.Name != "" {
		like := "%" + params.Name + "%"
		query = query.Where(
			`registrations.reference_code ILIKE ?
				OR registrations.answers->>'name' ILIKE ?
				OR registrations.answers->>'email' ILIKE ?
				OR registrations.answers->>'firstName' ILIKE ?
				OR registrations.answers->>'lastName' ILIKE ?
				OR registrations.answers->>'__name__' ILIKE ?
				OR registrations.answers->>'__email__' ILIKE ?`,
			like, like, like, like, like, like, like,
		)
	}

	orderBy := strings.ToLower(params.OrderBy)
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = queryparams.DefaultOrderBy
	}
	allowedSortColumns := map[string]string{
		"id":             "registrations.id",
		"created_at":     "registrations.created_at",
		"reference_code": "registrations.reference_code",
		"status":         "registrations.status",
	}
	orderColumn := "registrations.created_at"
	if dbCol, ok := allowedSortColumns[params.SortBy]; ok {
		orderColumn = dbCol
	}
	return query.Order(orderColumn + " " + orderBy)
}

// FindAllPaginated kayıtları sayfalayarak bulur (Admin tablosu).
func (r *RegistrationRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Registration, int64, error) {
	var registrations []models.Registration
	var totalCount int64
	db := r.getDB(ctx)

	query := r.applyRegistrationFilters(db.Model(&models.Registration{}), params)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("RegistrationRepository.Count (Paginated): DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return registrations, 0, nil
	}

	query = query.
		Select("registrations.*").
		Preload("Event.Detail").
		Preload("Event.FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.display_order ASC") }).
		Preload("CheckIn").
		Limit(params.PerPage).
		Offset(params.CalculateOffset())
	if err := query.Find(&registrations).Error; err != nil {
		configslog.Log.Error("RegistrationRepository.Find (Paginated): DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return registrations, totalCount, nil
}

// FindAllForExport CSV dışa aktarımı için sayfalamasız tüm eşleşen kayıtları döndürür.
func (r *RegistrationRepository) FindAllForExport(ctx context.Context, eventID uint, search string) ([]models.Registration, error) {
	params := queryparams.DefaultListParams("created_at")
	params.EventID = eventID
	params.Name = search

	var registrations []models.Registration
	query := r.applyRegistrationFilters(r.getDB(ctx).Model(&models.Registration{}), params).
		Select("registrations.*").
		Preload("Event.Detail").
		Preload("Event.FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.display_order ASC") }).
		Preload("CheckIn")
	if err := query.Find(&registrations).Error; err != nil {
		configslog.Log.Error("RegistrationRepository.FindAllForExport: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return registrations, nil
}

// FindAllByEventID bir etkinliğin tüm kayıtlarını döndürür (istatistik için).
// Sadece istatistikte okunan sütunlar seçilir.
func (r *RegistrationRepository) FindAllByEventID(ctx context.Context, eventID uint) ([]models.Registration, error) {
	if eventID == 0 {
		return nil, errors.New("geçersiz Event ID")
	}
	var registrations []models.Registration
	err := r.getDB(ctx).
		Select("id", "event_id", "status", "answers").
		Preload("CheckIn").
		Where("event_id = ?", eventID).
		Find(&registrations).Error
	if err != nil {
		configslog.Log.Error("RegistrationRepository.FindAllByEventID: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return registrations, nil
}

// Update kaydın durumunu ve cevaplarını günceller (Admin düzenlemesi).
func (r *RegistrationRepository) Update(ctx context.Context, registration *models.Registration) error {
	if registration == nil || registration.ID == 0 {
		return errors.New("güncellenecek kayıt geçerli değil")
	}
	return r.getDB(ctx).Omit("Event", "CheckIn").Save(registration).Error
}

// CountByEventID bir etkinliğin kayıt sayısını döndürür.
func (r *RegistrationRepository) CountByEventID(ctx context.Context, eventID uint) (int64, error) {
	if eventID == 0 {
		return 0, errors.New("geçersiz Event ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Registration{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// CountAll tüm kayıtların sayısını döndürür.
func (r *RegistrationRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Registration{}).Count(&count).Error
	return count, err
}

// Arayüz uyumluluğu kontrolü
var _ IRegistrationRepository = (*RegistrationRepository)(nil)
