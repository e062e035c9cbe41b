package repositories

import (
	"context"
	"errors"
	"strings"

	"kayit.link/configs"
	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IEventRepository etkinlik veritabanı işlemleri için arayüz.
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Event, error)
	SlugExists(ctx context.Context, slug string, excludeEventID uint) (bool, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error)
	FindAllActive(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateDetail(ctx context.Context, detail *models.EventDetail) error
	ReplaceFormFields(ctx context.Context, eventID uint, fields []models.FormField) error
	Archive(ctx context.Context, event *models.Event, archivedByUserID uint) error
	CountAll(ctx context.Context) (int64, error)
}

// EventRepository IEventRepository arayüzünü uygular.
type EventRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Event]
}

// NewEventRepository yeni bir EventRepository örneği oluşturur.
func NewEventRepository() IEventRepository {
	db := configs.GetDB()
	return newEventRepository(db)
}

// NewEventRepositoryTx transaction'lı repository örneği oluşturur.
func NewEventRepositoryTx(tx *gorm.DB) IEventRepository {
	return newEventRepository(tx)
}

func newEventRepository(db *gorm.DB) *EventRepository {
	base := NewBaseRepository[models.Event](db)
	base.SetAllowedSortColumns([]string{"id", "created_at", "slug", "is_enabled", "title", "start_date"})
	return &EventRepository{db: db, base: base}
}

// Context'te transaction varsa onu, yoksa context'li ana bağlantıyı döndürür.
func (r *EventRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Create etkinliği detayı ve form alanlarıyla birlikte oluşturur.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil || event.Slug == "" {
		return errors.New("slug'sız etkinlik oluşturulamaz")
	}
	return r.getDB(ctx).Create(event).Error
}

// FindByID etkinliği detay ve form alanlarıyla bulur (arşivlenmişler dahil).
func (r *EventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Event ID")
	}
	var event models.Event
	err := r.getDB(ctx).
		Preload("Detail").
		Preload("FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.display_order ASC") }).
		First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

// FindBySlug etkinliği slug ile bulur (aktiflik kontrolü yapmaz).
func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return r.findBySlug(ctx, slug, false)
}

// FindActiveBySlug sadece aktif (arşivlenmemiş) etkinliği bulur.
// Public kayıt sayfası ve dashboard istatistikleri bunu kullanır.
func (r *EventRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return r.findBySlug(ctx, slug, true)
}

func (r *EventRepository) findBySlug(ctx context.Context, slug string, onlyActive bool) (*models.Event, error) {
	if slug == "" {
		return nil, errors.New("aranacak slug boş olamaz")
	}
	query := r.getDB(ctx).
		Preload("Detail").
		Preload("FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("form_fields.display_order ASC") }).
		Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_enabled = ?", true)
	}
	var event models.Event
	err := query.First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.findBySlug: DB error", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

// SlugExists slug'ın başka bir etkinlikte kullanılıp kullanılmadığını kontrol eder.
func (r *EventRepository) SlugExists(ctx context.Context, slug string, excludeEventID uint) (bool, error) {
	if slug == "" {
		return false, errors.New("kontrol edilecek slug boş olamaz")
	}
	query := r.getDB(ctx).Model(&models.Event{}).Where("slug = ?", slug)
	if excludeEventID != 0 {
		query = query.Where("id <> ?", excludeEventID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		configslog.Log.Error("EventRepository.SlugExists: DB error", zap.String("slug", slug), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// applyEventFilters ortak filtreleme ve sıralama mantığını uygular.
func (r *EventRepository) applyEventFilters(db *gorm.DB, params queryparams.ListParams) *gorm.DB {
	query := db

	needsJoin := false
	if params.Name != "" {
		query = query.
			Joins("JOIN event_details ON event_details.event_id = events.id").
			Where("event_details.title ILIKE ? OR events.slug ILIKE ?", "%"+params.Name+"%", "%"+params.Name+"%")
		needsJoin = true
	}
	if params.Status != "" {
		query = query.Where("events.is_enabled = ?", params.Status == "true")
	}

	orderBy := strings.ToLower(params.OrderBy)
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = queryparams.DefaultOrderBy
	}
	allowedSortColumns := map[string]string{
		"id":         "events.id",
		"created_at": "events.created_at",
		"slug":       "events.slug",
		"is_enabled": "events.is_enabled",
		"title":      "event_details.title",
		"start_date": "event_details.start_date",
	}
	orderColumn := "events.created_at"
	if dbCol, ok := allowedSortColumns[params.SortBy]; ok {
		orderColumn = dbCol
		if (params.SortBy == "title" || params.SortBy == "start_date") && !needsJoin {
			query = query.Joins("JOIN event_details ON event_details.event_id = events.id")
		}
	} else {
		configslog.SLog.Warn("Geçersiz Event sıralama alanı istendi, varsayılan kullanılıyor.", zap.String("requestedSortBy", params.SortBy))
	}
	return query.Order(orderColumn + " " + orderBy)
}

// FindAllPaginated tüm etkinlikleri sayfalayarak bulur (Admin için).
func (r *EventRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error) {
	var events []models.Event
	var totalCount int64
	db := r.getDB(ctx)

	query := r.applyEventFilters(db.Model(&models.Event{}), params)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("EventRepository.Count (Paginated): DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return events, 0, nil
	}

	query = query.Preload("Detail").Limit(params.PerPage).Offset(params.CalculateOffset())
	if params.Name != "" {
		query = query.Select("events.*")
	}
	if err := query.Find(&events).Error; err != nil {
		configslog.Log.Error("EventRepository.Find (Paginated): DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return events, totalCount, nil
}

// FindAllActive tüm aktif etkinlikleri (filtre kutuları için) döndürür.
func (r *EventRepository) FindAllActive(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.getDB(ctx).
		Preload("Detail").
		Where("is_enabled = ?", true).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		configslog.Log.Error("EventRepository.FindAllActive: DB error", zap.Error(err))
		return nil, err
	}
	return events, nil
}

// Update ana Event modelini günceller.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if event == nil || event.ID == 0 {
		return errors.New("güncellenecek etkinlik geçerli değil")
	}
	return r.getDB(ctx).Omit("FormFields", "Registrations", "Detail").Save(event).Error
}

// UpdateDetail sadece EventDetail modelini günceller.
func (r *EventRepository) UpdateDetail(ctx context.Context, detail *models.EventDetail) error {
	if detail == nil || detail.ID == 0 {
		return errors.New("güncellenecek etkinlik detayı geçerli değil")
	}
	return r.getDB(ctx).Save(detail).Error
}

// ReplaceFormFields form tanımını akıllıca günceller: FieldKey'i korunan
// alanlar update edilir, listede olmayanlar silinir, yeniler eklenir.
// FieldKey sabit kaldığı için eski kayıtların cevapları çözülebilir kalır.
func (r *EventRepository) ReplaceFormFields(ctx context.Context, eventID uint, fields []models.FormField) error {
	if eventID == 0 {
		return errors.New("geçersiz Event ID")
	}
	db := r.getDB(ctx)

	return db.Transaction(func(tx *gorm.DB) error {
		keptKeys := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.FieldKey != "" {
				keptKeys = append(keptKeys, f.FieldKey)
			}
		}

		// Gönderilmeyen alanları kaldır (sistem alanları hariç).
		del := tx.Where("event_id = ?", eventID).
			Where("category <> ?", models.FieldCategorySystem)
		if len(keptKeys) > 0 {
			del = del.Where("field_key NOT IN ?", keptKeys)
		}
		if err := del.Delete(&models.FormField{}).Error; err != nil {
			configslog.Log.Error("EventRepository.ReplaceFormFields: delete error", zap.Uint("event_id", eventID), zap.Error(err))
			return err
		}

		for i := range fields {
			field := &fields[i]
			field.EventID = eventID
			field.DisplayOrder = i

			if field.FieldKey == "" {
				if err := tx.Create(field).Error; err != nil {
					return err
				}
				continue
			}

			var existing models.FormField
			err := tx.Where("event_id = ? AND field_key = ?", eventID, field.FieldKey).First(&existing).Error
			switch {
			case err == nil:
				existing.Label = field.Label
				existing.Type = field.Type
				existing.Required = field.Required
				existing.Options = field.Options
				existing.AllowOther = field.AllowOther
				existing.DisplayOrder = field.DisplayOrder
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(field).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}

// Archive etkinliği arşivler: IsEnabled=false. Kayıtlar etkinliğe referans
// verdiği için fiziksel silme yapılmaz.
func (r *EventRepository) Archive(ctx context.Context, event *models.Event, archivedByUserID uint) error {
	if event == nil || event.ID == 0 {
		return errors.New("arşivlenecek etkinlik geçerli değil")
	}
	db := r.getDB(ctx)

	result := db.Model(event).
		Where("id = ? AND is_enabled = ?", event.ID, true).
		Updates(map[string]interface{}{"is_enabled": false, "updated_by": &archivedByUserID})
	if result.Error != nil {
		configslog.Log.Error("EventRepository.Archive: DB error", zap.Uint("id", event.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAll tüm etkinliklerin sayısını döndürür.
func (r *EventRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Event{}).Count(&count).Error
	return count, err
}

// Arayüz uyumluluğu kontrolü
var _ IEventRepository = (*EventRepository)(nil)
