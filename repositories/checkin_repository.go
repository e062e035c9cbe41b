package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kayit.link/configs"
	"kayit.link/configs/configslog"
	"kayit.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ICheckInRepository check-in veritabanı işlemleri için arayüz.
type ICheckInRepository interface {
	// CreateWithStatus tek atomik işlemde CheckIn satırını oluşturur VE
	// kaydın durumunu CONFIRMED yapar; ikisi birlikte commit olur ya da
	// hiçbiri olmaz. registration_id unique index'ine çarparsa
	// ErrDuplicateKey döner: iki görevli aynı kodu aynı anda okuttu demektir.
	CreateWithStatus(ctx context.Context, registrationID, staffID uint) (*models.CheckIn, error)
	FindByRegistrationID(ctx context.Context, registrationID uint) (*models.CheckIn, error)
	DeleteByRegistrationID(ctx context.Context, registrationID uint, deletedByUserID uint) error
	FindRecentByEventID(ctx context.Context, eventID uint, limit int) ([]models.CheckIn, error)
	CountByEventID(ctx context.Context, eventID uint) (int64, error)
}

// CheckInRepository ICheckInRepository arayüzünü uygular.
type CheckInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository yeni bir CheckInRepository örneği oluşturur.
func NewCheckInRepository() ICheckInRepository {
	return &CheckInRepository{db: configs.GetDB()}
}

// NewCheckInRepositoryTx transaction'lı repository örneği oluşturur.
func NewCheckInRepositoryTx(tx *gorm.DB) ICheckInRepository {
	return &CheckInRepository{db: tx}
}

func (r *CheckInRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// CreateWithStatus check-in yazma yolunun tamamıdır. Doğruluk okuma anındaki
// "check-in yok" gözlemine değil, insert sırasında veritabanının unique
// constraint kararına dayanır.
func (r *CheckInRepository) CreateWithStatus(ctx context.Context, registrationID, staffID uint) (*models.CheckIn, error) {
	if registrationID == 0 {
		return nil, errors.New("geçersiz Registration ID")
	}
	if staffID == 0 {
		return nil, errors.New("geçersiz Staff ID")
	}

	checkIn := &models.CheckIn{
		RegistrationID: registrationID,
		StaffID:        staffID,
		ScannedAt:      time.Now().UTC(),
	}

	err := r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(checkIn).Error; err != nil {
			return err
		}
		return tx.Model(&models.Registration{}).
			Where("id = ?", registrationID).
			Update("status", models.RegStatusConfirmed).Error
	})
	if err != nil {
		if IsDuplicateKey(err) {
			// Beklenen yarış durumu: başka bir görevli aradaki sürede kazandı.
			return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		configslog.Log.Error("CheckInRepository.CreateWithStatus: DB error",
			zap.Uint("registration_id", registrationID), zap.Uint("staff_id", staffID), zap.Error(err))
		return nil, err
	}
	return checkIn, nil
}

// FindByRegistrationID kayda ait check-in satırını bulur.
func (r *CheckInRepository) FindByRegistrationID(ctx context.Context, registrationID uint) (*models.CheckIn, error) {
	if registrationID == 0 {
		return nil, errors.New("geçersiz Registration ID")
	}
	var checkIn models.CheckIn
	err := r.getDB(ctx).Where("registration_id = ?", registrationID).First(&checkIn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("CheckInRepository.FindByRegistrationID: DB error", zap.Uint("registration_id", registrationID), zap.Error(err))
		return nil, err
	}
	return &checkIn, nil
}

// DeleteByRegistrationID check-in'i geri alır (Admin "undo"). Kayıt tekrar
// check-in yapılmamış duruma döner; hard delete, unique index yeniden boşalır.
func (r *CheckInRepository) DeleteByRegistrationID(ctx context.Context, registrationID uint, deletedByUserID uint) error {
	if registrationID == 0 {
		return errors.New("geçersiz Registration ID")
	}
	result := r.getDB(ctx).Unscoped().
		Where("registration_id = ?", registrationID).
		Delete(&models.CheckIn{})
	if result.Error != nil {
		configslog.Log.Error("CheckInRepository.DeleteByRegistrationID: DB error",
			zap.Uint("registration_id", registrationID), zap.Uint("deleted_by", deletedByUserID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	configslog.SLog.Infof("Check-in geri alındı: registration=%d (işlemi yapan: %d)", registrationID, deletedByUserID)
	return nil
}

// FindRecentByEventID etkinliğin son okutmalarını yeniden eskiye döndürür.
func (r *CheckInRepository) FindRecentByEventID(ctx context.Context, eventID uint, limit int) ([]models.CheckIn, error) {
	if eventID == 0 {
		return nil, errors.New("geçersiz Event ID")
	}
	if limit <= 0 {
		limit = 10
	}
	var checkIns []models.CheckIn
	err := r.getDB(ctx).
		Joins("JOIN registrations ON registrations.id = check_ins.registration_id").
		Where("registrations.event_id = ?", eventID).
		Order("check_ins.scanned_at DESC").
		Limit(limit).
		Find(&checkIns).Error
	if err != nil {
		configslog.Log.Error("CheckInRepository.FindRecentByEventID: DB error", zap.Uint("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return checkIns, nil
}

// CountByEventID etkinlikte check-in yapılmış kayıt sayısını döndürür.
func (r *CheckInRepository) CountByEventID(ctx context.Context, eventID uint) (int64, error) {
	if eventID == 0 {
		return 0, errors.New("geçersiz Event ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.CheckIn{}).
		Joins("JOIN registrations ON registrations.id = check_ins.registration_id").
		Where("registrations.event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

// Arayüz uyumluluğu kontrolü
var _ ICheckInRepository = (*CheckInRepository)(nil)
