package repositories

import (
	"context"

	"gorm.io/gorm"
)

// IBaseRepository ortak CRUD işlemleri için generik arayüz.
type IBaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	Count(ctx context.Context) (int64, error)
	SetAllowedSortColumns(columns []string)
	AllowedSortColumn(column string) bool
}

// BaseRepository IBaseRepository'nin GORM implementasyonu.
type BaseRepository[T any] struct {
	db             *gorm.DB
	allowedColumns map[string]struct{}
}

// NewBaseRepository yeni bir generik repository örneği oluşturur.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db, allowedColumns: map[string]struct{}{}}
}

// SetAllowedSortColumns sıralamaya izin verilen sütunları belirler
// (query string'den gelen sort_by değerinin doğrulanması için).
func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	r.allowedColumns = make(map[string]struct{}, len(columns))
	for _, col := range columns {
		r.allowedColumns[col] = struct{}{}
	}
}

// AllowedSortColumn sütunun sıralamada kullanılabilir olup olmadığını döndürür.
func (r *BaseRepository[T]) AllowedSortColumn(column string) bool {
	_, ok := r.allowedColumns[column]
	return ok
}

// Create yeni kayıt oluşturur.
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// FindByID ID ile tek kayıt bulur.
func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// Count toplam kayıt sayısını döndürür.
func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var entity T
	var count int64
	err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error
	return count, err
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)
