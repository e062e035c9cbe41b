package services

import (
	"context"
	"errors"

	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceError özel servis hataları
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound           UserServiceError = "kullanıcı bulunamadı"
	ErrInvalidCredentials     UserServiceError = "e-posta veya şifre hatalı"
	ErrUserInactive           UserServiceError = "kullanıcı hesabı pasif durumda"
	ErrUserCreationFailed     UserServiceError = "kullanıcı oluşturulamadı"
	ErrUserEmailTaken         UserServiceError = "bu e-posta adresi zaten kayıtlı"
	ErrPasswordHashingFailed  UserServiceError = "şifre oluşturulamadı"
	ErrUserOperationFailed    UserServiceError = "kullanıcı işlemi başarısız oldu"
)

// IUserService kullanıcı ve kimlik doğrulama işlemleri için arayüz.
type IUserService interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, newPassword string) error
}

// UserService IUserService arayüzünü uygular.
type UserService struct {
	repo repositories.IUserRepository
}

// NewUserService yeni bir UserService örneği oluşturur.
func NewUserService() IUserService {
	return &UserService{repo: repositories.NewUserRepository()}
}

// Authenticate e-posta/şifre ile giriş doğrulaması yapar.
// Hesabın bulunamaması ile şifrenin tutmaması aynı hatayla döner.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		configslog.Log.Error("Authenticate: kullanıcı aranırken hata", zap.String("email", email), zap.Error(err))
		return nil, ErrUserOperationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// GetUserByID ID ile kullanıcı getirir (oturum doğrulaması için).
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrUserOperationFailed
	}
	return user, nil
}

// CreateUser yeni bir panel kullanıcısı oluşturur (seeder ve admin için).
func (s *UserService) CreateUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrPasswordHashingFailed
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, ErrUserEmailTaken
		}
		configslog.Log.Error("Kullanıcı oluşturulamadı", zap.String("email", email), zap.Error(err))
		return nil, ErrUserCreationFailed
	}
	configslog.SLog.Infof("Kullanıcı oluşturuldu: %s (%s)", user.Email, user.Role)
	return user, nil
}

// UpdatePassword kullanıcının şifresini değiştirir.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return ErrUserOperationFailed
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrPasswordHashingFailed
	}
	user.PasswordHash = string(hashedPasswordBytes)

	if err := s.repo.Update(contextWithUserID(ctx, userID), user); err != nil {
		configslog.Log.Error("Şifre güncellenemedi", zap.Uint("user_id", userID), zap.Error(err))
		return ErrUserOperationFailed
	}
	return nil
}

// Arayüz uyumluluğu kontrolü
var _ IUserService = (*UserService)(nil)
