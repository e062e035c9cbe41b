package utils

import (
	"errors"

	"kayit.link/configs"
	"kayit.link/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Session anahtarları.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUserName = "user_name"
	SessionKeyUserRole = "user_role"
)

var ErrSessionValueMissing = errors.New("session değeri bulunamadı")

// SessionStart isteğin session'ını başlatır/yükler.
func SessionStart(c *fiber.Ctx) (*session.Session, error) {
	return configs.GetSessionStore().Get(c)
}

// GetUserIDFromSession session'daki kullanıcı ID'sini döndürür.
func GetUserIDFromSession(sess *session.Session) (uint, error) {
	v, ok := sess.Get(SessionKeyUserID).(uint)
	if !ok || v == 0 {
		return 0, ErrSessionValueMissing
	}
	return v, nil
}

// GetUserRoleFromSession session'daki rolü döndürür.
func GetUserRoleFromSession(sess *session.Session) (models.UserRole, error) {
	v, ok := sess.Get(SessionKeyUserRole).(string)
	if !ok || v == "" {
		return "", ErrSessionValueMissing
	}
	return models.UserRole(v), nil
}

// SetUserSession giriş sonrası kullanıcı bilgilerini session'a yazar.
func SetUserSession(sess *session.Session, user *models.User) error {
	sess.Set(SessionKeyUserID, user.ID)
	sess.Set(SessionKeyUserName, user.Name)
	sess.Set(SessionKeyUserRole, string(user.Role))
	return sess.Save()
}

// ClearUserSession çıkışta session'ı yok eder.
func ClearUserSession(sess *session.Session) error {
	return sess.Destroy()
}

// CurrentUserID handler içinden locals'a yazılmış kullanıcı ID'sini okur.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	v, ok := c.Locals("userID").(uint)
	return v, ok && v != 0
}
