package middlewares

import (
	"kayit.link/models"
	"kayit.link/pkg/flashmessages"
	"kayit.link/services"
	"kayit.link/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware giriş yapılmış bir oturum ister; yoksa login sayfasına yollar.
func AuthMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Bu sayfa için giriş yapmalısınız.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// GuestMiddleware sadece oturumu olmayan kullanıcılara izin verir
// (login formu gibi). Girişli kullanıcı rolüne göre yönlendirilir.
func GuestMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if ok && userID != 0 {
		if role, _ := c.Locals("userRole").(string); role == string(models.RoleAdmin) {
			return c.Redirect("/dashboard/home", fiber.StatusFound)
		}
		return c.Redirect("/check-in", fiber.StatusFound)
	}
	return c.Next()
}

// StatusMiddleware oturumdaki kullanıcının hâlâ var ve aktif olduğunu doğrular.
// Pasifleştirilmiş hesapların açık oturumları burada düşürülür.
func StatusMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	user, err := services.NewUserService().GetUserByID(c.UserContext(), userID)
	if err != nil || !user.IsActive {
		if sess, sessErr := utils.SessionStart(c); sessErr == nil {
			_ = utils.ClearUserSession(sess)
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Hesabınız aktif değil.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	// Rol oturumda bayatlamış olabilir, güncelini yaz.
	c.Locals("userRole", string(user.Role))
	return c.Next()
}

// RequireAdmin sadece ADMIN rolüne izin veren middleware döndürür.
// STAFF kullanıcılar check-in ekranına yönlendirilir.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("userRole").(string); role != string(models.RoleAdmin) {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Bu bölüm için yönetici yetkisi gerekli.")
			return c.Redirect("/check-in", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
