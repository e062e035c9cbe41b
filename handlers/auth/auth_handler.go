package handlers

import (
	"net/http"
	"strings"

	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/pkg/flashmessages"
	"kayit.link/pkg/renderer"
	"kayit.link/services"
	"kayit.link/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler giriş/çıkış ve profil işlemleri için handler.
type AuthHandler struct {
	userService services.IUserService
}

// NewAuthHandler yeni bir AuthHandler örneği oluşturur.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{userService: services.NewUserService()}
}

// ShowLogin giriş formunu gösterir.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title": "Giriş Yap",
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "auth/login", "layouts/auth_layout", renderData, http.StatusOK)
}

// Login e-posta/şifre doğrulaması yapar ve oturumu başlatır.
// Admin panele, görevli check-in ekranına yönlendirilir.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	if email == "" || password == "" {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "E-posta ve şifre zorunludur.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	user, err := h.userService.Authenticate(c.UserContext(), email, password)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	sess, err := utils.SessionStart(c)
	if err != nil {
		configslog.Log.Error("Login: session başlatılamadı", zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Oturum başlatılamadı, lütfen tekrar deneyin.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	if err := utils.SetUserSession(sess, user); err != nil {
		configslog.Log.Error("Login: session yazılamadı", zap.Uint("user_id", user.ID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Oturum başlatılamadı, lütfen tekrar deneyin.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	configslog.SLog.Infof("Giriş yapıldı: %s (%s)", user.Email, user.Role)
	if user.IsAdmin() {
		return c.Redirect("/dashboard/home", fiber.StatusFound)
	}
	return c.Redirect("/check-in", fiber.StatusFound)
}

// Logout oturumu sonlandırır.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sess, err := utils.SessionStart(c); err == nil {
		_ = utils.ClearUserSession(sess)
	}
	return c.Redirect("/auth/login", fiber.StatusFound)
}

// Profile kullanıcının profil sayfasını gösterir.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Profil bilgileri alınamadı.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title":   "Profilim",
		"User":    user,
		"IsAdmin": user.Role == models.RoleAdmin,
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "auth/profile", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// UpdatePassword profil sayfasından şifre değiştirir.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	current := c.FormValue("current_password")
	newPassword := c.FormValue("new_password")
	confirm := c.FormValue("confirm_password")

	if len(newPassword) < 8 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Yeni şifre en az 8 karakter olmalı.")
		return c.Redirect("/auth/profile", fiber.StatusSeeOther)
	}
	if newPassword != confirm {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Yeni şifreler eşleşmiyor.")
		return c.Redirect("/auth/profile", fiber.StatusSeeOther)
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	if _, err := h.userService.Authenticate(c.UserContext(), user.Email, current); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Mevcut şifre hatalı.")
		return c.Redirect("/auth/profile", fiber.StatusSeeOther)
	}

	if err := h.userService.UpdatePassword(c.UserContext(), userID, newPassword); err != nil {
		configslog.Log.Error("UpdatePassword Error", zap.Uint("user_id", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Şifre güncellenemedi.")
		return c.Redirect("/auth/profile", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Şifreniz güncellendi.")
	return c.Redirect("/auth/profile", fiber.StatusFound)
}
