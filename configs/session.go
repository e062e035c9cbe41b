package configs

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/session"
)

var sessionStore *session.Store

// SetupSession cookie tabanlı session store'u oluşturur (tek sefer).
func SetupSession() *session.Store {
	if sessionStore != nil {
		return sessionStore
	}
	sessionStore = session.New(session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:kayit_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   os.Getenv("APP_ENV") == "production",
	})
	return sessionStore
}

// GetSessionStore mevcut store'u döndürür, yoksa oluşturur.
func GetSessionStore() *session.Store {
	return SetupSession()
}

var csrfHandler fiber.Handler

// SetupCSRF form gönderimleri için CSRF middleware'ini yapılandırır (tek
// sefer; gruplar aynı instance'ı paylaşır). Token view'lara c.Locals("csrf")
// ile taşınır.
func SetupCSRF() fiber.Handler {
	if csrfHandler != nil {
		return csrfHandler
	}
	csrfHandler = csrf.New(csrf.Config{
		KeyLookup:      "form:_csrf",
		CookieName:     "kayit_csrf",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		ContextKey:     "csrf",
	})
	return csrfHandler
}
