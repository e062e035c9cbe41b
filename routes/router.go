package routes

import (
	"kayit.link/configs"
	"kayit.link/models"
	"kayit.link/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App) {
	// --- Genel Middleware'ler ---
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama
	app.Use(initializeSessionAndLocals())

	// --- Rota Grupları ---
	registerAuthRoutes(app)      // /auth rotaları
	registerDashboardRoutes(app) // /dashboard rotaları (sadece ADMIN)
	registerCheckInRoutes(app)   // /check-in rotaları (ADMIN + STAFF)

	// --- Kök URL ("/") Yönlendirmesi ---
	app.Get("/", rootRedirector)

	// --- Public Etkinlik Rotaları ---
	// "/:slug" her şeyi yakaladığı için özel gruplardan sonra gelmeli.
	registerPublicRoutes(app)

	// --- 404 Handler ---
	app.Use(notFoundHandler)
}

// initializeSessionAndLocals session'ı yükler ve kullanıcı bilgilerini
// locals'a taşır; handler'lar session'a tekrar gitmez.
func initializeSessionAndLocals() fiber.Handler {
	sessionStore := configs.SetupSession()
	return func(c *fiber.Ctx) error {
		c.Locals("session_store", sessionStore)
		sess, err := utils.SessionStart(c)
		if err != nil {
			return c.Next()
		}
		if userID, idErr := utils.GetUserIDFromSession(sess); idErr == nil {
			c.Locals("userID", userID)
		}
		if role, roleErr := utils.GetUserRoleFromSession(sess); roleErr == nil {
			c.Locals("userRole", string(role))
		}
		if userName, ok := sess.Get(utils.SessionKeyUserName).(string); ok {
			c.Locals("userName", userName)
		}
		return c.Next()
	}
}

// rootRedirector girişli kullanıcıyı rolüne göre yönlendirir.
func rootRedirector(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login", fiber.StatusTemporaryRedirect)
	}
	if role, _ := c.Locals("userRole").(string); role == string(models.RoleAdmin) {
		return c.Redirect("/dashboard/home", fiber.StatusFound)
	}
	return c.Redirect("/check-in", fiber.StatusFound)
}

// notFoundHandler eşleşmeyen tüm istekleri yakalar.
func notFoundHandler(c *fiber.Ctx) error {
	accepts := c.Accepts("application/json", "text/html")
	switch accepts {
	case "application/json":
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Kaynak bulunamadı"})
	default:
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Sayfa Bulunamadı"}, "layouts/error_layout")
	}
}
