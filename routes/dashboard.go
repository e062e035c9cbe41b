package routes

import (
	"kayit.link/configs"
	handlers "kayit.link/handlers/dashboard"
	"kayit.link/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerDashboardRoutes /dashboard altındaki rotaları tanımlar.
// Sadece ADMIN rolündeki kullanıcılar erişebilir.
func registerDashboardRoutes(app *fiber.App) {
	homeHandler := handlers.NewHomeHandler()
	eventHandler := handlers.NewEventHandler()
	registrationHandler := handlers.NewRegistrationHandler()

	dashboardGroup := app.Group("/dashboard")
	dashboardGroup.Use(
		configs.SetupCSRF(),
		middlewares.AuthMiddleware,   // 1. Giriş yapmış mı?
		middlewares.StatusMiddleware, // 2. Hesap aktif mi?
		middlewares.RequireAdmin(),   // 3. Yönetici mi?
	)

	// --- Ana Sayfa ---
	dashboardGroup.Get("/home", homeHandler.HomePage)

	// --- Etkinlik Yönetimi ---
	dashboardGroup.Get("/events", eventHandler.ListEvents)
	dashboardGroup.Get("/events/create", eventHandler.ShowCreateEvent)
	dashboardGroup.Post("/events/create", eventHandler.CreateEvent)
	dashboardGroup.Get("/events/update/:id", eventHandler.ShowUpdateEvent)
	dashboardGroup.Post("/events/update/:id", eventHandler.UpdateEvent)
	dashboardGroup.Post("/events/archive/:id", eventHandler.ArchiveEvent)
	dashboardGroup.Get("/events/stats/:slug", eventHandler.EventStats)

	// --- Kayıt Yönetimi ---
	dashboardGroup.Get("/registrations", registrationHandler.ListRegistrations)
	dashboardGroup.Get("/registrations/export", registrationHandler.ExportRegistrations)
	dashboardGroup.Get("/registrations/update/:id", registrationHandler.ShowUpdateRegistration)
	dashboardGroup.Post("/registrations/update/:id", registrationHandler.UpdateRegistration)
	dashboardGroup.Post("/registrations/checkin/:id", registrationHandler.ManualCheckIn)
	dashboardGroup.Post("/registrations/undo-checkin/:id", registrationHandler.UndoCheckIn)
}
