package routes

import (
	handlers "kayit.link/handlers/checkin"
	"kayit.link/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerCheckInRoutes /check-in altındaki rotaları tanımlar.
// ADMIN ve STAFF rollerinin ikisi de erişebilir. Okuyucunun fetch ile
// gönderdiği JSON istekleri kırılmasın diye CSRF uygulanmaz.
func registerCheckInRoutes(app *fiber.App) {
	checkInHandler := handlers.NewCheckInHandler()

	checkInGroup := app.Group("/check-in")
	checkInGroup.Use(
		middlewares.AuthMiddleware,
		middlewares.StatusMiddleware,
	)

	checkInGroup.Get("/", checkInHandler.ShowScanner)
	checkInGroup.Post("/verify", checkInHandler.Verify)
	checkInGroup.Get("/auto/:code", checkInHandler.AutoCheckIn)
}
