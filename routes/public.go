package routes

import (
	"kayit.link/configs"
	handlers "kayit.link/handlers/public"

	"github.com/gofiber/fiber/v2"
)

// registerPublicRoutes herkese açık etkinlik sayfalarını tanımlar.
// En sonda kayıt edilir; "/:slug" diğer rotalarla çakışmamalı.
func registerPublicRoutes(app *fiber.App) {
	publicHandler := handlers.NewPublicEventHandler()

	app.Get("/:slug", configs.SetupCSRF(), publicHandler.ShowEvent)
	app.Post("/:slug/register", configs.SetupCSRF(), publicHandler.Register)
	app.Get("/:slug/success/:code", publicHandler.Success)
}
