// Package renderer view render çağrılarını tek noktada toplar ve flash
// mesajlarını view verisine standart anahtarlarla yerleştirir.
package renderer

import (
	"kayit.link/pkg/flashmessages"

	"github.com/gofiber/fiber/v2"
)

// View verisindeki flash anahtarları.
const (
	FlashSuccessKeyView = "Success"
	FlashErrorKeyView   = "Error"
)

// SetFlashMessages okunmuş flash mesajlarını render verisine ekler.
func SetFlashMessages(data fiber.Map, flash flashmessages.FlashData) {
	if flash.Success != "" {
		data[FlashSuccessKeyView] = flash.Success
	}
	if flash.Error != "" {
		data[FlashErrorKeyView] = flash.Error
	}
}

// Render verilen view'ı layout ile render eder. Status verilmezse 200 kullanılır.
func Render(c *fiber.Ctx, view, layout string, data fiber.Map, status ...int) error {
	code := fiber.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["CsrfToken"]; !ok {
		data["CsrfToken"] = c.Locals("csrf")
	}
	return c.Status(code).Render(view, data, layout)
}
