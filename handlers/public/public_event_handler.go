package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"kayit.link/configs/configslog"
	"kayit.link/configs/configsmailer"
	"kayit.link/pkg/attendee"
	"kayit.link/pkg/flashmessages"
	"kayit.link/pkg/renderer"
	"kayit.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PublicEventHandler herkese açık etkinlik sayfaları için handler.
type PublicEventHandler struct {
	eventService        services.IEventService
	registrationService services.IRegistrationService
}

// NewPublicEventHandler yeni bir PublicEventHandler örneği oluşturur.
func NewPublicEventHandler() *PublicEventHandler {
	return &PublicEventHandler{
		eventService:        services.NewEventService(),
		registrationService: services.NewRegistrationService(),
	}
}

// ShowEvent etkinliğin kayıt formunu gösterir. Arşivlenmiş veya olmayan
// etkinlikler için 404 verilir.
func (h *PublicEventHandler) ShowEvent(c *fiber.Ctx) error {
	slug := c.Params("slug")

	event, err := h.eventService.GetActiveEventBySlug(c.UserContext(), slug)
	if err != nil {
		if !errors.Is(err, services.ErrEventNotFound) {
			configslog.Log.Error("Public - ShowEvent Error", zap.String("slug", slug), zap.Error(err))
		}
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Etkinlik Bulunamadı"}, "layouts/error_layout")
	}

	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title":    event.Detail.Title,
		"Event":    event,
		"Detail":   event.Detail,
		"Fields":   event.FormFields,
		"FormData": flashmessages.GetFlashFormData(c),
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "public/event", "layouts/public_layout", renderData, http.StatusOK)
}

// Register kayıt formu gönderimini işler ve başarı sayfasına yönlendirir.
func (h *PublicEventHandler) Register(c *fiber.Ctx) error {
	slug := c.Params("slug")

	registration, err := h.registrationService.Register(c.UserContext(), slug, postedValues(c))
	if err != nil {
		if errors.Is(err, services.ErrRegEventNotFound) {
			return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Etkinlik Bulunamadı"}, "layouts/error_layout")
		}
		if !errors.Is(err, services.ErrRegMissingRequired) {
			configslog.Log.Error("Public - Register Error", zap.String("slug", slug), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		return c.Redirect("/"+slug, fiber.StatusSeeOther)
	}

	return c.Redirect(fmt.Sprintf("/%s/success/%s", slug, registration.ReferenceCode), fiber.StatusFound)
}

// Success kayıt sonrası referans kodunu ve QR görselini gösterir.
func (h *PublicEventHandler) Success(c *fiber.Ctx) error {
	slug := c.Params("slug")
	code := c.Params("code")

	registration, err := h.registrationService.GetRegistrationByCode(c.UserContext(), code)
	if err != nil || registration.Event.Slug != slug {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Kayıt Bulunamadı"}, "layouts/error_layout")
	}

	info := attendee.Extract(registration.Answers, registration.Event.FormFields)
	renderData := fiber.Map{
		"Title":         "Kayıt Tamamlandı",
		"Event":         registration.Event,
		"Detail":        registration.Event.Detail,
		"Registration":  registration,
		"Attendee":      info,
		"ReferenceCode": registration.ReferenceCode,
		"QRImageURL":    configsmailer.QRImageURL(registration.ReferenceCode),
	}
	return renderer.Render(c, "public/success", "layouts/public_layout", renderData, http.StatusOK)
}

// postedValues form gövdesindeki tüm alanları map olarak toplar.
func postedValues(c *fiber.Ctx) map[string][]string {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		return form.Value
	}
	values := map[string][]string{}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		values[k] = append(values[k], string(value))
	})
	return values
}
