package handlers

import (
	"errors"
	"net/http"

	"kayit.link/configs/configslog"
	"kayit.link/pkg/flashmessages"
	"kayit.link/pkg/renderer"
	"kayit.link/services"
	"kayit.link/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckInHandler görevli check-in ekranı için handler.
type CheckInHandler struct {
	service services.ICheckInService
}

// NewCheckInHandler yeni bir CheckInHandler örneği oluşturur.
func NewCheckInHandler() *CheckInHandler {
	return &CheckInHandler{service: services.NewCheckInService()}
}

// ShowScanner QR okuyucu ve manuel kod giriş ekranını gösterir.
func (h *CheckInHandler) ShowScanner(c *fiber.Ctx) error {
	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title": "Check-in",
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "checkin/scanner", "layouts/checkin_layout", renderData, http.StatusOK)
}

// Verify okutulan/girilen kodu işler. Tarayıcıdaki okuyucu fetch ile JSON
// beklediği için content negotiation yapılır; form gönderimi sonuç sayfasına düşer.
func (h *CheckInHandler) Verify(c *fiber.Ctx) error {
	staffID, _ := utils.CurrentUserID(c)
	code := c.FormValue("code")
	if code == "" {
		// JSON gövdeyle gelen okuyucu istekleri
		var body struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&body); err == nil {
			code = body.Code
		}
	}

	result, err := h.service.CheckIn(c.UserContext(), code, staffID)
	if err != nil {
		return h.respondError(c, code, err)
	}
	return h.respondResult(c, result)
}

// AutoCheckIn QR koddaki URL'in doğrudan açılması durumudur:
// GET /check-in/auto/<kod>. Girişli görevli için check-in hemen yapılır.
func (h *CheckInHandler) AutoCheckIn(c *fiber.Ctx) error {
	staffID, _ := utils.CurrentUserID(c)
	code := c.Params("code")

	result, err := h.service.CheckIn(c.UserContext(), code, staffID)
	if err != nil {
		return h.respondError(c, code, err)
	}
	return h.respondResult(c, result)
}

func (h *CheckInHandler) respondResult(c *fiber.Ctx, result *services.CheckInResult) error {
	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"success":  result.Success,
			"message":  result.Message,
			"attendee": result.Attendee,
		})
	}
	renderData := fiber.Map{
		"Title":    "Check-in Sonucu",
		"Result":   result,
		"Attendee": result.Attendee,
	}
	return renderer.Render(c, "checkin/result", "layouts/checkin_layout", renderData, http.StatusOK)
}

func (h *CheckInHandler) respondError(c *fiber.Ctx, code string, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrCheckInInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrCheckInNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrCheckInUnauthorized):
		status = http.StatusUnauthorized
	default:
		configslog.Log.Error("CheckIn - Verify Error", zap.String("code", code), zap.Error(err))
	}

	if wantsJSON(c) {
		return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	renderData := fiber.Map{
		"Title":                 "Check-in Sonucu",
		renderer.FlashErrorKeyView: err.Error(),
	}
	return renderer.Render(c, "checkin/result", "layouts/checkin_layout", renderData, status)
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts("text/html", "application/json") == "application/json" ||
		c.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON
}
