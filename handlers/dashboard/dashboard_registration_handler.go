package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/pkg/flashmessages"
	"kayit.link/pkg/queryparams"
	"kayit.link/pkg/renderer"
	"kayit.link/services"
	"kayit.link/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegistrationHandler kayıt yönetimi için handler (Dashboard).
type RegistrationHandler struct {
	service        services.IRegistrationService
	eventService   services.IEventService
	checkInService services.ICheckInService
}

// NewRegistrationHandler yeni bir RegistrationHandler örneği oluşturur.
func NewRegistrationHandler() *RegistrationHandler {
	return &RegistrationHandler{
		service:        services.NewRegistrationService(),
		eventService:   services.NewEventService(),
		checkInService: services.NewCheckInService(),
	}
}

// ListRegistrations kayıtları etkinlik/durum/arama filtreleriyle listeler.
func (h *RegistrationHandler) ListRegistrations(c *fiber.Ctx) error {
	flashData, _ := flashmessages.GetFlashMessages(c)
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	paginatedResult, err := h.service.GetAllRegistrationsPaginated(c.UserContext(), params)

	// Filtre açılır listesi için aktif etkinlikler
	events, evErr := h.eventService.GetAllActiveEvents(c.UserContext())
	if evErr != nil {
		configslog.Log.Error("Dashboard - ListRegistrations Events Error", zap.Error(evErr))
	}

	renderData := fiber.Map{
		"Title":  "Kayıtlar",
		"Result": paginatedResult,
		"Params": params,
		"Events": events,
	}
	renderer.SetFlashMessages(renderData, flashData)

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Kayıtlar listelenirken hata oluştu."
		renderData["Result"] = &queryparams.PaginatedResult{Data: []models.Registration{}, Meta: queryparams.PaginationMeta{}}
		configslog.Log.Error("Dashboard - ListRegistrations Error", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/registrations/list", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// ShowUpdateRegistration kayıt düzenleme formunu gösterir.
func (h *RegistrationHandler) ShowUpdateRegistration(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/registrations")
	}

	registration, err := h.service.GetRegistrationByID(c.UserContext(), uint(id))
	if err != nil {
		errMsg := "Kayıt bulunamadı."
		if !errors.Is(err, services.ErrRegistrationNotFound) {
			errMsg = "Kayıt bilgileri alınırken hata oluştu."
			configslog.Log.Error("Dashboard - ShowUpdateRegistration Error", zap.Int("id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
		return c.Redirect("/dashboard/registrations")
	}

	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title":        "Kaydı Düzenle",
		"Registration": registration,
		"Event":        registration.Event,
		"Fields":       registration.Event.FormFields,
		"Statuses":     []models.RegStatus{models.RegStatusPending, models.RegStatusConfirmed, models.RegStatusCancelled},
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "dashboard/registrations/update", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// UpdateRegistration kayıt durumunu ve cevaplarını günceller.
func (h *RegistrationHandler) UpdateRegistration(c *fiber.Ctx) error {
	adminUserID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/registrations")
	}
	registrationID := uint(id)
	redirectPathOnError := fmt.Sprintf("/dashboard/registrations/update/%d", registrationID)

	registration, err := h.service.GetRegistrationByID(c.UserContext(), registrationID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Kayıt bulunamadı.")
		return c.Redirect("/dashboard/registrations")
	}

	answers, err := services.BuildAnswers(registration.Event.FormFields, postedValues(c), false)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	status := models.RegStatus(c.FormValue("status"))
	err = h.service.UpdateRegistration(c.UserContext(), registrationID, status, answers, adminUserID)
	if err != nil {
		if !errors.Is(err, services.ErrRegInvalidStatus) && !errors.Is(err, services.ErrRegistrationNotFound) {
			configslog.Log.Error("Dashboard - UpdateRegistration Error", zap.Uint("id", registrationID), zap.Uint("adminUserID", adminUserID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Güncelleme hatası: "+err.Error())
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Kayıt başarıyla güncellendi.")
	return c.Redirect(redirectPathOnError, fiber.StatusFound)
}

// ManualCheckIn kayıt için panelden check-in oluşturur.
func (h *RegistrationHandler) ManualCheckIn(c *fiber.Ctx) error {
	adminUserID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/registrations")
	}

	if err := h.checkInService.ManualCheckIn(c.UserContext(), uint(id), adminUserID); err != nil {
		configslog.Log.Error("Dashboard - ManualCheckIn Error", zap.Int("id", id), zap.Uint("adminUserID", adminUserID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Check-in oluşturulamadı.")
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Check-in oluşturuldu.")
	}
	return c.Redirect(fmt.Sprintf("/dashboard/registrations/update/%d", id), fiber.StatusSeeOther)
}

// UndoCheckIn kayıttaki check-in'i geri alır.
func (h *RegistrationHandler) UndoCheckIn(c *fiber.Ctx) error {
	adminUserID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/registrations")
	}

	if err := h.checkInService.UndoCheckIn(c.UserContext(), uint(id), adminUserID); err != nil {
		if !errors.Is(err, services.ErrCheckInNotFound) {
			configslog.Log.Error("Dashboard - UndoCheckIn Error", zap.Int("id", id), zap.Uint("adminUserID", adminUserID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Check-in geri alınamadı: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Check-in geri alındı.")
	}
	return c.Redirect(fmt.Sprintf("/dashboard/registrations/update/%d", id), fiber.StatusSeeOther)
}

// ExportRegistrations filtrelenmiş kayıtları CSV olarak indirir.
func (h *RegistrationHandler) ExportRegistrations(c *fiber.Ctx) error {
	eventID := uint(c.QueryInt("event_id", 0))
	search := c.Query("name")

	data, filename, err := h.service.ExportCSV(c.UserContext(), eventID, search)
	if err != nil {
		configslog.Log.Error("Dashboard - ExportRegistrations Error", zap.Uint("event_id", eventID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Dışa aktarma başarısız oldu.")
		return c.Redirect("/dashboard/registrations", fiber.StatusSeeOther)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

// postedValues form gövdesindeki tüm alanları map olarak toplar
// (multipart ve urlencoded gövdelerin ikisi de desteklenir).
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
