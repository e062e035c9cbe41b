package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"kayit.link/configs/configslog"
	"kayit.link/configs/configsstorage"
	"kayit.link/models"
	"kayit.link/pkg/flashmessages"
	"kayit.link/pkg/queryparams"
	"kayit.link/pkg/renderer"
	"kayit.link/services"
	"kayit.link/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EventHandler etkinlik yönetimi için handler (Dashboard).
type EventHandler struct {
	service          services.IEventService
	dashboardService services.IDashboardService
	checkInService   services.ICheckInService
	storage          *configsstorage.Storage
}

// NewEventHandler yeni bir EventHandler örneği oluşturur.
func NewEventHandler() *EventHandler {
	return &EventHandler{
		service:          services.NewEventService(),
		dashboardService: services.NewDashboardService(),
		checkInService:   services.NewCheckInService(),
		storage:          configsstorage.NewStorageFromEnv(),
	}
}

// ListEvents tüm etkinlikleri listeler.
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	flashData, _ := flashmessages.GetFlashMessages(c)
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	paginatedResult, err := h.service.GetAllEventsPaginated(c.UserContext(), params)

	renderData := fiber.Map{
		"Title":  "Etkinlikler",
		"Result": paginatedResult,
		"Params": params,
	}
	renderer.SetFlashMessages(renderData, flashData)

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Etkinlikler listelenirken hata oluştu."
		renderData["Result"] = &queryparams.PaginatedResult{Data: []models.Event{}, Meta: queryparams.PaginationMeta{}}
		configslog.Log.Error("Dashboard - ListEvents Error", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/events/list", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// ShowCreateEvent yeni etkinlik formunu gösterir.
func (h *EventHandler) ShowCreateEvent(c *fiber.Ctx) error {
	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title":      "Yeni Etkinlik",
		"FormData":   flashmessages.GetFlashFormData(c),
		"FieldTypes": fieldTypeOptions(),
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "dashboard/events/create", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// CreateEvent yeni bir etkinlik oluşturur.
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	adminUserID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	input, err := h.parseEventInput(c)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, input)
		return c.Redirect("/dashboard/events/create", fiber.StatusSeeOther)
	}

	event, err := h.service.CreateEvent(c.UserContext(), adminUserID, input)
	if err != nil {
		if !errors.Is(err, services.ErrEventSlugTaken) && !errors.Is(err, services.ErrEventInvalidInput) {
			configslog.Log.Error("Dashboard - CreateEvent Error", zap.Uint("adminUserID", adminUserID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, input)
		return c.Redirect("/dashboard/events/create", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Etkinlik başarıyla oluşturuldu.")
	return c.Redirect(fmt.Sprintf("/dashboard/events/update/%d", event.ID), fiber.StatusFound)
}

// ShowUpdateEvent etkinlik düzenleme formunu gösterir.
func (h *EventHandler) ShowUpdateEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/events")
	}
	eventID := uint(id)

	event, err := h.service.GetEventByID(c.UserContext(), eventID)
	if err != nil {
		errMsg := "Etkinlik bulunamadı."
		if !errors.Is(err, services.ErrEventNotFound) {
			errMsg = "Etkinlik bilgileri alınırken hata oluştu."
			configslog.Log.Error("Dashboard - ShowUpdateEvent Error", zap.Uint("id", eventID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
		return c.Redirect("/dashboard/events")
	}

	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title":      "Etkinliği Düzenle",
		"Event":      event,
		"Detail":     event.Detail,
		"Fields":     event.FormFields,
		"FormData":   flashmessages.GetFlashFormData(c),
		"FieldTypes": fieldTypeOptions(),
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "dashboard/events/update", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// UpdateEvent etkinliği günceller.
func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	adminUserID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/events")
	}
	eventID := uint(id)
	redirectPathOnError := fmt.Sprintf("/dashboard/events/update/%d", eventID)

	input, err := h.parseEventInput(c)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, input)
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	err = h.service.UpdateEvent(c.UserContext(), eventID, adminUserID, input)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
			return c.Redirect("/dashboard/events")
		}
		if !errors.Is(err, services.ErrEventSlugTaken) && !errors.Is(err, services.ErrEventInvalidInput) {
			configslog.Log.Error("Dashboard - UpdateEvent Error", zap.Uint("id", eventID), zap.Uint("adminUserID", adminUserID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, input)
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Etkinlik başarıyla güncellendi.")
	return c.Redirect(redirectPathOnError, fiber.StatusFound)
}

// ArchiveEvent etkinliği yayından kaldırır.
func (h *EventHandler) ArchiveEvent(c *fiber.Ctx) error {
	adminUserID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/events")
	}

	err = h.service.ArchiveEvent(c.UserContext(), uint(id), adminUserID)
	if err != nil {
		if !errors.Is(err, services.ErrEventNotFound) {
			configslog.Log.Error("Dashboard - ArchiveEvent Error", zap.Int("id", id), zap.Uint("adminUserID", adminUserID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Arşivleme hatası: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Etkinlik arşivlendi.")
	}
	return c.Redirect("/dashboard/events", fiber.StatusSeeOther)
}

// EventStats etkinliğin canlı istatistik sayfasını gösterir.
func (h *EventHandler) EventStats(c *fiber.Ctx) error {
	slug := c.Params("slug")

	stats, err := h.dashboardService.GetEventStats(c.UserContext(), slug)
	if err != nil {
		errMsg := "Etkinlik bulunamadı."
		if !errors.Is(err, services.ErrStatsEventNotFound) {
			errMsg = "İstatistikler hesaplanırken hata oluştu."
			configslog.Log.Error("Dashboard - EventStats Error", zap.String("slug", slug), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
		return c.Redirect("/dashboard/events")
	}

	recentCheckIns, err := h.checkInService.GetRecentCheckIns(c.UserContext(), stats.EventID, 10)
	if err != nil {
		configslog.Log.Error("Dashboard - EventStats RecentCheckIns Error", zap.Uint("event_id", stats.EventID), zap.Error(err))
	}

	flashData, _ := flashmessages.GetFlashMessages(c)
	renderData := fiber.Map{
		"Title":          stats.Title + " - İstatistikler",
		"Stats":          stats,
		"RecentCheckIns": recentCheckIns,
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "dashboard/events/stats", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// --- Form çözümleme yardımcıları ---

var fieldInputPattern = regexp.MustCompile(`^fields\[(\d+)\]\[(key|label|type|required|options|allow_other)\]$`)

// parseEventInput multipart etkinlik formunu EventInput'a çevirir ve
// varsa afiş/e-posta eki dosyalarını object storage'a yükler.
func (h *EventHandler) parseEventInput(c *fiber.Ctx) (services.EventInput, error) {
	input := services.EventInput{
		Slug:          strings.ToLower(strings.TrimSpace(c.FormValue("slug"))),
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		StartDate:     c.FormValue("start_date"),
		EndDate:       c.FormValue("end_date"),
		Location:      c.FormValue("location"),
		ThemeColor:    c.FormValue("theme_color"),
		BannerURL:     c.FormValue("banner_url"),
		EmailSubject:  c.FormValue("email_subject"),
		EmailBody:     c.FormValue("email_body"),
		AttachmentURL: c.FormValue("attachment_url"),
		IsEnabled:     c.FormValue("is_enabled", "false") == "true" || c.FormValue("is_enabled") == "on",
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, errors.New("form verisi çözümlenemedi")
	}
	input.Fields = parseFormFieldInputs(form.Value)

	if url, err := h.uploadFormFile(form, "banner", "banners"); err != nil {
		return input, err
	} else if url != "" {
		input.BannerURL = url
	}
	if url, err := h.uploadFormFile(form, "email_attachment", "attachments"); err != nil {
		return input, err
	} else if url != "" {
		input.AttachmentURL = url
	}
	return input, nil
}

// parseFormFieldInputs "fields[i][...]" anahtarlarını indekse göre toplar.
// Checkbox'lar işaretsizken gönderilmediği için paralel diziler yerine
// indeksli adlar kullanılır.
func parseFormFieldInputs(values map[string][]string) []services.FormFieldInput {
	byIndex := map[int]*services.FormFieldInput{}
	for key, vals := range values {
		match := fieldInputPattern.FindStringSubmatch(key)
		if match == nil || len(vals) == 0 {
			continue
		}
		idx, _ := strconv.Atoi(match[1])
		field := byIndex[idx]
		if field == nil {
			field = &services.FormFieldInput{}
			byIndex[idx] = field
		}
		value := vals[0]
		switch match[2] {
		case "key":
			field.FieldKey = strings.TrimSpace(value)
		case "label":
			field.Label = value
		case "type":
			field.Type = models.FieldType(strings.ToUpper(strings.TrimSpace(value)))
		case "required":
			field.Required = value == "true" || value == "on" || value == "1"
		case "options":
			field.Options = splitOptions(value)
		case "allow_other":
			field.AllowOther = value == "true" || value == "on" || value == "1"
		}
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	fields := make([]services.FormFieldInput, 0, len(indexes))
	for _, idx := range indexes {
		fields = append(fields, *byIndex[idx])
	}
	return fields
}

// splitOptions textarea'dan satır satır gelen seçenekleri ayrıştırır.
func splitOptions(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	options := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	return options
}

// uploadFormFile formdaki dosyayı object storage'a yükler ve URL döndürür.
// Dosya seçilmemişse boş string döner, storage kapalıysa dosya yok sayılır.
func (h *EventHandler) uploadFormFile(form *multipart.Form, field, folder string) (string, error) {
	files := form.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return "", nil
	}
	if h.storage == nil {
		configslog.SLog.Warnf("Object storage kapalı, %q dosyası yüklenmedi.", files[0].Filename)
		return "", nil
	}

	fileHeader := files[0]
	f, err := fileHeader.Open()
	if err != nil {
		return "", errors.New("dosya açılamadı: " + fileHeader.Filename)
	}
	defer f.Close()

	url, err := h.storage.Upload(f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), folder)
	if err != nil {
		configslog.Log.Error("Dosya yüklenemedi", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return "", errors.New("dosya yüklenemedi: " + fileHeader.Filename)
	}
	return url, nil
}

// fieldTypeOptions form tasarımcısındaki tip seçenekleri.
func fieldTypeOptions() []models.FieldType {
	return []models.FieldType{
		models.FieldTypeText, models.FieldTypeEmail, models.FieldTypePhone,
		models.FieldTypeNumber, models.FieldTypeSelect, models.FieldTypeRadio,
		models.FieldTypeCheckbox, models.FieldTypeDate,
	}
}
