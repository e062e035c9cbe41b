package handlers

import (
	"net/http"

	"kayit.link/configs/configslog"
	"kayit.link/pkg/flashmessages"
	"kayit.link/pkg/renderer"
	"kayit.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HomeHandler panel ana sayfası için handler.
type HomeHandler struct {
	dashboardService services.IDashboardService
	eventService     services.IEventService
}

// NewHomeHandler yeni bir HomeHandler örneği oluşturur.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{
		dashboardService: services.NewDashboardService(),
		eventService:     services.NewEventService(),
	}
}

// HomePage genel sayıları ve aktif etkinlikleri gösterir.
func (h *HomeHandler) HomePage(c *fiber.Ctx) error {
	flashData, _ := flashmessages.GetFlashMessages(c)

	overview, err := h.dashboardService.GetOverview(c.UserContext())
	if err != nil {
		configslog.Log.Error("Dashboard - HomePage Overview Error", zap.Error(err))
		overview = &services.Overview{}
	}
	activeEvents, err := h.eventService.GetAllActiveEvents(c.UserContext())
	if err != nil {
		configslog.Log.Error("Dashboard - HomePage ActiveEvents Error", zap.Error(err))
	}

	renderData := fiber.Map{
		"Title":        "Panel",
		"Overview":     overview,
		"ActiveEvents": activeEvents,
	}
	renderer.SetFlashMessages(renderData, flashData)
	return renderer.Render(c, "dashboard/home", "layouts/dashboard_layout", renderData, http.StatusOK)
}
