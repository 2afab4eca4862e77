package components

import (
	"errors"
	"time"

	"beryll-inventory/core/logger"
	"beryll-inventory/core/middleware/auth"
	corereconcile "beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/reconcile"
	"beryll-inventory/feature/components/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for component inventories.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the component routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	servers := app.Group("/servers/:id")
	servers.Get("/components", h.HandleList)
	servers.Post("/components", h.HandleAdd)
	servers.Get("/components/compare", h.HandleCompare)
	servers.Post("/components/fetch", h.HandleFetch)
	servers.Get("/components/history", h.HandleServerHistory)
	servers.Put("/components/:componentId/resolve-discrepancy", h.HandleResolve)
	servers.Get("/bmc/check", h.HandleCheckBMC)
	servers.Put("/bmc-address", h.HandleUpdateBMCAddress)

	comps := app.Group("/components")
	comps.Post("/check-serial", h.HandleCheckSerial)
	comps.Get("/search", h.HandleSearch)
	comps.Get("/scan", h.HandleScan)
	comps.Get("/:id", h.HandleGet)
	comps.Put("/:id", h.HandleUpdate)
	comps.Put("/:id/serials", h.HandleUpdateSerials)
	comps.Post("/:id/replace", h.HandleReplace)
	comps.Delete("/:id", h.HandleDelete)
	comps.Get("/:id/history", h.HandleComponentHistory)
}

// HandleList returns the inventory of a server.
// @Summary List Server Components
// @Description Returns the components of a server grouped by type, with the number awaiting discrepancy review.
// @Tags components
// @Produce json
// @Param id path int true "Server ID"
// @Success 200 {object} ComponentsResponse
// @Failure 404 {object} map[string]string "Server Not Found"
// @Router /servers/{id}/components [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	resp, err := h.service.List(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// HandleCompare classifies the inventory against the live BMC report without writing.
// @Summary Compare With BMC
// @Description Fetches the live BMC inventory and classifies every component as matched, missing, new or mismatched.
// @Tags reconcile
// @Produce json
// @Param id path int true "Server ID"
// @Success 200 {object} reconcile.CompareReport
// @Failure 404 {object} map[string]string "Server Not Found"
// @Failure 409 {object} map[string]string "Reconciliation In Progress"
// @Failure 502 {object} map[string]string "BMC Unavailable"
// @Router /servers/{id}/components/compare [get]
func (h *Handler) HandleCompare(c *fiber.Ctx) error {
	return h.reconcile(c, corereconcile.ModeCompare)
}

// HandleFetch runs a reconciliation in the requested mode.
// @Summary Synchronize With BMC
// @Description Runs compare, force or merge. Force mirrors the BMC and never deletes manual components; merge flags removals and serial changes for review.
// @Tags reconcile
// @Accept json
// @Produce json
// @Param id path int true "Server ID"
// @Param request body FetchRequest true "Mode"
// @Success 200 {object} map[string]interface{} "Mode-specific report"
// @Failure 400 {object} map[string]string "Invalid Mode"
// @Failure 404 {object} map[string]string "Server Not Found"
// @Failure 409 {object} map[string]string "Reconciliation In Progress or Serial Conflict"
// @Failure 502 {object} map[string]string "BMC Unavailable"
// @Router /servers/{id}/components/fetch [post]
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	var req FetchRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, ErrValidation)
	}
	mode, err := corereconcile.ParseMode(req.Mode)
	if err != nil {
		return h.fail(c, err)
	}
	if req.PreserveManual != nil && !*req.PreserveManual {
		logger.WithRayID(h.service.logger, c).Warn("preserveManual=false ignored, manual components are always preserved")
	}
	return h.reconcile(c, mode)
}

func (h *Handler) reconcile(c *fiber.Ctx, mode corereconcile.Mode) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	report, err := h.service.Reconcile(c.UserContext(), id, mode, auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleResolve settles a flagged component.
// @Summary Resolve Discrepancy
// @Description Keeps (clears the flag) or deletes a component flagged by compare or merge.
// @Tags reconcile
// @Accept json
// @Produce json
// @Param id path int true "Server ID"
// @Param componentId path int true "Component ID"
// @Param request body ResolveRequest true "Resolution"
// @Success 200 {object} reconcile.ResolveResult
// @Failure 400 {object} map[string]string "Invalid Resolution"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 422 {object} map[string]string "Not Flagged"
// @Router /servers/{id}/components/{componentId}/resolve-discrepancy [put]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	serverID, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	componentID, err := idParam(c, "componentId")
	if err != nil {
		return h.fail(c, err)
	}
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, ErrValidation)
	}
	res, err := h.service.Resolve(c.UserContext(), serverID, componentID, req.Resolution, auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleServerHistory returns the history of a server's components.
// @Summary Server Component History
// @Tags history
// @Produce json
// @Param id path int true "Server ID"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} ServerHistoryResponse
// @Router /servers/{id}/components/history [get]
func (h *Handler) HandleServerHistory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	f, err := historyFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := h.service.ServerHistory(c.UserContext(), id, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ServerHistoryResponse{Success: true, ServerID: id, Count: len(entries), History: entries})
}

// HandleComponentHistory returns the history of one component.
// @Summary Component History
// @Tags history
// @Produce json
// @Param id path int true "Component ID"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} ComponentHistoryResponse
// @Router /components/{id}/history [get]
func (h *Handler) HandleComponentHistory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	f, err := historyFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := h.service.ComponentHistory(c.UserContext(), id, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ComponentHistoryResponse{Success: true, ComponentID: id, History: entries})
}

// HandleAdd adds a manually documented component.
// @Summary Add Component
// @Tags components
// @Accept json
// @Produce json
// @Param id path int true "Server ID"
// @Param request body ComponentInput true "Component"
// @Success 201 {object} AddResponse
// @Failure 400 {object} map[string]string "Validation Error"
// @Failure 409 {object} map[string]string "Serial Conflict"
// @Router /servers/{id}/components [post]
func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var in ComponentInput
	if err := c.BodyParser(&in); err != nil {
		return h.fail(c, ErrValidation)
	}
	comp, err := h.service.Add(c.UserContext(), id, in, auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(AddResponse{Success: true, Message: "Component added", Component: comp})
}

// HandleGet returns one component.
// @Summary Get Component
// @Tags components
// @Produce json
// @Param id path int true "Component ID"
// @Success 200 {object} models.ServerComponent
// @Failure 404 {object} map[string]string "Not Found"
// @Router /components/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	comp, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(comp)
}

// HandleUpdate applies a partial update.
// @Summary Update Component
// @Tags components
// @Accept json
// @Produce json
// @Param id path int true "Component ID"
// @Param request body ComponentPatch true "Fields to change"
// @Success 200 {object} models.ServerComponent
// @Failure 409 {object} map[string]string "Serial Conflict"
// @Router /components/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var p ComponentPatch
	if err := c.BodyParser(&p); err != nil {
		return h.fail(c, ErrValidation)
	}
	comp, err := h.service.Update(c.UserContext(), id, p, auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(comp)
}

// HandleUpdateSerials replaces the serial numbers of a component.
// @Summary Update Serial Numbers
// @Tags components
// @Accept json
// @Produce json
// @Param id path int true "Component ID"
// @Param request body SerialsInput true "Serials"
// @Success 200 {object} models.ServerComponent
// @Failure 409 {object} map[string]string "Serial Conflict"
// @Router /components/{id}/serials [put]
func (h *Handler) HandleUpdateSerials(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var in SerialsInput
	if err := c.BodyParser(&in); err != nil {
		return h.fail(c, ErrValidation)
	}
	comp, err := h.service.UpdateSerials(c.UserContext(), id, in, auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(comp)
}

// HandleReplace records a part replacement.
// @Summary Replace Component
// @Tags components
// @Accept json
// @Produce json
// @Param id path int true "Component ID"
// @Param request body ReplaceInput true "New part"
// @Success 200 {object} models.ServerComponent
// @Failure 409 {object} map[string]string "Serial Conflict"
// @Router /components/{id}/replace [post]
func (h *Handler) HandleReplace(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var in ReplaceInput
	if err := c.BodyParser(&in); err != nil {
		return h.fail(c, ErrValidation)
	}
	comp, err := h.service.Replace(c.UserContext(), id, in, auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(comp)
}

// HandleDelete removes a component.
// @Summary Delete Component
// @Tags components
// @Produce json
// @Param id path int true "Component ID"
// @Param reason query string false "Reason recorded in history"
// @Success 200 {object} models.ServerComponent
// @Failure 404 {object} map[string]string "Not Found"
// @Router /components/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	comp, err := h.service.Delete(c.UserContext(), id, c.Query("reason"), auth.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "deleted": comp})
}

// HandleCheckSerial probes the fleet for a serial.
// @Summary Check Serial Uniqueness
// @Tags components
// @Accept json
// @Produce json
// @Param request body CheckSerialInput true "Serials"
// @Success 200 {object} CheckSerialResult
// @Router /components/check-serial [post]
func (h *Handler) HandleCheckSerial(c *fiber.Ctx) error {
	var in CheckSerialInput
	if err := c.BodyParser(&in); err != nil {
		return h.fail(c, ErrValidation)
	}
	res, err := h.service.CheckSerial(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleSearch searches components across the fleet.
// @Summary Search Components
// @Tags components
// @Produce json
// @Param q query string false "Substring of serials, name, manufacturer, model or part number"
// @Param type query string false "Component type"
// @Param status query string false "Component status"
// @Param serverId query int false "Server ID"
// @Param limit query int false "Maximum results"
// @Success 200 {object} map[string]interface{} "count and components"
// @Failure 400 {object} map[string]string "No Criteria"
// @Router /components/search [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	f := store.SearchFilter{
		Query:    c.Query("q"),
		ServerID: uint(c.QueryInt("serverId")),
		Limit:    c.QueryInt("limit"),
	}
	if raw := c.Query("type"); raw != "" {
		t, ok := models.ParseComponentType(raw)
		if !ok {
			return h.fail(c, ErrValidation)
		}
		f.Type = t
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := models.ParseComponentStatus(raw)
		if !ok {
			return h.fail(c, ErrValidation)
		}
		f.Status = st
	}
	comps, err := h.service.Search(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"count": len(comps), "components": comps})
}

// HandleScan looks a scanned serial up.
// @Summary Scan Serial
// @Tags components
// @Produce json
// @Param serial query string true "Scanned serial"
// @Success 200 {object} ScanResult
// @Router /components/scan [get]
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	res, err := h.service.Scan(c.UserContext(), c.Query("serial"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleCheckBMC tests BMC connectivity.
// @Summary Check BMC
// @Tags bmc
// @Produce json
// @Param id path int true "Server ID"
// @Success 200 {object} map[string]interface{} "success, driver, redfishVersion, error"
// @Router /servers/{id}/bmc/check [get]
func (h *Handler) HandleCheckBMC(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.service.CheckBMC(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// HandleUpdateBMCAddress sets the BMC address of a server.
// @Summary Update BMC Address
// @Tags bmc
// @Accept json
// @Produce json
// @Param id path int true "Server ID"
// @Param request body BMCAddressRequest true "Address"
// @Success 200 {object} map[string]interface{}
// @Router /servers/{id}/bmc-address [put]
func (h *Handler) HandleUpdateBMCAddress(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req BMCAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, ErrValidation)
	}
	srv, err := h.service.UpdateBMCAddress(c.UserContext(), id, req.BMCAddress)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "bmcAddress": srv.BMCAddress})
}

// fail maps domain errors to HTTP statuses. Unexpected errors are logged and
// answered with a generic message.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var conflict *store.SerialConflictError

	switch {
	case errors.Is(err, store.ErrServerNotFound), errors.Is(err, store.ErrComponentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrValidation),
		errors.Is(err, corereconcile.ErrInvalidMode),
		errors.Is(err, reconcile.ErrInvalidResolution):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       store.ErrSerialConflict.Error(),
			"serial":      conflict.Serial,
			"componentId": conflict.ComponentID,
			"serverId":    conflict.ServerID,
		})
	case errors.Is(err, reconcile.ErrReconciliationInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": reconcile.ErrReconciliationInProgress.Error()})
	case errors.Is(err, reconcile.ErrNotFlagged):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconcile.ErrBmcUnavailable):
		logger.WithRayID(h.service.logger, c).Warn("BMC unavailable", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": reconcile.ErrBmcUnavailable.Error()})
	}

	logger.WithRayID(h.service.logger, c).Error("Component request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, ErrValidation
	}
	return uint(id), nil
}

func historyFilter(c *fiber.Ctx) (store.HistoryFilter, error) {
	f := store.HistoryFilter{Limit: c.QueryInt("limit")}
	for name, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, ErrValidation
		}
		*dst = &t
	}
	return f, nil
}
