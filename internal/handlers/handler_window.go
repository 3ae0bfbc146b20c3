package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
	"github.com/cambix/cambix_backend/internal/middleware"
)

type windowHandler struct {
	windowService portssvc.WindowSvcFacade
	floatService  portssvc.FloatLedgerSvcFacade
}

// registerWindowRoutes registers the teller window lifecycle and float
// ledger routes.
func registerWindowRoutes(rg *gin.RouterGroup, windowService portssvc.WindowSvcFacade, floatService portssvc.FloatLedgerSvcFacade) {
	h := &windowHandler{windowService: windowService, floatService: floatService}

	windows := rg.Group("/windows")
	{
		windows.POST("", h.createWindow)
		windows.GET("/:id", h.getWindow)
		windows.PUT("/:id", h.updateWindow)
		windows.POST("/:id/enable", h.enableWindow)
		windows.POST("/:id/disable", h.disableWindow)
		windows.POST("/:id/open", h.openWindow)
		windows.POST("/:id/pause", h.pauseWindow)
		windows.POST("/:id/resume", h.resumeWindow)
		windows.POST("/:id/close", h.closeWindow)
		windows.GET("/:id/opening", h.currentOpening)
		windows.GET("/:id/closing-summary", h.closingSummary)
		windows.GET("/:id/float", h.getFloat)
		windows.GET("/:id/availability", h.checkAvailability)
		windows.GET("/:id/history", h.windowHistory)
		windows.GET("/:id/can-operate", h.canOperate)
	}

	rg.GET("/houses/:houseID/windows", h.listWindows)
}

// createWindow godoc
// @Summary Register a teller window
// @Description Creates a window in CLOSED state; admin only
// @Tags windows
// @Accept json
// @Produce json
// @Param window body dto.CreateWindowRequest true "Window details"
// @Success 201 {object} dto.WindowResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Identifier already exists"
// @Security BearerAuth
// @Router /windows [post]
func (h *windowHandler) createWindow(c *gin.Context) {
	var req dto.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("failed to bind create window request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.windowService.CreateWindow(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// getWindow godoc
// @Summary Get a window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.WindowResponse
// @Failure 404 {object} map[string]string "Window not found"
// @Security BearerAuth
// @Router /windows/{id} [get]
func (h *windowHandler) getWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.windowService.GetWindow(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listWindows godoc
// @Summary List windows of a house
// @Tags windows
// @Produce json
// @Param houseID path int true "Exchange house ID"
// @Param state query string false "Filter by lifecycle state" Enums(CLOSED, OPEN, PAUSED)
// @Success 200 {array} dto.WindowResponse
// @Security BearerAuth
// @Router /houses/{houseID}/windows [get]
func (h *windowHandler) listWindows(c *gin.Context) {
	houseID, ok := parseIDParam(c, "houseID")
	if !ok {
		return
	}
	var state *string
	if raw := c.Query("state"); raw != "" {
		state = &raw
	}
	resp, err := h.windowService.ListWindows(c.Request.Context(), houseID, state)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateWindow godoc
// @Summary Rename a window
// @Tags windows
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param window body dto.UpdateWindowRequest true "Fields to update"
// @Success 200 {object} dto.WindowResponse
// @Failure 404 {object} map[string]string "Window not found"
// @Security BearerAuth
// @Router /windows/{id} [put]
func (h *windowHandler) updateWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.windowService.UpdateWindow(c.Request.Context(), windowID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// enableWindow godoc
// @Summary Enable a window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.WindowResponse
// @Security BearerAuth
// @Router /windows/{id}/enable [post]
func (h *windowHandler) enableWindow(c *gin.Context) {
	h.toggleWindow(c, true)
}

// disableWindow godoc
// @Summary Disable a window
// @Description A window mid-cycle must be closed before it can be disabled
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.WindowResponse
// @Failure 409 {object} map[string]string "Window is not CLOSED"
// @Security BearerAuth
// @Router /windows/{id}/disable [post]
func (h *windowHandler) disableWindow(c *gin.Context) {
	h.toggleWindow(c, false)
}

func (h *windowHandler) toggleWindow(c *gin.Context, active bool) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.windowService.ToggleWindowActive(c.Request.Context(), windowID, active)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// openWindow godoc
// @Summary Open a window
// @Description Opens a CLOSED window with its declared float seed
// @Tags windows
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param opening body dto.OpenWindowRequest true "Float declaration"
// @Success 201 {object} dto.OpeningResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Window not CLOSED, already open, or operator holds another window"
// @Security BearerAuth
// @Router /windows/{id}/open [post]
func (h *windowHandler) openWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.OpenWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("failed to bind open window request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.windowService.OpenWindow(c.Request.Context(), windowID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// pauseWindow godoc
// @Summary Pause a window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.WindowResponse
// @Failure 409 {object} map[string]string "Window is not OPEN"
// @Security BearerAuth
// @Router /windows/{id}/pause [post]
func (h *windowHandler) pauseWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.windowService.PauseWindow(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// resumeWindow godoc
// @Summary Resume a paused window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.WindowResponse
// @Failure 409 {object} map[string]string "Window is not PAUSED"
// @Security BearerAuth
// @Router /windows/{id}/resume [post]
func (h *windowHandler) resumeWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.windowService.ResumeWindow(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// closeWindow godoc
// @Summary Close a window
// @Description Reconciles the float against the physical count and closes the cycle
// @Tags windows
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param closing body dto.CloseWindowRequest true "Physical count"
// @Success 201 {object} dto.ClosingResponse
// @Failure 400 {object} map[string]string "Count missing a currency, or unconfirmed discrepancies"
// @Failure 409 {object} map[string]string "Window is not OPEN"
// @Security BearerAuth
// @Router /windows/{id}/close [post]
func (h *windowHandler) closeWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CloseWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("failed to bind close window request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.windowService.CloseWindow(c.Request.Context(), windowID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// currentOpening godoc
// @Summary Current opening of a window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.OpeningResponse
// @Failure 404 {object} map[string]string "No active opening"
// @Security BearerAuth
// @Router /windows/{id}/opening [get]
func (h *windowHandler) currentOpening(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.windowService.CurrentOpening(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// closingSummary godoc
// @Summary Preview closing amounts
// @Description Shows the per-currency amounts a closing would be reconciled against
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} dto.ClosingSummaryResponse
// @Failure 409 {object} map[string]string "No active opening"
// @Security BearerAuth
// @Router /windows/{id}/closing-summary [get]
func (h *windowHandler) closingSummary(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.windowService.ClosingSummary(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getFloat godoc
// @Summary Live float of a window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {array} dto.FloatEntryResponse
// @Failure 409 {object} map[string]string "No active opening"
// @Security BearerAuth
// @Router /windows/{id}/float [get]
func (h *windowHandler) getFloat(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.floatService.GetFloat(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// checkAvailability godoc
// @Summary Check float availability
// @Description Reports whether the window float can cover a payout
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Param currency query string true "Currency code"
// @Param amount query string true "Required amount"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /windows/{id}/availability [get]
func (h *windowHandler) checkAvailability(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency query parameter is required"})
		return
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount parameter"})
		return
	}
	resp, err := h.floatService.CheckAvailability(c.Request.Context(), windowID, currency, amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// windowHistory godoc
// @Summary Opening and closing history of a window
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Param from query string false "Lower bound (RFC 3339)"
// @Param to query string false "Upper bound (RFC 3339)"
// @Success 200 {object} dto.WindowHistoryResponse
// @Security BearerAuth
// @Router /windows/{id}/history [get]
func (h *windowHandler) windowHistory(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}
	resp, err := h.windowService.WindowHistory(c.Request.Context(), windowID, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// canOperate godoc
// @Summary Check operating permission
// @Description Reports whether the caller may record transactions at the window right now
// @Tags windows
// @Produce json
// @Param id path int true "Window ID"
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /windows/{id}/can-operate [get]
func (h *windowHandler) canOperate(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	canOperate, err := h.windowService.CanOperate(c.Request.Context(), windowID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canOperate": canOperate})
}
