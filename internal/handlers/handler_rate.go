package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
	"github.com/cambix/cambix_backend/internal/middleware"
)

type rateHandler struct {
	rateService portssvc.RateSvcFacade
}

// registerRateRoutes registers the exchange rate registry routes.
func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := &rateHandler{rateService: rateService}

	rates := rg.Group("/rates")
	{
		rates.POST("", h.createRate)
		rates.GET("/:id", h.getRate)
		rates.PUT("/:id", h.updateRate)
		rates.DELETE("/:id", h.deleteRate)
		rates.POST("/:id/activate", h.activateRate)
		rates.POST("/:id/deactivate", h.deactivateRate)
		rates.GET("/:id/audit", h.rateAuditTrail)
	}

	houses := rg.Group("/houses/:houseID")
	{
		houses.GET("/rates", h.listActiveRates)
		houses.GET("/rates/current", h.currentRate)
		houses.GET("/rates/history", h.rateHistory)
	}
}

// createRate godoc
// @Summary Register an exchange rate
// @Description Registers a buy/sell rate for a currency pair; admin only
// @Tags rates
// @Accept json
// @Produce json
// @Param rate body dto.CreateRateRequest true "Rate details"
// @Success 201 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Administrator role required"
// @Failure 409 {object} map[string]string "Active rate already exists for the pair"
// @Security BearerAuth
// @Router /rates [post]
func (h *rateHandler) createRate(c *gin.Context) {
	var req dto.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("failed to bind create rate request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.rateService.CreateRate(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// getRate godoc
// @Summary Get a rate
// @Tags rates
// @Produce json
// @Param id path int true "Rate ID"
// @Success 200 {object} dto.RateResponse
// @Failure 404 {object} map[string]string "Rate not found"
// @Security BearerAuth
// @Router /rates/{id} [get]
func (h *rateHandler) getRate(c *gin.Context) {
	rateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.rateService.GetRate(c.Request.Context(), rateID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateRate godoc
// @Summary Adjust a rate
// @Description Updates margins or the keep-daily flag; admin only
// @Tags rates
// @Accept json
// @Produce json
// @Param id path int true "Rate ID"
// @Param rate body dto.UpdateRateRequest true "Fields to update"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Rate not found"
// @Security BearerAuth
// @Router /rates/{id} [put]
func (h *rateHandler) updateRate(c *gin.Context) {
	rateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.rateService.UpdateRate(c.Request.Context(), rateID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deleteRate godoc
// @Summary Delete a rate
// @Description Removes a rate no transaction references; admin only
// @Tags rates
// @Param id path int true "Rate ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 409 {object} map[string]string "Rate is referenced by transactions"
// @Security BearerAuth
// @Router /rates/{id} [delete]
func (h *rateHandler) deleteRate(c *gin.Context) {
	rateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.rateService.DeleteRate(c.Request.Context(), rateID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// activateRate godoc
// @Summary Activate a rate
// @Description Marks a rate active; fails if another active rate exists for the pair
// @Tags rates
// @Accept json
// @Produce json
// @Param id path int true "Rate ID"
// @Param body body dto.RateStatusRequest false "Optional reason"
// @Success 200 {object} dto.RateResponse
// @Failure 409 {object} map[string]string "Another active rate exists for the pair"
// @Security BearerAuth
// @Router /rates/{id}/activate [post]
func (h *rateHandler) activateRate(c *gin.Context) {
	rateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.rateService.ActivateRate(c.Request.Context(), rateID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deactivateRate godoc
// @Summary Deactivate a rate
// @Tags rates
// @Accept json
// @Produce json
// @Param id path int true "Rate ID"
// @Param body body dto.RateStatusRequest false "Optional reason"
// @Success 200 {object} dto.RateResponse
// @Failure 404 {object} map[string]string "Rate not found"
// @Security BearerAuth
// @Router /rates/{id}/deactivate [post]
func (h *rateHandler) deactivateRate(c *gin.Context) {
	rateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.rateService.DeactivateRate(c.Request.Context(), rateID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// rateAuditTrail godoc
// @Summary Rate audit trail
// @Description Lists every recorded change of a rate, newest first
// @Tags rates
// @Produce json
// @Param id path int true "Rate ID"
// @Success 200 {array} dto.RateAuditResponse
// @Security BearerAuth
// @Router /rates/{id}/audit [get]
func (h *rateHandler) rateAuditTrail(c *gin.Context) {
	rateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.rateService.AuditTrail(c.Request.Context(), rateID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listActiveRates godoc
// @Summary List active rates of a house
// @Tags rates
// @Produce json
// @Param houseID path int true "Exchange house ID"
// @Success 200 {array} dto.RateResponse
// @Security BearerAuth
// @Router /houses/{houseID}/rates [get]
func (h *rateHandler) listActiveRates(c *gin.Context) {
	houseID, ok := parseIDParam(c, "houseID")
	if !ok {
		return
	}
	resp, err := h.rateService.ListActiveRates(c.Request.Context(), houseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// currentRate godoc
// @Summary Current rate for a pair
// @Description Resolves the single active rate for a currency pair
// @Tags rates
// @Produce json
// @Param houseID path int true "Exchange house ID"
// @Param source query string true "Source currency code"
// @Param target query string true "Target currency code"
// @Success 200 {object} dto.RateResponse
// @Failure 404 {object} map[string]string "No active rate for the pair"
// @Security BearerAuth
// @Router /houses/{houseID}/rates/current [get]
func (h *rateHandler) currentRate(c *gin.Context) {
	houseID, ok := parseIDParam(c, "houseID")
	if !ok {
		return
	}
	source := c.Query("source")
	target := c.Query("target")
	if source == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and target query parameters are required"})
		return
	}
	resp, err := h.rateService.CurrentRateFor(c.Request.Context(), houseID, source, target)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// rateHistory godoc
// @Summary Rate history for a pair
// @Description Lists every rate ever registered for a pair, newest first
// @Tags rates
// @Produce json
// @Param houseID path int true "Exchange house ID"
// @Param source query string true "Source currency code"
// @Param target query string true "Target currency code"
// @Param from query string false "Effective date lower bound (RFC 3339)"
// @Param to query string false "Effective date upper bound (RFC 3339)"
// @Success 200 {array} dto.RateResponse
// @Security BearerAuth
// @Router /houses/{houseID}/rates/history [get]
func (h *rateHandler) rateHistory(c *gin.Context) {
	houseID, ok := parseIDParam(c, "houseID")
	if !ok {
		return
	}
	source := c.Query("source")
	target := c.Query("target")
	if source == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and target query parameters are required"})
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
	resp, err := h.rateService.RateHistory(c.Request.Context(), houseID, source, target, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseTimeQuery reads an optional RFC 3339 query parameter, answering 400
// itself on bad input.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter, expected RFC 3339 timestamp"})
		return nil, false
	}
	return &t, true
}
