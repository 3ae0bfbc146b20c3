package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
	"github.com/cambix/cambix_backend/internal/middleware"
)

type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// registerTransactionRoutes registers the exchange transaction routes.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{transactionService: transactionService}

	rg.POST("/windows/:id/transactions", h.processTransaction)
	rg.GET("/windows/:id/transactions", h.listByWindow)
	rg.GET("/transactions/:id", h.getTransaction)
	rg.POST("/transactions/:id/cancel", h.cancelTransaction)
	rg.GET("/houses/:houseID/transactions/number/:number", h.getByNumber)
	rg.GET("/houses/:houseID/conversion", h.calculateConversion)
	rg.GET("/customers/:id/transactions", h.listByCustomer)
}

// processTransaction godoc
// @Summary Record an exchange transaction
// @Description Converts the source amount at the active sell rate and mutates the window float atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Window is not OPEN"
// @Failure 422 {object} map[string]string "Insufficient float in the target currency"
// @Security BearerAuth
// @Router /windows/{id}/transactions [post]
func (h *transactionHandler) processTransaction(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("failed to bind transaction request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.transactionService.ProcessTransaction(c.Request.Context(), windowID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// listByWindow godoc
// @Summary List transactions of a window
// @Description Returns transactions newest first with keyset pagination
// @Tags transactions
// @Produce json
// @Param id path int true "Window ID"
// @Param limit query int false "Page size (max 100)"
// @Param nextToken query string false "Pagination token from a previous page"
// @Param date query string false "Restrict to a business day (YYYY-MM-DD)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Security BearerAuth
// @Router /windows/{id}/transactions [get]
func (h *transactionHandler) listByWindow(c *gin.Context) {
	windowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = parsed
	}
	var nextToken *string
	if raw := c.Query("nextToken"); raw != "" {
		nextToken = &raw
	}
	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date parameter, expected YYYY-MM-DD"})
			return
		}
		day = &parsed
	}
	resp, err := h.transactionService.ListTransactionsByWindow(c.Request.Context(), windowID, limit, nextToken, day)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// cancelTransaction godoc
// @Summary Cancel a transaction
// @Description Marks the transaction CANCELLED with a reason; the float is not reversed, the difference surfaces at closing
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param cancellation body dto.CancelTransactionRequest true "Cancellation reason"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} map[string]string "Only the recording operator or an admin may cancel"
// @Failure 409 {object} map[string]string "Transaction is not COMPLETED"
// @Security BearerAuth
// @Router /transactions/{id}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	transactionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.transactionService.CancelTransaction(c.Request.Context(), transactionID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getByNumber godoc
// @Summary Look up a transaction by its number
// @Tags transactions
// @Produce json
// @Param houseID path int true "Exchange house ID"
// @Param number path string true "Transaction number, e.g. TX2509010001"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /houses/{houseID}/transactions/number/{number} [get]
func (h *transactionHandler) getByNumber(c *gin.Context) {
	houseID, ok := parseIDParam(c, "houseID")
	if !ok {
		return
	}
	number := c.Param("number")
	resp, err := h.transactionService.GetTransactionByNumber(c.Request.Context(), houseID, number)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// calculateConversion godoc
// @Summary Quote a conversion
// @Description Computes the target amount at the active sell rate without recording anything
// @Tags transactions
// @Produce json
// @Param houseID path int true "Exchange house ID"
// @Param source query string true "Source currency code"
// @Param target query string true "Target currency code"
// @Param amount query string true "Source amount"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Validation error or no active rate for the pair"
// @Security BearerAuth
// @Router /houses/{houseID}/conversion [get]
func (h *transactionHandler) calculateConversion(c *gin.Context) {
	houseID, ok := parseIDParam(c, "houseID")
	if !ok {
		return
	}
	var req dto.ConversionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	resp, err := h.transactionService.CalculateConversion(c.Request.Context(), houseID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listByCustomer godoc
// @Summary List transactions of a registered customer
// @Tags transactions
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {array} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Customer not found"
// @Security BearerAuth
// @Router /customers/{id}/transactions [get]
func (h *transactionHandler) listByCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.transactionService.ListTransactionsByCustomer(c.Request.Context(), customerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
