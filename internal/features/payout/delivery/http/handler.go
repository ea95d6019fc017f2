package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/middleware"
	"referral-miniapp-backend/internal/features/payout/models"
	"referral-miniapp-backend/internal/features/payout/service"
)

type PayoutHandler struct {
	service service.PayoutService
}

func NewPayoutHandler(service service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		service: service,
	}
}

func (h *PayoutHandler) RegisterRoutes(router *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	wrap := middleware.HandleErrorWrapper()

	payouts := router.Group("/payouts")
	payouts.Use(mutating...)
	{
		payouts.POST("/identifiers", wrap(h.saveIdentifier))
		payouts.POST("/requests", wrap(h.requestPayout))
	}
}

// @Summary Save payment identifier
// @Description Appends a payment identifier (any non-empty string, e.g. a UPI ID, TON wallet address or phone number) to the user's payment identifiers. The last saved one is current.
// @Tags payouts
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.SaveIdentifierRequest true "Payment identifier"
// @Success 200 {object} models.PaymentIdentifiersResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid payment identifier"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Router /payouts/identifiers [post]
func (h *PayoutHandler) saveIdentifier(c *gin.Context) {
	telegramUser, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	var req models.SaveIdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("payment_identifier", err.Error()))
		return
	}

	resp, err := h.service.SavePaymentIdentifier(c.Request.Context(), telegramUser.ID, req.PaymentIdentifier)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Request payout
// @Description Records a payout request and hands it to the external fulfilment system. The balance is not checked or debited. With save=true the identifier is also saved to the profile.
// @Tags payouts
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.PayoutRequestInput true "Payout request"
// @Success 200 {object} models.PayoutAccepted
// @Failure 400 {object} middleware.ErrorResponse "Invalid payment identifier"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Router /payouts/requests [post]
func (h *PayoutHandler) requestPayout(c *gin.Context) {
	telegramUser, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	var req models.PayoutRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("payment_identifier", err.Error()))
		return
	}

	resp, err := h.service.RequestPayout(c.Request.Context(), telegramUser.ID, req.PaymentIdentifier, req.Save)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
