package http

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/middleware"
	"referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes mutating применяется к изменяющим маршрутам (rate limit)
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	wrap := middleware.HandleErrorWrapper()

	users := router.Group("/users")
	{
		users.POST("/me", append(append([]gin.HandlerFunc{}, mutating...), wrap(h.resolve))...)
		users.GET("/me", wrap(h.getMe))
	}
}

// @Summary Resolve current user
// @Description Returns the current user, creating it on first contact. A new user opened through an invite link (start_param) or with inviter_id is linked to the inviter, who gets the referral bonus. Linkage is never changed for existing users.
// @Tags users
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.ResolveRequest false "Inviter fallback"
// @Success 200 {object} models.UserEnvelope "User data"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid init data"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Failure 503 {object} middleware.ErrorResponse "Store unavailable"
// @Router /users/me [post]
func (h *UserHandler) resolve(c *gin.Context) {
	telegramUser, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	// тело необязательно; chunked-запросы приходят с ContentLength == -1
	var req models.ResolveRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
			_ = c.Error(errors.NewValidationError("body", err.Error()))
			return
		}
	}

	envelope, err := h.service.Resolve(c.Request.Context(), service.ResolveInput{
		ID: telegramUser.ID,
		Profile: models.Profile{
			Username:  telegramUser.Username,
			FirstName: telegramUser.FirstName,
			LastName:  telegramUser.LastName,
		},
		InviterID: inviterID(middleware.StartParam(c), req.InviterID),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// @Summary Get current user
// @Description Returns the stored user without creating it
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.UserEnvelope "User data"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid init data"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 503 {object} middleware.ErrorResponse "Store unavailable"
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	telegramUser, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	envelope, err := h.service.GetCurrent(c.Request.Context(), telegramUser.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// inviterID start_param имеет приоритет над телом запроса. Нечисловой start_param
// игнорируется: пользователь создается без привязки.
func inviterID(startParam string, fallback int64) int64 {
	if startParam != "" {
		if id, err := strconv.ParseInt(startParam, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	if fallback > 0 {
		return fallback
	}
	return 0
}
