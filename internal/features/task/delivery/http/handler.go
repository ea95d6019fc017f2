package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/middleware"
	"referral-miniapp-backend/internal/features/task/service"
)

type TaskHandler struct {
	service service.TaskService
}

func NewTaskHandler(service service.TaskService) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	wrap := middleware.HandleErrorWrapper()

	tasks := router.Group("/tasks")
	{
		tasks.GET("", wrap(h.list))
		tasks.GET("/:id", wrap(h.evaluate))
		tasks.POST("/:id/claim", append(append([]gin.HandlerFunc{}, mutating...), wrap(h.claim))...)
	}
}

// @Summary List tasks
// @Description Canonical task table evaluated for the current user
// @Tags tasks
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.TaskList
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid init data"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /tasks [get]
func (h *TaskHandler) list(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Summary Evaluate task
// @Tags tasks
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Task ID" example(invite_3_friends)
// @Success 200 {object} models.Evaluation
// @Failure 400 {object} middleware.ErrorResponse "Unknown task"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /tasks/{id} [get]
func (h *TaskHandler) evaluate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	evaluation, err := h.service.Evaluate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, evaluation)
}

// @Summary Claim task reward
// @Description Grants the canonical reward at most once. Repeated claims return status already-done with the unchanged balance. The request body is ignored, the reward amount is always taken from the server table.
// @Tags tasks
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Task ID" example(invite_3_friends)
// @Success 200 {object} models.ClaimResponse
// @Failure 400 {object} middleware.ErrorResponse "Unknown task or not enough invites (details.invite_count)"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Failure 503 {object} middleware.ErrorResponse "Store unavailable"
// @Router /tasks/{id}/claim [post]
func (h *TaskHandler) claim(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.Claim(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func currentUserID(c *gin.Context) (int64, bool) {
	telegramUser, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("Telegram init data required"))
		return 0, false
	}
	return telegramUser.ID, true
}
