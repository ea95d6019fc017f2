package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"referral-miniapp-backend/internal/common/middleware"
	"referral-miniapp-backend/internal/features/task/models"
	"referral-miniapp-backend/internal/features/task/service"
	usermodels "referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
	redisrepo "referral-miniapp-backend/internal/features/user/repository/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, userID int64) (*gin.Engine, repository.UserRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := redisrepo.NewUserRepository(client)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		middleware.SetTelegramUser(c, initdata.User{ID: userID}, "")
	})
	NewTaskHandler(service.NewTaskService(repo, nil)).RegisterRoutes(v1)
	return r, repo
}

func seed(t *testing.T, repo repository.UserRepository, id int64, invites int) {
	t.Helper()
	ctx := context.Background()
	_, _, err := repo.CreateWithReferral(ctx, &usermodels.User{ID: id}, 0, 0)
	require.NoError(t, err)
	for i := 1; i <= invites; i++ {
		_, _, err := repo.CreateWithReferral(ctx, &usermodels.User{ID: id*100 + int64(i)}, id, 0)
		require.NoError(t, err)
	}
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestListTasks(t *testing.T) {
	r, repo := newRouter(t, 1)
	seed(t, repo, 1, 1)

	w := serve(r, http.MethodGet, "/api/v1/tasks")
	require.Equal(t, http.StatusOK, w.Code)

	var list models.TaskList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.InviteCount)
	assert.Len(t, list.Tasks, 4)
}

func TestEvaluateUnknownTask(t *testing.T) {
	r, repo := newRouter(t, 1)
	seed(t, repo, 1, 0)

	w := serve(r, http.MethodGet, "/api/v1/tasks/invite_2_friends")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_TASK")
}

func TestClaimFlow(t *testing.T) {
	r, repo := newRouter(t, 1)
	seed(t, repo, 1, 2)

	w := serve(r, http.MethodPost, "/api/v1/tasks/invite_3_friends/claim")
	require.Equal(t, http.StatusBadRequest, w.Code)
	var failure struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.Equal(t, "NOT_ELIGIBLE", failure.Error.Code)
	assert.EqualValues(t, 2, failure.Error.Details["invite_count"])

	_, _, err := repo.CreateWithReferral(context.Background(), &usermodels.User{ID: 199}, 1, 0)
	require.NoError(t, err)

	w = serve(r, http.MethodPost, "/api/v1/tasks/invite_3_friends/claim")
	require.Equal(t, http.StatusOK, w.Code)
	var claim models.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, models.ClaimResponse{Claimed: true, Points: 5, Status: "done"}, claim)

	w = serve(r, http.MethodPost, "/api/v1/tasks/invite_3_friends/claim")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, "already-done", claim.Status)
	assert.Equal(t, int64(5), claim.Points)
}

func TestClaimUnknownUser(t *testing.T) {
	r, _ := newRouter(t, 42)

	w := serve(r, http.MethodPost, "/api/v1/tasks/invite_1_friend/claim")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
