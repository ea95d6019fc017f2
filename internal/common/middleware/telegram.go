package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/logger"
)

const (
	InitDataHeader = "init_data"

	userKey       = "user"
	userIDKey     = "user_id"
	startParamKey = "start_param"
)

// TelegramInitDataMiddleware проверяет подпись init data Telegram Mini App и кладет
// пользователя и start_param в контекст. expIn == 0 отключает проверку срока действия.
func TelegramInitDataMiddleware(token string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		initDataQuery := c.GetHeader(InitDataHeader)
		if initDataQuery == "" {
			initDataQuery = c.GetHeader("X-Telegram-Init-Data")
		}
		if initDataQuery == "" {
			AbortWithError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if token == "" {
			logger.Error().Msg("BOT_TOKEN is not configured, init data cannot be validated")
			AbortWithError(c, errors.New(errors.ErrCodeInternal, "Server configuration error"))
			return
		}

		if err := initdata.Validate(initDataQuery, token, expIn); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			AbortWithError(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsedData, err := initdata.Parse(initDataQuery)
		if err != nil {
			AbortWithError(c, errors.NewValidationError(InitDataHeader, "failed to parse init data"))
			return
		}
		if parsedData.User.ID == 0 {
			AbortWithError(c, errors.NewUnauthorizedError("init data has no user"))
			return
		}

		SetTelegramUser(c, parsedData.User, parsedData.StartParam)
		c.Next()
	}
}

// SetTelegramUser сохраняет данные пользователя Telegram в контексте запроса
func SetTelegramUser(c *gin.Context, user initdata.User, startParam string) {
	c.Set(userKey, user)
	c.Set(userIDKey, user.ID)
	c.Set(startParamKey, strings.TrimSpace(startParam))
}

// CurrentUser возвращает пользователя Telegram, установленного TelegramInitDataMiddleware
func CurrentUser(c *gin.Context) (initdata.User, bool) {
	user, exists := c.Get(userKey)
	if !exists {
		return initdata.User{}, false
	}
	telegramUser, ok := user.(initdata.User)
	return telegramUser, ok
}

// StartParam возвращает start_param из init data (параметр startapp ссылки-приглашения)
func StartParam(c *gin.Context) string {
	return c.GetString(startParamKey)
}

func getUserID(c *gin.Context) int64 {
	if userID, exists := c.Get(userIDKey); exists {
		if id, ok := userID.(int64); ok {
			return id
		}
	}
	return 0
}
