package repository

import (
	"context"
	"errors"
	"time"

	apperrors "referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/logger"
	"referral-miniapp-backend/internal/features/user/models"
)

// ErrNotFound возвращается, когда записи пользователя нет
var ErrNotFound = errors.New("user not found")

// UserRepository хранилище пользователей. Все мутации выполняются одной атомарной
// операцией хранилища; чтение-проверка-запись на стороне сервиса не используется.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// CreateWithReferral создает пользователя, если его еще нет. Если inviterID != 0 и
	// пригласивший существует, в той же операции хэндл нового пользователя добавляется
	// в его InvitedUsers, а баланс увеличивается на bonus. created == false означает,
	// что пользователь уже существовал и ничего не изменилось.
	CreateWithReferral(ctx context.Context, user *models.User, inviterID int64, bonus int64) (created bool, linked bool, err error)

	// Touch обновляет только отметки присутствия
	Touch(ctx context.Context, id int64, at time.Time) error

	// ClaimTask условно начисляет награду: не более одного раза на задание и только
	// при достаточном числе приглашений.
	ClaimTask(ctx context.Context, id int64, grant models.TaskGrant, at time.Time) (models.ClaimResult, error)

	AppendPaymentIdentifier(ctx context.Context, id int64, paymentID string) ([]string, error)

	// AppendPayoutRequest записывает заявку и возвращает число заявок пользователя.
	// При saveIdentifier == true req.PaymentIdentifier в той же операции добавляется
	// в PaymentIdentifiers: при ошибке не сохраняется ни то, ни другое.
	AppendPayoutRequest(ctx context.Context, id int64, req models.PayoutRequest, saveIdentifier bool) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// AsAppError переводит ошибку хранилища в ошибку приложения: ErrNotFound становится
// USER_NOT_FOUND, остальное STORE_UNAVAILABLE.
func AsAppError(op string, userID int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperrors.NewUserNotFoundError(userID)
	}
	logger.Error().Err(err).Int64("user_id", userID).Str("operation", op).Msg("Store operation failed")
	return apperrors.NewStoreError(op, err).WithUserID(userID)
}
