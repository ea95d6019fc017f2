package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/logger"
	"referral-miniapp-backend/internal/common/metrics"
	"referral-miniapp-backend/internal/common/validation"
	"referral-miniapp-backend/internal/features/payout/models"
	"referral-miniapp-backend/internal/features/payout/publisher"
	usermodels "referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
)

type PayoutService interface {
	SavePaymentIdentifier(ctx context.Context, userID int64, paymentID string) (*models.PaymentIdentifiersResponse, error)
	RequestPayout(ctx context.Context, userID int64, paymentID string, save bool) (*models.PayoutAccepted, error)
}

type payoutService struct {
	repo      repository.UserRepository
	publisher publisher.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// NewPayoutService pub может быть nil: тогда заявки только записываются в хранилище
func NewPayoutService(repo repository.UserRepository, pub publisher.Publisher, m *metrics.Metrics) PayoutService {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &payoutService{
		repo:      repo,
		publisher: pub,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *payoutService) SavePaymentIdentifier(ctx context.Context, userID int64, paymentID string) (*models.PaymentIdentifiersResponse, error) {
	paymentID, _, err := validateInput(userID, paymentID)
	if err != nil {
		return nil, err
	}

	ids, err := s.repo.AppendPaymentIdentifier(ctx, userID, paymentID)
	if err != nil {
		return nil, repository.AsAppError("append payment identifier", userID, err)
	}
	s.metrics.PaymentIdentifierSaved()

	logger.Info().Int64("user_id", userID).Int("count", len(ids)).Msg("Payment identifier saved")
	return &models.PaymentIdentifiersResponse{PaymentIdentifiers: ids}, nil
}

// RequestPayout только записывает заявку. Баланс не проверяется и не списывается,
// повторные заявки не схлопываются: исполнение выплаты происходит во внешней системе.
func (s *payoutService) RequestPayout(ctx context.Context, userID int64, paymentID string, save bool) (*models.PayoutAccepted, error) {
	paymentID, kind, err := validateInput(userID, paymentID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, repository.AsAppError("get user", userID, err)
	}

	req := usermodels.PayoutRequest{
		ID:                s.newID(),
		PaymentIdentifier: paymentID,
		RequestedAt:       s.now(),
	}
	// идентификатор и заявка пишутся одной операцией хранилища
	count, err := s.repo.AppendPayoutRequest(ctx, userID, req, save)
	if err != nil {
		return nil, repository.AsAppError("append payout request", userID, err)
	}
	if save {
		s.metrics.PaymentIdentifierSaved()
	}
	s.metrics.PayoutRequested()

	logger.Info().
		Int64("user_id", userID).
		Str("request_id", req.ID).
		Str("kind", string(kind)).
		Int64("points", user.Points).
		Msg("Payout requested")

	// запись в хранилище и есть заявка; ошибка публикации не отменяет ее
	event := models.PayoutEvent{
		RequestID:         req.ID,
		UserID:            userID,
		PaymentIdentifier: paymentID,
		Kind:              string(kind),
		Points:            user.Points,
		RequestedAt:       req.RequestedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Str("request_id", req.ID).Msg("Failed to publish payout request")
	}

	return &models.PayoutAccepted{
		Accepted:     true,
		RequestID:    req.ID,
		Kind:         string(kind),
		RequestCount: count,
	}, nil
}

func validateInput(userID int64, paymentID string) (string, validation.PaymentKind, error) {
	if userID == 0 {
		return "", "", errors.NewValidationError("user_id", "user identity is required")
	}
	paymentID = strings.TrimSpace(paymentID)
	kind, err := validation.ValidatePaymentIdentifier(paymentID)
	if err != nil {
		return "", "", errors.NewValidationError("payment_identifier", err.Error())
	}
	return paymentID, kind, nil
}
