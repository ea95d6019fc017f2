package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/logger"
	"referral-miniapp-backend/internal/common/metrics"
	"referral-miniapp-backend/internal/common/validation"
	"referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
)

// DefaultReferralBonus начисляется пригласившему за каждого нового пользователя
const DefaultReferralBonus int64 = 2500

// ResolveInput данные первого или повторного обращения пользователя
type ResolveInput struct {
	ID      int64
	Profile models.Profile
	// InviterID 0, если пользователь пришел не по ссылке-приглашению
	InviterID int64
}

type UserService interface {
	Resolve(ctx context.Context, in ResolveInput) (*models.UserEnvelope, error)
	GetCurrent(ctx context.Context, id int64) (*models.UserEnvelope, error)
}

type Options struct {
	ReferralBonus int64
	// AppURL ссылка на mini app, например https://t.me/examplebot/app
	AppURL string
}

type userService struct {
	repo    repository.UserRepository
	metrics *metrics.Metrics
	opts    Options
	now     func() time.Time
}

func NewUserService(repo repository.UserRepository, m *metrics.Metrics, opts Options) UserService {
	if opts.ReferralBonus <= 0 {
		opts.ReferralBonus = DefaultReferralBonus
	}
	return &userService{
		repo:    repo,
		metrics: m,
		opts:    opts,
		now:     time.Now,
	}
}

// Resolve находит пользователя или создает его. Связь с пригласившим устанавливается
// только при создании и больше не меняется.
func (s *userService) Resolve(ctx context.Context, in ResolveInput) (*models.UserEnvelope, error) {
	if in.ID == 0 {
		return nil, errors.NewValidationError("id", "user identity is required")
	}

	user, err := s.repo.GetByID(ctx, in.ID)
	switch {
	case err == nil:
		return s.touch(ctx, user)
	case !stderrors.Is(err, repository.ErrNotFound):
		return nil, repository.AsAppError("get user", in.ID, err)
	}

	now := s.now()
	user = &models.User{
		ID:                 in.ID,
		Username:           validation.TruncateName(in.Profile.Username, validation.MaxUsernameLength),
		FirstName:          validation.TruncateName(in.Profile.FirstName, validation.MaxFirstNameLength),
		LastName:           validation.TruncateName(in.Profile.LastName, validation.MaxLastNameLength),
		InvitedUsers:       []string{},
		ClaimedTaskIDs:     []string{},
		PaymentIdentifiers: []string{},
		PayoutRequests:     []models.PayoutRequest{},
		IsOnline:           true,
		LastSeenAt:         now,
		CreatedAt:          now,
	}

	inviter, err := s.findInviter(ctx, in)
	if err != nil {
		return nil, err
	}
	inviterID := int64(0)
	if inviter != nil {
		inviterID = inviter.ID
		user.InvitedBy = inviter.Handle()
		user.InvitedByID = inviter.ID
	}

	created, linked, err := s.repo.CreateWithReferral(ctx, user, inviterID, s.opts.ReferralBonus)
	if err != nil {
		return nil, repository.AsAppError("create user", in.ID, err)
	}
	if !created {
		// параллельный запрос успел создать пользователя раньше
		existing, err := s.repo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, repository.AsAppError("get user", in.ID, err)
		}
		return s.touch(ctx, existing)
	}
	if !linked {
		user.InvitedBy = ""
		user.InvitedByID = 0
		inviter = nil
	}

	s.metrics.UserCreated(linked, s.opts.ReferralBonus)
	event := logger.Info().Int64("user_id", user.ID).Bool("linked", linked)
	if linked {
		event = event.Int64("inviter_id", inviterID).Int64("bonus", s.opts.ReferralBonus)
	}
	event.Msg("User created")

	envelope := s.envelope(user, true)
	if inviter != nil {
		envelope.Inviter = inviter.PublicInfo()
	}
	return envelope, nil
}

func (s *userService) GetCurrent(ctx context.Context, id int64) (*models.UserEnvelope, error) {
	if id == 0 {
		return nil, errors.NewValidationError("id", "user identity is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repository.AsAppError("get user", id, err)
	}

	envelope := s.envelope(user, false)
	if envelope.Inviter, err = s.inviterInfo(ctx, user); err != nil {
		return nil, err
	}
	return envelope, nil
}

// touch обновляет только присутствие; referral-поля не трогаются
func (s *userService) touch(ctx context.Context, user *models.User) (*models.UserEnvelope, error) {
	now := s.now()
	if err := s.repo.Touch(ctx, user.ID, now); err != nil {
		return nil, repository.AsAppError("touch user", user.ID, err)
	}
	user.IsOnline = true
	user.LastSeenAt = now

	envelope := s.envelope(user, false)
	var err error
	if envelope.Inviter, err = s.inviterInfo(ctx, user); err != nil {
		return nil, err
	}
	return envelope, nil
}

// findInviter возвращает nil без ошибки, если пригласивший не найден или совпадает с пользователем
func (s *userService) findInviter(ctx context.Context, in ResolveInput) (*models.User, error) {
	if in.InviterID == 0 {
		return nil, nil
	}
	if in.InviterID == in.ID {
		logger.Debug().Int64("user_id", in.ID).Msg("Self-referral ignored")
		return nil, nil
	}

	inviter, err := s.repo.GetByID(ctx, in.InviterID)
	if stderrors.Is(err, repository.ErrNotFound) {
		logger.Debug().Int64("user_id", in.ID).Int64("inviter_id", in.InviterID).Msg("Inviter not found, user stays unlinked")
		return nil, nil
	}
	if err != nil {
		return nil, repository.AsAppError("get inviter", in.InviterID, err)
	}
	return inviter, nil
}

func (s *userService) inviterInfo(ctx context.Context, user *models.User) (*models.PublicInfo, error) {
	if user.InvitedByID == 0 {
		return nil, nil
	}
	inviter, err := s.repo.GetByID(ctx, user.InvitedByID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, repository.AsAppError("get inviter", user.InvitedByID, err)
	}
	return inviter.PublicInfo(), nil
}

func (s *userService) envelope(user *models.User, created bool) *models.UserEnvelope {
	return &models.UserEnvelope{
		User:       user,
		Created:    created,
		InviteLink: InviteLink(s.opts.AppURL, user.ID),
	}
}

// InviteLink строит ссылку вида <app url>?startapp=<id>; пустая строка, если URL не настроен
func InviteLink(appURL string, id int64) string {
	if appURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(appURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sstartapp=%d", appURL, sep, id)
}
