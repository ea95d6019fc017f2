package service

import (
	"context"
	"time"

	"referral-miniapp-backend/internal/common/errors"
	"referral-miniapp-backend/internal/common/logger"
	"referral-miniapp-backend/internal/common/metrics"
	"referral-miniapp-backend/internal/common/validation"
	"referral-miniapp-backend/internal/features/task/models"
	usermodels "referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
)

type TaskService interface {
	List(ctx context.Context, userID int64) (*models.TaskList, error)
	Evaluate(ctx context.Context, userID int64, taskID string) (*models.Evaluation, error)
	Claim(ctx context.Context, userID int64, taskID string) (*models.ClaimResponse, error)
}

type taskService struct {
	repo    repository.UserRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTaskService(repo repository.UserRepository, m *metrics.Metrics) TaskService {
	return &taskService{
		repo:    repo,
		metrics: m,
		now:     time.Now,
	}
}

func (s *taskService) List(ctx context.Context, userID int64) (*models.TaskList, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := &models.TaskList{
		InviteCount: user.InviteCount(),
		Points:      user.Points,
		Tasks:       make([]models.Evaluation, 0, len(catalog)),
	}
	for _, task := range catalog {
		list.Tasks = append(list.Tasks, Evaluate(user, task))
	}
	return list, nil
}

func (s *taskService) Evaluate(ctx context.Context, userID int64, taskID string) (*models.Evaluation, error) {
	task, err := lookupTask(taskID)
	if err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	evaluation := Evaluate(user, task)
	return &evaluation, nil
}

// Claim начисляет награду не более одного раза. Проверка и начисление выполняются
// одним условным обновлением в хранилище.
func (s *taskService) Claim(ctx context.Context, userID int64, taskID string) (*models.ClaimResponse, error) {
	task, err := lookupTask(taskID)
	if err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	evaluation := Evaluate(user, task)
	if !evaluation.AlreadyClaimed && !evaluation.Eligible {
		s.metrics.TaskClaim(task.ID, string(usermodels.ClaimNotEligible))
		return nil, errors.NewNotEligibleError(task.ID, evaluation.InviteCount, task.RequiredInvites).
			WithUserID(userID)
	}

	result, err := s.repo.ClaimTask(ctx, userID, grantFor(task), s.now())
	if err != nil {
		return nil, repository.AsAppError("claim task", userID, err)
	}
	s.metrics.TaskClaim(task.ID, string(result.Outcome))

	switch result.Outcome {
	case usermodels.ClaimDone:
		logger.Info().
			Int64("user_id", userID).
			Str("task_id", task.ID).
			Int64("reward", task.Reward).
			Int64("points", result.Points).
			Msg("Task reward granted")
		return &models.ClaimResponse{Claimed: true, Points: result.Points, Status: string(result.Outcome)}, nil
	case usermodels.ClaimAlreadyDone:
		return &models.ClaimResponse{Claimed: true, Points: result.Points, Status: string(result.Outcome)}, nil
	default:
		return nil, errors.NewNotEligibleError(task.ID, result.InviteCount, task.RequiredInvites).
			WithUserID(userID)
	}
}

func (s *taskService) getUser(ctx context.Context, userID int64) (*usermodels.User, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user_id", "user identity is required")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, repository.AsAppError("get user", userID, err)
	}
	return user, nil
}

func lookupTask(taskID string) (models.Task, error) {
	if err := validation.ValidateTaskID(taskID); err != nil {
		return models.Task{}, errors.NewValidationError("task_id", err.Error())
	}
	task, ok := Lookup(taskID)
	if !ok {
		return models.Task{}, errors.NewUnknownTaskError(taskID)
	}
	return task, nil
}
