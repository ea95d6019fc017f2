package service

import (
	"referral-miniapp-backend/internal/features/task/models"
	usermodels "referral-miniapp-backend/internal/features/user/models"
)

const (
	TaskInviteOneFriend    = "invite_1_friend"
	TaskInviteThreeFriends = "invite_3_friends"
	TaskInviteTenFriends   = "invite_10_friends"

	// TaskInviteFriendsLegacy задание первой версии приложения, оставлено для уже выданных ссылок
	TaskInviteFriendsLegacy = "invite_friends"
)

// catalog единственный источник порогов и наград. Сумма от клиента никогда не используется.
var catalog = []models.Task{
	{ID: TaskInviteOneFriend, RequiredInvites: 1, Reward: 1},
	{ID: TaskInviteThreeFriends, RequiredInvites: 3, Reward: 5},
	{ID: TaskInviteTenFriends, RequiredInvites: 10, Reward: 20},
	{ID: TaskInviteFriendsLegacy, RequiredInvites: 3, Reward: 5000},
}

var catalogIndex = func() map[string]models.Task {
	index := make(map[string]models.Task, len(catalog))
	for _, task := range catalog {
		index[task.ID] = task
	}
	return index
}()

// Lookup ищет задание в каталоге
func Lookup(taskID string) (models.Task, bool) {
	task, ok := catalogIndex[taskID]
	return task, ok
}

// Catalog возвращает копию каталога в порядке отображения
func Catalog() []models.Task {
	tasks := make([]models.Task, len(catalog))
	copy(tasks, catalog)
	return tasks
}

// Evaluate чистая функция: не обращается к хранилищу
func Evaluate(user *usermodels.User, task models.Task) models.Evaluation {
	claimed := user.HasClaimed(task.ID)
	invites := user.InviteCount()
	return models.Evaluation{
		TaskID:          task.ID,
		RequiredInvites: task.RequiredInvites,
		Reward:          task.Reward,
		InviteCount:     invites,
		Eligible:        !claimed && invites >= task.RequiredInvites,
		AlreadyClaimed:  claimed,
	}
}

func grantFor(task models.Task) usermodels.TaskGrant {
	return usermodels.TaskGrant{
		TaskID:          task.ID,
		RequiredInvites: task.RequiredInvites,
		Reward:          task.Reward,
	}
}
