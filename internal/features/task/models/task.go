package models

// Task задание с порогом приглашений и фиксированной наградой
type Task struct {
	ID              string `json:"id" example:"invite_3_friends"`
	RequiredInvites int    `json:"required_invites" example:"3"`
	Reward          int64  `json:"reward" example:"5"`
}

// Evaluation состояние задания для конкретного пользователя
// @Description Оценка задания: можно ли получить награду
type Evaluation struct {
	TaskID          string `json:"task_id" example:"invite_3_friends"`
	RequiredInvites int    `json:"required_invites" example:"3"`
	Reward          int64  `json:"reward" example:"5"`
	InviteCount     int    `json:"invite_count" example:"2"`
	Eligible        bool   `json:"eligible" example:"false"`
	AlreadyClaimed  bool   `json:"already_claimed" example:"false"`
}

// TaskList ответ GET /tasks
type TaskList struct {
	InviteCount int          `json:"invite_count" example:"2"`
	Points      int64        `json:"points" example:"5000"`
	Tasks       []Evaluation `json:"tasks"`
}

// ClaimResponse ответ POST /tasks/{id}/claim
type ClaimResponse struct {
	Claimed bool   `json:"claimed" example:"true"`
	Points  int64  `json:"points" example:"7505"`
	Status  string `json:"status" example:"done" enums:"done,already-done"`
}
