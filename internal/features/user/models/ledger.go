package models

// ClaimOutcome результат условного начисления награды за задание
type ClaimOutcome string

const (
	ClaimDone        ClaimOutcome = "done"
	ClaimAlreadyDone ClaimOutcome = "already-done"
	ClaimNotEligible ClaimOutcome = "not-eligible"
)

// TaskGrant описывает начисление: задание, порог приглашений и каноническая награда
type TaskGrant struct {
	TaskID          string
	RequiredInvites int
	Reward          int64
}

// ClaimResult Points: баланс после операции, InviteCount: число приглашений на момент проверки
type ClaimResult struct {
	Outcome     ClaimOutcome
	Points      int64
	InviteCount int
}
