package models

import (
	"slices"
	"strconv"
	"time"
)

// User представляет полную модель пользователя mini app
// @Description Полная модель пользователя
type User struct {
	ID        int64  `json:"id" example:"555" description:"ID пользователя в Telegram"`
	Username  string `json:"username" example:"johndoe"`
	FirstName string `json:"first_name" example:"John"`
	LastName  string `json:"last_name" example:"Doe"`

	Points int64 `json:"points" example:"7505" description:"Баланс очков"`

	// InvitedBy задается один раз при создании: @username пригласившего или @<id>
	InvitedBy   string `json:"invited_by,omitempty" example:"@inviter"`
	InvitedByID int64  `json:"invited_by_id,omitempty" example:"777"`

	InvitedUsers       []string        `json:"invited_users"`
	ClaimedTaskIDs     []string        `json:"claimed_task_ids"`
	PaymentIdentifiers []string        `json:"payment_identifiers"`
	PayoutRequests     []PayoutRequest `json:"payout_requests"`

	IsOnline   bool      `json:"is_online"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// PayoutRequest заявка на выплату. Исполнение выплаты происходит во внешней системе.
type PayoutRequest struct {
	ID                string    `json:"id" example:"6f1c1c4e-8d0f-4b4e-9a51-0c5b3c2a1d7e"`
	PaymentIdentifier string    `json:"payment_identifier" example:"alice@upi"`
	RequestedAt       time.Time `json:"requested_at"`
}

// Profile поля профиля из init data Telegram
type Profile struct {
	Username  string
	FirstName string
	LastName  string
}

// PublicInfo публичная информация о пригласившем пользователе
type PublicInfo struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InviteCount длина InvitedUsers; именно она используется во всех проверках порогов
func (u *User) InviteCount() int {
	return len(u.InvitedUsers)
}

func (u *User) HasClaimed(taskID string) bool {
	return slices.Contains(u.ClaimedTaskIDs, taskID)
}

// CurrentPaymentIdentifier по соглашению актуален последний сохраненный идентификатор
func (u *User) CurrentPaymentIdentifier() string {
	if len(u.PaymentIdentifiers) == 0 {
		return ""
	}
	return u.PaymentIdentifiers[len(u.PaymentIdentifiers)-1]
}

// Handle отображаемый хэндл: @username, если он есть, иначе @<id>
func (u *User) Handle() string {
	return HandleFor(u.ID, u.Username)
}

func (u *User) PublicInfo() *PublicInfo {
	return &PublicInfo{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func HandleFor(id int64, username string) string {
	if username != "" {
		return "@" + username
	}
	return "@" + strconv.FormatInt(id, 10)
}
