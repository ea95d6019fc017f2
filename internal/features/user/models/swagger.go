package models

// ResolveRequest тело запроса POST /users/me
type ResolveRequest struct {
	// Используется, если start_param в init data пуст
	InviterID int64 `json:"inviter_id,omitempty" example:"777"`
}

// UserEnvelope ответ с пользователем и информацией о пригласившем
type UserEnvelope struct {
	User       *User       `json:"user"`
	Inviter    *PublicInfo `json:"inviter,omitempty"`
	Created    bool        `json:"created" example:"true"`
	InviteLink string      `json:"invite_link,omitempty" example:"https://t.me/examplebot/app?startapp=555"`
}
