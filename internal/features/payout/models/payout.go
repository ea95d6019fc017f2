package models

import "time"

// SaveIdentifierRequest тело POST /payouts/identifiers
type SaveIdentifierRequest struct {
	PaymentIdentifier string `json:"payment_identifier" binding:"required,payment_id" example:"alice@upi"`
}

// PayoutRequestInput тело POST /payouts/requests
type PayoutRequestInput struct {
	PaymentIdentifier string `json:"payment_identifier" binding:"required,payment_id" example:"alice@upi"`
	// Save дополнительно сохраняет идентификатор в профиле
	Save bool `json:"save" example:"true"`
}

// PaymentIdentifiersResponse список сохраненных идентификаторов, последний актуален
type PaymentIdentifiersResponse struct {
	PaymentIdentifiers []string `json:"payment_identifiers"`
}

// PayoutAccepted ответ на заявку о выплате
type PayoutAccepted struct {
	Accepted     bool   `json:"accepted" example:"true"`
	RequestID    string `json:"request_id" example:"6f1c1c4e-8d0f-4b4e-9a51-0c5b3c2a1d7e"`
	Kind         string `json:"kind" example:"upi" enums:"upi,ton,other"`
	RequestCount int    `json:"request_count" example:"1"`
}

// PayoutEvent событие для внешней системы исполнения выплат
type PayoutEvent struct {
	RequestID         string
	UserID            int64
	PaymentIdentifier string
	Kind              string
	Points            int64
	RequestedAt       time.Time
}
