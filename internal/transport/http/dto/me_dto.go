package dto

import "time"

type MeResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	AccountType string     `json:"account_type"`
	Timezone    string     `json:"timezone"`
	IsOnline    bool       `json:"is_online"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PublicProfileResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	AccountType string     `json:"account_type"`
	IsOnline    bool       `json:"is_online"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

type BlockRequest struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

type UnblockRequest struct {
	UserID int64 `json:"user_id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
