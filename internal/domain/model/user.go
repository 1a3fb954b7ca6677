package model

import (
	"time"

	"github.com/Princeaman007/agence/internal/domain/enums"
)

type User struct {
	ID           int64             `json:"id"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Name         string            `json:"name"`
	AccountType  enums.AccountType `json:"account_type"`
	Timezone     string            `json:"timezone"`
	IsOnline     bool              `json:"is_online"`
	LastSeenAt   *time.Time        `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
