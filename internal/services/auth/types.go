package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBadCredentials  = errors.New("bad credentials")
	ErrEmailTaken      = errors.New("email already registered")
	ErrTooManyAttempts = errors.New("too many login attempts")
	ErrSessionNotFound = errors.New("session not found")
	ErrRefreshNotFound = errors.New("refresh token not found")
)

type SessionRecord struct {
	SID         string
	UserID      int64
	AccountType string
	ExpiresAt   time.Time
}

type AccessClaims struct {
	UserID      int64
	SID         string
	AccountType string
	ExpiresAt   time.Time
}

type Me struct {
	ID          int64
	Email       string
	Name        string
	AccountType string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
