package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Reset token related errors
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenUsed     = errors.New("reset token already used")
	ErrResetTokenExpired  = errors.New("reset token expired")

	// Session related errors
	ErrUnauthorized = errors.New("unauthorized")

	// Resource related errors
	ErrArticleNotFound = errors.New("article not found")
	ErrMediaNotFound   = errors.New("media not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
