package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserBanned          = errors.New("user is banned")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrAccessDenied        = errors.New("access denied")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyPurchased    = errors.New("gift already purchased")
	ErrAlreadyClaimed      = errors.New("already claimed today")
)
