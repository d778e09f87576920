package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrSessionExists       = errors.New("session already exists")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionCompleted    = errors.New("session already completed")
	ErrSessionNotCompleted = errors.New("session not completed")
	ErrInvalidPhase        = errors.New("invalid recording phase")
)
