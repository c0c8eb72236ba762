package apperror

import "errors"

var (
	ErrNameConflict      = errors.New("username is already taken")
	ErrEmptyName         = errors.New("username is empty")
	ErrAlreadyRegistered = errors.New("connection already has a player")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInvalidMove       = errors.New("invalid move")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyInMatch    = errors.New("player is already in a match")
)
