package model

import (
	"errors"
	"fmt"
)

// ErrBetRejected é o pai de todas as rejeições síncronas de aposta
var ErrBetRejected = errors.New("bet rejected")

var (
	ErrMatchNotFound     = fmt.Errorf("%w: match not found", ErrBetRejected)
	ErrUserNotFound      = fmt.Errorf("%w: user not found", ErrBetRejected)
	ErrMatchFinished     = fmt.Errorf("%w: match already finished", ErrBetRejected)
	ErrBettingClosed     = fmt.Errorf("%w: betting closed for this match", ErrBetRejected)
	ErrDuplicateBet      = fmt.Errorf("%w: bet already placed for this match", ErrBetRejected)
	ErrInvalidPrediction = fmt.Errorf("%w: predicted scores must be non-negative", ErrBetRejected)
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
