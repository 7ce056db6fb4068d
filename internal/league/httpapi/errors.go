package httpapi

import (
	"errors"
	"net/http"

	"github.com/radieske/betbuddy-league/internal/league/gate"
	"github.com/radieske/betbuddy-league/internal/league/model"
)

// statusFor traduz erros do domínio para HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, gate.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrMatchNotFound),
		errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateBet):
		return http.StatusConflict
	case errors.Is(err, model.ErrMatchFinished), errors.Is(err, model.ErrBettingClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrBetRejected), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Algo salió mal"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
