package handlers

import (
	"errors"
	"net/http"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/intake"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/remote"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/verification"
)

// errConflict marks a request that is well formed but not allowed in the case's current state
var errConflict = errors.New("conflict")

// caseError maps a service error onto a status code and writes it
func caseError(message string, w http.ResponseWriter, err error) {
	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.Is(err, reconcile.ErrCaseNotFound):
		config.ErrorStatus(message, http.StatusNotFound, w, err)
	case errors.Is(err, verification.ErrNotEligible),
		errors.Is(err, verification.ErrInvalidTransition),
		errors.Is(err, errConflict):
		config.ErrorStatus(message, http.StatusConflict, w, err)
	case errors.Is(err, remote.ErrRemoteUnavailable):
		config.ErrorStatus(message, http.StatusServiceUnavailable, w, err)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}
