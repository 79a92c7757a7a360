package api

import (
	"errors"
	"net/http"

	"courtside/internal/domain"
)

// Error kinds of the response contract. Clients branch on kind, never on
// message text.
const (
	KindValidation      = "VALIDATION"
	KindNotFound        = "NOT_FOUND"
	KindConflict        = "CONFLICT"
	KindPolicyViolation = "POLICY_VIOLATION"
	KindForbidden       = "FORBIDDEN"
	KindRateLimited     = "RATE_LIMITED"
	KindInternal        = "INTERNAL"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// classifyError maps a service error onto an HTTP status and error kind.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrResourceNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, domain.ErrSlotTaken),
		errors.Is(err, domain.ErrCoachUnavailable),
		errors.Is(err, domain.ErrEquipmentUnavailable),
		errors.Is(err, domain.ErrAlreadyOnWaitlist),
		errors.Is(err, domain.ErrAlreadyCancelled):
		return http.StatusConflict, KindConflict
	case errors.Is(err, domain.ErrCancellationWindowClosed):
		return http.StatusUnprocessableEntity, KindPolicyViolation
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, KindForbidden
	case errors.Is(err, domain.ErrInvalidTimeRange):
		return http.StatusBadRequest, KindValidation
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, KindRateLimited
	default:
		return http.StatusInternalServerError, KindInternal
	}
}
