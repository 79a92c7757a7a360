package domain

import "errors"

// Sentinel errors for the booking core. The API layer maps these onto the
// machine-checkable error kinds of the response contract; everything else
// surfaces as INTERNAL.
var (
	ErrResourceNotFound = errors.New("resource not found")

	ErrReservationNotFound = errors.New("reservation not found")

	ErrNotificationNotFound = errors.New("notification not found")

	ErrSlotTaken = errors.New("court is already booked for this time slot")

	ErrCoachUnavailable = errors.New("coach is unavailable for this time slot")

	ErrEquipmentUnavailable = errors.New("requested equipment is not available")

	ErrAlreadyOnWaitlist = errors.New("already on waitlist")

	ErrAlreadyCancelled = errors.New("reservation is already cancelled")

	ErrCancellationWindowClosed = errors.New("cancellation is only allowed 24 hours before the slot time")

	ErrNotOwner = errors.New("reservation belongs to another user")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrTooManyAttempts = errors.New("too many booking attempts, slow down")
)
