package domain

import (
	"context"
	"time"

	"courtside/internal/models"
)

// BookingService is the surface the HTTP layer talks to.
type BookingService interface {
	CreateReservation(ctx context.Context, userID string, req models.SlotRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, userID string, reservationID int64) (bool, error)
	Quote(ctx context.Context, req models.SlotRequest) (int64, error)
	CourtAvailable(ctx context.Context, courtID int64, date time.Time, startMin, endMin int) (bool, error)
	ListReservations(ctx context.Context, userID string) ([]*models.Reservation, error)
	JoinWaitlist(ctx context.Context, userID string, req models.SlotRequest) (*models.WaitlistEntry, error)
	ListWaitlist(ctx context.Context, userID string) ([]*models.WaitlistEntry, error)
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, notificationID int64) error
}

// CatalogService exposes read access to catalog entities.
type CatalogService interface {
	Resources(ctx context.Context) (*models.Resources, error)
	ReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error)
}

// EventPublisher decouples the booking core from event consumers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimitStore counts booking attempts per user inside a fixed window.
// Backed by Redis in production with an in-memory failover.
type RateLimitStore interface {
	Allow(ctx context.Context, userID string, limit int, window time.Duration) (bool, error)
}
