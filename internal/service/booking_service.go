package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"courtside/internal/database"
	"courtside/internal/domain"
	"courtside/internal/events"
	"courtside/internal/metrics"
	"courtside/internal/models"
	"courtside/internal/pricing"
)

type BookingService struct {
	db                 *database.DB
	eventBus           domain.EventPublisher
	limiter            domain.RateLimitStore
	cancellationWindow time.Duration
	attemptLimit       int
	attemptWindow      time.Duration
	logger             *zerolog.Logger
}

func NewBookingService(db *database.DB, eventBus domain.EventPublisher, limiter domain.RateLimitStore,
	cancellationWindowHours, attemptLimit, attemptWindowSeconds int, logger *zerolog.Logger) *BookingService {
	if cancellationWindowHours <= 0 {
		cancellationWindowHours = models.DefaultCancellationWindowHours
	}
	return &BookingService{
		db:                 db,
		eventBus:           eventBus,
		limiter:            limiter,
		cancellationWindow: time.Duration(cancellationWindowHours) * time.Hour,
		attemptLimit:       attemptLimit,
		attemptWindow:      time.Duration(attemptWindowSeconds) * time.Second,
		logger:             logger,
	}
}

func validateSlot(startMin, endMin int) error {
	if startMin < 0 || endMin > models.MinutesPerDay || endMin <= startMin {
		return domain.ErrInvalidTimeRange
	}
	return nil
}

// CreateReservation runs the full booking protocol: one transaction holding
// the write lock across availability checks, pricing and the insert, so two
// concurrent requests for overlapping slots cannot both succeed.
func (s *BookingService) CreateReservation(ctx context.Context, userID string, req models.SlotRequest) (*models.Reservation, error) {
	if err := validateSlot(req.StartMin, req.EndMin); err != nil {
		return nil, err
	}

	if s.limiter != nil && s.attemptLimit > 0 {
		allowed, err := s.limiter.Allow(ctx, userID, s.attemptLimit, s.attemptWindow)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Rate limit check failed")
		} else if !allowed {
			metrics.IncReservationRejected("rate_limited")
			return nil, domain.ErrTooManyAttempts
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := s.createInTx(ctx, tx, userID, req)
	if err != nil {
		metrics.IncReservationRejected(rejectionReason(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	s.logger.Info().
		Str("reference", res.Reference).
		Str("user_id", userID).
		Int64("court_id", res.CourtID).
		Int64("total_price", res.TotalPrice).
		Msg("Reservation confirmed")

	s.publishReservation(events.EventReservationCreated, res)
	return res, nil
}

func (s *BookingService) createInTx(ctx context.Context, tx *database.Tx, userID string, req models.SlotRequest) (*models.Reservation, error) {
	if _, err := tx.GetCourt(ctx, req.CourtID); err != nil {
		return nil, err
	}

	free, err := tx.CourtFree(ctx, req.CourtID, req.Date, req.StartMin, req.EndMin)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, domain.ErrSlotTaken
	}

	if req.CoachID != 0 {
		free, err := tx.CoachFree(ctx, req.CoachID, req.Date, req.StartMin, req.EndMin)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, domain.ErrCoachUnavailable
		}
	}

	for _, line := range req.Equipment {
		item, err := tx.GetEquipment(ctx, line.EquipmentID)
		if err != nil {
			return nil, err
		}
		committed, err := tx.EquipmentCommitted(ctx, line.EquipmentID, req.Date, req.StartMin, req.EndMin)
		if err != nil {
			return nil, err
		}
		if committed+line.Quantity > item.Stock {
			return nil, domain.ErrEquipmentUnavailable
		}
	}

	catalog, err := tx.PricingCatalog(ctx)
	if err != nil {
		return nil, err
	}
	total, err := pricing.Calculate(req, catalog)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		Reference:  uuid.NewString(),
		UserID:     userID,
		CourtID:    req.CourtID,
		Date:       req.Date,
		StartMin:   req.StartMin,
		EndMin:     req.EndMin,
		Equipment:  req.Equipment,
		CoachID:    req.CoachID,
		TotalPrice: total,
		Status:     models.StatusConfirmed,
	}
	if err := tx.InsertReservation(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CancelReservation flips a reservation to CANCELLED and, in the same
// transaction, promotes the oldest waitlist entry for the freed slot by
// writing its notification and removing it from the queue. Returns whether
// someone was notified.
func (s *BookingService) CancelReservation(ctx context.Context, userID string, reservationID int64) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.GetReservation(ctx, reservationID)
	if err != nil {
		return false, err
	}
	if res.UserID != userID {
		return false, domain.ErrNotOwner
	}
	if res.Status == models.StatusCancelled {
		return false, domain.ErrAlreadyCancelled
	}
	if time.Until(models.SlotStart(res.Date, res.StartMin)) < s.cancellationWindow {
		return false, domain.ErrCancellationWindowClosed
	}

	if err := tx.MarkReservationCancelled(ctx, reservationID); err != nil {
		return false, err
	}

	entry, err := tx.OldestWaitlistEntry(ctx, res.CourtID, res.Date, res.StartMin)
	if err != nil {
		return false, err
	}

	var notification *models.Notification
	if entry != nil {
		notification = &models.Notification{
			UserID: entry.UserID,
			Message: fmt.Sprintf("A court you were waiting for is now available: court %d on %s at %s.",
				res.CourtID, res.Date.Format(models.DateFormat), models.FormatClock(res.StartMin)),
		}
		if err := tx.InsertNotification(ctx, notification); err != nil {
			return false, err
		}
		if err := tx.DeleteWaitlistEntry(ctx, entry.ID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	res.Status = models.StatusCancelled
	s.publishReservation(events.EventReservationCancelled, res)

	if entry == nil {
		s.logger.Info().Str("reference", res.Reference).Msg("Reservation cancelled, waitlist empty")
		return false, nil
	}

	s.logger.Info().
		Str("reference", res.Reference).
		Str("promoted_user_id", entry.UserID).
		Msg("Reservation cancelled, waitlist entry promoted")

	if err := s.eventBus.PublishJSON(events.EventWaitlistPromoted, events.PromotionEventPayload{
		WaitlistID:     entry.ID,
		UserID:         entry.UserID,
		CourtID:        entry.CourtID,
		Date:           entry.Date.Format(models.DateFormat),
		StartTime:      models.FormatClock(entry.StartMin),
		NotificationID: notification.ID,
	}); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish promotion event")
	}

	return true, nil
}

// Quote prices a request without reserving anything. It reads the same
// catalog snapshot the booking path uses, so a quote immediately followed
// by a booking charges the quoted amount.
func (s *BookingService) Quote(ctx context.Context, req models.SlotRequest) (int64, error) {
	if err := validateSlot(req.StartMin, req.EndMin); err != nil {
		return 0, err
	}
	catalog, err := s.db.PricingCatalog(ctx)
	if err != nil {
		return 0, err
	}
	return pricing.Calculate(req, catalog)
}

func (s *BookingService) CourtAvailable(ctx context.Context, courtID int64, date time.Time, startMin, endMin int) (bool, error) {
	if err := validateSlot(startMin, endMin); err != nil {
		return false, err
	}
	return s.db.CourtFree(ctx, courtID, date, startMin, endMin)
}

func (s *BookingService) ListReservations(ctx context.Context, userID string) ([]*models.Reservation, error) {
	return s.db.ListUserReservations(ctx, userID)
}

func (s *BookingService) JoinWaitlist(ctx context.Context, userID string, req models.SlotRequest) (*models.WaitlistEntry, error) {
	if err := validateSlot(req.StartMin, req.EndMin); err != nil {
		return nil, err
	}
	if _, err := s.db.GetCourt(ctx, req.CourtID); err != nil {
		return nil, err
	}

	entry := &models.WaitlistEntry{
		UserID:   userID,
		CourtID:  req.CourtID,
		Date:     req.Date,
		StartMin: req.StartMin,
		EndMin:   req.EndMin,
	}
	if err := s.db.JoinWaitlist(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Int64("court_id", req.CourtID).
		Str("date", req.Date.Format(models.DateFormat)).
		Msg("Joined waitlist")
	return entry, nil
}

func (s *BookingService) ListWaitlist(ctx context.Context, userID string) ([]*models.WaitlistEntry, error) {
	return s.db.ListUserWaitlist(ctx, userID)
}

func (s *BookingService) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.db.ListUserNotifications(ctx, userID)
}

func (s *BookingService) MarkNotificationRead(ctx context.Context, userID string, notificationID int64) error {
	return s.db.MarkNotificationRead(ctx, notificationID, userID)
}

func (s *BookingService) publishReservation(eventType string, res *models.Reservation) {
	if err := s.eventBus.PublishJSON(eventType, events.ReservationEventPayload{
		ReservationID: res.ID,
		Reference:     res.Reference,
		UserID:        res.UserID,
		CourtID:       res.CourtID,
		Date:          res.Date.Format(models.DateFormat),
		StartTime:     models.FormatClock(res.StartMin),
		EndTime:       models.FormatClock(res.EndMin),
		TotalPrice:    res.TotalPrice,
		Status:        res.Status,
	}); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish reservation event")
	}
}

// rejectionReason flattens a booking failure onto a metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, domain.ErrCoachUnavailable):
		return "coach_unavailable"
	case errors.Is(err, domain.ErrEquipmentUnavailable):
		return "equipment_unavailable"
	case errors.Is(err, domain.ErrResourceNotFound):
		return "resource_not_found"
	default:
		return "internal"
	}
}
