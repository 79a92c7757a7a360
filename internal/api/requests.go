package api

import (
	"fmt"
	"time"

	"courtside/internal/models"
)

type equipmentPayload struct {
	EquipmentID int64 `json:"equipment_id" validate:"required,min=1"`
	Quantity    int   `json:"quantity" validate:"required,min=1"`
}

// slotPayload is shared by booking, quoting, availability and waitlist
// requests: they all describe the same slot shape.
type slotPayload struct {
	CourtID   int64              `json:"court_id" validate:"required,min=1"`
	Date      string             `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string             `json:"start_time" validate:"required"`
	EndTime   string             `json:"end_time" validate:"required"`
	Equipment []equipmentPayload `json:"equipment" validate:"omitempty,dive"`
	CoachID   int64              `json:"coach_id" validate:"omitempty,min=1"`
}

// toSlotRequest converts the validated payload into the core request type.
// Clock parsing happens here; the core works in minutes since midnight.
func (p slotPayload) toSlotRequest() (models.SlotRequest, error) {
	date, err := time.Parse(models.DateFormat, p.Date)
	if err != nil {
		return models.SlotRequest{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", p.Date)
	}
	startMin, err := models.ParseClock(p.StartTime)
	if err != nil {
		return models.SlotRequest{}, err
	}
	endMin, err := models.ParseClock(p.EndTime)
	if err != nil {
		return models.SlotRequest{}, err
	}

	req := models.SlotRequest{
		CourtID:  p.CourtID,
		Date:     date,
		StartMin: startMin,
		EndMin:   endMin,
		CoachID:  p.CoachID,
	}
	seen := make(map[int64]bool, len(p.Equipment))
	for _, line := range p.Equipment {
		// Duplicate lines would each pass the stock check on their own
		// quantity; callers must send one line per item.
		if seen[line.EquipmentID] {
			return models.SlotRequest{}, fmt.Errorf("duplicate equipment_id %d", line.EquipmentID)
		}
		seen[line.EquipmentID] = true
		req.Equipment = append(req.Equipment, models.EquipmentLine{
			EquipmentID: line.EquipmentID,
			Quantity:    line.Quantity,
		})
	}
	return req, nil
}

type reservationResponse struct {
	ID         int64              `json:"id"`
	Reference  string             `json:"reference"`
	UserID     string             `json:"user_id"`
	CourtID    int64              `json:"court_id"`
	Date       string             `json:"date"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Equipment  []equipmentPayload `json:"equipment,omitempty"`
	CoachID    int64              `json:"coach_id,omitempty"`
	TotalPrice int64              `json:"total_price"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

func toReservationResponse(res *models.Reservation) reservationResponse {
	out := reservationResponse{
		ID:         res.ID,
		Reference:  res.Reference,
		UserID:     res.UserID,
		CourtID:    res.CourtID,
		Date:       res.Date.Format(models.DateFormat),
		StartTime:  models.FormatClock(res.StartMin),
		EndTime:    models.FormatClock(res.EndMin),
		CoachID:    res.CoachID,
		TotalPrice: res.TotalPrice,
		Status:     res.Status,
		CreatedAt:  res.CreatedAt,
	}
	for _, line := range res.Equipment {
		out.Equipment = append(out.Equipment, equipmentPayload{
			EquipmentID: line.EquipmentID,
			Quantity:    line.Quantity,
		})
	}
	return out
}

type waitlistResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	CourtID   int64     `json:"court_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

func toWaitlistResponse(entry *models.WaitlistEntry) waitlistResponse {
	return waitlistResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		CourtID:   entry.CourtID,
		Date:      entry.Date.Format(models.DateFormat),
		StartTime: models.FormatClock(entry.StartMin),
		EndTime:   models.FormatClock(entry.EndMin),
		CreatedAt: entry.CreatedAt,
	}
}
