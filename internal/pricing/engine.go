package pricing

import (
	"math"

	"courtside/internal/domain"
	"courtside/internal/models"
)

// Calculate computes the total price for a slot request against a catalog
// snapshot. It is a pure function: the caller passes the rule set
// explicitly, so a quote and the charge at booking time are guaranteed to
// agree when computed from the same snapshot.
//
// Algorithm: the court hourly rate is scaled by every applicable MULTIPLIER
// rule (stacking multiplicatively), multiplied by the duration in decimal
// hours, then flat equipment prices, the coach hourly cost and applicable
// ADDER rules are added. The final total is rounded up to the nearest
// integer currency unit.
func Calculate(req models.SlotRequest, cat models.Catalog) (int64, error) {
	if req.EndMin <= req.StartMin {
		return 0, domain.ErrInvalidTimeRange
	}

	court, ok := cat.Courts[req.CourtID]
	if !ok {
		return 0, domain.ErrResourceNotFound
	}

	duration := models.DecimalHours(req.EndMin - req.StartMin)

	hourly := court.HourlyRate
	for _, rule := range cat.Rules {
		if !rule.Active || rule.AdjustmentType != models.AdjustMultiplier {
			continue
		}
		if ruleApplies(rule, req, court) {
			hourly *= rule.Value
		}
	}

	total := hourly * duration

	for _, line := range req.Equipment {
		eq, ok := cat.Equipment[line.EquipmentID]
		if !ok {
			return 0, domain.ErrResourceNotFound
		}
		total += eq.Price * float64(line.Quantity)
	}

	if req.CoachID != 0 {
		coach, ok := cat.Coaches[req.CoachID]
		if !ok {
			return 0, domain.ErrResourceNotFound
		}
		total += coach.HourlyRate * duration
	}

	for _, rule := range cat.Rules {
		if !rule.Active || rule.AdjustmentType != models.AdjustAdder {
			continue
		}
		if ruleApplies(rule, req, court) {
			total += rule.Value
		}
	}

	return ceilCurrency(total), nil
}

func ruleApplies(rule models.PricingRule, req models.SlotRequest, court models.Court) bool {
	switch rule.Kind {
	case models.RuleWeekend:
		day := int(req.Date.Weekday()) // 0=Sunday..6=Saturday
		for _, d := range rule.Conditions.Days {
			if d == day {
				return true
			}
		}
		return false

	case models.RulePeakHour:
		ruleStart, err := models.ParseClock(rule.Conditions.StartTime)
		if err != nil {
			return false
		}
		ruleEnd, err := models.ParseClock(rule.Conditions.EndTime)
		if err != nil {
			return false
		}
		// Any overlap applies the full multiplier to the entire booking,
		// not just the overlapping portion.
		return models.Overlaps(req.StartMin, req.EndMin, ruleStart, ruleEnd)

	case models.RuleIndoorSurcharge:
		return court.Type == rule.Conditions.CourtType

	default:
		return false
	}
}

// ceilCurrency rounds up to a whole currency unit. The epsilon keeps
// products like 225 * 1.2 from landing a hair above the integer and
// ceiling to one unit too many.
func ceilCurrency(v float64) int64 {
	const eps = 1e-9
	return int64(math.Ceil(v - eps))
}
