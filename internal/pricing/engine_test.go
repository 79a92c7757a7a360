package pricing

import (
	"testing"
	"time"

	"courtside/internal/domain"
	"courtside/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Saturday.
var saturday = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

func testCatalog() models.Catalog {
	return models.Catalog{
		Courts: map[int64]models.Court{
			1: {ID: 1, Name: "Court 1", Type: models.CourtIndoor, HourlyRate: 150},
			2: {ID: 2, Name: "Court 2", Type: models.CourtOutdoor, HourlyRate: 100},
		},
		Equipment: map[int64]models.Equipment{
			10: {ID: 10, Name: "Racket", Type: "RACKET", Stock: 5, Price: 50},
			11: {ID: 11, Name: "Shoes", Type: "SHOES", Stock: 3, Price: 30},
		},
		Coaches: map[int64]models.Coach{
			20: {ID: 20, Name: "Coach A", HourlyRate: 200},
		},
		Rules: []models.PricingRule{
			{
				ID: 1, Name: "Peak Hours", Kind: models.RulePeakHour,
				AdjustmentType: models.AdjustMultiplier, Value: 1.5, Active: true,
				Conditions: models.RuleConditions{StartTime: "18:00", EndTime: "21:00"},
			},
			{
				ID: 2, Name: "Weekend", Kind: models.RuleWeekend,
				AdjustmentType: models.AdjustMultiplier, Value: 1.2, Active: true,
				Conditions: models.RuleConditions{Days: []int{0, 6}},
			},
			{
				ID: 3, Name: "Indoor Surcharge", Kind: models.RuleIndoorSurcharge,
				AdjustmentType: models.AdjustAdder, Value: 0, Active: true,
				Conditions: models.RuleConditions{CourtType: models.CourtIndoor},
			},
		},
	}
}

func slot(courtID int64, date time.Time, start, end string) models.SlotRequest {
	s, _ := models.ParseClock(start)
	e, _ := models.ParseClock(end)
	return models.SlotRequest{CourtID: courtID, Date: date, StartMin: s, EndMin: e}
}

func TestCalculate_StackedMultipliers(t *testing.T) {
	// Base 150/hr, peak x1.5 and weekend x1.2 both apply:
	// 150 * 1.5 * 1.2 * 1h = 270.
	req := slot(1, saturday, "19:00", "20:00")
	total, err := Calculate(req, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(270), total)

	// Adding one equipment item priced 50 brings it to 320.
	req.Equipment = []models.EquipmentLine{{EquipmentID: 10, Quantity: 1}}
	total, err = Calculate(req, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(320), total)
}

func TestCalculate_NoRulesApply(t *testing.T) {
	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	req := slot(2, monday, "10:00", "12:00")
	total, err := Calculate(req, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(200), total)
}

func TestCalculate_PartialPeakOverlapAppliesFully(t *testing.T) {
	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	// 17:00-19:00 only half overlaps the 18:00-21:00 peak window, but the
	// multiplier covers the whole booking: 100 * 1.5 * 2h = 300.
	req := slot(2, monday, "17:00", "19:00")
	total, err := Calculate(req, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(300), total)

	// Ending exactly at the window start stays off-peak (half-open test).
	req = slot(2, monday, "16:00", "18:00")
	total, err = Calculate(req, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(200), total)
}

func TestCalculate_CoachCost(t *testing.T) {
	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	req := slot(2, monday, "10:00", "11:30")
	req.CoachID = 20

	// 100 * 1.5h + 200 * 1.5h = 450.
	total, err := Calculate(req, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, int64(450), total)
}

func TestCalculate_AdderRuleContributes(t *testing.T) {
	cat := testCatalog()
	cat.Rules = append(cat.Rules, models.PricingRule{
		ID: 4, Name: "Indoor Maintenance Fee", Kind: models.RuleIndoorSurcharge,
		AdjustmentType: models.AdjustAdder, Value: 25, Active: true,
		Conditions: models.RuleConditions{CourtType: models.CourtIndoor},
	})

	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	req := slot(1, monday, "10:00", "11:00")
	total, err := Calculate(req, cat)
	require.NoError(t, err)
	assert.Equal(t, int64(175), total)

	// Outdoor court is not hit by the indoor adder.
	req = slot(2, monday, "10:00", "11:00")
	total, err = Calculate(req, cat)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}

func TestCalculate_InactiveRuleIgnored(t *testing.T) {
	cat := testCatalog()
	cat.Rules[0].Active = false // peak off

	req := slot(1, saturday, "19:00", "20:00")
	total, err := Calculate(req, cat)
	require.NoError(t, err)
	assert.Equal(t, int64(180), total) // 150 * 1.2
}

func TestCalculate_RoundsUp(t *testing.T) {
	cat := models.Catalog{
		Courts: map[int64]models.Court{1: {ID: 1, HourlyRate: 100.01}},
	}
	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	total, err := Calculate(slot(1, monday, "10:00", "11:00"), cat)
	require.NoError(t, err)
	assert.Equal(t, int64(101), total)

	cat.Courts[1] = models.Court{ID: 1, HourlyRate: 100}
	total, err = Calculate(slot(1, monday, "10:00", "11:00"), cat)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}

func TestCalculate_Deterministic(t *testing.T) {
	req := slot(1, saturday, "19:00", "20:00")
	req.Equipment = []models.EquipmentLine{{EquipmentID: 10, Quantity: 2}}
	req.CoachID = 20

	cat := testCatalog()
	first, err := Calculate(req, cat)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Calculate(req, cat)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculate_Monotonicity(t *testing.T) {
	base := slot(1, saturday, "19:00", "20:00")
	cat := testCatalog()

	bare, err := Calculate(base, cat)
	require.NoError(t, err)

	withEq := base
	withEq.Equipment = []models.EquipmentLine{{EquipmentID: 11, Quantity: 1}}
	eqTotal, err := Calculate(withEq, cat)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, eqTotal, bare)

	withCoach := base
	withCoach.CoachID = 20
	coachTotal, err := Calculate(withCoach, cat)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, coachTotal, bare)
}

func TestCalculate_Errors(t *testing.T) {
	cat := testCatalog()

	_, err := Calculate(slot(99, saturday, "10:00", "11:00"), cat)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)

	req := slot(1, saturday, "10:00", "11:00")
	req.Equipment = []models.EquipmentLine{{EquipmentID: 999, Quantity: 1}}
	_, err = Calculate(req, cat)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)

	req = slot(1, saturday, "10:00", "11:00")
	req.CoachID = 999
	_, err = Calculate(req, cat)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)

	_, err = Calculate(slot(1, saturday, "11:00", "11:00"), cat)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	_, err = Calculate(slot(1, saturday, "12:00", "11:00"), cat)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
