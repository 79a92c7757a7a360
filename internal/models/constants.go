package models

const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

const (
	CourtIndoor  = "INDOOR"
	CourtOutdoor = "OUTDOOR"
)

const (
	RulePeakHour        = "PEAK_HOUR"
	RuleWeekend         = "WEEKEND"
	RuleIndoorSurcharge = "INDOOR_SURCHARGE"
)

const (
	AdjustMultiplier = "MULTIPLIER"
	AdjustAdder      = "ADDER"
)

const (
	// DateFormat is the calendar-day layout used everywhere a date crosses
	// the storage or API boundary.
	DateFormat = "2006-01-02"

	// ClockFormat is the wall-clock layout for slot start/end times.
	ClockFormat = "15:04"

	// DefaultCancellationWindowHours is the minimum lead time before a
	// slot starts during which cancellation is still allowed.
	DefaultCancellationWindowHours = 24

	// MinutesPerDay bounds slot times; slots are same-day only.
	MinutesPerDay = 24 * 60
)
