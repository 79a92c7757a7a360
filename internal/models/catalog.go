package models

// Catalog entities are read-only to the booking core: they are seeded from
// the catalog YAML file at startup and only consulted by availability and
// pricing.

type Court struct {
	ID         int64   `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Type       string  `yaml:"type" json:"type"` // INDOOR or OUTDOOR
	HourlyRate float64 `yaml:"hourly_rate" json:"hourly_rate"`
}

type Equipment struct {
	ID    int64   `yaml:"id" json:"id"`
	Name  string  `yaml:"name" json:"name"`
	Type  string  `yaml:"type" json:"type"`
	Stock int     `yaml:"stock" json:"stock"`
	Price float64 `yaml:"price" json:"price"` // flat, per booking
}

type Coach struct {
	ID         int64   `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	HourlyRate float64 `yaml:"hourly_rate" json:"hourly_rate"`
}

// RuleConditions is a variant payload: which fields matter depends on the
// rule kind. PEAK_HOUR reads the time window, WEEKEND the day set
// (0=Sunday..6=Saturday), INDOOR_SURCHARGE the court type tag.
type RuleConditions struct {
	StartTime string `yaml:"start_time" json:"start_time,omitempty"`
	EndTime   string `yaml:"end_time" json:"end_time,omitempty"`
	Days      []int  `yaml:"days" json:"days,omitempty"`
	CourtType string `yaml:"court_type" json:"court_type,omitempty"`
}

type PricingRule struct {
	ID             int64          `yaml:"id" json:"id"`
	Name           string         `yaml:"name" json:"name"`
	Kind           string         `yaml:"kind" json:"kind"`
	AdjustmentType string         `yaml:"adjustment_type" json:"adjustment_type"`
	Value          float64        `yaml:"value" json:"value"`
	Conditions     RuleConditions `yaml:"conditions" json:"conditions"`
	Active         bool           `yaml:"active" json:"active"`
}

// Resources is the catalog listing returned to clients.
type Resources struct {
	Courts    []Court     `json:"courts"`
	Equipment []Equipment `json:"equipment"`
	Coaches   []Coach     `json:"coaches"`
}

// Catalog is the snapshot the pricing engine works on. It is loaded in one
// pass per calculation so a quote and the authoritative charge see the same
// rule set.
type Catalog struct {
	Courts    map[int64]Court
	Equipment map[int64]Equipment
	Coaches   map[int64]Coach
	Rules     []PricingRule
}
