package config

import (
	"fmt"
	"os"

	yamlv2 "gopkg.in/yaml.v2"

	"courtside/internal/models"
)

type catalogFile struct {
	Courts    []models.Court       `yaml:"courts"`
	Equipment []models.Equipment   `yaml:"equipment"`
	Coaches   []models.Coach       `yaml:"coaches"`
	Rules     []models.PricingRule `yaml:"pricing_rules"`
}

// LoadCatalogFile reads the facility catalog (courts, equipment, coaches and
// pricing rules) that seeds the database on startup.
func LoadCatalogFile(path string) (models.Resources, []models.PricingRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Resources{}, nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yamlv2.Unmarshal(data, &file); err != nil {
		return models.Resources{}, nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := validateCatalog(file); err != nil {
		return models.Resources{}, nil, err
	}

	res := models.Resources{
		Courts:    file.Courts,
		Equipment: file.Equipment,
		Coaches:   file.Coaches,
	}
	return res, file.Rules, nil
}

func validateCatalog(file catalogFile) error {
	if len(file.Courts) == 0 {
		return fmt.Errorf("catalog must define at least one court")
	}
	seen := make(map[int64]bool, len(file.Courts))
	for _, court := range file.Courts {
		if court.ID == 0 {
			return fmt.Errorf("court %q has no id", court.Name)
		}
		if seen[court.ID] {
			return fmt.Errorf("duplicate court id %d", court.ID)
		}
		seen[court.ID] = true
		if court.HourlyRate <= 0 {
			return fmt.Errorf("court %q has invalid hourly rate", court.Name)
		}
	}
	for _, rule := range file.Rules {
		switch rule.Kind {
		case models.RuleWeekend, models.RulePeakHour, models.RuleIndoorSurcharge:
		default:
			return fmt.Errorf("unknown pricing rule kind %q", rule.Kind)
		}
		switch rule.AdjustmentType {
		case models.AdjustMultiplier, models.AdjustAdder:
		default:
			return fmt.Errorf("unknown adjustment type %q for rule %q", rule.AdjustmentType, rule.Name)
		}
		if rule.Kind == models.RulePeakHour {
			if _, err := models.ParseClock(rule.Conditions.StartTime); err != nil {
				return fmt.Errorf("rule %q: %w", rule.Name, err)
			}
			if _, err := models.ParseClock(rule.Conditions.EndTime); err != nil {
				return fmt.Errorf("rule %q: %w", rule.Name, err)
			}
		}
	}
	return nil
}
