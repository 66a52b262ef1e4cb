package seeds

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/infrastructure/persistence/models"
)

// tierSeed is one entry of the tier reference file.
type tierSeed struct {
	Name         string   `yaml:"name"`
	Plan         string   `yaml:"plan"`
	Price        int64    `yaml:"price"`
	DurationDays int      `yaml:"duration_days"`
	Features     []string `yaml:"features"`
	IsActive     *bool    `yaml:"is_active"`
}

type tierSeedFile struct {
	Tiers []tierSeed `yaml:"tiers"`
}

// defaultTierSeeds is used when no seed file is configured. Every deployment
// needs at least the free tier so new accounts have a subscription row.
var defaultTierSeeds = []tierSeed{
	{
		Name:         "Free",
		Plan:         "FREE",
		Price:        0,
		DurationDays: 0,
		Features:     []string{"shuffle_play"},
	},
	{
		Name:         "Premium Monthly",
		Plan:         "PREMIUM_MONTHLY",
		Price:        99000,
		DurationDays: 30,
		Features:     []string{"ad_free", "offline", "lossless"},
	},
	{
		Name:         "Premium Yearly",
		Plan:         "PREMIUM_YEARLY",
		Price:        990000,
		DurationDays: 365,
		Features:     []string{"ad_free", "offline", "lossless"},
	},
}

// SeedTiers upserts the subscription tiers from the YAML file at seedPath,
// falling back to the built-in defaults when seedPath is empty. Existing rows
// are matched by plan and never duplicated.
func SeedTiers(db *gorm.DB, seedPath string) error {
	entries := defaultTierSeeds

	if seedPath != "" {
		data, err := os.ReadFile(seedPath)
		if err != nil {
			return fmt.Errorf("failed to read tier seed file: %w", err)
		}

		var file tierSeedFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse tier seed file: %w", err)
		}
		if len(file.Tiers) > 0 {
			entries = file.Tiers
		}
	}

	if !containsFreeTier(entries) {
		entries = append([]tierSeed{defaultTierSeeds[0]}, entries...)
	}

	for _, entry := range entries {
		model, err := seedToModel(entry)
		if err != nil {
			return fmt.Errorf("invalid tier seed %q: %w", entry.Plan, err)
		}

		if err := db.FirstOrCreate(model, models.TierModel{
			Plan: model.Plan,
		}).Error; err != nil {
			return fmt.Errorf("failed to seed tier %q: %w", entry.Plan, err)
		}
	}

	return nil
}

func containsFreeTier(entries []tierSeed) bool {
	for _, entry := range entries {
		if entry.Plan == "FREE" {
			return true
		}
	}
	return false
}

func seedToModel(entry tierSeed) (*models.TierModel, error) {
	if entry.Name == "" || entry.Plan == "" {
		return nil, fmt.Errorf("name and plan are required")
	}

	var features datatypes.JSON
	if len(entry.Features) > 0 {
		data, err := json.Marshal(entry.Features)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal features: %w", err)
		}
		features = datatypes.JSON(data)
	}

	isActive := true
	if entry.IsActive != nil {
		isActive = *entry.IsActive
	}

	return &models.TierModel{
		Name:         entry.Name,
		Plan:         entry.Plan,
		Price:        entry.Price,
		DurationDays: entry.DurationDays,
		Features:     features,
		IsActive:     isActive,
	}, nil
}
