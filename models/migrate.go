package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Tour{},
		&Mission{},
		&Profile{},
		&Rank{},
		&Squad{},
		&Player{},
		&PlayerMission{},
		&VLife{},
		&Sortie{},
		&Award{},
		&Reward{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedRanks inserts the default ladder, leaving existing grades untouched.
func SeedRanks(db *gorm.DB) error {
	ranks := make([]Rank, len(DefaultRanks))
	copy(ranks, DefaultRanks)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ranks).Error; err != nil {
		return fmt.Errorf("failed to seed ranks: %w", err)
	}
	return nil
}
