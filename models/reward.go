package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Award is the persisted copy of one catalog entry. Rows are synced from
// the compiled catalog at startup so that rewards can reference them.
type Award struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Title       string `gorm:"size:128;not null" json:"title"`
	Scope       string `gorm:"size:8;not null" json:"scope"`
	SortOrder   int    `gorm:"not null" json:"sort_order"`
	Retired     bool   `json:"retired"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	ImageKey    string `gorm:"size:256" json:"image_key,omitempty"`

	Timestamps
}

// Reward is one award held by one player. Tier transfers rewrite AwardID
// in place so Date keeps the original grant time.
type Reward struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AwardID  uint      `gorm:"not null;uniqueIndex:idx_rewards_award_player,priority:1" json:"award_id"`
	Award    *Award    `gorm:"foreignKey:AwardID" json:"award,omitempty"`
	PlayerID uint      `gorm:"not null;uniqueIndex:idx_rewards_award_player,priority:2;index" json:"player_id"`
	Player   *Player   `gorm:"foreignKey:PlayerID" json:"-"`
	Date     time.Time `gorm:"not null;index" json:"date"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
