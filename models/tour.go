package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tour is a campaign period, normally one calendar month.
type Tour struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:64" json:"title"`
	DateStart        time.Time  `gorm:"not null" json:"date_start"`
	DateEnd          *time.Time `json:"date_end,omitempty"`
	IsEnded          bool       `gorm:"default:false;index" json:"is_ended"`
	WinningCoalition *Coalition `json:"winning_coalition,omitempty"`

	Timestamps
}

// DisplayTitle falls back to the month of the tour start.
func (t *Tour) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.DateStart.Format("January 2006")
}

// BeforeSave stamps the end date of a closed tour and recomputes the
// winner from mission results.
func (t *Tour) BeforeSave(tx *gorm.DB) error {
	if t.IsEnded && t.DateEnd == nil {
		now := time.Now().UTC()
		t.DateEnd = &now
	}
	if t.ID == 0 {
		return nil
	}
	winner, err := tourWinner(tx.Session(&gorm.Session{NewDB: true}), t.ID)
	if err != nil {
		return err
	}
	t.WinningCoalition = winner
	return nil
}

func tourWinner(db *gorm.DB, tourID uint) (*Coalition, error) {
	var rows []struct {
		WinningCoalition Coalition
		Wins             int64
	}
	err := db.Model(&Mission{}).
		Select("winning_coalition, COUNT(*) AS wins").
		Where("tour_id = ? AND winning_coalition IS NOT NULL", tourID).
		Group("winning_coalition").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	var allies, axis int64
	for _, r := range rows {
		switch r.WinningCoalition {
		case CoalitionAllies:
			allies = r.Wins
		case CoalitionAxis:
			axis = r.Wins
		}
	}
	var winner Coalition
	switch {
	case allies > axis:
		winner = CoalitionAllies
	case axis > allies:
		winner = CoalitionAxis
	default:
		return nil, nil
	}
	return &winner, nil
}

// Mission is one game session inside a tour.
type Mission struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TourID           uint       `gorm:"not null;index" json:"tour_id"`
	Tour             *Tour      `gorm:"foreignKey:TourID" json:"-"`
	Name             string     `gorm:"size:256" json:"name"`
	DateStart        time.Time  `json:"date_start"`
	DateEnd          *time.Time `json:"date_end,omitempty"`
	WinningCoalition *Coalition `json:"winning_coalition,omitempty"`

	Timestamps
}

// Profile is the persistent identity behind the per-tour players.
type Profile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UUID     string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Nickname string `gorm:"size:128;index" json:"nickname"`
	IsHide   bool   `gorm:"default:false" json:"is_hide"`

	Timestamps
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
