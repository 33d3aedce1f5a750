package models

import (
	"il2-stats/stats"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Squad aggregates a squadron's pilots for one tour.
type Squad struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TourID     uint      `gorm:"not null;index;uniqueIndex:idx_squads_tour_tag,priority:1" json:"tour_id"`
	Tag        string    `gorm:"size:16;not null;uniqueIndex:idx_squads_tour_tag,priority:2" json:"tag"`
	Name       string    `gorm:"size:128" json:"name"`
	NumMembers int       `gorm:"default:0" json:"num_members"`
	MaxMembers int       `gorm:"default:0" json:"max_members"`
	Rating     int64     `gorm:"default:0;index" json:"rating"`
	CoalPref   Coalition `gorm:"default:0" json:"coal_pref"`

	Counters
	SortiesCoal
	Analytics

	SortiesCls datatypes.JSONType[ClassCounts] `json:"sorties_cls"`

	Timestamps
}

func (s *Squad) Recalculate() {
	s.Analytics = computeAnalytics(s.Counters)
	if r, ok := stats.SquadRating(s.Score, s.Relive, s.FlightTime, s.MaxMembers); ok {
		s.Rating = r
	}
	s.CoalPref = s.SortiesCoal.majority(s.SortiesTotal, s.CoalPref)
}

func (s *Squad) BeforeSave(tx *gorm.DB) error {
	if s.ID != 0 {
		var n int64
		err := tx.Session(&gorm.Session{NewDB: true}).
			Model(&Player{}).
			Where("squad_id = ? AND type = ?", s.ID, PlayerTypePilot).
			Count(&n).Error
		if err != nil {
			return err
		}
		s.NumMembers = int(n)
		s.MaxMembers = max(s.MaxMembers, s.NumMembers)
	}
	s.Recalculate()
	return nil
}
