package models

import (
	"il2-stats/stats"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VLife is one continuous virtual life, from spawn until death or capture.
type VLife struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	ProfileID      uint          `gorm:"index" json:"profile_id"`
	PlayerID       uint          `gorm:"not null;index" json:"player_id"`
	Player         *Player       `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	TourID         uint          `gorm:"not null;index" json:"tour_id"`
	Ratio          float64       `json:"ratio"`
	Accuracy       float64       `gorm:"default:0" json:"accuracy"`
	CoalPref       Coalition     `gorm:"default:0" json:"coal_pref"`
	Status         SortieStatus  `gorm:"type:varchar(12)" json:"status"`
	AircraftStatus LifeStatus    `gorm:"type:varchar(12)" json:"aircraft_status"`
	BotStatus      BotLifeStatus `gorm:"type:varchar(12)" json:"bot_status"`

	Counters
	Ammo
	SortiesCoal
	Analytics

	SortiesCls   datatypes.JSONType[ClassCounts] `json:"sorties_cls"`
	KillboardPvP datatypes.JSONType[Killboard]   `gorm:"column:killboard_pvp" json:"killboard_pvp"`
	KillboardPvE datatypes.JSONType[Killboard]   `gorm:"column:killboard_pve" json:"killboard_pve"`

	Timestamps
}

func (VLife) TableName() string { return "vlives" }

func (v *VLife) Recalculate() {
	v.Accuracy = stats.Accuracy(v.HitBullets, v.UsedCartridges, v.Accuracy)
	v.Analytics = computeAnalytics(v.Counters)
	v.CoalPref = v.SortiesCoal.majority(v.SortiesTotal, v.CoalPref)
}

func (v *VLife) BeforeSave(tx *gorm.DB) error {
	if v.ID != 0 {
		ratio, ok, err := averageSortieRatio(tx, "vlife_id = ?", v.ID)
		if err != nil {
			return err
		}
		if ok {
			v.Ratio = ratio
		}
	}
	v.Recalculate()
	return nil
}
