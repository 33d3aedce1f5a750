package models

import (
	"il2-stats/stats"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlayerMission is a player's aggregate for a single mission.
type PlayerMission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"index" json:"profile_id"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_player_missions_player_mission,priority:1" json:"player_id"`
	Player    *Player   `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	MissionID uint      `gorm:"not null;uniqueIndex:idx_player_missions_player_mission,priority:2" json:"mission_id"`
	Mission   *Mission  `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	Ratio     float64   `json:"ratio"`
	Accuracy  float64   `gorm:"default:0" json:"accuracy"`
	CoalPref  Coalition `gorm:"default:0" json:"coal_pref"`

	Counters
	Ammo
	SortiesCoal
	Analytics

	KillboardPvP datatypes.JSONType[Killboard] `gorm:"column:killboard_pvp" json:"killboard_pvp"`
	KillboardPvE datatypes.JSONType[Killboard] `gorm:"column:killboard_pve" json:"killboard_pve"`

	Timestamps
}

func (pm *PlayerMission) PvP() Killboard { return pm.KillboardPvP.Data() }
func (pm *PlayerMission) PvE() Killboard { return pm.KillboardPvE.Data() }

// WonBy reports whether the mission ended with c as the winner. The
// Mission association must be loaded.
func (pm *PlayerMission) WonBy(c Coalition) bool {
	if pm.Mission == nil || pm.Mission.WinningCoalition == nil {
		return false
	}
	return *pm.Mission.WinningCoalition == c
}

func (pm *PlayerMission) Recalculate() {
	pm.Accuracy = stats.Accuracy(pm.HitBullets, pm.UsedCartridges, pm.Accuracy)
	pm.Analytics = computeAnalytics(pm.Counters)
	pm.CoalPref = pm.SortiesCoal.strict(pm.SortiesTotal, pm.CoalPref)
}

func (pm *PlayerMission) BeforeSave(tx *gorm.DB) error {
	if pm.PlayerID != 0 && pm.MissionID != 0 {
		ratio, ok, err := averageSortieRatio(tx, "player_id = ? AND mission_id = ?", pm.PlayerID, pm.MissionID)
		if err != nil {
			return err
		}
		if ok {
			pm.Ratio = ratio
		}
	}
	pm.Recalculate()
	return nil
}
