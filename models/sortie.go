package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sortie is one flight. Rows arrive from the log processor already
// populated; the award engine only reads them and stamps AwardsEvaluatedAt.
type Sortie struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProfileID uint       `gorm:"index" json:"profile_id"`
	PlayerID  uint       `gorm:"not null;index" json:"player_id"`
	Player    *Player    `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	TourID    uint       `gorm:"not null;index" json:"tour_id"`
	MissionID uint       `gorm:"not null;index" json:"mission_id"`
	VLifeID   *uint      `gorm:"column:vlife_id;index" json:"vlife_id,omitempty"`
	VLife     *VLife     `gorm:"foreignKey:VLifeID" json:"-"`
	Nickname  string     `gorm:"size:128" json:"nickname"`
	DateStart time.Time  `json:"date_start"`
	DateEnd   *time.Time `json:"date_end,omitempty"`
	Coalition Coalition  `gorm:"default:0" json:"coalition"`
	// aircraft class flown, one of the aircraft_* object classes
	AircraftClass string `gorm:"size:32" json:"aircraft_class"`

	FlightTime int64   `gorm:"default:0" json:"flight_time"`
	AkTotal    int     `gorm:"default:0" json:"ak_total"`
	AkAssist   int     `gorm:"default:0" json:"ak_assist"`
	GkTotal    int     `gorm:"default:0" json:"gk_total"`
	FakTotal   int     `gorm:"default:0" json:"fak_total"`
	FgkTotal   int     `gorm:"default:0" json:"fgk_total"`
	Score      int64   `gorm:"default:0;index" json:"score"`
	Ratio      float64 `json:"ratio"`
	Damage     float64 `gorm:"default:0" json:"damage"`
	Wound      float64 `gorm:"default:0" json:"wound"`
	Ammo

	Status         SortieStatus  `gorm:"type:varchar(12)" json:"status"`
	AircraftStatus LifeStatus    `gorm:"type:varchar(12)" json:"aircraft_status"`
	BotStatus      BotLifeStatus `gorm:"type:varchar(12)" json:"bot_status"`
	IsAirstart     bool          `json:"is_airstart"`
	IsBailout      bool          `json:"is_bailout"`
	IsCaptured     bool          `json:"is_captured"`
	IsDisco        bool          `json:"is_disco"`

	KillboardPvP datatypes.JSONType[Killboard] `gorm:"column:killboard_pvp" json:"killboard_pvp"`
	KillboardPvE datatypes.JSONType[Killboard] `gorm:"column:killboard_pve" json:"killboard_pve"`

	IsFinalized       bool       `gorm:"default:false;index" json:"is_finalized"`
	AwardsEvaluatedAt *time.Time `gorm:"index" json:"awards_evaluated_at,omitempty"`

	Timestamps
}

func (s *Sortie) PvP() Killboard { return s.KillboardPvP.Data() }
func (s *Sortie) PvE() Killboard { return s.KillboardPvE.Data() }

func (s *Sortie) Landed() bool { return s.Status == SortieStatusLanded }
func (s *Sortie) Damaged() bool { return s.AircraftStatus == LifeStatusDamaged }
func (s *Sortie) Wounded() bool { return s.BotStatus == BotStatusWounded }

// HeavyOrMedium reports whether the sortie was flown in a bomber class.
func (s *Sortie) HeavyOrMedium() bool {
	return s.AircraftClass == ClassAircraftHeavy || s.AircraftClass == ClassAircraftMedium
}
