package models

import (
	"time"

	"il2-stats/stats"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OfficerRank is the lowest rank id counted as an officer.
const OfficerRank = 5

// Streaks are the current and best runs a player holds within a tour.
type Streaks struct {
	StreakCurrent        int   `json:"streak_current" gorm:"default:0;index"`
	StreakMax            int   `json:"streak_max" gorm:"default:0"`
	StreakGroundCurrent  int   `json:"streak_ground_current" gorm:"default:0;index"`
	StreakGroundMax      int   `json:"streak_ground_max" gorm:"default:0"`
	ScoreStreakCurrent   int64 `json:"score_streak_current" gorm:"default:0"`
	ScoreStreakMax       int64 `json:"score_streak_max" gorm:"default:0"`
	SortiesStreakCurrent int   `json:"sorties_streak_current" gorm:"default:0"`
	SortiesStreakMax     int   `json:"sorties_streak_max" gorm:"default:0"`
	FtStreakCurrent      int64 `json:"ft_streak_current" gorm:"default:0"`
	FtStreakMax          int64 `json:"ft_streak_max" gorm:"default:0"`
	SortieMaxAk          int   `json:"sortie_max_ak" gorm:"default:0"`
	SortieMaxGk          int   `json:"sortie_max_gk" gorm:"default:0"`
	LostAircraftCurrent  int   `json:"lost_aircraft_current" gorm:"default:0"`
}

// Player is one profile's aggregate for one tour and one player type.
type Player struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProfileID uint       `gorm:"not null;uniqueIndex:idx_players_profile_type_tour,priority:1" json:"profile_id"`
	Profile   *Profile   `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Type      PlayerType `gorm:"type:varchar(8);not null;uniqueIndex:idx_players_profile_type_tour,priority:2" json:"type"`
	TourID    uint       `gorm:"not null;uniqueIndex:idx_players_profile_type_tour,priority:3;index" json:"tour_id"`
	Tour      *Tour      `gorm:"foreignKey:TourID" json:"tour,omitempty"`
	SquadID   *uint      `gorm:"index" json:"squad_id,omitempty"`
	Squad     *Squad     `gorm:"foreignKey:SquadID" json:"squad,omitempty"`

	DateFirstSortie *time.Time `json:"date_first_sortie,omitempty"`
	DateLastSortie  *time.Time `json:"date_last_sortie,omitempty"`
	DateLastCombat  *time.Time `json:"date_last_combat,omitempty"`

	RankID   uint      `gorm:"default:0" json:"rank_id"`
	Rating   int64     `gorm:"default:0;index" json:"rating"`
	Ratio    float64   `json:"ratio"`
	Accuracy float64   `gorm:"default:0" json:"accuracy"`
	CoalPref Coalition `gorm:"default:0;index" json:"coal_pref"`

	Counters
	Streaks
	Ammo
	SortiesCoal
	Analytics

	SortiesCls   datatypes.JSONType[ClassCounts] `json:"sorties_cls"`
	KillboardPvP datatypes.JSONType[Killboard]   `gorm:"column:killboard_pvp" json:"killboard_pvp"`
	KillboardPvE datatypes.JSONType[Killboard]   `gorm:"column:killboard_pve" json:"killboard_pve"`

	Timestamps
}

func (p *Player) PvP() Killboard { return p.KillboardPvP.Data() }
func (p *Player) PvE() Killboard { return p.KillboardPvE.Data() }

// FavouriteClass is the aircraft class the player flew most.
func (p *Player) FavouriteClass() string {
	return stats.FavouriteClass(p.SortiesCls.Data())
}

func (p *Player) IsOfficer() bool { return p.RankID >= OfficerRank }

// Recalculate refreshes every derived column from the counters.
func (p *Player) Recalculate() {
	p.Accuracy = stats.Accuracy(p.HitBullets, p.UsedCartridges, p.Accuracy)
	p.Analytics = computeAnalytics(p.Counters)
	p.Rating = stats.Rating(p.Score, p.Relive, p.FlightTime)
	p.CoalPref = p.SortiesCoal.strict(p.SortiesTotal, p.CoalPref)
}

func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.Type == "" {
		p.Type = PlayerTypePilot
	}
	if p.Ratio == 0 {
		p.Ratio = 1
	}
	return nil
}

func (p *Player) BeforeSave(tx *gorm.DB) error {
	if p.ID != 0 {
		ratio, ok, err := averageSortieRatio(tx, "player_id = ?", p.ID)
		if err != nil {
			return err
		}
		if ok {
			p.Ratio = ratio
		}
	}
	p.Recalculate()
	return nil
}
