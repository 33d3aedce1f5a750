package models

import (
	"database/sql"
	"time"

	"il2-stats/stats"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Killboard counts destroyed objects per object class.
type Killboard map[string]int

func (k Killboard) Get(cls string) int { return k[cls] }

// Tanks is the number of tanks of any weight class.
func (k Killboard) Tanks() int {
	return k[ClassTankLight] + k[ClassTankMedium] + k[ClassTankHeavy]
}

// Aircraft is the number of light, medium and heavy aircraft.
func (k Killboard) Aircraft() int {
	return k[ClassAircraftLight] + k[ClassAircraftMedium] + k[ClassAircraftHeavy]
}

// ClassCounts counts sorties per aircraft class.
type ClassCounts map[string]int

// Counters are shared by every aggregate level above a single sortie.
type Counters struct {
	Score        int64 `json:"score" gorm:"default:0;index"`
	SortiesTotal int   `json:"sorties_total" gorm:"default:0"`
	FlightTime   int64 `json:"flight_time" gorm:"default:0"`
	Bailout      int   `json:"bailout" gorm:"default:0"`
	Wounded      int   `json:"wounded" gorm:"default:0"`
	Dead         int   `json:"dead" gorm:"default:0"`
	Captured     int   `json:"captured" gorm:"default:0"`
	Relive       int   `json:"relive" gorm:"default:0"`
	Takeoff      int   `json:"takeoff" gorm:"default:0"`
	Landed       int   `json:"landed" gorm:"default:0"`
	Ditched      int   `json:"ditched" gorm:"default:0"`
	Crashed      int   `json:"crashed" gorm:"default:0"`
	InFlight     int   `json:"in_flight" gorm:"default:0"`
	Shotdown     int   `json:"shotdown" gorm:"default:0"`
	Respawn      int   `json:"respawn" gorm:"default:0"`
	Disco        int   `json:"disco" gorm:"default:0"`
	AkTotal      int   `json:"ak_total" gorm:"default:0"`
	AkAssist     int   `json:"ak_assist" gorm:"default:0"`
	GkTotal      int   `json:"gk_total" gorm:"default:0"`
	FakTotal     int   `json:"fak_total" gorm:"default:0"`
	FgkTotal     int   `json:"fgk_total" gorm:"default:0"`
}

func (c Counters) LostAircraft() int {
	return stats.LostAircraft(c.Ditched, c.Crashed, c.Shotdown)
}

func (c Counters) FlightHours() float64 {
	return stats.FlightHours(c.FlightTime)
}

func (c Counters) input() stats.Counters {
	return stats.Counters{
		AkTotal:      c.AkTotal,
		GkTotal:      c.GkTotal,
		Relive:       c.Relive,
		Ditched:      c.Ditched,
		Crashed:      c.Crashed,
		Shotdown:     c.Shotdown,
		SortiesTotal: c.SortiesTotal,
		FlightTime:   c.FlightTime,
	}
}

type Analytics struct {
	Kd   float64 `json:"kd" gorm:"default:0"`
	Kl   float64 `json:"kl" gorm:"default:0"`
	Ks   float64 `json:"ks" gorm:"default:0"`
	Khr  float64 `json:"khr" gorm:"default:0"`
	Gkd  float64 `json:"gkd" gorm:"default:0"`
	Gkl  float64 `json:"gkl" gorm:"default:0"`
	Gks  float64 `json:"gks" gorm:"default:0"`
	Gkhr float64 `json:"gkhr" gorm:"default:0"`
	Wl   float64 `json:"wl" gorm:"default:0"`
	Ce   float64 `json:"ce" gorm:"default:0"`
}

func computeAnalytics(c Counters) Analytics {
	return Analytics(stats.Compute(c.input()))
}

type Ammo struct {
	UsedCartridges int `json:"used_cartridges" gorm:"default:0"`
	UsedBombs      int `json:"used_bombs" gorm:"default:0"`
	UsedRockets    int `json:"used_rockets" gorm:"default:0"`
	HitBullets     int `json:"hit_bullets" gorm:"default:0"`
	HitBombs       int `json:"hit_bombs" gorm:"default:0"`
	HitRockets     int `json:"hit_rockets" gorm:"default:0"`
}

type SortiesCoal struct {
	SortiesNeutral int `json:"sorties_neutral" gorm:"column:sorties_coal_neutral;default:0"`
	SortiesAllies  int `json:"sorties_allies" gorm:"column:sorties_coal_allies;default:0"`
	SortiesAxis    int `json:"sorties_axis" gorm:"column:sorties_coal_axis;default:0"`
}

func (s SortiesCoal) strict(total int, current Coalition) Coalition {
	return Coalition(stats.StrictCoalPref(s.SortiesAllies, s.SortiesAxis, total, int(current)))
}

func (s SortiesCoal) majority(total int, current Coalition) Coalition {
	return Coalition(stats.MajorityCoalPref(s.SortiesAllies, total, int(current)))
}

// averageSortieRatio averages the ratio of the sorties matching the condition.
func averageSortieRatio(tx *gorm.DB, query string, args ...interface{}) (float64, bool, error) {
	var avg sql.NullFloat64
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Sortie{}).
		Select("AVG(ratio)").
		Where(query, args...).
		Row().Scan(&avg)
	if err != nil {
		return 0, false, err
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return stats.Round(avg.Float64, 2), true, nil
}
