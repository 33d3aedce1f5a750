package models

// GeneralRank is the top of the ladder; only one player per coalition and
// aircraft type can hold it.
const GeneralRank = 11

// Rank is one grade of the officer ladder. Id 0 means no rank.
type Rank struct {
	ID                uint    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	AlliedRank        string  `gorm:"size:64" json:"allied_rank"`
	AxisRank          string  `gorm:"size:64" json:"axis_rank"`
	MinFlightHours    float64 `json:"min_flight_hours"`
	MinRating         int64   `json:"min_rating"`
	MinRatingPosition int     `json:"min_rating_position"`
}

// Title returns the rank name for the given side.
func (r *Rank) Title(c Coalition) string {
	if c == CoalitionAxis {
		return r.AxisRank
	}
	return r.AlliedRank
}

// DefaultRanks is seeded into an empty ranks table.
var DefaultRanks = []Rank{
	{ID: 0, AlliedRank: "Cadet", AxisRank: "Flieger", MinFlightHours: 0, MinRating: 0, MinRatingPosition: 1000000},
	{ID: 1, AlliedRank: "Sergeant", AxisRank: "Unteroffizier", MinFlightHours: 1, MinRating: 10, MinRatingPosition: 1000000},
	{ID: 2, AlliedRank: "Staff Sergeant", AxisRank: "Feldwebel", MinFlightHours: 3, MinRating: 50, MinRatingPosition: 1000000},
	{ID: 3, AlliedRank: "Master Sergeant", AxisRank: "Oberfeldwebel", MinFlightHours: 6, MinRating: 150, MinRatingPosition: 1000000},
	{ID: 4, AlliedRank: "Junior Lieutenant", AxisRank: "Fahnenjunker", MinFlightHours: 10, MinRating: 300, MinRatingPosition: 1000000},
	{ID: 5, AlliedRank: "Lieutenant", AxisRank: "Leutnant", MinFlightHours: 15, MinRating: 600, MinRatingPosition: 1000000},
	{ID: 6, AlliedRank: "Senior Lieutenant", AxisRank: "Oberleutnant", MinFlightHours: 25, MinRating: 1000, MinRatingPosition: 200},
	{ID: 7, AlliedRank: "Captain", AxisRank: "Hauptmann", MinFlightHours: 40, MinRating: 2000, MinRatingPosition: 100},
	{ID: 8, AlliedRank: "Major", AxisRank: "Major", MinFlightHours: 60, MinRating: 4000, MinRatingPosition: 50},
	{ID: 9, AlliedRank: "Lieutenant Colonel", AxisRank: "Oberstleutnant", MinFlightHours: 80, MinRating: 7000, MinRatingPosition: 20},
	{ID: 10, AlliedRank: "Colonel", AxisRank: "Oberst", MinFlightHours: 100, MinRating: 10000, MinRatingPosition: 10},
	{ID: 11, AlliedRank: "Major General", AxisRank: "Generalmajor", MinFlightHours: 120, MinRating: 15000, MinRatingPosition: 4},
}
