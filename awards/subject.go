package awards

import "il2-stats/models"

// Env answers the lookups a predicate may need beyond the subject's own
// counters. Implementations are bound to one player for one pass and must
// reflect rewards written earlier in the same pass.
type Env interface {
	// Has reports whether the player currently holds key.
	Has(key Key) bool
	// CombatSorties counts the player's tour sorties with a positive score.
	CombatSorties() int
	// SuccessfulMissions counts missions with a positive score won by the
	// player's coalition.
	SuccessfulMissions() int
	// MissionCombatSorties counts positive-score sorties in the current mission.
	MissionCombatSorties() int
	IsTopStreak() bool
	IsTopGroundStreak() bool
	// SquadPosition is the rating position of the player's squad in the
	// tour, 0 when the player has no squad.
	SquadPosition() int
	SquadMembers() int
	// TourHolders counts the players of the tour holding key.
	TourHolders(key Key) int
	// PreviousTour describes the same profile in the preceding tour, nil
	// when it did not fly there.
	PreviousTour() *PreviousTour
}

type PreviousTour struct {
	CoalPref         models.Coalition
	WinningCoalition *models.Coalition
	CombatSorties    int
}

// Won reports whether the player's side of that tour won it.
func (p *PreviousTour) Won() bool {
	return p.WinningCoalition != nil && *p.WinningCoalition == p.CoalPref
}

// Subject is what a predicate sees. Player is always set; Sortie, Mission
// and VLife are set for their scopes.
type Subject struct {
	Player  *models.Player
	Sortie  *models.Sortie
	Mission *models.PlayerMission
	VLife   *models.VLife
	Env     Env
}

func (s *Subject) Has(key Key) bool { return s.Env.Has(key) }

func (s *Subject) Allies() bool { return s.Player.CoalPref == models.CoalitionAllies }

func (s *Subject) Axis() bool { return s.Player.CoalPref == models.CoalitionAxis }

func (s *Subject) Officer() bool { return s.Player.IsOfficer() }

func (s *Subject) Heavy() bool { return s.Player.FavouriteClass() == models.ClassAircraftHeavy }

func (s *Subject) Medium() bool { return s.Player.FavouriteClass() == models.ClassAircraftMedium }

// IsKnight reports whether the player holds any Knight's Cross grade.
func (s *Subject) IsKnight() bool {
	for _, k := range KnightsTiers {
		if s.Has(k) {
			return true
		}
	}
	return false
}
