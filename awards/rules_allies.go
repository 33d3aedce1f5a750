package awards

import "il2-stats/models"

// Sortie scope.

func goldStar(s *Subject) Decision {
	so, p := s.Sortie, s.Player
	return grantIf(s.Allies() && (
		(so.Score > 0 && (so.AkTotal >= 5 || (so.AkTotal >= 2 && so.GkTotal >= 10))) ||
		(p.StreakCurrent >= 15 && p.SortiesStreakCurrent >= 15) ||
		(s.Heavy() && p.StreakGroundCurrent >= 250 && p.SortiesStreakCurrent >= 10) ||
		(s.Medium() && p.StreakGroundCurrent >= 50 && p.SortiesStreakCurrent >= 5)))
}

func goldStar2nd(s *Subject) Decision {
	if !s.Allies() || !s.Has(GoldStar) {
		return none
	}
	return grantIf(twiceHero(s))
}

// twiceHero is the bar for a second Hero title, shared by the Diamonds.
func twiceHero(s *Subject) bool {
	so, p := s.Sortie, s.Player
	return (so.Score > 0 && (so.AkTotal >= 7 || (so.AkTotal >= 3 && so.GkTotal >= 10))) ||
		(so.Score > 0 && p.StreakCurrent >= 50 && p.SortiesStreakCurrent >= 30) ||
		(s.Heavy() && p.StreakGroundCurrent >= 450 && p.SortiesStreakCurrent >= 20) ||
		(s.Medium() && p.StreakGroundCurrent >= 100 && p.SortiesStreakCurrent >= 10)
}

// officerOrder is the bar for the Order of Lenin and the Luftwaffe cup.
func officerOrder(s *Subject) bool {
	so, p := s.Sortie, s.Player
	return so.AkTotal >= 4 ||
		so.PvE().Tanks() >= 6 ||
		(so.Score >= 600 && so.AkTotal >= 1 && so.GkTotal >= 5 && so.HeavyOrMedium()) ||
		p.StreakCurrent >= 10 ||
		(s.Heavy() && p.StreakGroundCurrent >= 150) ||
		(s.Medium() && p.StreakGroundCurrent >= 40)
}

// seniorOrder is the bar for a second Order of Lenin and the Swords.
func seniorOrder(s *Subject) bool {
	so, p := s.Sortie, s.Player
	return so.AkTotal >= 6 ||
		so.PvE().Tanks() >= 8 ||
		(so.AkTotal >= 3 && so.GkTotal >= 5) ||
		p.StreakCurrent >= 20 ||
		(s.Heavy() && p.StreakGroundCurrent >= 350) ||
		(s.Medium() && p.StreakGroundCurrent >= 75)
}

func orderOfLenin(s *Subject) Decision {
	return grantIf(s.Allies() && s.Officer() && officerOrder(s))
}

func orderOfLenin2nd(s *Subject) Decision {
	return grantIf(s.Allies() && s.Has(OrderOfLenin) && seniorOrder(s))
}

func orderOfGlory3rd(s *Subject) Decision {
	so := s.Sortie
	return grantIf(s.Allies() && !s.Officer() && so.Score > 0 &&
		(so.AkTotal >= 1 || so.PvE().Tanks() > 0))
}

func orderOfGlory2nd(s *Subject) Decision {
	if !s.Allies() || !s.Has(OrderOfGlory3rd) || s.Sortie.Score <= 0 {
		return none
	}
	so, pve := s.Sortie, s.Sortie.PvE()
	bombers := pve.Get(models.ClassAircraftMedium) + pve.Get(models.ClassAircraftHeavy)
	return grantIf(pve.Get(models.ClassShip) >= 2 ||
		pve.Tanks() >= 4 ||
		bombers >= 2 ||
		(so.AkTotal >= 3 && bombers >= 1))
}

func orderOfGlory1st(s *Subject) Decision {
	if !s.Allies() || !s.Has(OrderOfGlory2nd) || s.Sortie.Score <= 0 {
		return none
	}
	return grantIf(highestMerit(s))
}

// highestMerit is the bar for the top merit grade of both sides.
func highestMerit(s *Subject) bool {
	so, pve := s.Sortie, s.Sortie.PvE()
	bombers := pve.Get(models.ClassAircraftMedium) + pve.Get(models.ClassAircraftHeavy)
	return pve.Get(models.ClassTankHeavy) >= 3 ||
		pve.Get(models.ClassTankMedium) >= 6 ||
		pve.Tanks() >= 8 ||
		so.AkTotal >= 5 ||
		bombers >= 3 ||
		pve.Get(models.ClassShip) >= 3
}

func medalForBravery(s *Subject) Decision {
	so := s.Sortie
	return grantIf(s.Allies() && so.Score > 0 && so.Landed() &&
		((so.Damaged() && so.Damage > 40) || (so.Wounded() && so.Wound > 25)))
}

// Mission scope.

func redStar(s *Subject) Decision {
	return grantIf(s.Allies() && s.Mission.WonBy(models.CoalitionAllies) &&
		s.Env.MissionCombatSorties() >= 3 && s.Mission.Score >= 1000)
}

// Tour scope.

func redBanner(s *Subject) Decision {
	return grantIf(s.Allies() && s.Env.CombatSorties() >= 50)
}

// redBannerTier chains a further Red Banner on the previous one.
func redBannerTier(prev Key, sorties int) Predicate {
	return func(s *Subject) Decision {
		return grantIf(s.Allies() && s.Has(prev) && s.Env.CombatSorties() >= sorties)
	}
}

func orderOfPatrioticWar2nd(s *Subject) Decision {
	return grantIf(s.Allies() && s.Env.SuccessfulMissions() >= 25)
}

func orderOfPatrioticWar1st(s *Subject) Decision {
	return grantIf(s.Allies() && s.Has(OrderOfPatrioticWar2nd) && s.Env.SuccessfulMissions() >= 50)
}

func medalForBattleMerit(s *Subject) Decision {
	return grantIf(s.Allies() && battleMerit(s.Player))
}

func battleMerit(p *models.Player) bool {
	return p.SortiesStreakCurrent >= 10 && p.ScoreStreakCurrent >= 3000
}

func medalForVictory(s *Subject) Decision {
	return grantIf(s.Allies() && veteran(s))
}

// veteran holds for players who flew 50 combat sorties for the winning side
// of the previous tour and stayed on that side.
func veteran(s *Subject) bool {
	prev := s.Env.PreviousTour()
	return prev != nil && prev.CoalPref == s.Player.CoalPref && prev.Won() && prev.CombatSorties >= 50
}

func guards(s *Subject) Decision {
	return squadOfTour(s, models.CoalitionAllies, Guards, LuftwaffeBadge)
}

// squadOfTour hands the squad badge to whichever squad leads the tour.
func squadOfTour(s *Subject, side models.Coalition, key, rival Key) Decision {
	if s.Player.CoalPref != side || s.Player.SquadID == nil {
		return none
	}
	if s.Env.SquadPosition() != 1 {
		return none
	}
	if s.Has(key) && s.Env.TourHolders(key) == s.Env.SquadMembers() {
		return none
	}
	return SquadMigrate(key, rival)
}

func goldStar3rd(s *Subject) Decision {
	return topOfTour(s, models.CoalitionAllies, GoldStar3rd, s.Env.IsTopStreak(), GoldStar2nd, GoldStar3rdGround)
}

func goldStar3rdGround(s *Subject) Decision {
	return topOfTour(s, models.CoalitionAllies, GoldStar3rdGround, s.Env.IsTopGroundStreak(), GoldStar2nd, GoldStar3rd)
}

// topOfTour keeps a one-per-tour award on the streak leader: it migrates to
// a qualified leader and is revoked from a holder who lost the lead.
func topOfTour(s *Subject, side models.Coalition, key Key, top bool, prereq, alternate Key) Decision {
	held := s.Has(key)
	switch {
	case s.Player.CoalPref == side && top && !held:
		if s.Has(prereq) && !s.Has(alternate) {
			return Migrate(key)
		}
	case !top && held:
		return Revoke()
	}
	return none
}
