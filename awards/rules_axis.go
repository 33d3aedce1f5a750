package awards

import "il2-stats/models"

// Sortie scope.

func knightsCross(s *Subject) Decision {
	if !s.Axis() || s.IsKnight() || !(s.Has(IronCross1) || s.Has(MilitaryMeritSilver)) {
		return none
	}
	so, p := s.Sortie, s.Player
	return grantIf((so.Score > 0 && (so.AkTotal >= 5 || (so.AkTotal >= 2 && so.GkTotal >= 10))) ||
		(p.StreakCurrent >= 10 && p.SortiesStreakCurrent >= 5) ||
		(s.Heavy() && p.StreakGroundCurrent >= 150 && p.SortiesStreakCurrent >= 5) ||
		(s.Medium() && p.StreakGroundCurrent >= 30 && p.SortiesStreakCurrent >= 5))
}

// knightsCrossLeaves shares the bar of the first Hero title.
func knightsCrossLeaves(s *Subject) Decision {
	if !s.Axis() || !s.Has(KnightsCross) {
		return none
	}
	so, p := s.Sortie, s.Player
	return transferIf((so.Score > 0 && (so.AkTotal >= 5 || (so.AkTotal >= 2 && so.GkTotal >= 10))) ||
		(p.StreakCurrent >= 15 && p.SortiesStreakCurrent >= 15) ||
		(s.Heavy() && p.StreakGroundCurrent >= 250 && p.SortiesStreakCurrent >= 10) ||
		(s.Medium() && p.StreakGroundCurrent >= 50 && p.SortiesStreakCurrent >= 5), KnightsCross)
}

func knightsCrossSwords(s *Subject) Decision {
	if !s.Has(KnightsCrossLeaves) {
		return none
	}
	so, p := s.Sortie, s.Player
	return transferIf((so.Score > 0 && (so.AkTotal >= 6 || so.PvE().Tanks() >= 8)) ||
		(so.Score > 0 && so.AkTotal >= 3 && so.GkTotal >= 5) ||
		p.StreakCurrent >= 20 ||
		(s.Heavy() && p.StreakGroundCurrent >= 350) ||
		(s.Medium() && p.StreakGroundCurrent >= 75), KnightsCrossLeaves)
}

func knightsCrossDiamonds(s *Subject) Decision {
	if s.Has(KnightsCrossDiamonds) || !s.Has(KnightsCrossSwords) {
		return none
	}
	return transferIf(twiceHero(s), KnightsCrossSwords)
}

func luftwaffeCup(s *Subject) Decision {
	return grantIf(s.Axis() && s.Officer() && officerOrder(s))
}

func militaryMeritBronze(s *Subject) Decision {
	return grantIf(s.Axis() && battleMerit(s.Player))
}

func militaryMeritSilver(s *Subject) Decision {
	if !s.Axis() || !s.Has(MilitaryMeritBronze) || s.Sortie.Score <= 0 {
		return none
	}
	so := s.Sortie
	return grantIf(so.PvE().Get(models.ClassShip) >= 2 || so.PvE().Tanks() >= 4 || so.AkTotal >= 3)
}

func militaryMeritKnight(s *Subject) Decision {
	if !s.Axis() || !s.Has(MilitaryMeritSilver) || s.Sortie.Score <= 0 {
		return none
	}
	return grantIf(highestMerit(s))
}

// Mission scope.

func ironCross2(s *Subject) Decision {
	pm := s.Mission
	if !s.Axis() || !pm.WonBy(models.CoalitionAxis) {
		return none
	}
	pvp := pm.PvP()
	bombers := pvp.Get(models.ClassAircraftMedium) + pvp.Get(models.ClassAircraftHeavy)
	return grantIf(pm.PvE().Get(models.ClassShip) >= 2 ||
		pvp.Tanks() >= 4 ||
		bombers >= 2 ||
		(pvp.Aircraft() >= 3 && bombers >= 1))
}

func ironCross1(s *Subject) Decision {
	pm, p := s.Mission, s.Player
	if !s.Axis() || !pm.WonBy(models.CoalitionAxis) || !s.Has(IronCross2) {
		return none
	}
	if s.Env.MissionCombatSorties() < 3 || pm.Score < 1000 {
		return none
	}
	return grantIf(p.StreakCurrent >= 10 ||
		(s.Medium() && p.SortiesStreakCurrent >= 20) ||
		(s.Heavy() && p.SortiesStreakCurrent >= 10))
}

func pilotBadge(s *Subject) Decision {
	p := s.Player
	return grantIf(s.Axis() && p.ScoreStreakCurrent >= 200 && p.SortiesStreakCurrent >= 2)
}

// Tour scope.

func luftwaffeBadge(s *Subject) Decision {
	return squadOfTour(s, models.CoalitionAxis, LuftwaffeBadge, Guards)
}

func deutschCrossGold(s *Subject) Decision {
	return grantIf(s.Axis() && (s.Has(IronCross1) || s.Has(MilitaryMeritSilver)) &&
		s.Env.CombatSorties() >= 50)
}

func medalPreviousTour(s *Subject) Decision {
	return grantIf(s.Axis() && veteran(s))
}

func knightsCrossGold(s *Subject) Decision {
	return topTier(s, KnightsCrossGold, s.Env.IsTopStreak(), KnightsCrossGoldGround)
}

func knightsCrossGoldGround(s *Subject) Decision {
	return topTier(s, KnightsCrossGoldGround, s.Env.IsTopGroundStreak(), KnightsCrossGold)
}

// topTier is topOfTour for the gold Knight's Cross grades: the award is
// promoted from the Diamonds and a holder who loses the lead is demoted back.
func topTier(s *Subject, key Key, top bool, alternate Key) Decision {
	held := s.Has(key)
	switch {
	case s.Axis() && top && !held:
		if s.Has(KnightsCrossDiamonds) && !s.Has(alternate) {
			return MigrateTier(key, KnightsCrossDiamonds)
		}
	case !top && held:
		return Demote(KnightsCrossDiamonds)
	}
	return none
}
