package awards

func fighterAce(s *Subject) Decision {
	return grantIf(s.Player.StreakMax >= 100)
}

func fighterHero(s *Subject) Decision {
	return grantIf(s.Sortie.AkTotal >= 5)
}

func missionHero(s *Subject) Decision {
	return grantIf(s.Mission.AkTotal >= 15)
}

func vlifeHero(s *Subject) Decision {
	return grantIf(s.VLife.AkTotal >= 25)
}

func retired(*Subject) Decision { return none }
