package awards

// Predicate decides what happens to its award for one subject. It must not
// write anything; all effects go through the returned Decision.
type Predicate func(*Subject) Decision

// Registry maps each award key to its predicate.
func Registry() map[Key]Predicate {
	return map[Key]Predicate{
		FighterAce:  fighterAce,
		FighterHero: fighterHero,
		MissionHero: missionHero,
		VLifeHero:   vlifeHero,

		Guards:                 guards,
		GoldStar:               goldStar,
		GoldStar2nd:            goldStar2nd,
		GoldStar3rd:            goldStar3rd,
		GoldStar3rdGround:      goldStar3rdGround,
		OrderOfLenin:           orderOfLenin,
		OrderOfLenin2nd:        orderOfLenin2nd,
		RedBanner:              redBanner,
		RedBanner2nd:           redBannerTier(RedBanner, 100),
		RedBanner3rd:           redBannerTier(RedBanner2nd, 150),
		RedBanner4th:           redBannerTier(RedBanner3rd, 200),
		RedBanner5th:           redBannerTier(RedBanner4th, 250),
		RedStar:                redStar,
		OrderOfPatrioticWar1st: orderOfPatrioticWar1st,
		OrderOfPatrioticWar2nd: orderOfPatrioticWar2nd,
		OrderOfGlory1st:        orderOfGlory1st,
		OrderOfGlory2nd:        orderOfGlory2nd,
		OrderOfGlory3rd:        orderOfGlory3rd,
		MedalForBravery:        medalForBravery,
		MedalForBattleMerit:    medalForBattleMerit,
		MedalForVictory:        medalForVictory,

		LuftwaffeBadge:         luftwaffeBadge,
		KnightsCross:           knightsCross,
		KnightsCrossLeaves:     knightsCrossLeaves,
		KnightsCrossSwords:     knightsCrossSwords,
		KnightsCrossDiamonds:   knightsCrossDiamonds,
		KnightsCrossGold:       knightsCrossGold,
		KnightsCrossGoldGround: knightsCrossGoldGround,
		DeutschCrossGold:       deutschCrossGold,
		LuftwaffeCup:           luftwaffeCup,
		IronCross1:             ironCross1,
		IronCross2:             ironCross2,
		MilitaryMeritKnight:    militaryMeritKnight,
		MilitaryMeritSilver:    militaryMeritSilver,
		MilitaryMeritBronze:    militaryMeritBronze,
		PilotBadge:             pilotBadge,
		MedalPreviousTour:      medalPreviousTour,

		IronCross1stClass:          retired,
		IronCross2ndClass:          retired,
		AeronauticalMedal:          retired,
		MedalEasternFront:          retired,
		LongServiceSilver:          retired,
		LongServiceGold:            retired,
		WarMeritCross2nd:           retired,
		WarMeritCross1st:           retired,
		KnightsWarMeritCross:       retired,
		KnightsWarMeritCrossSwords: retired,
		GermanCrossSilverCloth:     retired,
		GermanCrossGoldCloth:       retired,
		GermanCrossSilver:          retired,
		GermanCrossGold:            retired,
		GermanCrossDiamonds:        retired,
	}
}
