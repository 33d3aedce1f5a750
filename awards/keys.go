package awards

// Key identifies an award. The set is closed: every key below has exactly
// one predicate in the registry and one entry in catalog.yaml.
type Key string

// Scope is the statistics level a rule is evaluated against.
type Scope string

const (
	ScopeTour    Scope = "tour"
	ScopeSortie  Scope = "sortie"
	ScopeMission Scope = "mission"
	ScopeVLife   Scope = "vlife"
)

// Scopes in the order a sortie trigger evaluates them.
var Scopes = []Scope{ScopeSortie, ScopeVLife, ScopeMission, ScopeTour}

// Example awards, coalition neutral.
const (
	FighterAce  Key = "fighter_ace"
	FighterHero Key = "fighter_hero"
	MissionHero Key = "mission_hero"
	VLifeHero   Key = "vlife_hero"
)

// Allied awards.
const (
	Guards                 Key = "guards"
	GoldStar               Key = "gold_star"
	GoldStar2nd            Key = "gold_star_2nd"
	GoldStar3rd            Key = "gold_star_3rd"
	GoldStar3rdGround      Key = "gold_star_3rd_ground"
	OrderOfLenin           Key = "order_of_lenin"
	OrderOfLenin2nd        Key = "order_of_lenin_2nd"
	RedBanner              Key = "red_banner"
	RedBanner2nd           Key = "red_banner_2nd"
	RedBanner3rd           Key = "red_banner_3rd"
	RedBanner4th           Key = "red_banner_4th"
	RedBanner5th           Key = "red_banner_5th"
	RedStar                Key = "red_star"
	OrderOfPatrioticWar1st Key = "order_of_patriotic_war_1st_class"
	OrderOfPatrioticWar2nd Key = "order_of_patriotic_war_2nd_class"
	OrderOfGlory1st        Key = "order_of_glory_1st_class"
	OrderOfGlory2nd        Key = "order_of_glory_2nd_class"
	OrderOfGlory3rd        Key = "order_of_glory_3rd_class"
	MedalForBravery        Key = "medal_for_bravery"
	MedalForBattleMerit    Key = "medal_for_battle_merit"
	MedalForVictory        Key = "medal_for_victory"
)

// Axis awards.
const (
	LuftwaffeBadge         Key = "luftwaffe_badge"
	KnightsCross           Key = "knights_cross"
	KnightsCrossLeaves     Key = "knights_cross_leaves"
	KnightsCrossSwords     Key = "knights_cross_leaves_swords"
	KnightsCrossDiamonds   Key = "knights_cross_leaves_swords_diamonds"
	KnightsCrossGold       Key = "knights_cross_leaves_swords_diamonds_gold"
	KnightsCrossGoldGround Key = "knights_cross_leaves_swords_diamonds_gold_ground"
	DeutschCrossGold       Key = "deutsch_cross_gold"
	LuftwaffeCup           Key = "luftwaffe_cup"
	IronCross1             Key = "iron_cross_1"
	IronCross2             Key = "iron_cross_2"
	MilitaryMeritKnight    Key = "military_merit_knight"
	MilitaryMeritSilver    Key = "military_merit_silver"
	MilitaryMeritBronze    Key = "military_merit_bronze"
	PilotBadge             Key = "pilot_badge"
	MedalPreviousTour      Key = "medal_previous_tour"
)

// Retired awards. Existing rewards keep pointing at them but no player can
// earn them any more.
const (
	IronCross1stClass          Key = "iron_cross_1st_class"
	IronCross2ndClass          Key = "iron_cross_2nd_class"
	AeronauticalMedal          Key = "aeronautical_medal"
	MedalEasternFront          Key = "medal_eastern_front"
	LongServiceSilver          Key = "wehrmacht_long_service_silver"
	LongServiceGold            Key = "wehrmacht_long_service_gold"
	WarMeritCross2nd           Key = "war_merit_cross_2nd_class"
	WarMeritCross1st           Key = "war_merit_cross_1st_class"
	KnightsWarMeritCross       Key = "knights_war_merit_cross"
	KnightsWarMeritCrossSwords Key = "knights_war_merit_cross_swords"
	GermanCrossSilverCloth     Key = "german_cross_silver_cloth"
	GermanCrossGoldCloth       Key = "german_cross_gold_cloth"
	GermanCrossSilver          Key = "german_cross_silver"
	GermanCrossGold            Key = "german_cross_gold"
	GermanCrossDiamonds        Key = "german_cross_diamonds"
)

// KnightsTiers lists the Knight's Cross grades from lowest to highest.
var KnightsTiers = []Key{
	KnightsCross,
	KnightsCrossLeaves,
	KnightsCrossSwords,
	KnightsCrossDiamonds,
	KnightsCrossGold,
	KnightsCrossGoldGround,
}
