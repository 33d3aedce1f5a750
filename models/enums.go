package models

// Coalition a sortie was flown for. Stored as an integer.
type Coalition int

const (
	CoalitionNeutral Coalition = 0
	CoalitionAllies  Coalition = 1
	CoalitionAxis    Coalition = 2
)

func (c Coalition) String() string {
	switch c {
	case CoalitionAllies:
		return "allies"
	case CoalitionAxis:
		return "axis"
	}
	return "neutral"
}

type PlayerType string

const (
	PlayerTypePilot   PlayerType = "pilot"
	PlayerTypeGunner  PlayerType = "gunner"
	PlayerTypeTankman PlayerType = "tankman"
)

// SortieStatus is how a flight ended.
type SortieStatus string

const (
	SortieStatusLanded     SortieStatus = "landed"
	SortieStatusDitched    SortieStatus = "ditched"
	SortieStatusCrashed    SortieStatus = "crashed"
	SortieStatusShotdown   SortieStatus = "shotdown"
	SortieStatusNotTakeoff SortieStatus = "not_takeoff"
	SortieStatusInFlight   SortieStatus = "in_flight"
)

// LifeStatus is the condition of the airframe.
type LifeStatus string

const (
	LifeStatusUnharmed  LifeStatus = "unharmed"
	LifeStatusDamaged   LifeStatus = "damaged"
	LifeStatusDestroyed LifeStatus = "destroyed"
)

// BotLifeStatus is the condition of the pilot.
type BotLifeStatus string

const (
	BotStatusHealthy BotLifeStatus = "healthy"
	BotStatusWounded BotLifeStatus = "wounded"
	BotStatusDead    BotLifeStatus = "dead"
)

// Object classes used as killboard and sorties_cls keys.
const (
	ClassAircraftLight     = "aircraft_light"
	ClassAircraftMedium    = "aircraft_medium"
	ClassAircraftHeavy     = "aircraft_heavy"
	ClassAircraftTransport = "aircraft_transport"
	ClassAircraftTurret    = "aircraft_turret"
	ClassTankLight         = "tank_light"
	ClassTankMedium        = "tank_medium"
	ClassTankHeavy         = "tank_heavy"
	ClassShip              = "ship"
)
