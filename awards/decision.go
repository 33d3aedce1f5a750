package awards

// Action is what the engine must do with the rule's award for the player.
type Action int

const (
	NoAction Action = iota
	ActionGrant
	ActionRevoke
	ActionTransfer
	ActionSingletonMigrate
	ActionSquadMigrate
)

func (a Action) String() string {
	switch a {
	case ActionGrant:
		return "grant"
	case ActionRevoke:
		return "revoke"
	case ActionTransfer:
		return "transfer"
	case ActionSingletonMigrate:
		return "singleton_migrate"
	case ActionSquadMigrate:
		return "squad_migrate"
	}
	return "none"
}

// Decision is the outcome of one predicate. The zero value does nothing.
//
//   - Revoke: delete the reward, or rewrite it to Fallback when set.
//   - Transfer: rewrite the From reward to this award, keeping its date.
//   - SingletonMigrate: strip every tour holder of the Clear keys (demoting
//     them to Fallback when set), then award the player when Take is true,
//     transferring from From when set.
//   - SquadMigrate: strip tour holders of the Clear keys, then award every
//     pilot of the player's squad.
type Decision struct {
	Action   Action
	From     Key
	Fallback Key
	Clear    []Key
	Take     bool
}

var none = Decision{}

func Grant() Decision { return Decision{Action: ActionGrant} }

func Revoke() Decision { return Decision{Action: ActionRevoke} }

// Demote revokes the award leaving the lower tier in its place.
func Demote(lower Key) Decision { return Decision{Action: ActionRevoke, Fallback: lower} }

func Transfer(from Key) Decision { return Decision{Action: ActionTransfer, From: from} }

// Migrate moves a one-per-tour award to the player.
func Migrate(key Key) Decision {
	return Decision{Action: ActionSingletonMigrate, Clear: []Key{key}, Take: true}
}

// MigrateTier moves a one-per-tour tier to the player, demoting the previous
// holder to lower and promoting the player's own lower tier.
func MigrateTier(key, lower Key) Decision {
	return Decision{Action: ActionSingletonMigrate, Clear: []Key{key}, Fallback: lower, From: lower, Take: true}
}

// SquadMigrate hands a squad award to the player's squad, clearing the keys
// from whoever held them this tour.
func SquadMigrate(clear ...Key) Decision {
	return Decision{Action: ActionSquadMigrate, Clear: clear}
}

func grantIf(ok bool) Decision {
	if ok {
		return Grant()
	}
	return none
}

func transferIf(ok bool, from Key) Decision {
	if ok {
		return Transfer(from)
	}
	return none
}

// Keys returns every award key the decision touches besides its own.
func (d Decision) Keys() []Key {
	var keys []Key
	if d.From != "" {
		keys = append(keys, d.From)
	}
	if d.Fallback != "" && d.Fallback != d.From {
		keys = append(keys, d.Fallback)
	}
	return append(keys, d.Clear...)
}
