package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"il2-stats/awards"
	"il2-stats/logger"
	"il2-stats/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// AwardEngine runs the catalog rules for a trigger and applies the
// decisions through the reward store. Each player pass is one transaction.
type AwardEngine struct {
	DB        *gorm.DB
	Catalog   *awards.Catalog
	Rewards   *RewardService
	Positions *PositionService
	Ranks     *RankService
	Locker    Locker
	Now       func() time.Time

	group singleflight.Group
}

func NewAwardEngine(db *gorm.DB, catalog *awards.Catalog, rewards *RewardService, locker Locker) *AwardEngine {
	positions := NewPositionService()
	return &AwardEngine{
		DB:        db,
		Catalog:   catalog,
		Rewards:   rewards,
		Positions: positions,
		Ranks:     NewRankService(positions),
		Locker:    locker,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// collapse runs fn once for concurrent triggers of the same scope instance.
func (e *AwardEngine) collapse(key string, fn func() error) error {
	_, err, _ := e.group.Do(key, func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// EvaluateSortie refreshes the player's rank, then runs the sortie, vlife
// and tour rules for a finalized sortie and stamps it as evaluated.
func (e *AwardEngine) EvaluateSortie(ctx context.Context, sortieID uint) error {
	return e.collapse(fmt.Sprintf("sortie:%d", sortieID), func() error {
		return e.evaluateSortie(ctx, sortieID)
	})
}

func (e *AwardEngine) evaluateSortie(ctx context.Context, sortieID uint) error {
	var so models.Sortie
	if err := e.DB.WithContext(ctx).First(&so, sortieID).Error; err != nil {
		return fmt.Errorf("sortie %d: %w", sortieID, err)
	}
	if !so.IsFinalized {
		return fmt.Errorf("sortie %d: %w", sortieID, ErrSortieNotFinalized)
	}

	return e.runPass(ctx, so.PlayerID, func(p *pass) error {
		if err := e.Ranks.Refresh(p.tx, p.player); err != nil {
			return err
		}
		if so.TourID != p.player.TourID {
			p.skipScope(awards.ScopeSortie, fmt.Errorf("sortie %d tour %d, player tour %d: %w", so.ID, so.TourID, p.player.TourID, awards.ErrInconsistentAggregate))
		} else {
			if err := p.run(awards.ScopeSortie, awards.Subject{Player: p.player, Sortie: &so}); err != nil {
				return err
			}
			vl, err := p.sortieVLife(&so)
			if err != nil {
				return err
			}
			if vl != nil {
				if err := p.run(awards.ScopeVLife, awards.Subject{Player: p.player, VLife: vl}); err != nil {
					return err
				}
			}
		}
		if err := p.run(awards.ScopeTour, awards.Subject{Player: p.player}); err != nil {
			return err
		}
		if err := p.tx.Model(&so).UpdateColumn("awards_evaluated_at", e.Now()).Error; err != nil {
			return fmt.Errorf("mark sortie %d evaluated: %w", so.ID, err)
		}
		return nil
	})
}

// sortieVLife loads the sortie's vlife. A missing vlife or one of another
// player skips the vlife rules and returns nil.
func (p *pass) sortieVLife(so *models.Sortie) (*models.VLife, error) {
	if so.VLifeID == nil {
		return nil, nil
	}
	var vl models.VLife
	res := p.tx.Limit(1).Find(&vl, *so.VLifeID)
	if res.Error != nil {
		return nil, fmt.Errorf("vlife %d of sortie %d: %w", *so.VLifeID, so.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		p.skipScope(awards.ScopeVLife, fmt.Errorf("vlife %d of sortie %d missing: %w", *so.VLifeID, so.ID, awards.ErrInconsistentAggregate))
		return nil, nil
	}
	if vl.PlayerID != so.PlayerID {
		p.skipScope(awards.ScopeVLife, fmt.Errorf("vlife %d belongs to player %d: %w", vl.ID, vl.PlayerID, awards.ErrInconsistentAggregate))
		return nil, nil
	}
	return &vl, nil
}

// EvaluateMission refreshes the tour winner and runs the mission and tour
// rules for every player of the mission. Players are evaluated in separate
// transactions; their errors are joined.
func (e *AwardEngine) EvaluateMission(ctx context.Context, missionID uint) error {
	return e.collapse(fmt.Sprintf("mission:%d", missionID), func() error {
		return e.evaluateMission(ctx, missionID)
	})
}

func (e *AwardEngine) evaluateMission(ctx context.Context, missionID uint) error {
	db := e.DB.WithContext(ctx)
	var mission models.Mission
	if err := db.First(&mission, missionID).Error; err != nil {
		return fmt.Errorf("mission %d: %w", missionID, err)
	}
	var tour models.Tour
	if err := db.First(&tour, mission.TourID).Error; err != nil {
		return fmt.Errorf("tour %d of mission %d: %w", mission.TourID, missionID, err)
	}
	if err := db.Save(&tour).Error; err != nil {
		return fmt.Errorf("refresh tour %d: %w", tour.ID, err)
	}

	var pms []models.PlayerMission
	if err := db.Where("mission_id = ?", missionID).Order("id").Find(&pms).Error; err != nil {
		return fmt.Errorf("players of mission %d: %w", missionID, err)
	}
	var errs []error
	for i := range pms {
		pm := &pms[i]
		pm.Mission = &mission
		err := e.runPass(ctx, pm.PlayerID, func(p *pass) error {
			if err := p.run(awards.ScopeMission, awards.Subject{Player: p.player, Mission: pm}); err != nil {
				return err
			}
			return p.run(awards.ScopeTour, awards.Subject{Player: p.player})
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("player %d: %w", pm.PlayerID, err))
		}
	}
	return errors.Join(errs...)
}

// EvaluateTour runs the tour rules for every player of the tour.
func (e *AwardEngine) EvaluateTour(ctx context.Context, tourID uint) error {
	return e.collapse(fmt.Sprintf("tour:%d", tourID), func() error {
		return e.evaluateTour(ctx, tourID)
	})
}

func (e *AwardEngine) evaluateTour(ctx context.Context, tourID uint) error {
	var ids []uint
	err := e.DB.WithContext(ctx).Model(&models.Player{}).
		Where("tour_id = ?", tourID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("players of tour %d: %w", tourID, err)
	}
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.runPass(ctx, id, func(p *pass) error {
			return p.run(awards.ScopeTour, awards.Subject{Player: p.player})
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("player %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// pass is one player's evaluation inside one transaction.
type pass struct {
	engine *AwardEngine
	ctx    context.Context
	tx     *gorm.DB
	log    *zap.Logger

	player *models.Player
	tour   *models.Tour

	locked  map[string]bool
	unlocks []func()

	combat    *int
	success   *int
	top       *bool
	topGround *bool
	squad     *models.Squad
	squadPos  *int
	prev      **awards.PreviousTour
}

// runPass loads the player and runs body in one transaction. Critical
// sections taken by the pass are released once the transaction is over.
func (e *AwardEngine) runPass(ctx context.Context, playerID uint, body func(p *pass) error) error {
	p := &pass{
		engine: e,
		ctx:    ctx,
		log:    logger.L().With(zap.Uint("player_id", playerID)),
		locked: map[string]bool{},
	}
	defer p.release()

	return e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p.tx = tx
		var player models.Player
		if err := tx.First(&player, playerID).Error; err != nil {
			return fmt.Errorf("player %d: %w", playerID, err)
		}
		var tour models.Tour
		if err := tx.First(&tour, player.TourID).Error; err != nil {
			return fmt.Errorf("tour %d of player %d: %w", player.TourID, playerID, err)
		}
		p.player, p.tour = &player, &tour
		return body(p)
	})
}

func (p *pass) skipScope(scope awards.Scope, err error) {
	p.log.Warn("award scope skipped", zap.String("scope", string(scope)), zap.Error(err))
}

func (p *pass) release() {
	for i := len(p.unlocks) - 1; i >= 0; i-- {
		p.unlocks[i]()
	}
	p.unlocks = nil
}

// run evaluates the active rules of one scope in catalog order. A failing
// predicate skips its rule; a failing write aborts the pass.
func (p *pass) run(scope awards.Scope, base awards.Subject) error {
	for _, rule := range p.engine.Catalog.Rules(scope) {
		d, err := p.decide(rule, base)
		if err != nil {
			p.log.Warn("award rule skipped",
				zap.String("award", string(rule.Key)),
				zap.String("scope", string(scope)),
				zap.Error(err))
			continue
		}
		if d.Action == awards.NoAction {
			continue
		}
		if err := p.apply(rule, d); err != nil {
			return fmt.Errorf("%s %s: %w", d.Action, rule.Key, err)
		}
		p.log.Info("award decision applied",
			zap.String("award", string(rule.Key)),
			zap.String("action", d.Action.String()))
	}
	return nil
}

func (p *pass) decide(rule *awards.Rule, base awards.Subject) (d awards.Decision, err error) {
	env := &ruleEnv{pass: p, rule: rule, subject: &base}
	s := base
	s.Env = env
	defer func() {
		if r := recover(); r != nil {
			d, err = awards.Decision{}, fmt.Errorf("predicate panic: %v", r)
		}
	}()
	d = rule.Predicate(&s)
	if env.err != nil {
		return awards.Decision{}, env.err
	}
	if err := rule.Check(d); err != nil {
		return awards.Decision{}, err
	}
	return d, nil
}

func (p *pass) apply(rule *awards.Rule, d awards.Decision) error {
	rewards, tx, pid := p.engine.Rewards, p.tx, p.player.ID
	switch d.Action {
	case awards.ActionGrant:
		_, err := rewards.Grant(tx, rule.Key, pid)
		return err
	case awards.ActionRevoke:
		if d.Fallback != "" {
			return rewards.Demote(tx, rule.Key, d.Fallback, pid)
		}
		_, err := rewards.Revoke(tx, rule.Key, pid)
		return err
	case awards.ActionTransfer:
		return p.transferOrGrant(d.From, rule.Key)
	case awards.ActionSingletonMigrate:
		m := Migration{Clear: d.Clear, Fallback: d.Fallback, From: d.From, Take: d.Take}
		return p.critical(rule.Key, d.Clear, func() error {
			return rewards.MigrateSingleton(tx, rule.Key, p.tour, pid, m)
		})
	case awards.ActionSquadMigrate:
		if p.player.SquadID == nil {
			return nil
		}
		squadID := *p.player.SquadID
		return p.critical(rule.Key, d.Clear, func() error {
			for _, k := range d.Clear {
				if _, err := rewards.ClearTour(tx, k, p.tour, ""); err != nil {
					return err
				}
			}
			_, err := rewards.GrantSquad(tx, rule.Key, squadID)
			return err
		})
	}
	return nil
}

func (p *pass) transferOrGrant(from, to awards.Key) error {
	moved, err := p.engine.Rewards.Transfer(p.tx, from, to, p.player.ID)
	if err != nil || moved {
		return err
	}
	_, err = p.engine.Rewards.Grant(p.tx, to, p.player.ID)
	return err
}

// critical locks the award and the keys it clears for the tour, then runs
// fn. A duplicate key is retried once from a savepoint.
func (p *pass) critical(key awards.Key, clear []awards.Key, fn func() error) error {
	if err := p.lock(append([]awards.Key{key}, clear...)); err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		if err := p.tx.SavePoint("award_migration").Error; err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if rbErr := p.tx.RollbackTo("award_migration").Error; rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
		if attempt == 2 {
			return fmt.Errorf("%s in tour %d: %w", key, p.tour.ID, ErrPersistenceConflict)
		}
		p.log.Warn("award migration conflict, retrying", zap.String("award", string(key)), zap.Error(err))
	}
}

// lock takes the critical sections of keys in catalog order. Sections held
// by the pass are not taken twice.
func (p *pass) lock(keys []awards.Key) error {
	cat := p.engine.Catalog
	sort.SliceStable(keys, func(i, j int) bool {
		ri, _ := cat.Rule(keys[i])
		rj, _ := cat.Rule(keys[j])
		return ri.Order < rj.Order
	})
	for _, k := range keys {
		name := LockKey(string(k), p.tour.ID)
		if p.locked[name] {
			continue
		}
		unlock, err := p.engine.Locker.Lock(p.ctx, name)
		if err != nil {
			return fmt.Errorf("lock %s: %w", name, err)
		}
		p.unlocks = append(p.unlocks, unlock)
		p.locked[name] = true
		if p.tx.Dialector.Name() == "postgres" {
			if err := p.tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", name).Error; err != nil {
				return fmt.Errorf("advisory lock %s: %w", name, err)
			}
		}
	}
	return nil
}

// ruleEnv answers one rule's lookups. Reward lookups are checked against
// the rule's declared keys; the first failure is kept and skips the rule.
type ruleEnv struct {
	pass    *pass
	rule    *awards.Rule
	subject *awards.Subject
	err     error
}

func (e *ruleEnv) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *ruleEnv) declared(key awards.Key) bool {
	if e.rule.Declares(key) {
		return true
	}
	e.fail(fmt.Errorf("%s looked up %s: %w", e.rule.Key, key, awards.ErrUndeclaredDependency))
	return false
}

func (e *ruleEnv) Has(key awards.Key) bool {
	if !e.declared(key) {
		return false
	}
	ok, err := e.pass.engine.Rewards.IsGranted(e.pass.tx, key, e.pass.player.ID)
	if err != nil {
		e.fail(err)
	}
	return ok
}

func (e *ruleEnv) count(cache **int, q *gorm.DB) int {
	if *cache != nil {
		return **cache
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		e.fail(err)
		return 0
	}
	v := int(n)
	*cache = &v
	return v
}

func (e *ruleEnv) CombatSorties() int {
	p := e.pass
	return e.count(&p.combat, p.tx.Model(&models.Sortie{}).
		Where("player_id = ? AND score > 0", p.player.ID))
}

func (e *ruleEnv) SuccessfulMissions() int {
	p := e.pass
	return e.count(&p.success, p.tx.Model(&models.PlayerMission{}).
		Joins("JOIN missions ON missions.id = player_missions.mission_id").
		Where("player_missions.player_id = ? AND player_missions.score > 0 AND missions.winning_coalition = ?",
			p.player.ID, p.player.CoalPref))
}

func (e *ruleEnv) MissionCombatSorties() int {
	pm := e.subject.Mission
	if pm == nil {
		return 0
	}
	var n int64
	err := e.pass.tx.Model(&models.Sortie{}).
		Where("player_id = ? AND mission_id = ? AND score > 0", pm.PlayerID, pm.MissionID).
		Count(&n).Error
	if err != nil {
		e.fail(err)
	}
	return int(n)
}

func (e *ruleEnv) top(cache **bool, f Field) bool {
	if *cache != nil {
		return **cache
	}
	ok, err := e.pass.engine.Positions.IsTop(e.pass.tx, e.pass.player, f)
	if err != nil {
		e.fail(err)
		return false
	}
	*cache = &ok
	return ok
}

func (e *ruleEnv) IsTopStreak() bool {
	return e.top(&e.pass.top, FieldStreakCurrent)
}

func (e *ruleEnv) IsTopGroundStreak() bool {
	return e.top(&e.pass.topGround, FieldStreakGroundCurrent)
}

func (e *ruleEnv) loadSquad() *models.Squad {
	p := e.pass
	if p.squad != nil || p.player.SquadID == nil {
		return p.squad
	}
	var sq models.Squad
	if err := p.tx.First(&sq, *p.player.SquadID).Error; err != nil {
		e.fail(fmt.Errorf("squad %d: %w", *p.player.SquadID, err))
		return nil
	}
	p.squad = &sq
	return p.squad
}

func (e *ruleEnv) SquadPosition() int {
	p := e.pass
	if p.squadPos != nil {
		return *p.squadPos
	}
	sq := e.loadSquad()
	if sq == nil {
		return 0
	}
	pos, err := p.engine.Positions.SquadPosition(p.tx, sq, FieldRating)
	if err != nil {
		e.fail(err)
		return 0
	}
	p.squadPos = &pos
	return pos
}

func (e *ruleEnv) SquadMembers() int {
	if sq := e.loadSquad(); sq != nil {
		return sq.NumMembers
	}
	return 0
}

func (e *ruleEnv) TourHolders(key awards.Key) int {
	if !e.declared(key) {
		return 0
	}
	n, err := e.pass.engine.Rewards.TourHolderCount(e.pass.tx, key, e.pass.tour)
	if err != nil {
		e.fail(err)
	}
	return n
}

// PreviousTour finds the same profile's pilot in the tour before this one.
func (e *ruleEnv) PreviousTour() *awards.PreviousTour {
	p := e.pass
	if p.prev != nil {
		return *p.prev
	}
	prev, err := previousTourOf(p.tx, p.player)
	if err != nil {
		e.fail(err)
		return nil
	}
	p.prev = &prev
	return prev
}

func previousTourOf(tx *gorm.DB, player *models.Player) (*awards.PreviousTour, error) {
	var tour models.Tour
	err := tx.Where("id < ?", player.TourID).Order("id DESC").First(&tour).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous tour of %d: %w", player.TourID, err)
	}
	var prev models.Player
	err = tx.Where("profile_id = ? AND tour_id = ? AND type = ?", player.ProfileID, tour.ID, models.PlayerTypePilot).
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous player of profile %d: %w", player.ProfileID, err)
	}
	var combat int64
	if err := tx.Model(&models.Sortie{}).Where("player_id = ? AND score > 0", prev.ID).Count(&combat).Error; err != nil {
		return nil, fmt.Errorf("combat sorties of player %d: %w", prev.ID, err)
	}
	return &awards.PreviousTour{
		CoalPref:         prev.CoalPref,
		WinningCoalition: tour.WinningCoalition,
		CombatSorties:    int(combat),
	}, nil
}
