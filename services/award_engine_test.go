package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"il2-stats/awards"
	"il2-stats/models"

	"gorm.io/gorm"
)

func combat(ak int) func(s *models.Sortie) {
	return func(s *models.Sortie) {
		s.Score = 1
		s.AkTotal = ak
	}
}

func TestSecondGoldStarGrantedOnSortie(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAllies, nil)
	f.grant(t, awards.GoldStar, p)
	so := f.sortie(t, p, combat(7))

	if err := f.engine.EvaluateSortie(context.Background(), so.ID); err != nil {
		t.Fatalf("EvaluateSortie: %v", err)
	}
	if !f.holds(t, awards.GoldStar2nd, p) {
		t.Fatalf("gold_star_2nd not granted")
	}

	var stored models.Sortie
	f.db.First(&stored, so.ID)
	if stored.AwardsEvaluatedAt == nil {
		t.Fatalf("sortie not stamped as evaluated")
	}
}

func TestDiamondsTransferKeepsGrantDate(t *testing.T) {
	f := newFixture(t)
	granted := tourStart.Add(6 * time.Hour)
	f.rewards.Now = func() time.Time { return granted }

	p := f.player(t, models.CoalitionAxis, nil)
	// leads both streaks so p is not the gold holder of the tour
	f.player(t, models.CoalitionAxis, func(r *models.Player) {
		r.StreakCurrent = 5
		r.StreakGroundCurrent = 5
	})
	f.grant(t, awards.KnightsCrossSwords, p)
	f.rewards.Now = func() time.Time { return granted.Add(24 * time.Hour) }

	so := f.sortie(t, p, combat(7))
	if err := f.engine.EvaluateSortie(context.Background(), so.ID); err != nil {
		t.Fatalf("EvaluateSortie: %v", err)
	}
	if f.holds(t, awards.KnightsCrossSwords, p) {
		t.Fatalf("swords still held after transfer")
	}
	at, ok, err := f.rewards.GrantedAt(f.db, awards.KnightsCrossDiamonds, p.ID)
	if err != nil || !ok {
		t.Fatalf("diamonds ok=%v err=%v", ok, err)
	}
	if !at.Equal(granted) {
		t.Fatalf("diamonds date=%v want=%v", at, granted)
	}
}

func TestGuardsGrantedToWholeLeadingSquad(t *testing.T) {
	f := newFixture(t)
	best := &models.Squad{TourID: f.tour.ID, Tag: "1GvIAP"}
	best.Score = 5000
	rival := &models.Squad{TourID: f.tour.ID, Tag: "2GvIAP", MaxMembers: 1}
	rival.Score = 10
	for _, sq := range []*models.Squad{best, rival} {
		if err := f.db.Create(sq).Error; err != nil {
			t.Fatalf("create squad: %v", err)
		}
	}
	members := make([]*models.Player, 12)
	for i := range members {
		members[i] = f.player(t, models.CoalitionAllies, func(p *models.Player) { p.SquadID = &best.ID })
	}
	loner := f.player(t, models.CoalitionAllies, nil)
	if err := f.db.Save(best).Error; err != nil {
		t.Fatalf("save squad: %v", err)
	}
	if best.NumMembers != 12 {
		t.Fatalf("num_members=%d want=12", best.NumMembers)
	}

	if err := f.engine.EvaluateTour(context.Background(), f.tour.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if n := f.holders(t, awards.Guards); n != 12 {
		t.Fatalf("guards holders=%d want=12", n)
	}
	for _, p := range members {
		if !f.holds(t, awards.Guards, p) {
			t.Fatalf("member %d missing guards", p.ID)
		}
	}
	if f.holds(t, awards.Guards, loner) {
		t.Fatalf("pilot without squad got guards")
	}

	if err := f.engine.EvaluateTour(context.Background(), f.tour.ID); err != nil {
		t.Fatalf("second EvaluateTour: %v", err)
	}
	if n := f.holders(t, awards.Guards); n != 12 {
		t.Fatalf("guards holders after re-evaluation=%d want=12", n)
	}
}

func TestRedBannerFourthNeedsTwoHundredSorties(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAllies, nil)
	f.grant(t, awards.RedBanner3rd, p)

	sorties := make([]models.Sortie, 199)
	for i := range sorties {
		sorties[i] = models.Sortie{
			ProfileID: p.ProfileID, PlayerID: p.ID, TourID: f.tour.ID, MissionID: f.mission.ID,
			Coalition: models.CoalitionAllies, DateStart: tourStart, Score: 1, IsFinalized: true,
		}
	}
	if err := f.db.CreateInBatches(sorties, 50).Error; err != nil {
		t.Fatalf("create sorties: %v", err)
	}

	ctx := context.Background()
	if err := f.engine.EvaluateTour(ctx, f.tour.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if f.holds(t, awards.RedBanner4th, p) {
		t.Fatalf("red_banner_4th granted at 199 combat sorties")
	}

	f.sortie(t, p, func(s *models.Sortie) { s.Score = 1 })
	if err := f.engine.EvaluateTour(ctx, f.tour.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if !f.holds(t, awards.RedBanner4th, p) {
		t.Fatalf("red_banner_4th not granted at 200 combat sorties")
	}
	if f.holds(t, awards.RedBanner5th, p) {
		t.Fatalf("red_banner_5th granted at 200 combat sorties")
	}
}

func TestGoldStar3rdMovesToStreakLeader(t *testing.T) {
	f := newFixture(t)
	streak := func(n int) func(p *models.Player) {
		return func(p *models.Player) { p.StreakCurrent = n }
	}
	a := f.player(t, models.CoalitionAllies, streak(10))
	b := f.player(t, models.CoalitionAllies, streak(20))
	f.grant(t, awards.GoldStar2nd, a)
	f.grant(t, awards.GoldStar2nd, b)
	f.grant(t, awards.GoldStar3rd, a)

	if err := f.engine.EvaluateTour(context.Background(), f.tour.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if f.holds(t, awards.GoldStar3rd, a) || !f.holds(t, awards.GoldStar3rd, b) {
		t.Fatalf("gold_star_3rd a=%v b=%v want=false,true", f.holds(t, awards.GoldStar3rd, a), f.holds(t, awards.GoldStar3rd, b))
	}
	if n := f.holders(t, awards.GoldStar3rd); n != 1 {
		t.Fatalf("gold_star_3rd holders=%d want=1", n)
	}
}

func TestConcurrentTourEvaluationKeepsSingleton(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, models.CoalitionAllies, func(p *models.Player) { p.StreakCurrent = 30 })
	b := f.player(t, models.CoalitionAllies, func(p *models.Player) { p.StreakCurrent = 10 })
	f.grant(t, awards.GoldStar2nd, a)
	f.grant(t, awards.GoldStar2nd, b)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.engine.EvaluateTour(context.Background(), f.tour.ID)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("EvaluateTour: %v", err)
		}
	}
	if n := f.holders(t, awards.GoldStar3rd); n != 1 {
		t.Fatalf("gold_star_3rd holders=%d want=1", n)
	}
	if !f.holds(t, awards.GoldStar3rd, a) {
		t.Fatalf("streak leader does not hold gold_star_3rd")
	}
}

func TestKnightsGoldDemotedWhenLeadIsLost(t *testing.T) {
	f := newFixture(t)
	holder := f.player(t, models.CoalitionAxis, func(p *models.Player) { p.StreakCurrent = 3 })
	f.player(t, models.CoalitionAxis, func(p *models.Player) {
		p.StreakCurrent = 8
		p.StreakGroundCurrent = 5
	})
	f.grant(t, awards.KnightsCrossGold, holder)

	if err := f.engine.EvaluateTour(context.Background(), f.tour.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if f.holds(t, awards.KnightsCrossGold, holder) {
		t.Fatalf("gold still held without the streak lead")
	}
	if !f.holds(t, awards.KnightsCrossDiamonds, holder) {
		t.Fatalf("holder not demoted to diamonds")
	}
}

func TestMissionCloseGrantsRedStar(t *testing.T) {
	f := newFixture(t)
	allies := models.CoalitionAllies
	if err := f.db.Model(f.mission).UpdateColumn("winning_coalition", allies).Error; err != nil {
		t.Fatalf("set mission winner: %v", err)
	}
	p := f.player(t, allies, nil)
	for i := 0; i < 3; i++ {
		f.sortie(t, p, func(s *models.Sortie) { s.Score = 400 })
	}
	pm := &models.PlayerMission{ProfileID: p.ProfileID, PlayerID: p.ID, MissionID: f.mission.ID}
	pm.Score = 1200
	if err := f.db.Create(pm).Error; err != nil {
		t.Fatalf("create player mission: %v", err)
	}

	if err := f.engine.EvaluateMission(context.Background(), f.mission.ID); err != nil {
		t.Fatalf("EvaluateMission: %v", err)
	}
	if !f.holds(t, awards.RedStar, p) {
		t.Fatalf("red_star not granted")
	}
	var tour models.Tour
	f.db.First(&tour, f.tour.ID)
	if tour.WinningCoalition == nil || *tour.WinningCoalition != allies {
		t.Fatalf("tour winner=%v want=%v", tour.WinningCoalition, allies)
	}
}

func TestVLifeHeroOnSortie(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAllies, nil)
	vl := &models.VLife{ProfileID: p.ProfileID, PlayerID: p.ID, TourID: f.tour.ID}
	vl.AkTotal = 25
	if err := f.db.Create(vl).Error; err != nil {
		t.Fatalf("create vlife: %v", err)
	}
	so := f.sortie(t, p, func(s *models.Sortie) { s.VLifeID = &vl.ID })

	if err := f.engine.EvaluateSortie(context.Background(), so.ID); err != nil {
		t.Fatalf("EvaluateSortie: %v", err)
	}
	if !f.holds(t, awards.VLifeHero, p) {
		t.Fatalf("vlife_hero not granted")
	}
}

func stamped(t *testing.T, f *fixture, id uint) bool {
	t.Helper()
	var so models.Sortie
	if err := f.db.First(&so, id).Error; err != nil {
		t.Fatalf("load sortie: %v", err)
	}
	return so.AwardsEvaluatedAt != nil
}

func TestSortieOfForeignVLifeSkipsVLifeRules(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAllies, nil)
	other := f.player(t, models.CoalitionAllies, nil)
	vl := &models.VLife{ProfileID: other.ProfileID, PlayerID: other.ID, TourID: f.tour.ID}
	vl.AkTotal = 25
	if err := f.db.Create(vl).Error; err != nil {
		t.Fatalf("create vlife: %v", err)
	}
	so := f.sortie(t, p, func(s *models.Sortie) {
		s.VLifeID = &vl.ID
		s.Score = 1
		s.AkTotal = 5
	})

	if err := f.engine.EvaluateSortie(context.Background(), so.ID); err != nil {
		t.Fatalf("EvaluateSortie: %v", err)
	}
	if f.holds(t, awards.VLifeHero, p) || f.holds(t, awards.VLifeHero, other) {
		t.Fatalf("vlife rules ran on a foreign vlife")
	}
	if !f.holds(t, awards.FighterHero, p) {
		t.Fatalf("sortie rules did not run")
	}
	if !stamped(t, f, so.ID) {
		t.Fatalf("sortie left in the pending queue")
	}
}

func TestSortieOfAnotherTourSkipsSortieRules(t *testing.T) {
	f := newFixture(t)
	next := &models.Tour{DateStart: tourStart.AddDate(0, 1, 0)}
	if err := f.db.Create(next).Error; err != nil {
		t.Fatalf("create tour: %v", err)
	}
	p := f.player(t, models.CoalitionAllies, nil)
	so := f.sortie(t, p, func(s *models.Sortie) {
		s.TourID = next.ID
		s.Score = 1
		s.AkTotal = 5
	})

	if err := f.engine.EvaluateSortie(context.Background(), so.ID); err != nil {
		t.Fatalf("EvaluateSortie: %v", err)
	}
	if f.holds(t, awards.FighterHero, p) {
		t.Fatalf("sortie rules ran for a sortie of another tour")
	}
	if !stamped(t, f, so.ID) {
		t.Fatalf("sortie left in the pending queue")
	}
}

func TestEvaluateSortieErrors(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAllies, nil)
	open := f.sortie(t, p, func(s *models.Sortie) { s.IsFinalized = false })

	ctx := context.Background()
	if err := f.engine.EvaluateSortie(ctx, open.ID); !errors.Is(err, ErrSortieNotFinalized) {
		t.Fatalf("err=%v want=%v", err, ErrSortieNotFinalized)
	}
	if err := f.engine.EvaluateSortie(ctx, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err=%v want=%v", err, gorm.ErrRecordNotFound)
	}
}

func TestMedalForVictoryFromPreviousTour(t *testing.T) {
	f := newFixture(t)
	allies := models.CoalitionAllies
	if err := f.db.Model(f.tour).UpdateColumn("winning_coalition", allies).Error; err != nil {
		t.Fatalf("set tour winner: %v", err)
	}
	veteran := f.player(t, allies, nil)
	for i := 0; i < 50; i++ {
		f.sortie(t, veteran, func(s *models.Sortie) { s.Score = 10 })
	}

	next := &models.Tour{DateStart: tourStart.AddDate(0, 1, 0)}
	if err := f.db.Create(next).Error; err != nil {
		t.Fatalf("create tour: %v", err)
	}
	f.rewards.Now = func() time.Time { return next.DateStart.Add(time.Hour) }
	var profile models.Profile
	f.db.First(&profile, veteran.ProfileID)
	returning := f.playerOf(t, &profile, next, allies, nil)
	rookie := f.playerIn(t, next, allies, nil)

	if err := f.engine.EvaluateTour(context.Background(), next.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if !f.holds(t, awards.MedalForVictory, returning) {
		t.Fatalf("veteran of the winning side missing medal_for_victory")
	}
	if f.holds(t, awards.MedalForVictory, rookie) {
		t.Fatalf("new pilot got medal_for_victory")
	}
}

// useRules swaps the engine catalog for a small one built from real keys so
// the synced award ids still resolve.
func useRules(t *testing.T, f *fixture, defs []awards.Definition, preds map[awards.Key]awards.Predicate) {
	t.Helper()
	c, err := awards.Build(defs, preds)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f.engine.Catalog = c
}

func grantAlways(*awards.Subject) awards.Decision { return awards.Grant() }

func TestFailingWriteRollsBackSortiePass(t *testing.T) {
	f := newFixture(t)
	const unsynced awards.Key = "unsynced_medal"
	useRules(t, f, []awards.Definition{
		{Key: awards.FighterHero, Scope: awards.ScopeSortie},
		{Key: unsynced, Scope: awards.ScopeSortie},
	}, map[awards.Key]awards.Predicate{
		awards.FighterHero: grantAlways,
		unsynced:           grantAlways,
	})
	p := f.player(t, models.CoalitionAllies, nil)
	so := f.sortie(t, p, combat(5))

	err := f.engine.EvaluateSortie(context.Background(), so.ID)
	if !errors.Is(err, awards.ErrUnknownAward) {
		t.Fatalf("err=%v want=%v", err, awards.ErrUnknownAward)
	}
	if f.holds(t, awards.FighterHero, p) {
		t.Fatalf("grant of the failed pass was kept")
	}
	if stamped(t, f, so.ID) {
		t.Fatalf("failed pass stamped the sortie")
	}
}

func TestBrokenPredicateIsSkipped(t *testing.T) {
	f := newFixture(t)
	useRules(t, f, []awards.Definition{
		{Key: awards.GoldStar, Scope: awards.ScopeSortie},
		{Key: awards.GoldStar2nd, Scope: awards.ScopeSortie},
		{Key: awards.FighterHero, Scope: awards.ScopeSortie},
	}, map[awards.Key]awards.Predicate{
		awards.GoldStar: func(*awards.Subject) awards.Decision {
			panic("rule bug")
		},
		awards.GoldStar2nd: func(s *awards.Subject) awards.Decision {
			if s.Has(awards.GoldStar3rd) {
				return awards.Revoke()
			}
			return awards.Grant()
		},
		awards.FighterHero: grantAlways,
	})
	p := f.player(t, models.CoalitionAllies, nil)
	so := f.sortie(t, p, nil)

	if err := f.engine.EvaluateSortie(context.Background(), so.ID); err != nil {
		t.Fatalf("EvaluateSortie: %v", err)
	}
	if f.holds(t, awards.GoldStar, p) {
		t.Fatalf("panicking rule granted its award")
	}
	if f.holds(t, awards.GoldStar2nd, p) {
		t.Fatalf("rule with an undeclared lookup granted its award")
	}
	if !f.holds(t, awards.FighterHero, p) {
		t.Fatalf("later rule did not run")
	}
	if !stamped(t, f, so.ID) {
		t.Fatalf("sortie not stamped")
	}
}

// failRewardInserts makes the next n reward inserts fail with a duplicate key.
func failRewardInserts(t *testing.T, f *fixture, n int) *int {
	t.Helper()
	attempts := 0
	err := f.db.Callback().Create().Before("gorm:create").Register("test:duplicate_reward", func(tx *gorm.DB) {
		if tx.Statement.Table != "rewards" {
			return
		}
		attempts++
		if attempts <= n {
			tx.AddError(gorm.ErrDuplicatedKey)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return &attempts
}

func singletonRules(t *testing.T, f *fixture) {
	useRules(t, f, []awards.Definition{
		{Key: awards.GoldStar3rd, Scope: awards.ScopeTour},
	}, map[awards.Key]awards.Predicate{
		awards.GoldStar3rd: func(*awards.Subject) awards.Decision { return awards.Migrate(awards.GoldStar3rd) },
	})
}

func TestMigrationConflictIsRetriedOnce(t *testing.T) {
	f := newFixture(t)
	singletonRules(t, f)
	p := f.player(t, models.CoalitionAllies, nil)
	attempts := failRewardInserts(t, f, 1)

	if err := f.engine.EvaluateTour(context.Background(), f.tour.ID); err != nil {
		t.Fatalf("EvaluateTour: %v", err)
	}
	if *attempts != 2 {
		t.Fatalf("attempts=%d want=2", *attempts)
	}
	if !f.holds(t, awards.GoldStar3rd, p) {
		t.Fatalf("retried migration did not grant")
	}
}

func TestRepeatedMigrationConflictAbortsPass(t *testing.T) {
	f := newFixture(t)
	singletonRules(t, f)
	p := f.player(t, models.CoalitionAllies, nil)
	attempts := failRewardInserts(t, f, 2)

	err := f.engine.EvaluateTour(context.Background(), f.tour.ID)
	if !errors.Is(err, ErrPersistenceConflict) {
		t.Fatalf("err=%v want=%v", err, ErrPersistenceConflict)
	}
	if *attempts != 2 {
		t.Fatalf("attempts=%d want=2", *attempts)
	}
	if f.holds(t, awards.GoldStar3rd, p) {
		t.Fatalf("aborted migration granted")
	}
}
