package services

import (
	"fmt"
	"testing"
	"time"

	"il2-stats/awards"
	"il2-stats/config"
	"il2-stats/logger"
	"il2-stats/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tourStart = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	catalog *awards.Catalog
	rewards *RewardService
	engine  *AwardEngine
	tour    *models.Tour
	mission *models.Mission

	profiles int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Replace(zap.NewNop())

	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = ":memory:"
	db, err := config.OpenDB(cfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := models.SeedRanks(db); err != nil {
		t.Fatalf("SeedRanks: %v", err)
	}

	catalog, err := awards.Load()
	if err != nil {
		t.Fatalf("awards.Load: %v", err)
	}
	rewards := NewRewardService(db)
	if err := rewards.SyncCatalog(catalog); err != nil {
		t.Fatalf("SyncCatalog: %v", err)
	}
	rewards.Now = func() time.Time { return tourStart.Add(48 * time.Hour) }

	tour := &models.Tour{Title: "Spring Offensive", DateStart: tourStart}
	if err := db.Create(tour).Error; err != nil {
		t.Fatalf("create tour: %v", err)
	}
	mission := &models.Mission{TourID: tour.ID, Name: "Kuban", DateStart: tourStart.Add(time.Hour)}
	if err := db.Create(mission).Error; err != nil {
		t.Fatalf("create mission: %v", err)
	}

	engine := NewAwardEngine(db, catalog, rewards, NewLocalLocker())
	engine.Now = func() time.Time { return tourStart.Add(72 * time.Hour) }

	return &fixture{db: db, catalog: catalog, rewards: rewards, engine: engine, tour: tour, mission: mission}
}

// player creates a visible pilot of the fixture tour. Rating is derived
// from Score on save.
func (f *fixture) player(t *testing.T, side models.Coalition, edit func(p *models.Player)) *models.Player {
	t.Helper()
	return f.playerIn(t, f.tour, side, edit)
}

func (f *fixture) playerIn(t *testing.T, tour *models.Tour, side models.Coalition, edit func(p *models.Player)) *models.Player {
	t.Helper()
	f.profiles++
	profile := &models.Profile{Nickname: fmt.Sprintf("pilot-%d", f.profiles)}
	if err := f.db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return f.playerOf(t, profile, tour, side, edit)
}

func (f *fixture) playerOf(t *testing.T, profile *models.Profile, tour *models.Tour, side models.Coalition, edit func(p *models.Player)) *models.Player {
	t.Helper()
	p := &models.Player{ProfileID: profile.ID, TourID: tour.ID, CoalPref: side}
	if edit != nil {
		edit(p)
	}
	if err := f.db.Create(p).Error; err != nil {
		t.Fatalf("create player: %v", err)
	}
	return p
}

func (f *fixture) sortie(t *testing.T, p *models.Player, edit func(s *models.Sortie)) *models.Sortie {
	t.Helper()
	s := &models.Sortie{
		ProfileID:   p.ProfileID,
		PlayerID:    p.ID,
		TourID:      p.TourID,
		MissionID:   f.mission.ID,
		Coalition:   p.CoalPref,
		DateStart:   tourStart.Add(2 * time.Hour),
		Status:      models.SortieStatusLanded,
		IsFinalized: true,
	}
	if edit != nil {
		edit(s)
	}
	if err := f.db.Create(s).Error; err != nil {
		t.Fatalf("create sortie: %v", err)
	}
	return s
}

func (f *fixture) grant(t *testing.T, key awards.Key, p *models.Player) {
	t.Helper()
	if _, err := f.rewards.Grant(f.db, key, p.ID); err != nil {
		t.Fatalf("grant %s: %v", key, err)
	}
}

func (f *fixture) holds(t *testing.T, key awards.Key, p *models.Player) bool {
	t.Helper()
	ok, err := f.rewards.IsGranted(f.db, key, p.ID)
	if err != nil {
		t.Fatalf("IsGranted %s: %v", key, err)
	}
	return ok
}

func (f *fixture) holders(t *testing.T, key awards.Key) int {
	t.Helper()
	n, err := f.rewards.TourHolderCount(f.db, key, f.tour)
	if err != nil {
		t.Fatalf("TourHolderCount %s: %v", key, err)
	}
	return n
}
