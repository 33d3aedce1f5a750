package services

import (
	"errors"
	"testing"

	"il2-stats/models"

	"gorm.io/datatypes"
)

func withScore(score int64) func(p *models.Player) {
	return func(p *models.Player) { p.Score = score }
}

func TestPositionByRatingBreaksTiesById(t *testing.T) {
	f := newFixture(t)
	pos := NewPositionService()
	first := f.player(t, models.CoalitionAllies, withScore(100))
	tied := f.player(t, models.CoalitionAllies, withScore(100))
	best := f.player(t, models.CoalitionAllies, withScore(300))
	f.player(t, models.CoalitionAxis, withScore(1000))

	cases := []struct {
		p    *models.Player
		want int
	}{{best, 1}, {first, 2}, {tied, 3}}
	for _, c := range cases {
		got, err := pos.PositionByField(f.db, c.p, FieldRating)
		if err != nil {
			t.Fatalf("PositionByField: %v", err)
		}
		if got != c.want {
			t.Fatalf("player %d position=%d want=%d", c.p.ID, got, c.want)
		}
	}
}

func TestPositionUnknownField(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAllies, nil)
	_, err := NewPositionService().PositionByField(f.db, p, Field("sorties_cls"))
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err=%v want=%v", err, ErrUnknownField)
	}
	sq := &models.Squad{TourID: f.tour.ID, Tag: "RED"}
	_, err = NewPositionService().SquadPosition(f.db, sq, FieldStreakCurrent)
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("squad err=%v want=%v", err, ErrUnknownField)
	}
}

func TestIsTopStreakCountsEveryTie(t *testing.T) {
	f := newFixture(t)
	pos := NewPositionService()
	streak := func(n int) func(p *models.Player) {
		return func(p *models.Player) { p.StreakCurrent = n }
	}
	a := f.player(t, models.CoalitionAllies, streak(12))
	b := f.player(t, models.CoalitionAllies, streak(12))
	c := f.player(t, models.CoalitionAllies, streak(4))
	axis := f.player(t, models.CoalitionAxis, streak(2))

	for _, tc := range []struct {
		p    *models.Player
		want bool
	}{{a, true}, {b, true}, {c, false}, {axis, true}} {
		got, err := pos.IsTopStreak(f.db, tc.p)
		if err != nil {
			t.Fatalf("IsTopStreak: %v", err)
		}
		if got != tc.want {
			t.Fatalf("player %d top=%v want=%v", tc.p.ID, got, tc.want)
		}
	}

	ground, err := pos.IsTopGroundStreak(f.db, c)
	if err != nil || !ground {
		t.Fatalf("all-zero ground streaks: top=%v err=%v want=true", ground, err)
	}
}

func TestSquadPositionIsTourWide(t *testing.T) {
	f := newFixture(t)
	pos := NewPositionService()
	low := &models.Squad{TourID: f.tour.ID, Tag: "LOW", Rating: 10}
	high := &models.Squad{TourID: f.tour.ID, Tag: "HIGH", Rating: 90}
	for _, sq := range []*models.Squad{low, high} {
		if err := f.db.Create(sq).Error; err != nil {
			t.Fatalf("create squad: %v", err)
		}
	}
	got, err := pos.SquadPosition(f.db, low, FieldRating)
	if err != nil || got != 2 {
		t.Fatalf("low position=%d err=%v want=2", got, err)
	}
	got, _ = pos.SquadPosition(f.db, high, FieldRating)
	if got != 1 {
		t.Fatalf("high position=%d want=1", got)
	}
}

func TestCalculateRank(t *testing.T) {
	f := newFixture(t)
	ranks := NewRankService(NewPositionService())

	officer := f.player(t, models.CoalitionAllies, func(p *models.Player) {
		p.FlightTime = 16 * 3600
		p.Score = 250
	})
	if officer.Rating != 976 {
		t.Fatalf("rating=%d want=976", officer.Rating)
	}
	got, err := ranks.CalculateRank(f.db, officer)
	if err != nil {
		t.Fatalf("CalculateRank: %v", err)
	}
	if got != 5 {
		t.Fatalf("rank=%d want=5", got)
	}

	neutral := f.player(t, models.CoalitionNeutral, func(p *models.Player) {
		p.FlightTime = 16 * 3600
		p.Score = 250
	})
	if got, _ := ranks.CalculateRank(f.db, neutral); got != 0 {
		t.Fatalf("neutral rank=%d want=0", got)
	}

	if err := ranks.Refresh(f.db, officer); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var stored models.Player
	f.db.First(&stored, officer.ID)
	if stored.RankID != 5 {
		t.Fatalf("stored rank=%d want=5", stored.RankID)
	}
}

func TestOnlyBestBomberBecomesGeneral(t *testing.T) {
	f := newFixture(t)
	ranks := NewRankService(NewPositionService())
	bomber := func(score int64) func(p *models.Player) {
		return func(p *models.Player) {
			p.FlightTime = 130 * 3600
			p.Score = score
			p.SortiesCls = datatypes.NewJSONType(models.ClassCounts{models.ClassAircraftHeavy: 10})
		}
	}
	best := f.player(t, models.CoalitionAxis, bomber(2000))
	second := f.player(t, models.CoalitionAxis, bomber(1500))

	got, err := ranks.CalculateRank(f.db, best)
	if err != nil {
		t.Fatalf("CalculateRank: %v", err)
	}
	if got != models.GeneralRank {
		t.Fatalf("best rank=%d want=%d", got, models.GeneralRank)
	}
	got, _ = ranks.CalculateRank(f.db, second)
	if got != models.GeneralRank-1 {
		t.Fatalf("second rank=%d want=%d", got, models.GeneralRank-1)
	}
}
