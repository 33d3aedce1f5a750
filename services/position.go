package services

import (
	"database/sql"
	"fmt"

	"il2-stats/models"

	"gorm.io/gorm"
)

// Field is a player or squad column that can be ranked on.
type Field string

const (
	FieldStreakCurrent       Field = "streak_current"
	FieldStreakGroundCurrent Field = "streak_ground_current"
	FieldRating              Field = "rating"
	FieldScore               Field = "score"
	FieldAkTotal             Field = "ak_total"
	FieldGkTotal             Field = "gk_total"
	FieldRankID              Field = "rank_id"
)

func (f Field) playerValue(p *models.Player) (int64, error) {
	switch f {
	case FieldStreakCurrent:
		return int64(p.StreakCurrent), nil
	case FieldStreakGroundCurrent:
		return int64(p.StreakGroundCurrent), nil
	case FieldRating:
		return p.Rating, nil
	case FieldScore:
		return p.Score, nil
	case FieldAkTotal:
		return int64(p.AkTotal), nil
	case FieldGkTotal:
		return int64(p.GkTotal), nil
	case FieldRankID:
		return int64(p.RankID), nil
	}
	return 0, fmt.Errorf("%q: %w", f, ErrUnknownField)
}

// squads carry no streaks or rank
func (f Field) squadValue(s *models.Squad) (int64, error) {
	switch f {
	case FieldRating:
		return s.Rating, nil
	case FieldScore:
		return s.Score, nil
	case FieldAkTotal:
		return int64(s.AkTotal), nil
	case FieldGkTotal:
		return int64(s.GkTotal), nil
	}
	return 0, fmt.Errorf("squad %q: %w", f, ErrUnknownField)
}

// PositionService ranks players and squads within their tour.
type PositionService struct{}

func NewPositionService() *PositionService {
	return &PositionService{}
}

// peers restricts a player query to the same tour, type and coalition.
func peers(tx *gorm.DB, p *models.Player) *gorm.DB {
	return tx.Model(&models.Player{}).
		Where("tour_id = ? AND type = ? AND coal_pref = ?", p.TourID, p.Type, p.CoalPref)
}

// PositionByField returns the 1-based position of the player ordered by
// field descending; equal values keep insertion order.
func (s *PositionService) PositionByField(tx *gorm.DB, p *models.Player, f Field) (int, error) {
	v, err := f.playerValue(p)
	if err != nil {
		return 0, err
	}
	col := string(f)
	var ahead int64
	err = peers(tx, p).
		Where("("+col+" > ? OR ("+col+" = ? AND id < ?))", v, v, p.ID).
		Count(&ahead).Error
	if err != nil {
		return 0, fmt.Errorf("player %d position by %s: %w", p.ID, f, err)
	}
	return int(ahead) + 1, nil
}

// SquadPosition ranks the squad among every squad of its tour.
func (s *PositionService) SquadPosition(tx *gorm.DB, sq *models.Squad, f Field) (int, error) {
	v, err := f.squadValue(sq)
	if err != nil {
		return 0, err
	}
	col := string(f)
	var ahead int64
	err = tx.Model(&models.Squad{}).
		Where("tour_id = ?", sq.TourID).
		Where("("+col+" > ? OR ("+col+" = ? AND id < ?))", v, v, sq.ID).
		Count(&ahead).Error
	if err != nil {
		return 0, fmt.Errorf("squad %d position by %s: %w", sq.ID, f, err)
	}
	return int(ahead) + 1, nil
}

// IsTop reports whether the player's value equals the best of its tour and
// coalition. Every tied player is top.
func (s *PositionService) IsTop(tx *gorm.DB, p *models.Player, f Field) (bool, error) {
	v, err := f.playerValue(p)
	if err != nil {
		return false, err
	}
	var best sql.NullInt64
	err = tx.Model(&models.Player{}).
		Select("MAX("+string(f)+")").
		Where("tour_id = ? AND coal_pref = ?", p.TourID, p.CoalPref).
		Row().Scan(&best)
	if err != nil {
		return false, fmt.Errorf("player %d top %s: %w", p.ID, f, err)
	}
	return best.Valid && best.Int64 == v, nil
}

func (s *PositionService) IsTopStreak(tx *gorm.DB, p *models.Player) (bool, error) {
	return s.IsTop(tx, p, FieldStreakCurrent)
}

func (s *PositionService) IsTopGroundStreak(tx *gorm.DB, p *models.Player) (bool, error) {
	return s.IsTop(tx, p, FieldStreakGroundCurrent)
}
