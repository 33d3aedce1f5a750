package services

import (
	"database/sql"
	"fmt"

	"il2-stats/models"

	"gorm.io/gorm"
)

// generalClasses are the aircraft types a general can be chosen from.
var generalClasses = []string{
	models.ClassAircraftHeavy,
	models.ClassAircraftMedium,
	models.ClassAircraftLight,
}

// RankService assigns officer grades from the rank ladder.
type RankService struct {
	Positions *PositionService
}

func NewRankService(positions *PositionService) *RankService {
	return &RankService{Positions: positions}
}

// CalculateRank returns the highest grade the player qualifies for. Neutral
// players hold no rank.
func (s *RankService) CalculateRank(tx *gorm.DB, p *models.Player) (uint, error) {
	if p.CoalPref == models.CoalitionNeutral {
		return 0, nil
	}
	pos, err := s.Positions.PositionByField(tx, p, FieldRating)
	if err != nil {
		return 0, err
	}
	var id sql.NullInt64
	err = tx.Model(&models.Rank{}).
		Select("MAX(id)").
		Where("min_flight_hours <= ? AND min_rating <= ? AND min_rating_position > ?", p.FlightHours(), p.Rating, pos).
		Row().Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("rank lookup for player %d: %w", p.ID, err)
	}
	if !id.Valid {
		return 0, nil
	}
	rank := uint(id.Int64)
	if rank == models.GeneralRank {
		ok, err := s.IsGeneral(tx, p)
		if err != nil {
			return 0, err
		}
		if !ok {
			rank--
		}
	}
	return rank, nil
}

// IsGeneral reports whether the player is the best rated visible player of
// its coalition among those who mostly fly the same aircraft type and have
// the general's flight hours.
func (s *RankService) IsGeneral(tx *gorm.DB, p *models.Player) (bool, error) {
	fav := p.FavouriteClass()
	if !isGeneralClass(fav) {
		return false, nil
	}
	var general models.Rank
	if err := tx.First(&general, models.GeneralRank).Error; err != nil {
		return false, fmt.Errorf("general rank: %w", err)
	}

	var candidates []models.Player
	err := tx.Model(&models.Player{}).
		Joins("JOIN profiles ON profiles.id = players.profile_id").
		Where("players.tour_id = ? AND players.coal_pref = ?", p.TourID, p.CoalPref).
		Where("players.flight_time >= ? AND profiles.is_hide = ?", int64(general.MinFlightHours*3600), false).
		Order("players.rating DESC, players.id ASC").
		Select("players.id", "players.rating", "players.sorties_cls").
		Find(&candidates).Error
	if err != nil {
		return false, fmt.Errorf("general candidates for player %d: %w", p.ID, err)
	}
	for i := range candidates {
		c := candidates[i].SortiesCls.Data()
		if mostlyFlies(c, fav) {
			return candidates[i].ID == p.ID, nil
		}
	}
	return false, nil
}

func isGeneralClass(cls string) bool {
	for _, c := range generalClasses {
		if c == cls {
			return true
		}
	}
	return false
}

func mostlyFlies(sorties models.ClassCounts, cls string) bool {
	for _, other := range generalClasses {
		if sorties[cls] < sorties[other] {
			return false
		}
	}
	return true
}

// Refresh recalculates the player's rank and stores it when it changed.
func (s *RankService) Refresh(tx *gorm.DB, p *models.Player) error {
	rank, err := s.CalculateRank(tx, p)
	if err != nil {
		return err
	}
	if rank == p.RankID {
		return nil
	}
	if err := tx.Model(p).UpdateColumn("rank_id", rank).Error; err != nil {
		return fmt.Errorf("update rank of player %d: %w", p.ID, err)
	}
	p.RankID = rank
	return nil
}
