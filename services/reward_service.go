package services

import (
	"fmt"
	"sync"
	"time"

	"il2-stats/awards"
	"il2-stats/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardService owns the Reward rows. Every mutation takes the caller's
// transaction so that a pass commits or rolls back as a whole.
type RewardService struct {
	DB  *gorm.DB
	Now func() time.Time

	mu  sync.RWMutex
	ids map[awards.Key]uint
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{
		DB:  db,
		Now: func() time.Time { return time.Now().UTC() },
		ids: map[awards.Key]uint{},
	}
}

// SyncCatalog upserts one Award row per catalog entry and caches the ids.
func (s *RewardService) SyncCatalog(c *awards.Catalog) error {
	rows := make([]models.Award, 0, len(c.All()))
	for _, r := range c.All() {
		rows = append(rows, models.Award{
			Code:        string(r.Key),
			Title:       r.Title,
			Scope:       string(r.Scope),
			SortOrder:   r.Order,
			Retired:     r.Retired,
			Description: r.Description,
			ImageKey:    r.ImageKey(),
		})
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "scope", "sort_order", "retired", "description", "image_key", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to sync award catalog: %w", err)
	}

	var stored []models.Award
	if err := s.DB.Find(&stored).Error; err != nil {
		return fmt.Errorf("failed to load awards: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[awards.Key]uint, len(stored))
	for _, a := range stored {
		s.ids[awards.Key(a.Code)] = a.ID
	}
	return nil
}

func (s *RewardService) awardID(key awards.Key) (uint, error) {
	s.mu.RLock()
	id, ok := s.ids[key]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("award %s not synced: %w", key, awards.ErrUnknownAward)
	}
	return id, nil
}

func (s *RewardService) find(tx *gorm.DB, key awards.Key, playerID uint) (*models.Reward, error) {
	id, err := s.awardID(key)
	if err != nil {
		return nil, err
	}
	var r models.Reward
	res := tx.Where("award_id = ? AND player_id = ?", id, playerID).Limit(1).Find(&r)
	if res.Error != nil {
		return nil, fmt.Errorf("lookup %s for player %d: %w", key, playerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &r, nil
}

// Grant inserts the reward unless the player already holds it and reports
// whether a row was written.
func (s *RewardService) Grant(tx *gorm.DB, key awards.Key, playerID uint) (bool, error) {
	id, err := s.awardID(key)
	if err != nil {
		return false, err
	}
	r := models.Reward{AwardID: id, PlayerID: playerID, Date: s.Now()}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "award_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(&r)
	if res.Error != nil {
		return false, fmt.Errorf("grant %s to player %d: %w", key, playerID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Revoke deletes the reward and reports whether one existed.
func (s *RewardService) Revoke(tx *gorm.DB, key awards.Key, playerID uint) (bool, error) {
	id, err := s.awardID(key)
	if err != nil {
		return false, err
	}
	res := tx.Where("award_id = ? AND player_id = ?", id, playerID).Delete(&models.Reward{})
	if res.Error != nil {
		return false, fmt.Errorf("revoke %s from player %d: %w", key, playerID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Transfer rewrites the player's from reward into to, keeping its date. It
// reports false when there was no from reward to move. A player already
// holding to just loses from.
func (s *RewardService) Transfer(tx *gorm.DB, from, to awards.Key, playerID uint) (bool, error) {
	fromID, err := s.awardID(from)
	if err != nil {
		return false, err
	}
	toID, err := s.awardID(to)
	if err != nil {
		return false, err
	}
	held, err := s.IsGranted(tx, to, playerID)
	if err != nil {
		return false, err
	}
	if held {
		_, err := s.Revoke(tx, from, playerID)
		return false, err
	}
	res := tx.Model(&models.Reward{}).
		Where("award_id = ? AND player_id = ?", fromID, playerID).
		Update("award_id", toID)
	if res.Error != nil {
		return false, fmt.Errorf("transfer %s to %s for player %d: %w", from, to, playerID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Demote replaces key with the lower tier, or drops key when the player
// already holds the lower tier.
func (s *RewardService) Demote(tx *gorm.DB, key, lower awards.Key, playerID uint) error {
	_, err := s.Transfer(tx, key, lower, playerID)
	return err
}

func (s *RewardService) IsGranted(tx *gorm.DB, key awards.Key, playerID uint) (bool, error) {
	r, err := s.find(tx, key, playerID)
	return r != nil, err
}

// GrantedAt returns the grant date; ok is false when the player does not
// hold the award.
func (s *RewardService) GrantedAt(tx *gorm.DB, key awards.Key, playerID uint) (time.Time, bool, error) {
	r, err := s.find(tx, key, playerID)
	if err != nil || r == nil {
		return time.Time{}, false, err
	}
	return r.Date, true, nil
}

// tourHolders selects the rewards of key held by players of the tour and
// granted since it started.
func (s *RewardService) tourHolders(tx *gorm.DB, key awards.Key, tour *models.Tour) (*gorm.DB, error) {
	id, err := s.awardID(key)
	if err != nil {
		return nil, err
	}
	return tx.Model(&models.Reward{}).
		Joins("JOIN players ON players.id = rewards.player_id").
		Where("rewards.award_id = ? AND players.tour_id = ? AND rewards.date >= ?", id, tour.ID, tour.DateStart), nil
}

// TourHolders returns the ids of the players holding key in the tour.
func (s *RewardService) TourHolders(tx *gorm.DB, key awards.Key, tour *models.Tour) ([]uint, error) {
	q, err := s.tourHolders(tx, key, tour)
	if err != nil {
		return nil, err
	}
	var ids []uint
	if err := q.Order("rewards.player_id").Pluck("rewards.player_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("holders of %s in tour %d: %w", key, tour.ID, err)
	}
	return ids, nil
}

func (s *RewardService) TourHolderCount(tx *gorm.DB, key awards.Key, tour *models.Tour) (int, error) {
	q, err := s.tourHolders(tx, key, tour)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count holders of %s in tour %d: %w", key, tour.ID, err)
	}
	return int(n), nil
}

// ClearTour strips key from every tour holder, demoting them to fallback
// when it is set. It returns the affected player ids.
func (s *RewardService) ClearTour(tx *gorm.DB, key awards.Key, tour *models.Tour, fallback awards.Key) ([]uint, error) {
	holders, err := s.TourHolders(tx, key, tour)
	if err != nil {
		return nil, err
	}
	for _, pid := range holders {
		if fallback != "" {
			err = s.Demote(tx, key, fallback, pid)
		} else {
			_, err = s.Revoke(tx, key, pid)
		}
		if err != nil {
			return nil, err
		}
	}
	return holders, nil
}

// Migration describes a one-per-tour award changing hands.
type Migration struct {
	// Clear lists the keys stripped from their tour holders; empty means
	// just the migrating award.
	Clear []awards.Key
	// Fallback is the tier stripped holders keep, if any.
	Fallback awards.Key
	// From is the lower tier the new holder is promoted from, keeping its date.
	From awards.Key
	// Take hands the award to the player once the holders are cleared.
	Take bool
}

// MigrateSingleton strips the tour holders of m.Clear and, when m.Take is
// set, leaves playerID as the holder of key. A player already holding key
// keeps it with its date. Callers hold the critical section of every key
// touched for the tour.
func (s *RewardService) MigrateSingleton(tx *gorm.DB, key awards.Key, tour *models.Tour, playerID uint, m Migration) error {
	keys := m.Clear
	if len(keys) == 0 {
		keys = []awards.Key{key}
	}
	for _, k := range keys {
		holders, err := s.TourHolders(tx, k, tour)
		if err != nil {
			return err
		}
		for _, pid := range holders {
			if m.Take && k == key && pid == playerID {
				continue
			}
			if m.Fallback != "" {
				err = s.Demote(tx, k, m.Fallback, pid)
			} else {
				_, err = s.Revoke(tx, k, pid)
			}
			if err != nil {
				return err
			}
		}
	}
	if !m.Take {
		return nil
	}
	if m.From != "" {
		moved, err := s.Transfer(tx, m.From, key, playerID)
		if err != nil || moved {
			return err
		}
	}
	_, err := s.Grant(tx, key, playerID)
	return err
}

// GrantSquad grants key to every pilot of the squad and returns how many
// rewards were written.
func (s *RewardService) GrantSquad(tx *gorm.DB, key awards.Key, squadID uint) (int, error) {
	var pilots []uint
	err := tx.Model(&models.Player{}).
		Where("squad_id = ? AND type = ?", squadID, models.PlayerTypePilot).
		Order("id").
		Pluck("id", &pilots).Error
	if err != nil {
		return 0, fmt.Errorf("pilots of squad %d: %w", squadID, err)
	}
	granted := 0
	for _, pid := range pilots {
		ok, err := s.Grant(tx, key, pid)
		if err != nil {
			return granted, err
		}
		if ok {
			granted++
		}
	}
	return granted, nil
}

// PlayerRewards lists the player's rewards with their award, oldest first.
func (s *RewardService) PlayerRewards(playerID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.DB.Preload("Award").
		Where("player_id = ?", playerID).
		Order("date ASC").
		Find(&rewards).Error
	if err != nil {
		return nil, fmt.Errorf("rewards of player %d: %w", playerID, err)
	}
	return rewards, nil
}

// Awards lists the synced catalog in catalog order.
func (s *RewardService) Awards() ([]models.Award, error) {
	var list []models.Award
	if err := s.DB.Order("sort_order").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	return list, nil
}
