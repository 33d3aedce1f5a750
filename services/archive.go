package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"il2-stats/models"

	"github.com/gosimple/slug"
	"github.com/klauspost/compress/zstd"
	"gorm.io/gorm"
)

// ObjectStore uploads one object and returns its public URL.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type archivedReward struct {
	Award string    `json:"award"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

type archivedPlayer struct {
	ID        uint              `json:"id"`
	ProfileID uint              `json:"profile_id"`
	Nickname  string            `json:"nickname"`
	Type      models.PlayerType `json:"type"`
	CoalPref  models.Coalition  `json:"coal_pref"`
	RankID    uint              `json:"rank_id"`
	Rating    int64             `json:"rating"`
	Score     int64             `json:"score"`
	AkTotal   int               `json:"ak_total"`
	GkTotal   int               `json:"gk_total"`
	Rewards   []archivedReward  `json:"rewards"`
}

// TourArchive is the final standings of a closed tour.
type TourArchive struct {
	ID               uint              `json:"id"`
	Title            string            `json:"title"`
	DateStart        time.Time         `json:"date_start"`
	DateEnd          *time.Time        `json:"date_end,omitempty"`
	WinningCoalition *models.Coalition `json:"winning_coalition,omitempty"`
	Players          []archivedPlayer  `json:"players"`
}

type ArchiveService struct {
	DB    *gorm.DB
	Store ObjectStore
}

func NewArchiveService(db *gorm.DB, store ObjectStore) *ArchiveService {
	return &ArchiveService{DB: db, Store: store}
}

// ArchiveKey is the object key of a tour archive.
func ArchiveKey(tour *models.Tour) string {
	return fmt.Sprintf("tours/%d-%s/rewards.json.zst", tour.ID, slug.Make(tour.DisplayTitle()))
}

// Build collects the tour's players by rating with their rewards.
func (s *ArchiveService) Build(ctx context.Context, tour *models.Tour) (*TourArchive, error) {
	db := s.DB.WithContext(ctx)
	var players []models.Player
	err := db.Preload("Profile").
		Where("tour_id = ?", tour.ID).
		Order("rating DESC, id ASC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("players of tour %d: %w", tour.ID, err)
	}

	byPlayer := map[uint][]archivedReward{}
	if len(players) > 0 {
		ids := make([]uint, len(players))
		for i, p := range players {
			ids[i] = p.ID
		}
		var rewards []models.Reward
		err := db.Preload("Award").
			Where("player_id IN ?", ids).
			Order("date ASC").
			Find(&rewards).Error
		if err != nil {
			return nil, fmt.Errorf("rewards of tour %d: %w", tour.ID, err)
		}
		for _, r := range rewards {
			if r.Award == nil {
				continue
			}
			byPlayer[r.PlayerID] = append(byPlayer[r.PlayerID], archivedReward{Award: r.Award.Code, Title: r.Award.Title, Date: r.Date})
		}
	}

	out := &TourArchive{
		ID:               tour.ID,
		Title:            tour.DisplayTitle(),
		DateStart:        tour.DateStart,
		DateEnd:          tour.DateEnd,
		WinningCoalition: tour.WinningCoalition,
		Players:          make([]archivedPlayer, 0, len(players)),
	}
	for _, p := range players {
		ap := archivedPlayer{
			ID:        p.ID,
			ProfileID: p.ProfileID,
			Type:      p.Type,
			CoalPref:  p.CoalPref,
			RankID:    p.RankID,
			Rating:    p.Rating,
			Score:     p.Score,
			AkTotal:   p.AkTotal,
			GkTotal:   p.GkTotal,
			Rewards:   byPlayer[p.ID],
		}
		if p.Profile != nil {
			ap.Nickname = p.Profile.Nickname
		}
		out.Players = append(out.Players, ap)
	}
	return out, nil
}

// ArchiveTour uploads the zstd compressed JSON archive and returns its URL.
func (s *ArchiveService) ArchiveTour(ctx context.Context, tour *models.Tour) (string, error) {
	archive, err := s.Build(ctx, tour)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(archive)
	if err != nil {
		return "", fmt.Errorf("encode tour %d archive: %w", tour.ID, err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", err
	}
	defer enc.Close()
	body := enc.EncodeAll(raw, nil)

	url, err := s.Store.PutObject(ctx, ArchiveKey(tour), body, "application/zstd")
	if err != nil {
		return "", fmt.Errorf("upload tour %d archive: %w", tour.ID, err)
	}
	return url, nil
}
