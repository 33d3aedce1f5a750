package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"il2-stats/logger"
	"il2-stats/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TourService opens and closes the monthly tours.
type TourService struct {
	DB      *gorm.DB
	Engine  *AwardEngine
	Archive *ArchiveService
}

func NewTourService(db *gorm.DB, engine *AwardEngine, archive *ArchiveService) *TourService {
	return &TourService{DB: db, Engine: engine, Archive: archive}
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CloseTour ends the tour, runs the tour rules a last time and archives the
// standings when storage is configured. Closing is terminal.
func (s *TourService) CloseTour(ctx context.Context, tourID uint) error {
	db := s.DB.WithContext(ctx)
	var tour models.Tour
	if err := db.First(&tour, tourID).Error; err != nil {
		return fmt.Errorf("tour %d: %w", tourID, err)
	}
	if tour.IsEnded {
		return fmt.Errorf("tour %d: %w", tourID, ErrTourClosed)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		// only one closer wins the is_ended flip
		res := tx.Model(&models.Tour{}).
			Where("id = ? AND is_ended = ?", tourID, false).
			UpdateColumn("is_ended", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTourClosed
		}
		if err := tx.First(&tour, tourID).Error; err != nil {
			return err
		}
		return tx.Save(&tour).Error
	})
	if errors.Is(err, ErrTourClosed) {
		return fmt.Errorf("tour %d: %w", tourID, ErrTourClosed)
	}
	if err != nil {
		return fmt.Errorf("close tour %d: %w", tourID, err)
	}
	logger.L().Info("tour closed", zap.Uint("tour_id", tour.ID), zap.String("title", tour.DisplayTitle()))

	if err := s.Engine.EvaluateTour(ctx, tour.ID); err != nil {
		return fmt.Errorf("final evaluation of tour %d: %w", tour.ID, err)
	}
	if s.Archive == nil {
		return nil
	}
	url, err := s.Archive.ArchiveTour(ctx, &tour)
	if err != nil {
		return err
	}
	logger.L().Info("tour archived", zap.Uint("tour_id", tour.ID), zap.String("url", url))
	return nil
}

// OpenTours lists the tours that are not ended, oldest first.
func (s *TourService) OpenTours(ctx context.Context) ([]models.Tour, error) {
	var tours []models.Tour
	if err := s.DB.WithContext(ctx).Where("is_ended = ?", false).Order("id").Find(&tours).Error; err != nil {
		return nil, fmt.Errorf("open tours: %w", err)
	}
	return tours, nil
}

// CurrentTour is the latest open tour.
func (s *TourService) CurrentTour(ctx context.Context) (*models.Tour, error) {
	var tour models.Tour
	if err := s.DB.WithContext(ctx).Where("is_ended = ?", false).Order("id DESC").First(&tour).Error; err != nil {
		return nil, fmt.Errorf("current tour: %w", err)
	}
	return &tour, nil
}

// Previous returns the tour with the highest id below tour, nil for the
// first tour.
func (s *TourService) Previous(ctx context.Context, tour *models.Tour) (*models.Tour, error) {
	var prev models.Tour
	err := s.DB.WithContext(ctx).Where("id < ?", tour.ID).Order("id DESC").First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous tour of %d: %w", tour.ID, err)
	}
	return &prev, nil
}

// OpenTour starts a tour at the beginning of the month of start.
func (s *TourService) OpenTour(ctx context.Context, start time.Time) (*models.Tour, error) {
	tour := models.Tour{DateStart: monthStart(start)}
	if err := s.DB.WithContext(ctx).Create(&tour).Error; err != nil {
		return nil, fmt.Errorf("open tour: %w", err)
	}
	logger.L().Info("tour opened", zap.Uint("tour_id", tour.ID), zap.String("title", tour.DisplayTitle()))
	return &tour, nil
}

// RolloverTours closes the open tours that started before the month of now
// and opens a tour for the current month when none is left open.
func (s *TourService) RolloverTours(ctx context.Context, now time.Time) error {
	open, err := s.OpenTours(ctx)
	if err != nil {
		return err
	}
	month := monthStart(now)
	var errs []error
	remaining := 0
	for _, t := range open {
		if !t.DateStart.Before(month) {
			remaining++
			continue
		}
		if err := s.CloseTour(ctx, t.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if remaining == 0 {
		if _, err := s.OpenTour(ctx, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
