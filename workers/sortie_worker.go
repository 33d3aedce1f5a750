package workers

import (
	"context"
	"errors"
	"time"

	"il2-stats/logger"
	"il2-stats/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SortieEvaluator runs the award rules for one finalized sortie.
type SortieEvaluator interface {
	EvaluateSortie(ctx context.Context, sortieID uint) error
}

// PendingSorties returns up to limit finalized sorties with an id above
// after that were never evaluated, oldest first.
func PendingSorties(db *gorm.DB, after uint, limit int) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Sortie{}).
		Where("is_finalized = ? AND awards_evaluated_at IS NULL AND id > ?", true, after).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// DrainSorties evaluates pending sorties until batch of them succeeded or
// the queue is exhausted, and returns how many succeeded. A failing sortie
// is logged and paged past, so it cannot hold back newer ones; it is
// retried on the next tick.
func DrainSorties(ctx context.Context, db *gorm.DB, engine SortieEvaluator, batch int) (int, error) {
	done := 0
	var after uint
	for done < batch {
		ids, err := PendingSorties(db, after, batch-done)
		if err != nil {
			return done, err
		}
		if len(ids) == 0 {
			return done, nil
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return done, err
			}
			after = id
			if err := engine.EvaluateSortie(ctx, id); err != nil {
				logger.L().Warn("sortie evaluation failed", zap.Uint("sortie_id", id), zap.Error(err))
				continue
			}
			done++
		}
	}
	return done, nil
}

// PollSorties drains pending sorties every interval until ctx is done. It
// covers triggers that were lost while the service was down.
func PollSorties(ctx context.Context, db *gorm.DB, engine SortieEvaluator, interval time.Duration, batch int) {
	log := logger.L().With(zap.String("worker", "sorties"))
	log.Info("starting sortie polling", zap.Duration("interval", interval), zap.Int("batch", batch))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sortie polling stopped")
			return
		case <-ticker.C:
			n, err := DrainSorties(ctx, db, engine, batch)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("failed to drain pending sorties", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("evaluated pending sorties", zap.Int("count", n))
			}
		}
	}
}
