package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"il2-stats/logger"
	"il2-stats/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const streamInterval = 2 * time.Second

type rewardEvent struct {
	Award string    `json:"award"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// rewardSnapshot maps reward id to award code.
type rewardSnapshot map[string]string

func snapshotOf(rewards []models.Reward) rewardSnapshot {
	snap := make(rewardSnapshot, len(rewards))
	for _, r := range rewards {
		if r.Award != nil {
			snap[r.ID] = r.Award.Code
		}
	}
	return snap
}

// StreamPlayerRewardsSSE streams the player's new rewards as server-sent
// events. A tier transfer keeps the reward id, so it is reported when the
// award under an id changes.
func (s *RewardService) StreamPlayerRewardsSSE(c *fiber.Ctx) error {
	playerID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid player id"})
	}
	pid := uint(playerID)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// The fiber.Ctx is recycled once the handler returns; the stream
	// writer only keeps the underlying request context.
	reqCtx := c.Context()
	reqCtx.SetBodyStreamWriter(func(w *bufio.Writer) {
		s.streamRewards(reqCtx.Done(), w, pid, streamInterval)
	})
	return nil
}

// streamRewards writes reward events for pid to w every interval until done
// is closed or the client goes away.
func (s *RewardService) streamRewards(done <-chan struct{}, w *bufio.Writer, pid uint, interval time.Duration) {
	log := logger.L().With(zap.Uint("player_id", pid))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seen rewardSnapshot
	if current, err := s.PlayerRewards(pid); err == nil {
		seen = snapshotOf(current)
	} else {
		log.Warn("reward stream init failed", zap.Error(err))
		seen = rewardSnapshot{}
	}

	w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			current, err := s.PlayerRewards(pid)
			if err != nil {
				log.Warn("reward stream query failed", zap.Error(err))
				continue
			}
			for _, r := range current {
				if r.Award == nil || seen[r.ID] == r.Award.Code {
					continue
				}
				payload, _ := json.Marshal(rewardEvent{Award: r.Award.Code, Title: r.Award.Title, Date: r.Date})
				fmt.Fprintf(w, "event: reward\ndata: %s\n\n", payload)
			}
			seen = snapshotOf(current)

			if err := w.Flush(); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
