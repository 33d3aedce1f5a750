package handlers

import (
	"time"

	"il2-stats/middleware"
	"il2-stats/services"

	"github.com/gofiber/fiber/v2"
)

type playerReward struct {
	Award string    `json:"award"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// SetupRewardRoutes exposes the catalog and the rewards of a player.
func SetupRewardRoutes(app *fiber.App, token string, rewards *services.RewardService) {
	auth := middleware.ServiceAuthMiddleware(token)

	app.Get("/awards", auth, func(c *fiber.Ctx) error {
		list, err := rewards.Awards()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	players := app.Group("/players")

	players.Get("/:id/rewards", auth, func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return badID(c)
		}
		list, err := rewards.PlayerRewards(id)
		if err != nil {
			return respondError(c, err)
		}
		out := make([]playerReward, 0, len(list))
		for _, r := range list {
			if r.Award == nil {
				continue
			}
			out = append(out, playerReward{Award: r.Award.Code, Title: r.Award.Title, Date: r.Date})
		}
		return c.JSON(out)
	})

	players.Get("/:id/rewards/stream", middleware.StreamAuthMiddleware(token), rewards.StreamPlayerRewardsSSE)
}
