package handlers

import (
	"il2-stats/middleware"
	"il2-stats/services"

	"github.com/gofiber/fiber/v2"
)

// SetupTriggerRoutes exposes the evaluation triggers to the ingestion
// pipeline.
func SetupTriggerRoutes(app *fiber.App, token string, engine *services.AwardEngine, tours *services.TourService) {
	triggers := app.Group("/triggers", middleware.ServiceAuthMiddleware(token))

	triggers.Post("/sorties/:id", func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return badID(c)
		}
		if err := engine.EvaluateSortie(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"status": "evaluated", "sortie_id": id})
	})

	triggers.Post("/missions/:id/close", func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return badID(c)
		}
		if err := engine.EvaluateMission(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"status": "evaluated", "mission_id": id})
	})

	triggers.Post("/tours/:id/close", func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return badID(c)
		}
		if err := tours.CloseTour(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"status": "closed", "tour_id": id})
	})

	triggers.Post("/tours/:id/evaluate", func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return badID(c)
		}
		if err := engine.EvaluateTour(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"status": "evaluated", "tour_id": id})
	})
}
