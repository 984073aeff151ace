// Package handlers contains the fiber HTTP handlers. They stay thin: query
// parsing and JSON shaping only, with the work done by the stores and the
// stats service.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rmoreira/politicos/internal/service"
)

type partyJSON struct {
	ID   int64   `json:"id"`
	Code string  `json:"sigla"`
	Name *string `json:"nome"`
}

// PartiesHandler lists all parties
func PartiesHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parties, err := stats.ListParties(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load parties")
		}

		out := make([]partyJSON, 0, len(parties))
		for _, p := range parties {
			out = append(out, partyJSON{
				ID:   p.ID,
				Code: p.Code,
				Name: nullableString(p.Name),
			})
		}

		return c.JSON(fiber.Map{"data": out, "total": len(out)})
	}
}
