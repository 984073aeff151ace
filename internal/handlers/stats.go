package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rmoreira/politicos/internal/service"
	"github.com/rmoreira/politicos/internal/store"
)

// CategoriesHandler returns per-category spending for a year
func CategoriesHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("ano", time.Now().Year())

		categories, err := stats.SpendingByCategory(c.Context(), year, c.Query("casa"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load categories")
		}

		out := make([]fiber.Map, 0, len(categories))
		for _, cat := range categories {
			out = append(out, fiber.Map{
				"categoria":  cat.Category,
				"total":      centsToValue(cat.TotalCents),
				"quantidade": cat.Count,
			})
		}

		return c.JSON(fiber.Map{"ano": year, "data": out})
	}
}

// MonthlyHandler returns per-month spending for a year
func MonthlyHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("ano", time.Now().Year())

		monthly, err := stats.MonthlySpending(c.Context(), year, "")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load monthly spending")
		}

		out := make([]fiber.Map, 0, len(monthly))
		for _, m := range monthly {
			out = append(out, fiber.Map{
				"ano":        m.Year,
				"mes":        m.Month,
				"total":      centsToValue(m.TotalCents),
				"quantidade": m.Count,
			})
		}

		return c.JSON(fiber.Map{"ano": year, "data": out})
	}
}

// RankingHandler returns legislators ranked by spending for a year
func RankingHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("ano", time.Now().Year())

		filters := store.RankingFilters{
			Source:    c.Query("casa"),
			Region:    c.Query("uf"),
			Limit:     clampLimit(c.QueryInt("limit", 20), 20),
			Ascending: c.Query("ordem") == "ASC",
		}

		entries, err := stats.Ranking(c.Context(), year, filters)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load ranking")
		}

		out := make([]fiber.Map, 0, len(entries))
		for i, e := range entries {
			out = append(out, fiber.Map{
				"posicao": i + 1,
				"parlamentar": fiber.Map{
					"id":       e.LegislatorID,
					"nome":     e.Name,
					"casa":     e.Source,
					"uf":       nullableString(e.Region),
					"partido":  nullableString(e.Party),
					"foto_url": nullableString(e.PhotoURL),
				},
				"total_gasto":    centsToValue(e.TotalCents),
				"total_despesas": e.ExpenseCount,
			})
		}

		return c.JSON(fiber.Map{"ano": year, "data": out})
	}
}

// OverviewHandler returns the system-wide totals
func OverviewHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		overview, err := stats.GetOverview(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load statistics")
		}

		return c.JSON(fiber.Map{
			"total_parlamentares": overview.Legislators,
			"total_despesas":      overview.Expenses,
			"total_partidos":      overview.Parties,
			"total_gasto":         centsToValue(overview.TotalCents),
		})
	}
}
