package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rmoreira/politicos/internal/service"
	"github.com/rmoreira/politicos/internal/store"
)

type legislatorJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"nome"`
	Source   string  `json:"casa"`
	Region   *string `json:"uf"`
	Party    *string `json:"partido"`
	PhotoURL *string `json:"foto_url"`
}

// LegislatorsHandler lists legislators with optional filters
func LegislatorsHandler(legislators *store.LegislatorStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters := store.LegislatorFilters{
			Name:   c.Query("nome"),
			Source: c.Query("casa"),
			Region: c.Query("uf"),
			Party:  c.Query("partido"),
			Limit:  clampLimit(c.QueryInt("limit", 20), 20),
			Offset: c.QueryInt("offset", 0),
		}

		results, total, err := legislators.List(c.Context(), filters)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load legislators")
		}

		out := make([]legislatorJSON, 0, len(results))
		for _, l := range results {
			out = append(out, legislatorJSON{
				ID:       l.ID,
				Name:     l.Name,
				Source:   l.Source,
				Region:   nullableString(l.Region),
				Party:    nullableString(l.Party),
				PhotoURL: nullableString(l.PhotoURL),
			})
		}

		return c.JSON(fiber.Map{"data": out, "total": total})
	}
}

// LegislatorDetailHandler returns one legislator with expense totals
func LegislatorDetailHandler(legislators *store.LegislatorStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		detail, err := legislators.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load legislator")
		}
		if detail == nil {
			return fiber.NewError(fiber.StatusNotFound, "legislator not found")
		}

		return c.JSON(fiber.Map{
			"id":             detail.ID,
			"nome":           detail.Name,
			"nome_civil":     nullableString(detail.CivilName),
			"casa":           detail.Source,
			"uf":             nullableString(detail.Region),
			"partido":        nullableString(detail.Party),
			"foto_url":       nullableString(detail.PhotoURL),
			"email":          nullableString(detail.Email),
			"total_despesas": detail.ExpenseCount,
			"total_gasto":    centsToValue(detail.TotalCents),
		})
	}
}

// LegislatorExpensesHandler lists one legislator's expenses
func LegislatorExpensesHandler(expenses *store.ExpenseStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters := store.ExpenseFilters{
			Year:     c.QueryInt("ano", 0),
			Month:    c.QueryInt("mes", 0),
			Category: c.Query("categoria"),
			Limit:    clampLimit(c.QueryInt("limit", 100), 100),
			Offset:   c.QueryInt("offset", 0),
		}

		results, total, err := expenses.ListByLegislator(c.Context(), c.Params("id"), filters)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load expenses")
		}

		out := make([]fiber.Map, 0, len(results))
		for _, e := range results {
			out = append(out, fiber.Map{
				"id":                   e.ID,
				"parlamentar_id":       e.LegislatorID,
				"ano":                  e.Year,
				"mes":                  e.Month,
				"data":                 nullableString(e.Date),
				"categoria":            e.Category,
				"valor":                centsToValue(e.AmountCents),
				"fornecedor_nome":      nullableString(e.SupplierName),
				"fornecedor_documento": nullableString(e.SupplierDocument),
			})
		}

		return c.JSON(fiber.Map{"data": out, "total": total})
	}
}

// LegislatorStatsHandler returns a legislator's monthly spending for a year
func LegislatorStatsHandler(stats *service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("ano", time.Now().Year())

		monthly, err := stats.MonthlySpending(c.Context(), year, c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load stats")
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

		return c.JSON(fiber.Map{"ano": year, "mensal": out})
	}
}
