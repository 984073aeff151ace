// Package service fronts the expensive aggregate queries with TTL caches.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rmoreira/politicos/internal/cache"
	"github.com/rmoreira/politicos/internal/model"
	"github.com/rmoreira/politicos/internal/store"
)

// Cache TTLs per logical purpose. Parties rarely change; aggregates are
// recomputed every couple of minutes.
const (
	partiesTTL = 30 * time.Minute
	statsTTL   = 2 * time.Minute

	sweepInterval = time.Minute

	partiesCacheKey = "partidos:all"
)

// Caches owns the process-wide cache instances, one per logical purpose.
// They are constructed explicitly and must be destroyed during shutdown.
type Caches struct {
	Parties    *cache.Cache[[]model.Party]
	Categories *cache.Cache[[]store.CategorySpending]
	Monthly    *cache.Cache[[]store.MonthlySpending]
	Ranking    *cache.Cache[[]store.RankingEntry]
	Overview   *cache.Cache[store.Overview]
}

// NewCaches creates all cache instances
func NewCaches() *Caches {
	return &Caches{
		Parties:    cache.New[[]model.Party](partiesTTL, sweepInterval),
		Categories: cache.New[[]store.CategorySpending](statsTTL, sweepInterval),
		Monthly:    cache.New[[]store.MonthlySpending](statsTTL, sweepInterval),
		Ranking:    cache.New[[]store.RankingEntry](statsTTL, sweepInterval),
		Overview:   cache.New[store.Overview](statsTTL, sweepInterval),
	}
}

// Destroy stops every cache's background sweep and drops all entries
func (c *Caches) Destroy() {
	c.Parties.Destroy()
	c.Categories.Destroy()
	c.Monthly.Destroy()
	c.Ranking.Destroy()
	c.Overview.Destroy()
}

// StatsService serves the read path: cached party listings and expense
// aggregates.
type StatsService struct {
	parties  *store.PartyStore
	expenses *store.ExpenseStore
	caches   *Caches
}

// NewStatsService creates a new StatsService
func NewStatsService(parties *store.PartyStore, expenses *store.ExpenseStore, caches *Caches) *StatsService {
	return &StatsService{
		parties:  parties,
		expenses: expenses,
		caches:   caches,
	}
}

// ListParties returns all parties, cached
func (s *StatsService) ListParties(ctx context.Context) ([]model.Party, error) {
	return s.caches.Parties.GetOrSet(partiesCacheKey, func() ([]model.Party, error) {
		return s.parties.GetAll(ctx)
	}, 0)
}

// UpsertParty writes a party and invalidates the cached listing
func (s *StatsService) UpsertParty(ctx context.Context, code, name string) (int64, error) {
	id, err := s.parties.Upsert(ctx, code, name)
	if err != nil {
		return 0, err
	}

	s.caches.Parties.Delete(partiesCacheKey)
	return id, nil
}

// SpendingByCategory returns a year's per-category totals, cached
func (s *StatsService) SpendingByCategory(ctx context.Context, year int, source string) ([]store.CategorySpending, error) {
	key := fmt.Sprintf("categorias:%d:%s", year, source)
	return s.caches.Categories.GetOrSet(key, func() ([]store.CategorySpending, error) {
		return s.expenses.SpendingByCategory(ctx, year, source)
	}, 0)
}

// MonthlySpending returns a year's per-month totals, cached. A non-empty
// legislatorID scopes the aggregate to one legislator.
func (s *StatsService) MonthlySpending(ctx context.Context, year int, legislatorID string) ([]store.MonthlySpending, error) {
	key := fmt.Sprintf("mensal:%d:%s", year, legislatorID)
	return s.caches.Monthly.GetOrSet(key, func() ([]store.MonthlySpending, error) {
		return s.expenses.MonthlySpending(ctx, year, legislatorID)
	}, 0)
}

// Ranking returns the year's spending ranking, cached
func (s *StatsService) Ranking(ctx context.Context, year int, f store.RankingFilters) ([]store.RankingEntry, error) {
	key := fmt.Sprintf("ranking:%d:%s:%s:%d:%v", year, f.Source, f.Region, f.Limit, f.Ascending)
	return s.caches.Ranking.GetOrSet(key, func() ([]store.RankingEntry, error) {
		return s.expenses.Ranking(ctx, year, f)
	}, 0)
}

// GetOverview returns the system-wide totals, cached
func (s *StatsService) GetOverview(ctx context.Context) (store.Overview, error) {
	return s.caches.Overview.GetOrSet("estatisticas:overview", func() (store.Overview, error) {
		o, err := s.expenses.GetOverview(ctx)
		if err != nil {
			return store.Overview{}, err
		}
		return *o, nil
	}, 0)
}
