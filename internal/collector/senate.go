package collector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rmoreira/politicos/internal/model"
	"github.com/rmoreira/politicos/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultSenateAPIURL hosts the yearly expense endpoint
	DefaultSenateAPIURL = "https://adm.senado.gov.br/adm-dadosabertos/api/v1"
	// DefaultSenateLegisURL hosts the current roster endpoint
	DefaultSenateLegisURL = "https://legis.senado.leg.br/dadosabertos"

	senateBatchSize = 2000
	senatePhotoURL  = "https://www.senado.leg.br/senadores/img/fotos-oficiais/senador%d.jpg"
)

// senateExpense mirrors one entry of the yearly expense response
type senateExpense struct {
	ID          int64       `json:"id"`
	DocType     string      `json:"tipoDocumento"`
	Year        int         `json:"ano"`
	Month       int         `json:"mes"`
	SenatorCode int64       `json:"codSenador"`
	SenatorName string      `json:"nomeSenador"`
	Category    string      `json:"tipoDespesa"`
	SupplierDoc string      `json:"cpfCnpj"`
	Supplier    string      `json:"fornecedor"`
	DocNumber   string      `json:"documento"`
	Date        string      `json:"data"`
	Detail      string      `json:"detalhamento"`
	Amount      json.Number `json:"valorReembolsado"`
}

// senatorInfo is the roster view of one senator
type senatorInfo struct {
	Name     string
	Party    string
	Region   string
	PhotoURL string
}

// SenateConfig overrides the collector's endpoints; zero values use the defaults
type SenateConfig struct {
	APIURL   string
	LegisURL string
}

// SenateCollector ingests the Federal Senate expense API
type SenateCollector struct {
	store    store.Ingest
	client   *http.Client
	apiURL   string
	legisURL string
	log      *logrus.Entry
}

// NewSenateCollector creates a collector for the senate source
func NewSenateCollector(st store.Ingest, cfg SenateConfig, logger *logrus.Logger) *SenateCollector {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultSenateAPIURL
	}
	if cfg.LegisURL == "" {
		cfg.LegisURL = DefaultSenateLegisURL
	}

	return &SenateCollector{
		store:    st,
		client:   &http.Client{Timeout: 5 * time.Minute},
		apiURL:   cfg.APIURL,
		legisURL: cfg.LegisURL,
		log:      logger.WithField("collector", model.SourceSenate),
	}
}

// Collect fetches and ingests the senate expense feed for one year
func (c *SenateCollector) Collect(ctx context.Context, year int) (res *Result, err error) {
	start := time.Now()
	res = &Result{Source: model.SourceSenate, Year: year}

	c.log.WithField("year", year).Info("starting collection")

	if err := c.store.OpenSyncLog(ctx, model.SourceSenate, year); err != nil {
		return nil, err
	}
	defer func() { closeRun(ctx, c.store, c.log, res, start, err) }()

	roster, err := c.fetchRoster(ctx)
	if err != nil {
		return res, err
	}
	c.log.WithField("senators", len(roster)).Info("roster fetched")

	expenses, err := c.fetchExpenses(ctx, year)
	if err != nil {
		return res, err
	}
	c.log.WithField("entries", len(expenses)).Info("expenses fetched")

	// Legislators already upserted this run, by namespaced id
	seen := make(map[string]bool)

	for i := 0; i < len(expenses); i += senateBatchSize {
		end := i + senateBatchSize
		if end > len(expenses) {
			end = len(expenses)
		}
		batch := expenses[i:end]

		err = c.store.WithBatch(ctx, func(b store.BatchTx) error {
			for idx := range batch {
				if err := c.processEntry(ctx, b, &batch[idx], roster, seen, res); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}

		c.log.Infof("processed %d/%d", end, len(expenses))
	}

	c.log.WithFields(logrus.Fields{
		"processed": res.Processed,
		"duration":  time.Since(start),
	}).Info("collection finished")

	return res, nil
}

func (c *SenateCollector) processEntry(ctx context.Context, b store.BatchTx, item *senateExpense, roster map[int64]senatorInfo, seen map[string]bool, res *Result) error {
	res.Processed++

	legislatorID := model.SenateLegislatorID(item.SenatorCode)

	if !seen[legislatorID] {
		// Roster and expense feeds can drift; on a miss fall back to the
		// name on the expense entry and leave party/region unset
		info, inRoster := roster[item.SenatorCode]

		var partyID sql.NullInt64
		if inRoster && info.Party != "" {
			id, err := b.UpsertParty(ctx, info.Party)
			if err != nil {
				return err
			}
			partyID = sql.NullInt64{Int64: id, Valid: true}
		}

		name := info.Name
		if !inRoster || name == "" {
			name = item.SenatorName
		}
		if name == "" {
			name = nameFallback
		}

		leg := &model.Legislator{
			ID:         legislatorID,
			Source:     model.SourceSenate,
			ExternalID: item.SenatorCode,
			Name:       name,
			Region:     nullString(info.Region),
			PartyID:    partyID,
			PhotoURL:   nullString(info.PhotoURL),
		}
		if err := b.UpsertLegislator(ctx, leg); err != nil {
			return err
		}
		seen[legislatorID] = true
	}

	category := item.Category
	if category == "" {
		category = categoryFallback
	}

	exp := &model.Expense{
		ID:               fmt.Sprintf("sen_%d", item.ID),
		LegislatorID:     legislatorID,
		ExternalID:       fmt.Sprintf("%d", item.ID),
		Year:             item.Year,
		Month:            item.Month,
		Date:             nullString(item.Date),
		Category:         category,
		AmountCents:      parseCents(item.Amount.String()),
		SupplierName:     nullString(item.Supplier),
		SupplierDocument: nullString(item.SupplierDoc),
		DocumentNumber:   nullString(item.DocNumber),
		DocumentType:     nullString(item.DocType),
		Detail:           nullString(item.Detail),
		Source:           model.SourceSenate,
	}
	if err := b.UpsertExpense(ctx, exp); err != nil {
		return err
	}
	res.Upserted++

	return nil
}

// rosterResponse mirrors the nested roster payload
type rosterResponse struct {
	ListaParlamentarEmExercicio struct {
		Parlamentares struct {
			Parlamentar []struct {
				IdentificacaoParlamentar struct {
					CodigoParlamentar       string `json:"CodigoParlamentar"`
					NomeParlamentar         string `json:"NomeParlamentar"`
					SiglaPartidoParlamentar string `json:"SiglaPartidoParlamentar"`
					UfParlamentar           string `json:"UfParlamentar"`
				} `json:"IdentificacaoParlamentar"`
			} `json:"Parlamentar"`
		} `json:"Parlamentares"`
	} `json:"ListaParlamentarEmExercicio"`
}

// fetchRoster maps senator codes to roster info. The photo URL is built from
// the code; the URL the API returns redirects.
func (c *SenateCollector) fetchRoster(ctx context.Context) (map[int64]senatorInfo, error) {
	url := fmt.Sprintf("%s/senador/lista/atual", c.legisURL)

	var payload rosterResponse
	if err := fetchJSON(ctx, c.client, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	roster := make(map[int64]senatorInfo)
	for _, p := range payload.ListaParlamentarEmExercicio.Parlamentares.Parlamentar {
		id := p.IdentificacaoParlamentar

		code, err := strconv.ParseInt(id.CodigoParlamentar, 10, 64)
		if err != nil {
			continue
		}

		roster[code] = senatorInfo{
			Name:     id.NomeParlamentar,
			Party:    id.SiglaPartidoParlamentar,
			Region:   id.UfParlamentar,
			PhotoURL: fmt.Sprintf(senatePhotoURL, code),
		}
	}

	return roster, nil
}

// fetchExpenses retrieves the full year of expenses in one call
func (c *SenateCollector) fetchExpenses(ctx context.Context, year int) ([]senateExpense, error) {
	url := fmt.Sprintf("%s/senadores/despesas_ceaps/%d", c.apiURL, year)

	var expenses []senateExpense
	if err := fetchJSON(ctx, c.client, url, &expenses); err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	return expenses, nil
}
