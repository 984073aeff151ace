package collector

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rmoreira/politicos/internal/model"
	"github.com/rmoreira/politicos/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultChamberAPIURL is the deputy directory API
	DefaultChamberAPIURL = "https://dadosabertos.camara.leg.br/api/v2"
	// DefaultChamberArchiveURL hosts the yearly expense archives
	DefaultChamberArchiveURL = "https://www.camara.leg.br/cotas"

	chamberBatchSize = 5000
	currentTerm      = 57

	// Sentinel labels for records missing optional fields
	categoryFallback = "Nao especificado"
	nameFallback     = "Sem nome"
)

// chamberExpense mirrors one entry of the yearly archive payload
type chamberExpense struct {
	DocumentID  int64  `json:"idDocumento"`
	DeputyID    int64  `json:"numeroDeputadoID"`
	Name        string `json:"nomeParlamentar"`
	TaxID       string `json:"cpf"`
	Party       string `json:"siglaPartido"`
	Region      string `json:"siglaUF"`
	Description string `json:"descricao"`
	Year        int    `json:"ano"`
	Month       int    `json:"mes"`
	IssueDate   string `json:"dataEmissao"`
	NetValue    string `json:"valorLiquido"`
	Supplier    string `json:"fornecedor"`
	SupplierDoc string `json:"cnpjCPF"`
	DocNumber   string `json:"numero"`
	DocType     string `json:"tipoDocumento"`
	DocumentURL string `json:"urlDocumento"`
}

// ChamberConfig overrides the collector's endpoints and scratch location;
// zero values use the defaults.
type ChamberConfig struct {
	APIURL     string
	ArchiveURL string
	TempDir    string
}

// ChamberCollector ingests the Chamber of Deputies yearly expense archive
type ChamberCollector struct {
	store      store.Ingest
	client     *http.Client
	apiURL     string
	archiveURL string
	tempDir    string
	log        *logrus.Entry
}

// NewChamberCollector creates a collector for the chamber source
func NewChamberCollector(st store.Ingest, cfg ChamberConfig, logger *logrus.Logger) *ChamberCollector {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultChamberAPIURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultChamberArchiveURL
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "politicos")
	}

	return &ChamberCollector{
		store:      st,
		client:     &http.Client{Timeout: 10 * time.Minute},
		apiURL:     cfg.APIURL,
		archiveURL: cfg.ArchiveURL,
		tempDir:    cfg.TempDir,
		log:        logger.WithField("collector", model.SourceChamber),
	}
}

// Collect downloads and ingests the chamber archive for one year
func (c *ChamberCollector) Collect(ctx context.Context, year int) (res *Result, err error) {
	start := time.Now()
	res = &Result{Source: model.SourceChamber, Year: year}

	c.log.WithField("year", year).Info("starting collection")

	if err := c.store.OpenSyncLog(ctx, model.SourceChamber, year); err != nil {
		return nil, err
	}
	defer func() { closeRun(ctx, c.store, c.log, res, start, err) }()

	if err = os.MkdirAll(c.tempDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create temp dir: %w", err)
	}

	// Best-effort photo lookup; the archive itself has no photo URLs
	photos := c.fetchPhotoDirectory(ctx)
	c.log.WithField("deputies", len(photos)).Info("photo directory mapped")

	zipPath := filepath.Join(c.tempDir, fmt.Sprintf("camara-%d.json.zip", year))
	jsonPath := filepath.Join(c.tempDir, fmt.Sprintf("camara-%d.json", year))

	if err = c.download(ctx, year, zipPath); err != nil {
		return res, err
	}
	if err = extractArchive(zipPath, jsonPath); err != nil {
		return res, err
	}

	entries, err := parseArchivePayload(jsonPath)
	if err != nil {
		return res, err
	}
	c.log.WithField("entries", len(entries)).Info("archive parsed")

	// Legislators already upserted this run, by external id
	seen := make(map[int64]bool)

	for i := 0; i < len(entries); i += chamberBatchSize {
		end := i + chamberBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]

		err = c.store.WithBatch(ctx, func(b store.BatchTx) error {
			for idx := range batch {
				if err := c.processEntry(ctx, b, &batch[idx], photos, seen, res); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return res, err
		}

		c.log.Infof("processed %d/%d", end, len(entries))
	}

	// Scratch files stay behind on failure for diagnosis
	os.Remove(zipPath)
	os.Remove(jsonPath)

	c.log.WithFields(logrus.Fields{
		"processed": res.Processed,
		"duration":  time.Since(start),
	}).Info("collection finished")

	return res, nil
}

func (c *ChamberCollector) processEntry(ctx context.Context, b store.BatchTx, item *chamberExpense, photos map[string]string, seen map[int64]bool, res *Result) error {
	res.Processed++

	legislatorID := model.ChamberLegislatorID(item.DeputyID)

	if !seen[item.DeputyID] {
		var partyID sql.NullInt64
		if item.Party != "" {
			id, err := b.UpsertParty(ctx, item.Party)
			if err != nil {
				return err
			}
			partyID = sql.NullInt64{Int64: id, Valid: true}
		}

		name := item.Name
		if name == "" {
			name = nameFallback
		}

		leg := &model.Legislator{
			ID:         legislatorID,
			Source:     model.SourceChamber,
			ExternalID: item.DeputyID,
			Name:       name,
			TaxID:      nullString(item.TaxID),
			Region:     nullString(item.Region),
			PartyID:    partyID,
			PhotoURL:   nullString(photos[normalizeName(item.Name)]),
		}
		if err := b.UpsertLegislator(ctx, leg); err != nil {
			return err
		}
		seen[item.DeputyID] = true
	}

	category := item.Description
	if category == "" {
		category = categoryFallback
	}

	exp := &model.Expense{
		ID:               fmt.Sprintf("%s_%d", legislatorID, item.DocumentID),
		LegislatorID:     legislatorID,
		ExternalID:       fmt.Sprintf("%d", item.DocumentID),
		Year:             item.Year,
		Month:            item.Month,
		Date:             nullString(item.IssueDate),
		Category:         category,
		AmountCents:      parseCents(item.NetValue),
		SupplierName:     nullString(item.Supplier),
		SupplierDocument: nullString(item.SupplierDoc),
		DocumentNumber:   nullString(item.DocNumber),
		DocumentType:     nullString(item.DocType),
		DocumentURL:      nullString(item.DocumentURL),
		Source:           model.SourceChamber,
	}
	if err := b.UpsertExpense(ctx, exp); err != nil {
		return err
	}
	res.Upserted++

	return nil
}

// download streams the year archive to disk, failing on any non-200 status
func (c *ChamberCollector) download(ctx context.Context, year int, destPath string) error {
	url := fmt.Sprintf("%s/Ano-%d.json.zip", c.archiveURL, year)
	c.log.WithField("url", url).Info("downloading archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d downloading %s", resp.StatusCode, url)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	c.log.Infof("downloaded %.1f MB", float64(written)/1024/1024)
	return nil
}

// extractArchive writes the first non-directory entry of the zip to destPath.
// The yearly archives contain exactly one payload file.
func extractArchive(zipPath, destPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
		}

		out, err := os.Create(destPath)
		if err != nil {
			rc.Close()
			return fmt.Errorf("failed to create %s: %w", destPath, err)
		}

		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}

		return nil
	}

	return fmt.Errorf("archive %s contains no files", zipPath)
}

// parseArchivePayload parses the extracted JSON document
func parseArchivePayload(jsonPath string) ([]chamberExpense, error) {
	content, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	var payload struct {
		Dados []chamberExpense `json:"dados"`
	}
	if err := json.Unmarshal(content, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	return payload.Dados, nil
}

// fetchPhotoDirectory maps normalized deputy names to photo URLs. Failures
// here only cost photos, never the run.
func (c *ChamberCollector) fetchPhotoDirectory(ctx context.Context) map[string]string {
	photos := make(map[string]string)

	url := fmt.Sprintf("%s/deputados?idLegislatura=%d&itens=1000", c.apiURL, currentTerm)

	var payload struct {
		Dados []struct {
			ID    int64  `json:"id"`
			Name  string `json:"nome"`
			Photo string `json:"urlFoto"`
		} `json:"dados"`
	}
	if err := fetchJSON(ctx, c.client, url, &payload); err != nil {
		c.log.WithError(err).Warn("photo directory lookup failed, continuing without photos")
		return photos
	}

	for _, dep := range payload.Dados {
		photos[normalizeName(dep.Name)] = dep.Photo
	}

	return photos
}
