package universe

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/s1_normalize"
	"github.com/wonny/precinho/pkg/httputil"
	"github.com/wonny/precinho/pkg/logger"
	"github.com/wonny/precinho/pkg/redis"
)

// Column headers of the constituents table on the pt.wikipedia page
const (
	tickerColumn = "Código"
	sectorColumn = "Setor"
)

// Constituent is one scraped row; Sector is empty when the table has no sector column
type Constituent struct {
	Ticker string `json:"ticker"`
	Sector string `json:"sector,omitempty"`
}

// WikipediaProvider scrapes the IBOVESPA constituents table
type WikipediaProvider struct {
	client *httputil.Client
	url    string
	cache  *redis.Cache
	logger *logger.Logger
}

var _ contracts.SectorProvider = (*WikipediaProvider)(nil)

// NewWikipediaProvider creates a provider; cache may be nil
func NewWikipediaProvider(client *httputil.Client, url string, cache *redis.Cache, log *logger.Logger) *WikipediaProvider {
	return &WikipediaProvider{
		client: client,
		url:    url,
		cache:  cache,
		logger: log,
	}
}

func (p *WikipediaProvider) Name() string { return SourceWikipedia }

// Tickers fetches the page (or the day's cached table) and extracts tickers
func (p *WikipediaProvider) Tickers(ctx context.Context) ([]string, error) {
	rows, err := p.constituents(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(rows))
	for i, row := range rows {
		tickers[i] = row.Ticker
	}
	return tickers, nil
}

// Sectors returns the sector column of the same table (ticker → sector)
func (p *WikipediaProvider) Sectors(ctx context.Context) (map[string]string, error) {
	rows, err := p.constituents(ctx)
	if err != nil {
		return nil, err
	}

	sectors := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Sector != "" {
			sectors[row.Ticker] = row.Sector
		}
	}
	return sectors, nil
}

func (p *WikipediaProvider) constituents(ctx context.Context) ([]Constituent, error) {
	key := redis.UniverseKey(SourceWikipedia, time.Now().Format("2006-01-02"))

	if p.cache != nil {
		var cached []Constituent
		if found, err := p.cache.Get(ctx, key, &cached); err == nil && found && len(cached) > 0 {
			p.logger.WithField("count", len(cached)).Debug("Universe served from cache")
			return cached, nil
		}
	}

	body, err := p.client.GetBody(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("fetch wikipedia universe: %w", err)
	}

	rows, err := ParseConstituents(body)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, rows, redis.TTLDaily); err != nil {
			p.logger.WithError(err).Warn("Failed to cache universe")
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"source": SourceWikipedia,
		"count":  len(rows),
	}).Info("Universe loaded")

	return rows, nil
}

// ParseTickerTable extracts the "Código" column of every wikitable on the page
func ParseTickerTable(html []byte) ([]string, error) {
	rows, err := ParseConstituents(html)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(rows))
	for i, row := range rows {
		tickers[i] = row.Ticker
	}
	return tickers, nil
}

// ParseConstituents extracts ticker and, when present, the "Setor" column.
// Cells that do not look like B3 tickers are skipped; the first row wins
// for a ticker listed twice.
func ParseConstituents(html []byte) ([]Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse wikipedia html: %w", err)
	}

	var rows []Constituent
	seen := make(map[string]bool)
	doc.Find("table.wikitable").Each(func(_ int, table *goquery.Selection) {
		col, sectorCol := -1, -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			header := strings.TrimSpace(th.Text())
			switch {
			case strings.EqualFold(header, tickerColumn):
				col = i
			case strings.EqualFold(header, sectorColumn):
				sectorCol = i
			}
		})
		if col < 0 {
			return
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= col {
				return
			}

			sector := ""
			if sectorCol >= 0 && cells.Length() > sectorCol {
				sector = strings.Join(strings.Fields(cells.Eq(sectorCol).Text()), " ")
			}

			// 일부 셀은 "PETR3, PETR4"처럼 여러 종목을 포함
			for _, part := range strings.FieldsFunc(cells.Eq(col).Text(), func(r rune) bool {
				return r == ',' || r == ';' || r == '/' || r == '\n' || r == ' '
			}) {
				t := s1_normalize.CanonicalTicker(part)
				if !IsTicker(t) || seen[t] {
					continue
				}
				seen[t] = true
				rows = append(rows, Constituent{Ticker: t, Sector: sector})
			}
		})
	})

	if len(rows) == 0 {
		return nil, fmt.Errorf("no %q column with tickers found", tickerColumn)
	}
	return rows, nil
}
