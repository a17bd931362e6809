// Command pricesync pulls the daily mandi price feed (data.gov.in format)
// and upserts markets, commodities, and modal prices. Run it from cron or
// as a one-off after deploying a fresh database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kisanlink/agrimandi/config"
	"github.com/kisanlink/agrimandi/internal/model"
	"github.com/kisanlink/agrimandi/internal/repository"
	"github.com/kisanlink/agrimandi/pkg/cache"
	"github.com/kisanlink/agrimandi/pkg/db"
)

// feedRecord is one row of the data.gov.in mandi price resource.
// The feed serves every numeric field as a string.
type feedRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	MinPrice    string `json:"min_price"`
	MaxPrice    string `json:"max_price"`
	ModalPrice  string `json:"modal_price"`
	ArrivalDate string `json:"arrival_date"` // DD/MM/YYYY
}

type feedResponse struct {
	Total   int          `json:"total"`
	Count   int          `json:"count"`
	Records []feedRecord `json:"records"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.PriceFeed.APIKey == "" {
		log.Fatal("PRICE_FEED_API_KEY is required")
	}

	ctx := context.Background()

	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer pgPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	marketRepo := repository.NewMarketRepository(pgPool)
	priceRepo := repository.NewPriceRepository(pgPool, redisClient)

	records, err := fetchFeed(ctx, cfg.PriceFeed)
	if err != nil {
		log.Fatalf("fetch price feed: %v", err)
	}
	log.Printf("[pricesync] fetched %d records", len(records))

	synced, skipped := 0, 0
	for _, rec := range records {
		if err := syncRecord(ctx, marketRepo, priceRepo, rec); err != nil {
			log.Printf("[pricesync] skip %s/%s %s: %v", rec.District, rec.Market, rec.Commodity, err)
			skipped++
			continue
		}
		synced++
	}

	log.Printf("[pricesync] done: %d synced, %d skipped", synced, skipped)
}

// fetchFeed pulls one batch from the feed API.
func fetchFeed(ctx context.Context, cfg config.PriceFeedConfig) ([]feedRecord, error) {
	params := url.Values{}
	params.Set("api-key", cfg.APIKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(cfg.BatchLimit))

	reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	var parsed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}
	return parsed.Records, nil
}

// syncRecord upserts the market, commodity, and price row for one feed record.
func syncRecord(
	ctx context.Context,
	markets *repository.MarketRepository,
	prices *repository.PriceRepository,
	rec feedRecord,
) error {

	if rec.Market == "" || rec.Commodity == "" {
		return fmt.Errorf("record missing market or commodity")
	}

	modal, err := strconv.ParseFloat(rec.ModalPrice, 64)
	if err != nil || modal <= 0 {
		return fmt.Errorf("bad modal price %q", rec.ModalPrice)
	}
	// Min/max are optional; zero means "not reported".
	minPrice, _ := strconv.ParseFloat(rec.MinPrice, 64)
	maxPrice, _ := strconv.ParseFloat(rec.MaxPrice, 64)

	reportedAt, err := time.Parse("02/01/2006", rec.ArrivalDate)
	if err != nil {
		reportedAt = time.Now().Truncate(24 * time.Hour)
	}

	marketID, err := markets.UpsertMarket(ctx, &model.Market{
		Name:     rec.Market,
		District: rec.District,
		State:    rec.State,
	})
	if err != nil {
		return err
	}

	commodityID, err := prices.UpsertCommodity(ctx, rec.Commodity, "")
	if err != nil {
		return err
	}

	return prices.UpsertPrice(ctx, &model.CommodityPrice{
		CommodityID: commodityID,
		MarketID:    marketID,
		ModalPrice:  modal,
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		Unit:        model.UnitPerQuintal,
		ReportedAt:  reportedAt,
	})
}
