package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/codyseavey/pokewealth/backend/internal/config"
	"github.com/codyseavey/pokewealth/backend/internal/metrics"
)

const priceTrackerTimeout = 30 * time.Second

// PriceTrackerService is the Pokemon Price Tracker API client. It is the
// authoritative pricing source; every failure mode here (missing key, no
// match, transport error, bad status, rate limit) is reported as a nil
// lookup so the reconciler can fall back to an AI estimate.
type PriceTrackerService struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	dailyLimit int

	mu             sync.Mutex
	requestsToday  int
	lastRequestDay time.Time
}

// NewPriceTrackerService creates a new pricing API client.
func NewPriceTrackerService(cfg *config.Config) *PriceTrackerService {
	dailyLimit := cfg.PricingDailyLimit
	if dailyLimit <= 0 {
		dailyLimit = 200
	}

	return &PriceTrackerService{
		client: &http.Client{
			Timeout: priceTrackerTimeout,
		},
		apiKey:  cfg.PricingAPIKey,
		baseURL: cfg.PricingBaseURL,
		// Courtesy limit: at most 2 requests per second in bursts of 2.
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		dailyLimit: dailyLimit,
	}
}

// IsConfigured returns whether an API key is present.
func (s *PriceTrackerService) IsConfigured() bool {
	return s.apiKey != ""
}

// PriceLookup is the best match the pricing API returned for a card,
// with only the fields this system consumes.
type PriceLookup struct {
	Name        string
	SetName     string
	CardNumber  string
	Rarity      string
	TCGPlayerID string

	MarketPrice *float64
	LowPrice    *float64
	HighPrice   *float64

	// Average PSA-graded resale prices from eBay sales data.
	PSA10Price *float64
	PSA9Price  *float64
	PSA8Price  *float64
}

// HasPrice reports whether the lookup carries any usable price.
func (l *PriceLookup) HasPrice() bool {
	if l == nil {
		return false
	}
	return l.MarketPrice != nil || (l.LowPrice != nil && l.HighPrice != nil)
}

// LookupCard fetches the best pricing match for a card name and optional
// set, including PSA resale data. Returns (nil, nil) when the service is
// unconfigured or no match exists; both are expected outcomes.
func (s *PriceTrackerService) LookupCard(ctx context.Context, cardName, setName string) (*PriceLookup, error) {
	if !s.IsConfigured() {
		metrics.PriceLookupsTotal.WithLabelValues("unconfigured").Inc()
		log.Debug("Price tracker: skipping lookup, no API key configured")
		return nil, nil
	}

	if !s.checkDailyLimit() {
		metrics.PriceLookupsTotal.WithLabelValues("rate_limited").Inc()
		return nil, fmt.Errorf("price tracker daily request limit exceeded")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("search", cardName)
	params.Set("limit", "1")
	params.Set("includeEbay", "true")
	params.Set("includeBoth", "true")
	if setName != "" {
		params.Set("set", setName)
	}

	reqURL := fmt.Sprintf("%s/cards?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := s.client.Do(req)
	metrics.PriceLookupLatency.Observe(time.Since(startTime).Seconds())
	if err != nil {
		metrics.PriceLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.PriceLookupsTotal.WithLabelValues("no_match").Inc()
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.PriceLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("price tracker API returned status %d", resp.StatusCode)
	}

	var searchResp pptSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		metrics.PriceLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(searchResp.Data) == 0 {
		metrics.PriceLookupsTotal.WithLabelValues("no_match").Inc()
		return nil, nil
	}

	metrics.PriceLookupsTotal.WithLabelValues("match").Inc()
	return convertToPriceLookup(searchResp.Data[0]), nil
}

// checkDailyLimit enforces the API plan's daily request ceiling. Returns
// true if the request may proceed.
func (s *PriceTrackerService) checkDailyLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastRequestDay.Before(today) {
		s.requestsToday = 0
		s.lastRequestDay = today
	}

	if s.requestsToday >= s.dailyLimit {
		return false
	}

	s.requestsToday++
	return true
}

// GetRequestsRemaining returns the number of requests remaining today.
func (s *PriceTrackerService) GetRequestsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastRequestDay.Before(today) {
		return s.dailyLimit
	}

	remaining := s.dailyLimit - s.requestsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

func convertToPriceLookup(pc pptCard) *PriceLookup {
	lookup := &PriceLookup{
		Name:        pc.Name,
		SetName:     pc.SetName,
		CardNumber:  pc.CardNumber,
		Rarity:      pc.Rarity,
		TCGPlayerID: pc.TCGPlayerID,
		MarketPrice: pc.Prices.Market,
		LowPrice:    pc.Prices.Low,
		HighPrice:   pc.Prices.High,
	}

	if pc.Ebay != nil {
		if pc.Ebay.PSA10 != nil {
			lookup.PSA10Price = pc.Ebay.PSA10.Avg
		}
		if pc.Ebay.PSA9 != nil {
			lookup.PSA9Price = pc.Ebay.PSA9.Avg
		}
		if pc.Ebay.PSA8 != nil {
			lookup.PSA8Price = pc.Ebay.PSA8.Avg
		}
	}

	return lookup
}

// Pokemon Price Tracker API response types

type pptSearchResponse struct {
	Data     []pptCard   `json:"data"`
	Metadata pptMetadata `json:"metadata"`
}

type pptMetadata struct {
	Total   int  `json:"total"`
	Count   int  `json:"count"`
	HasMore bool `json:"hasMore"`
}

type pptCard struct {
	ID          string    `json:"id"`
	TCGPlayerID string    `json:"tcgPlayerId"`
	Name        string    `json:"name"`
	SetName     string    `json:"setName"`
	CardNumber  string    `json:"cardNumber"`
	Rarity      string    `json:"rarity"`
	Prices      pptPrices `json:"prices"`
	Ebay        *pptEbay  `json:"ebay"`
}

type pptPrices struct {
	Market *float64 `json:"market"`
	Low    *float64 `json:"low"`
	Mid    *float64 `json:"mid"`
	High   *float64 `json:"high"`
}

type pptEbay struct {
	PSA10 *pptEbayGrade `json:"psa10"`
	PSA9  *pptEbayGrade `json:"psa9"`
	PSA8  *pptEbayGrade `json:"psa8"`
}

type pptEbayGrade struct {
	Avg *float64 `json:"avg"`
}
