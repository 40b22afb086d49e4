package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestPriceTracker(baseURL string) *PriceTrackerService {
	return &PriceTrackerService{
		client:     &http.Client{Timeout: 5 * time.Second},
		apiKey:     "test-key",
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		dailyLimit: 100,
	}
}

const pptMatchResponse = `{
	"data": [{
		"id": "base1-4",
		"tcgPlayerId": "42345",
		"name": "Charizard",
		"setName": "Base Set",
		"cardNumber": "4/102",
		"rarity": "Rare Holo",
		"prices": {"market": 349.99, "low": 300.0, "high": 425.0},
		"ebay": {
			"psa10": {"avg": 5000.0},
			"psa9": {"avg": 1200.0},
			"psa8": {"avg": 600.0}
		}
	}],
	"metadata": {"total": 1, "count": 1, "hasMore": false}
}`

func TestLookupCardMatch(t *testing.T) {
	var gotAuth string
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{
			"search":      r.URL.Query().Get("search"),
			"limit":       r.URL.Query().Get("limit"),
			"includeEbay": r.URL.Query().Get("includeEbay"),
			"includeBoth": r.URL.Query().Get("includeBoth"),
			"set":         r.URL.Query().Get("set"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(pptMatchResponse))
	}))
	defer server.Close()

	svc := newTestPriceTracker(server.URL)
	lookup, err := svc.LookupCard(context.Background(), "Charizard", "Base Set")
	if err != nil {
		t.Fatalf("LookupCard failed: %v", err)
	}
	if lookup == nil {
		t.Fatal("expected a lookup result")
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q, want bearer token", gotAuth)
	}
	want := map[string]string{
		"search": "Charizard", "limit": "1",
		"includeEbay": "true", "includeBoth": "true",
		"set": "Base Set",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if lookup.Name != "Charizard" || lookup.SetName != "Base Set" || lookup.CardNumber != "4/102" {
		t.Errorf("identification = %q/%q/%q", lookup.Name, lookup.SetName, lookup.CardNumber)
	}
	if lookup.TCGPlayerID != "42345" {
		t.Errorf("tcgplayer id = %q, want 42345", lookup.TCGPlayerID)
	}
	if lookup.MarketPrice == nil || *lookup.MarketPrice != 349.99 {
		t.Errorf("market price = %v, want 349.99", lookup.MarketPrice)
	}
	if lookup.PSA10Price == nil || *lookup.PSA10Price != 5000 {
		t.Errorf("psa10 = %v, want 5000", lookup.PSA10Price)
	}
	if lookup.PSA8Price == nil || *lookup.PSA8Price != 600 {
		t.Errorf("psa8 = %v, want 600", lookup.PSA8Price)
	}
	if !lookup.HasPrice() {
		t.Error("lookup with market price should report HasPrice")
	}
}

func TestLookupCardNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [], "metadata": {"total": 0, "count": 0, "hasMore": false}}`))
	}))
	defer server.Close()

	svc := newTestPriceTracker(server.URL)
	lookup, err := svc.LookupCard(context.Background(), "Nonexistent Card", "")
	if err != nil {
		t.Fatalf("LookupCard failed: %v", err)
	}
	if lookup != nil {
		t.Errorf("expected nil lookup for empty result set, got %+v", lookup)
	}
}

func TestLookupCardNotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestPriceTracker(server.URL)
	lookup, err := svc.LookupCard(context.Background(), "Charizard", "")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if lookup != nil {
		t.Errorf("expected nil lookup on 404, got %+v", lookup)
	}
}

func TestLookupCardServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestPriceTracker(server.URL)
	if _, err := svc.LookupCard(context.Background(), "Charizard", ""); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestLookupCardUnconfigured(t *testing.T) {
	svc := newTestPriceTracker("http://unreachable.invalid")
	svc.apiKey = ""

	lookup, err := svc.LookupCard(context.Background(), "Charizard", "")
	if err != nil {
		t.Fatalf("unconfigured lookup should not error, got %v", err)
	}
	if lookup != nil {
		t.Errorf("expected nil lookup when unconfigured, got %+v", lookup)
	}
}

func TestLookupCardDailyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [], "metadata": {}}`))
	}))
	defer server.Close()

	svc := newTestPriceTracker(server.URL)
	svc.dailyLimit = 1

	if _, err := svc.LookupCard(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	if _, err := svc.LookupCard(context.Background(), "Charizard", ""); err == nil {
		t.Error("expected error once the daily limit is exhausted")
	}
	if remaining := svc.GetRequestsRemaining(); remaining != 0 {
		t.Errorf("requests remaining = %d, want 0", remaining)
	}
}

func TestHasPrice(t *testing.T) {
	low, high := 10.0, 20.0

	tests := []struct {
		name   string
		lookup *PriceLookup
		want   bool
	}{
		{"nil lookup", nil, false},
		{"no prices", &PriceLookup{}, false},
		{"market only", &PriceLookup{MarketPrice: &low}, true},
		{"full range", &PriceLookup{LowPrice: &low, HighPrice: &high}, true},
		{"low without high", &PriceLookup{LowPrice: &low}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lookup.HasPrice(); got != tt.want {
				t.Errorf("HasPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}
