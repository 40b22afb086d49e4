package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/codyseavey/pokewealth/backend/internal/metrics"
	"github.com/codyseavey/pokewealth/backend/internal/models"
)

// priceUnavailable is the canonical display when every pricing path failed.
const priceUnavailable = "Price unavailable"

// PriceReconciler merges the vision service's probabilistic analysis with
// the authoritative pricing API into one canonical price with provenance.
//
// Priority order, first match wins:
//  1. API market price
//  2. API low/high range
//  3. AI free-text estimate
//  4. "Price unavailable"
type PriceReconciler struct {
	gemini       *GeminiService
	priceTracker *PriceTrackerService
}

// NewPriceReconciler creates a new reconciler over the two external services.
func NewPriceReconciler(gemini *GeminiService, priceTracker *PriceTrackerService) *PriceReconciler {
	return &PriceReconciler{
		gemini:       gemini,
		priceTracker: priceTracker,
	}
}

// Analyze runs the full pipeline for one card image: identification first,
// then pricing lookup, then reconciliation. Only the identification call can
// fail the operation; every pricing failure degrades and is visible in the
// result's price_source. Nothing is persisted here.
func (r *PriceReconciler) Analyze(ctx context.Context, imageBytes []byte) (*models.AnalysisResult, error) {
	startTime := time.Now()

	analysis, err := r.gemini.AnalyzeCard(ctx, imageBytes)
	if err != nil {
		metrics.AnalysisRequestsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := r.Reconcile(ctx, analysis)

	metrics.AnalysisRequestsTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.Observe(time.Since(startTime).Seconds())
	return result, nil
}

// Reconcile chooses the canonical price for an analysis and resolves the
// identification fields, preferring the pricing API's authoritative
// set/number/rarity when it matched. Always returns a complete result.
func (r *PriceReconciler) Reconcile(ctx context.Context, analysis *CardAnalysis) *models.AnalysisResult {
	result := &models.AnalysisResult{
		CardName:   analysis.CardName,
		SetName:    analysis.SetName,
		CardNumber: analysis.CardNumber,
		Rarity:     analysis.Rarity,
		Details:    analysis.Details,

		CenteringScore:     analysis.Centering.Score,
		CenteringComment:   analysis.Centering.Description,
		CornersScore:       analysis.Corners.Score,
		CornersDescription: analysis.Corners.Description,
		EdgesScore:         analysis.Edges.Score,
		EdgesDescription:   analysis.Edges.Description,
		SurfaceScore:       analysis.Surface.Score,
		SurfaceDescription: analysis.Surface.Description,

		IsAuthentic:            analysis.Authenticity.IsAuthentic,
		AuthenticityConfidence: analysis.Authenticity.Confidence,
		AuthenticityNotes:      analysis.Authenticity.Notes,
	}

	lookup, err := r.priceTracker.LookupCard(ctx, analysis.CardName, analysis.SetName)
	if err != nil {
		// Never fatal: a broken pricing API degrades to the AI estimate.
		log.Warnf("Price lookup failed for %q, falling back to AI estimate: %v", analysis.CardName, err)
		lookup = nil
	}

	if lookup != nil {
		applyLookup(result, lookup)
	}

	if lookup.HasPrice() {
		return result
	}

	// Last resort: ask the vision service for a free-text estimate. The
	// structured analysis already carried one, but it came from the same
	// image pass and is often missing, so a dedicated request is made.
	estimate := analysis.EstimatedPrice
	if estimate == "" {
		estimate, err = r.gemini.EstimatePrice(ctx, result.CardName, result.SetName)
		if err != nil {
			log.Errorf("Fallback price estimate failed for %q: %v", result.CardName, err)
			result.EstimatedPrice = priceUnavailable
			result.EstimatedPriceValue = nil
			result.PriceSource = models.PriceSourceError
			return result
		}
	}

	result.EstimatedPrice = estimate
	result.EstimatedPriceValue = parsedValue(estimate)
	result.PriceSource = models.PriceSourceAI
	return result
}

// applyLookup copies the API's authoritative fields onto the result and
// sets the canonical price when the lookup carries one.
func applyLookup(result *models.AnalysisResult, lookup *PriceLookup) {
	if lookup.SetName != "" {
		result.SetName = lookup.SetName
	}
	if lookup.CardNumber != "" {
		result.CardNumber = lookup.CardNumber
	}
	if lookup.Rarity != "" {
		result.Rarity = lookup.Rarity
	}
	result.TCGPlayerID = lookup.TCGPlayerID
	result.PSA10Price = lookup.PSA10Price
	result.PSA9Price = lookup.PSA9Price
	result.PSA8Price = lookup.PSA8Price

	switch {
	case lookup.MarketPrice != nil:
		display := models.FormatUSD(*lookup.MarketPrice)
		result.EstimatedPrice = display
		result.EstimatedPriceValue = lookup.MarketPrice
		result.MarketPrice = lookup.MarketPrice
		result.PriceSource = models.PriceSourceAPI
	case lookup.LowPrice != nil && lookup.HighPrice != nil:
		display := models.FormatUSDRange(*lookup.LowPrice, *lookup.HighPrice)
		result.EstimatedPrice = display
		result.EstimatedPriceValue = parsedValue(display)
		result.PriceSource = models.PriceSourceAPI
	}
}

// parsedValue returns the parsed numeric form of a display string, or nil
// when nothing numeric could be extracted.
func parsedValue(display string) *float64 {
	v := models.ParsePriceString(display)
	if v == 0 {
		return nil
	}
	return &v
}
