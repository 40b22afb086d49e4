package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/codyseavey/pokewealth/backend/internal/config"
	"github.com/codyseavey/pokewealth/backend/internal/metrics"
)

const (
	geminiAPIURL  = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiTimeout = 60 * time.Second

	// estimateCacheSize bounds the fallback price-estimate cache. Estimates
	// are keyed by card name + set, so re-analyzing the same card does not
	// re-spend a Gemini call.
	estimateCacheSize = 256
)

// GeminiService handles card identification and grading via the Gemini
// Vision API, plus the free-text price estimate used as a pricing fallback.
type GeminiService struct {
	apiKey        string
	model         string
	baseURL       string
	httpClient    *http.Client
	enabled       bool
	estimateCache *lru.Cache[string, string]
}

// NewGeminiService creates a new Gemini service from the injected config.
func NewGeminiService(cfg *config.Config) *GeminiService {
	estimateCache, err := lru.New[string, string](estimateCacheSize)
	if err != nil {
		log.Errorf("Failed to create estimate cache: %v", err)
	}

	svc := &GeminiService{
		apiKey:        cfg.GeminiAPIKey,
		model:         cfg.GeminiModel,
		baseURL:       geminiAPIURL,
		httpClient:    &http.Client{Timeout: geminiTimeout},
		enabled:       cfg.GeminiAPIKey != "",
		estimateCache: estimateCache,
	}

	if svc.enabled {
		log.Infof("Gemini service: enabled (model=%s)", svc.model)
	} else {
		log.Warn("Gemini service: disabled (no GEMINI_API_KEY)")
	}

	return svc
}

// IsEnabled returns whether Gemini is available.
func (s *GeminiService) IsEnabled() bool {
	return s.enabled
}

// CardAnalysis is the structured output of one vision call, validated once
// at this boundary so the rest of the system never sees loose JSON maps.
type CardAnalysis struct {
	CardName       string       `json:"card_name"`
	SetName        string       `json:"set_name"`
	CardNumber     string       `json:"card_number"`
	Rarity         string       `json:"rarity"`
	EstimatedPrice string       `json:"estimated_price"`
	Details        string       `json:"details"`
	Centering      SubGrade     `json:"centering"`
	Corners        SubGrade     `json:"corners"`
	Edges          SubGrade     `json:"edges"`
	Surface        SubGrade     `json:"surface"`
	Authenticity   Authenticity `json:"authenticity"`
}

// SubGrade is one grading aspect. Score is nil when the model did not
// assess that aspect.
type SubGrade struct {
	Score       *float64 `json:"score"`
	Description string   `json:"description"`
}

// Authenticity is the advisory authenticity assessment.
type Authenticity struct {
	IsAuthentic *bool    `json:"is_authentic"`
	Confidence  *float64 `json:"confidence"` // 0-100
	Notes       string   `json:"notes"`
}

// AnalyzeCard sends the card image to Gemini and returns the structured
// identification and grading result. A failure here is fatal to the
// request: there is nothing to persist without an identification.
func (s *GeminiService) AnalyzeCard(ctx context.Context, imageBytes []byte) (*CardAnalysis, error) {
	if !s.enabled {
		return nil, &AnalysisError{Message: "Gemini service not enabled (no GEMINI_API_KEY)"}
	}

	startTime := time.Now()

	imageB64 := base64.StdEncoding.EncodeToString(imageBytes)
	mimeType := detectMimeType(imageBytes)

	req := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{InlineData: &geminiInlineData{MimeType: mimeType, Data: imageB64}},
					{Text: analysisPrompt},
				},
			},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:      0.2,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
		},
	}

	text, err := s.generate(ctx, req)
	metrics.GeminiAPILatency.Observe(time.Since(startTime).Seconds())
	if err != nil {
		return nil, &AnalysisError{Message: "card analysis request failed", Err: err}
	}

	analysis, err := parseCardAnalysis(text)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return nil, &AnalysisError{Message: "card analysis returned unparseable output", Upstream: text, Err: err}
	}

	log.Infof("Gemini analysis complete: card=%q set=%q estimated=%q", analysis.CardName, analysis.SetName, analysis.EstimatedPrice)
	return analysis, nil
}

// EstimatePrice asks Gemini for a free-text market price estimate. This is
// the last-resort pricing path when the pricing API has no usable price.
func (s *GeminiService) EstimatePrice(ctx context.Context, cardName, setName string) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("Gemini service not enabled")
	}

	cacheKey := cardName + "|" + setName
	if s.estimateCache != nil {
		if cached, ok := s.estimateCache.Get(cacheKey); ok {
			metrics.EstimateCacheHits.Inc()
			return cached, nil
		}
	}
	metrics.EstimateCacheMisses.Inc()

	prompt := fmt.Sprintf(
		"You are a Pokemon card pricing expert. What is the current market price of the card %q", cardName)
	if setName != "" {
		prompt += fmt.Sprintf(" from the set %q", setName)
	}
	prompt += `? Respond with ONLY a realistic price or price range in USD, formatted like "$XX - $XX" or "$XX". No other text.`

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.2,
			MaxOutputTokens: 64,
		},
	}

	text, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}

	estimate := strings.TrimSpace(text)
	if estimate == "" {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("empty price estimate from Gemini")
	}

	if s.estimateCache != nil {
		s.estimateCache.Add(cacheKey, estimate)
	}

	return estimate, nil
}

// generate performs one generateContent call and returns the text of the
// first candidate.
func (s *GeminiService) generate(ctx context.Context, req geminiRequest) (string, error) {
	metrics.GeminiRequestsTotal.Inc()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(s.baseURL, s.model) + "?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("network").Inc()
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("read").Inc()
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	if apiResp.Error != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	if len(apiResp.Candidates) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("no response from Gemini")
	}

	var text string
	for _, part := range apiResp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text, nil
}

// parseCardAnalysis decodes the model's JSON output, tolerating markdown
// code fences, and rejects results missing the card name.
func parseCardAnalysis(text string) (*CardAnalysis, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	var analysis CardAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if strings.TrimSpace(analysis.CardName) == "" {
		return nil, fmt.Errorf("analysis missing card_name")
	}

	return &analysis, nil
}

// detectMimeType returns the MIME type for image bytes
func detectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "image/jpeg"
	}
	return contentType
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const analysisPrompt = `You are a Pokemon card expert. Analyze this Pokemon card image and provide:
1. The exact card name
2. The set name and collector number if visible
3. The estimated market price (a realistic price range in USD)
4. A condition assessment for centering, corners, edges, and surface, each scored 1-10
5. An authenticity assessment with a confidence percentage (0-100)
6. Brief details about the card (set, rarity, notable features)

Score a condition aspect 0 only if it cannot be assessed from the image.

Format your response as JSON:
{
    "card_name": "Card Name Here",
    "set_name": "Set Name",
    "card_number": "4/102",
    "rarity": "Rare Holo",
    "estimated_price": "$XX - $XX",
    "details": "Brief description including set, rarity, and condition",
    "centering": {"score": 8.5, "description": "Slightly off-center left to right"},
    "corners": {"score": 9.0, "description": "Sharp corners with minimal wear"},
    "edges": {"score": 9.0, "description": "Clean edges"},
    "surface": {"score": 8.0, "description": "Light surface scratches visible in holo"},
    "authenticity": {"is_authentic": true, "confidence": 95, "notes": "Print pattern and font consistent with genuine card"}
}`
