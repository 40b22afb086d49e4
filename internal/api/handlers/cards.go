package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/codyseavey/pokewealth/backend/internal/models"
	"github.com/codyseavey/pokewealth/backend/internal/services"
)

type CardHandler struct {
	reconciler  *services.PriceReconciler
	cardService *services.CardService
}

func NewCardHandler(reconciler *services.PriceReconciler, cardService *services.CardService) *CardHandler {
	return &CardHandler{
		reconciler:  reconciler,
		cardService: cardService,
	}
}

// AnalyzeCard runs identification, grading and price reconciliation on an
// uploaded card photo. Nothing is persisted; the client saves the returned
// result explicitly.
func (h *CardHandler) AnalyzeCard(c *gin.Context) {
	imageBytes, _, ok := readImage(c)
	if !ok {
		return
	}

	result, err := h.reconciler.Analyze(c.Request.Context(), imageBytes)
	if err != nil {
		var analysisErr *services.AnalysisError
		if errors.As(err, &analysisErr) {
			log.Errorf("Card analysis failed: %v", err)
			resp := gin.H{"error": "Card analysis failed", "details": analysisErr.Error()}
			if analysisErr.Upstream != "" {
				resp["upstream_response"] = analysisErr.Upstream
			}
			c.JSON(http.StatusBadGateway, resp)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SaveCard persists an analysis result together with its image and writes
// the first price history entry.
func (h *CardHandler) SaveCard(c *gin.Context) {
	imageBytes, filename, ok := readImage(c)
	if !ok {
		return
	}

	analysisJSON := c.PostForm("analysis")
	if analysisJSON == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form field 'analysis' is required"})
		return
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(analysisJSON), &result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis JSON", "details": err.Error()})
		return
	}
	if result.CardName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "analysis is missing card_name"})
		return
	}

	card, err := h.cardService.SaveCard(&result, imageBytes, filename)
	if err != nil {
		log.Errorf("Failed to save card: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, card)
}

// ListCards returns every saved card, newest first, without image blobs.
func (h *CardHandler) ListCards(c *gin.Context) {
	cards, err := h.cardService.ListCards()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// GetCard returns a single card by id.
func (h *CardHandler) GetCard(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(id)
	if err != nil {
		respondCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetCardImage serves the card's stored image bytes.
func (h *CardHandler) GetCardImage(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	imageData, contentType, err := h.cardService.GetImage(id)
	if err != nil {
		respondCardError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, imageData)
}

// DeleteCard removes a card and its price history.
func (h *CardHandler) DeleteCard(c *gin.Context) {
	id, ok := cardID(c)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(id); err != nil {
		respondCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "card deleted"})
}

// readImage accepts either a multipart file upload (field "file") or a JSON
// body with a base64 "image" field, and returns the raw bytes.
func readImage(c *gin.Context) (imageBytes []byte, filename string, ok bool) {
	file, err := c.FormFile("file")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return nil, "", false
		}
		defer src.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(src); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return nil, "", false
		}
		return buf.Bytes(), file.Filename, true
	}

	var req struct {
		Image    string `json:"image"` // base64 encoded
		Filename string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No image provided",
			"message": "Upload an image file or provide a base64 encoded image in the JSON body",
		})
		return nil, "", false
	}

	imageBytes, err = base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
		return nil, "", false
	}
	return imageBytes, req.Filename, true
}

// cardID parses the :id route parameter.
func cardID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return 0, false
	}
	return uint(id), true
}

func respondCardError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
