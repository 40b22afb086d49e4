package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokewealth/backend/internal/services"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

func NewPortfolioHandler(portfolioService *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// GetAnalytics returns the collection's current value and its change over
// the four look-back windows. Recomputed from the card set and price
// history on every call.
func (h *PortfolioHandler) GetAnalytics(c *gin.Context) {
	report, err := h.portfolioService.ComputeAnalytics(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
