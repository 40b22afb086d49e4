package api

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/pokewealth/backend/internal/api/handlers"
	"github.com/codyseavey/pokewealth/backend/internal/config"
	"github.com/codyseavey/pokewealth/backend/internal/metrics"
	"github.com/codyseavey/pokewealth/backend/internal/services"
)

func SetupRouter(
	cfg *config.Config,
	reconciler *services.PriceReconciler,
	cardService *services.CardService,
	ledger *services.PriceHistoryLedger,
	portfolioService *services.PortfolioService,
) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(requestMetrics())

	cardHandler := handlers.NewCardHandler(reconciler, cardService)
	priceHandler := handlers.NewPriceHandler(cardService, ledger)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)

	router.POST("/analyze-card", cardHandler.AnalyzeCard)

	cards := router.Group("/cards")
	{
		cards.GET("", cardHandler.ListCards)
		cards.POST("", cardHandler.SaveCard)
		cards.GET("/:id", cardHandler.GetCard)
		cards.GET("/:id/image", cardHandler.GetCardImage)
		cards.DELETE("/:id", cardHandler.DeleteCard)
		cards.PUT("/:id/price", priceHandler.UpdatePrice)
		cards.GET("/:id/price-history", priceHandler.GetPriceHistory)
	}

	router.GET("/portfolio/analytics", portfolioHandler.GetAnalytics)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency per route.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
