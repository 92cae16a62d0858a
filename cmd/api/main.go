package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"flex-valuation/internal/api/handlers"
	"flex-valuation/internal/api/middleware"
	"flex-valuation/internal/config"
	"flex-valuation/internal/data"
	"flex-valuation/internal/observability/metrics"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	cfgPath := os.Getenv("FLEX_CONFIG")
	if cfgPath == "" {
		cfgPath = "examples/config.yaml"
	}
	cacheTTL := time.Hour
	if v := os.Getenv("RESULT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid RESULT_CACHE_TTL %q: %v", v, err)
		}
		cacheTTL = d
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", cfgPath, err)
	}
	log.Printf("Loaded config %s (prices %s, weather %s, station %d)",
		cfgPath, cfg.Inputs.DAMPrices, cfg.Inputs.Weather, cfg.Weather.StationCode)

	metrics.Init()

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	cache := data.NewResultCache(cacheTTL)
	defer cache.Close()
	valuationHandler := handlers.NewValuationHandler(*cfg, cache)
	profileHandler := handlers.NewProfileHandler(*cfg)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "cached_runs": cache.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Diagnostic endpoint to check the configured inputs
	router.GET("/debug/inputs", func(c *gin.Context) {
		files := map[string]string{
			"dam_prices": cfg.Inputs.DAMPrices,
			"weather":    cfg.Inputs.Weather,
		}
		for bucket, path := range cfg.Inputs.Profiles {
			files["profile_"+bucket] = path
		}
		details := make(map[string]interface{}, len(files))
		for name, path := range files {
			info, statErr := os.Stat(path)
			entry := map[string]interface{}{
				"path":   path,
				"exists": statErr == nil,
			}
			if info != nil {
				entry["size"] = info.Size()
			}
			details[name] = entry
		}
		c.JSON(200, gin.H{
			"config": cfgPath,
			"inputs": details,
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/valuation", valuationHandler.RunValuation)
		api.GET("/valuation/:id/rows", valuationHandler.GetRows)
		api.POST("/valuation/window", valuationHandler.ValueWindow)

		api.GET("/profiles", profileHandler.ListProfiles)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
