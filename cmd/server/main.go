package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scoutbase/reefscout/internal/adapters"
	"github.com/scoutbase/reefscout/internal/cache"
	"github.com/scoutbase/reefscout/internal/database"
	"github.com/scoutbase/reefscout/internal/encoding"
	"github.com/scoutbase/reefscout/internal/errors"
	"github.com/scoutbase/reefscout/internal/middleware"
	"github.com/scoutbase/reefscout/internal/monitoring"
	"github.com/scoutbase/reefscout/internal/rankings"
	"github.com/scoutbase/reefscout/internal/ratelimit"
	"github.com/scoutbase/reefscout/internal/scouting"
	"github.com/scoutbase/reefscout/internal/security"
	"github.com/scoutbase/reefscout/internal/types"
)

// app bundles the wired services behind the HTTP surface
type app struct {
	repo         *database.Repository
	scouting     *scouting.Service
	rankings     *rankings.Service
	tba          *adapters.TBAAdapter
	metrics      *monitoring.Metrics
	logger       *monitoring.Logger
	cache        *cache.Cache
	compression  *middleware.CompressionMiddleware
	limiter      *ratelimit.RateLimiter
	security     *security.SecurityMiddleware
	myTeamNumber int
}

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	tbaAPIKey := os.Getenv("TBA_API_KEY")
	myTeamNumber := getEnvIntOrDefault("MY_TEAM_NUMBER", 0)
	port := getEnvOrDefault("PORT", "8080")

	if tbaAPIKey == "" {
		slog.Warn("TBA_API_KEY not set, event sync and insights endpoints will fail upstream auth")
	}

	// Initialize database and repository
	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	rankingsService := rankings.NewService(repo)
	tbaAdapter := adapters.NewTBAAdapter(tbaAPIKey)
	appMetrics := monitoring.NewMetrics()

	a := &app{
		repo:         repo,
		scouting:     scouting.NewService(repo, repo),
		rankings:     rankingsService,
		tba:          tbaAdapter,
		metrics:      appMetrics,
		logger:       monitoring.NewLogger(),
		cache:        cache.NewCache(15 * time.Minute),
		compression:  middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		limiter:      ratelimit.NewRateLimiter(ratelimit.DefaultConfig(), appMetrics),
		security:     security.NewSecurityMiddleware(security.DefaultSecurityConfig()),
		myTeamNumber: myTeamNumber,
	}

	// Keep cached rankings fresh as observations arrive
	rankingsService.StartAutoRefresh(10 * time.Minute)

	r := newRouter(a)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tbaAdapter.Close()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// newRouter assembles the middleware chain and routes
func newRouter(a *app) *gin.Engine {
	r := gin.New()

	// Compression for JSON payloads
	r.Use(a.compression.Handler())

	// Monitoring first, to capture all requests
	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))

	// Error handling
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// Security hardening
	r.Use(a.security.SecurityHeaders)
	r.Use(a.security.RequestTimeout)
	r.Use(a.security.ValidateContentType)

	// Per-IP rate limiting
	r.Use(a.limiter.Middleware())

	// CORS for the scouting clients
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8081", "http://localhost:19006"}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Response cache for read-heavy endpoints
	r.Use(a.cache.Middleware(a.metrics))

	r.GET("/health", a.handleHealth)
	r.GET("/metrics", a.handleMetrics)
	r.GET("/cache/stats", a.handleCacheStats)
	r.GET("/ratelimit/status", a.limiter.HandleStatus())
	r.GET("/pools/tba", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.tba.Stats())
	})

	r.GET("/teams", a.handleListTeams)
	r.GET("/teams/:number/rating", a.handleTeamRating)
	r.GET("/teams/:number/strengths", a.handleTeamStrengths)
	r.GET("/teams/:number/partners", a.handleTeamPartners)

	r.GET("/rankings", a.handleRankings)
	r.POST("/rankings/refresh", a.handleRankingsRefresh)

	r.GET("/observations", a.handleListObservations)
	r.POST("/observations", a.handleCreateObservation)

	r.POST("/events/:eventKey/sync", a.handleEventSync)
	r.POST("/import/matches", a.handleImportMatches)

	r.GET("/insights/:eventKey", a.handleInsights)
	r.GET("/insights/:eventKey/compatibility", a.handleInsightsCompatibility)

	return r
}

func (a *app) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"upstream": gin.H{
			"tba": a.tba.Stats(),
		},
	})
}

func (a *app) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":     a.metrics.GetStats(),
		"compression": a.compression.GetStats(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

func (a *app) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"response_cache": a.cache.Stats(),
		"rankings_cache": a.rankings.GetCacheStats(),
		"json_codec":     encoding.CodecStats(),
	})
}

func (a *app) handleListTeams(c *gin.Context) {
	teams, err := a.repo.ListTeams()
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams, "total": len(teams)})
}

func (a *app) handleTeamRating(c *gin.Context) {
	number, ok := a.teamNumberParam(c)
	if !ok {
		return
	}

	rating, err := a.scouting.Rating(number)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.metrics.IncrementRatingsComputed()

	c.JSON(http.StatusOK, gin.H{"team": number, "rating": rating})
}

func (a *app) handleTeamStrengths(c *gin.Context) {
	number, ok := a.teamNumberParam(c)
	if !ok {
		return
	}

	strengths, err := a.scouting.Strengths(number)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": number, "strengths": strengths})
}

func (a *app) handleTeamPartners(c *gin.Context) {
	number, ok := a.teamNumberParam(c)
	if !ok {
		return
	}

	alliance, err := a.scouting.Partners(number)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": number, "alliance": alliance})
}

func (a *app) handleRankings(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	response, err := a.rankings.GetRankings(limit)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (a *app) handleRankingsRefresh(c *gin.Context) {
	start := time.Now()
	count, err := a.rankings.Refresh()
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.metrics.IncrementRatingsComputed()
	a.logger.RatingLogger(count, time.Since(start))
	c.JSON(http.StatusOK, gin.H{"teams_rated": count})
}

func (a *app) handleListObservations(c *gin.Context) {
	records, err := a.repo.ListObservations()
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"observations": records, "total": len(records)})
}

func (a *app) handleCreateObservation(c *gin.Context) {
	var rec types.ScoutingRecord
	if err := c.BindJSON(&rec); err != nil {
		a.respondError(c, errors.NewValidationError("invalid JSON body"))
		return
	}

	rec.Comments = security.SanitizeText(rec.Comments)
	rec.ScoutName = security.SanitizeText(rec.ScoutName)
	if err := a.security.ValidateObservation(rec); err != nil {
		a.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Source == "" {
		rec.Source = types.SourceManual
	}

	if err := a.repo.UpsertObservation(rec); err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": rec.ID})
}

func (a *app) handleEventSync(c *gin.Context) {
	eventKey, ok := a.eventKeyParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	a.metrics.IncrementTBACalls()
	teams, err := a.tba.FetchEventTeams(ctx, eventKey)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.metrics.IncrementTBACalls()
	matches, err := a.tba.FetchEventMatches(ctx, eventKey)
	if err != nil {
		a.respondError(c, err)
		return
	}

	for _, team := range teams {
		if err := a.repo.UpsertTeam(team); err != nil {
			a.respondError(c, err)
			return
		}
	}
	for _, match := range matches {
		if err := a.repo.UpsertMatch(match); err != nil {
			a.respondError(c, err)
			return
		}
	}

	slog.Info("Event synced", "event", eventKey, "teams", len(teams), "matches", len(matches))
	c.JSON(http.StatusOK, gin.H{
		"event":   eventKey,
		"teams":   len(teams),
		"matches": len(matches),
	})
}

func (a *app) handleImportMatches(c *gin.Context) {
	start := time.Now()

	matches, err := a.repo.ListMatches()
	if err != nil {
		a.respondError(c, err)
		return
	}

	created, err := a.scouting.ImportMatches(matches, a.myTeamNumber)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.metrics.AddDerivedRecords(created)
	a.logger.ImportLogger(len(matches), created, time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"matches":         len(matches),
		"created_records": created,
	})
}

func (a *app) handleInsights(c *gin.Context) {
	eventKey, ok := a.eventKeyParam(c)
	if !ok {
		return
	}

	a.metrics.IncrementTBACalls()
	insights, err := a.tba.FetchEventInsights(c.Request.Context(), eventKey)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": eventKey, "insights": insights})
}

func (a *app) handleInsightsCompatibility(c *gin.Context) {
	eventKey, ok := a.eventKeyParam(c)
	if !ok {
		return
	}

	reference := a.myTeamNumber
	if raw := c.Query("team"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			a.respondError(c, errors.NewValidationError("team must be a number"))
			return
		}
		reference = n
	}
	if err := security.ValidateTeamNumber(reference); err != nil {
		a.respondError(c, errors.NewValidationError(err.Error()))
		return
	}

	a.metrics.IncrementTBACalls()
	insights, err := a.tba.FetchEventInsights(c.Request.Context(), eventKey)
	if err != nil {
		a.respondError(c, err)
		return
	}

	scores := make(map[int]int, len(insights))
	for candidate := range insights {
		if candidate == reference {
			continue
		}
		scores[candidate] = adapters.InsightsCompatibility(reference, candidate, insights)
	}

	c.JSON(http.StatusOK, gin.H{
		"event":  eventKey,
		"team":   reference,
		"scores": scores,
	})
}

// respondError converts any error to an AppError response and logs it
func (a *app) respondError(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(c, appErr)
	if appErr.HTTPStatus >= 500 {
		a.logger.APIErrorLogger(appErr, c.Request.Method, c.Request.URL.Path, c.ClientIP(), appErr.HTTPStatus)
	}
	c.JSON(appErr.HTTPStatus, appErr)
}

// teamNumberParam parses and validates the :number path parameter
func (a *app) teamNumberParam(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		a.respondError(c, errors.NewValidationError("team number must be numeric"))
		return 0, false
	}
	if err := security.ValidateTeamNumber(number); err != nil {
		a.respondError(c, errors.NewValidationError(err.Error()))
		return 0, false
	}
	return number, true
}

// eventKeyParam validates the :eventKey path parameter
func (a *app) eventKeyParam(c *gin.Context) (string, bool) {
	eventKey := c.Param("eventKey")
	if err := security.ValidateEventKey(eventKey); err != nil {
		a.respondError(c, errors.NewValidationError(err.Error()))
		return "", false
	}
	return eventKey, true
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Invalid integer in environment", "key", key, "value", value)
	}
	return defaultValue
}
