package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/time-roi-meter/docs"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/cache"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/config"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/encoding"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/errors"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/frontend"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/middleware"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/resilience"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/scoring"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/security"
	"github.com/ZanzyTHEbar/time-roi-meter/internal/types"
)

// server bundles the long-lived components behind the HTTP API.
type server struct {
	cfg           *config.Config
	metrics       *monitoring.Metrics
	logger        *monitoring.Logger
	memoryMonitor *monitoring.MemoryMonitor
	tracer        *monitoring.Tracer
	cache         *cache.Cache
	redis         *ratelimit.RedisClient
	limiter       *ratelimit.RateLimiter
	degradation   *resilience.DegradationManager
	codec         *encoding.JSONCodec
	compression   *middleware.CompressionMiddleware
	security      *security.SecurityMiddleware
	spaHandler    gin.HandlerFunc
}

func newServer(cfg *config.Config) (*server, error) {
	metrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	secConfig := security.DefaultSecurityConfig()
	secConfig.MaxBodyBytes = cfg.MaxBodyBytes
	secConfig.RequestTimeout = cfg.RequestTimeout()
	if len(cfg.AllowedOrigins) > 0 {
		secConfig.AllowedOrigins = cfg.AllowedOrigins
	}

	// An unreachable Redis is not fatal; the limiter falls back to its
	// in-memory windows and the health endpoint reports the degradation.
	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = cfg.IPLimitPerMin
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, metrics)

	degradation := resilience.NewDegradationManager(resilience.DefaultDegradationConfig())
	if redisClient.IsEnabled() {
		degradation.RegisterService("redis", redisClient.HealthCheck)
	}

	distFS, err := frontend.GetDistFS()
	if err != nil {
		return nil, err
	}
	indexTemplate, err := frontend.LoadIndexTemplate(distFS)
	if err != nil {
		return nil, err
	}

	return &server{
		cfg:           cfg,
		metrics:       metrics,
		logger:        appLogger,
		memoryMonitor: monitoring.NewMemoryMonitor(5*time.Second, 50*1024*1024, appLogger),
		tracer:        monitoring.NewTracer("time-roi-meter", appLogger),
		cache:         cache.NewCache(cfg.CacheTTL()),
		redis:         redisClient,
		limiter:       limiter,
		degradation:   degradation,
		codec:         encoding.NewJSONCodec(),
		compression:   middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		security:      security.NewSecurityMiddleware(secConfig),
		spaHandler:    frontend.NewSPAHandler(distFS, indexTemplate),
	}, nil
}

// close releases background goroutines and connections.
func (s *server) close() {
	s.memoryMonitor.Stop()
	s.limiter.Close()
	errors.SafeClose(s.redis, "redis")
}

// routes assembles the middleware chain and route table. The order
// matters: compression wraps the writer first, monitoring sees every
// request, errors are rendered before security checks can reject, and
// the cache sits innermost so hits skip only the handler.
func (s *server) routes() *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(s.security.Config().TrustedProxies)

	r.Use(s.compression.Handler())
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.TracingMiddleware(s.tracer))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger))

	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  s.security.Config().AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(security.CSPMiddleware())
	r.Use(s.security.RequestTimeout)
	r.Use(s.security.ValidateContentType)
	r.Use(s.security.BodySizeLimit)

	r.Use(s.limiter.IPRateLimitMiddleware())
	r.Use(s.cache.Middleware(s.metrics, s.logger))

	api := r.Group("/api/v1")
	{
		// A second, per-endpoint budget on top of the global IP limit so
		// one client hammering the scorer cannot starve its other calls.
		scoringLimit := s.limiter.EndpointRateLimitMiddleware("scoring", 2*s.cfg.IPLimitPerMin)
		api.POST("/score", scoringLimit, s.handleScore)
		api.POST("/score/equal", scoringLimit, s.handleScoreEqual)
		api.GET("/interpret", s.handleInterpret)
	}

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.metrics.GetStats())
	})
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.cache.Stats())
	})

	r.GET("/ratelimit/status", s.limiter.HandleRateLimitStatus())
	r.GET("/ratelimit/stats", s.limiter.HandleRateLimitStats())
	r.POST("/ratelimit/invalidate/:ip", s.limiter.HandleInvalidateIP())

	r.GET("/pools/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "json",
			"stats": s.codec.GetStats(),
		})
	})
	r.GET("/pools/compression", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "compression",
			"stats": s.compression.GetStats(),
		})
	})

	r.GET("/memory", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.memoryMonitor.GetStats())
	})
	r.POST("/memory/optimize", func(c *gin.Context) {
		s.memoryMonitor.OptimizeMemory()
		c.JSON(http.StatusOK, gin.H{"message": "memory optimization triggered"})
	})
	if os.Getenv("ENABLE_GC_CONTROL") == "true" {
		r.POST("/memory/gc", func(c *gin.Context) {
			s.memoryMonitor.ForceGC()
			c.JSON(http.StatusOK, gin.H{"message": "garbage collection triggered"})
		})
	}

	r.GET("/debug/traces", func(c *gin.Context) {
		traces := make(map[string]interface{})
		for spanID, span := range s.tracer.GetSpans() {
			traces[string(spanID)] = span
		}
		c.JSON(http.StatusOK, gin.H{
			"traces":    traces,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if s.cfg.EnableProfiling {
		slog.Info("Enabling performance profiling endpoints")
		r.GET("/debug/pprof/*filepath", gin.WrapF(pprof.Index))
		r.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		r.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		r.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		r.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	}

	// Anything else is either an unknown API route or the SPA.
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			appErr := errors.NewNotFoundError("Route not found")
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		s.spaHandler(c)
	})

	return r
}

// handleScore godoc
// @Summary Score an activity with weighted ratings
// @Description Computes the weighted time-ROI score for an activity. Optional custom weights must sum to 1.0.
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body types.ScoreRequest true "Activity measures"
// @Success 200 {object} types.ScoreResponse
// @Failure 400 {object} errors.AppError
// @Router /score [post]
func (s *server) handleScore(c *gin.Context) {
	start := time.Now()

	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.rejectInvalid(c, errors.NewValidationError("Request body must be valid JSON"))
		return
	}

	weights := scoring.DefaultWeights()
	if req.Weights != nil {
		weights = scoring.Weights{
			Effort:         req.Weights.Effort,
			SkillGrowth:    req.Weights.SkillGrowth,
			PerceivedValue: req.Weights.PerceivedValue,
		}
	}

	eval, err := scoring.Evaluate(scoringInput(req), weights)
	if err != nil {
		s.rejectInvalid(c, errors.ToAppError(err))
		return
	}

	s.metrics.IncrementWeightedScore()
	s.logger.ScoringLogger("weighted", eval.Score, string(eval.Category), time.Since(start), c.GetBool("cache_hit"))

	s.respond(c, http.StatusOK, types.ScoreResponse{
		Score:       eval.Score,
		Category:    string(eval.Category),
		Description: eval.Description,
		Weights: &types.ScoreWeights{
			Effort:         weights.Effort,
			SkillGrowth:    weights.SkillGrowth,
			PerceivedValue: weights.PerceivedValue,
		},
	})
}

// handleScoreEqual godoc
// @Summary Score an activity with equal weighting
// @Description Computes the time-ROI score with all three ratings weighted equally. Any weights in the body are ignored.
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body types.ScoreRequest true "Activity measures"
// @Success 200 {object} types.ScoreResponse
// @Failure 400 {object} errors.AppError
// @Router /score/equal [post]
func (s *server) handleScoreEqual(c *gin.Context) {
	start := time.Now()

	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.rejectInvalid(c, errors.NewValidationError("Request body must be valid JSON"))
		return
	}

	eval, err := scoring.EvaluateEqual(scoringInput(req))
	if err != nil {
		s.rejectInvalid(c, errors.ToAppError(err))
		return
	}

	s.metrics.IncrementEqualWeightScore()
	s.logger.ScoringLogger("equal_weight", eval.Score, string(eval.Category), time.Since(start), c.GetBool("cache_hit"))

	s.respond(c, http.StatusOK, types.ScoreResponse{
		Score:       eval.Score,
		Category:    string(eval.Category),
		Description: eval.Description,
	})
}

// handleInterpret godoc
// @Summary Interpret a score
// @Description Maps a raw score onto its qualitative category and description.
// @Tags scoring
// @Produce json
// @Param score query number true "Score to interpret"
// @Success 200 {object} types.InterpretResponse
// @Failure 400 {object} errors.AppError
// @Router /interpret [get]
func (s *server) handleInterpret(c *gin.Context) {
	raw, ok := c.GetQuery("score")
	if !ok {
		s.rejectInvalid(c, errors.NewValidationError("Score query parameter is required"))
		return
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.rejectInvalid(c, errors.NewValidationError("Score must be a valid number"))
		return
	}

	interpretation := scoring.Interpret(score)
	s.metrics.IncrementInterpretation()

	s.respond(c, http.StatusOK, types.InterpretResponse{
		Score:       score,
		Category:    string(interpretation.Category),
		Description: interpretation.Description,
	})
}

func (s *server) handleHealth(c *gin.Context) {
	services := s.degradation.GetAllServiceHealth()

	response := gin.H{
		"status":    "ok",
		"version":   "1.0.0",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
		"metrics":   s.metrics.GetStats(),
	}

	// Redis going away degrades rate limiting to in-memory; the scorer
	// itself keeps working, so only an emergency-level service turns the
	// status code unhealthy.
	status := http.StatusOK
	for _, service := range services {
		if service.Level != resilience.LevelNormal {
			response["status"] = "degraded"
		}
		if service.Level == resilience.LevelEmergency {
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, response)
}

// respond marshals through the pooled codec; gin's default encoder is
// the fallback if that ever fails.
func (s *server) respond(c *gin.Context, code int, v interface{}) {
	data, err := s.codec.Marshal(v)
	if err != nil {
		c.JSON(code, v)
		return
	}
	c.Data(code, "application/json; charset=utf-8", data)
}

func (s *server) rejectInvalid(c *gin.Context, appErr *errors.AppError) {
	s.metrics.IncrementValidationFailure()
	s.logger.ValidationLogger(appErr.Error(), c.ClientIP())
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

func scoringInput(req types.ScoreRequest) scoring.Input {
	return scoring.Input{
		TimeSpent:      req.TimeSpent,
		Effort:         req.Effort,
		SkillGrowth:    req.SkillGrowth,
		PerceivedValue: req.PerceivedValue,
	}
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// @title Time ROI Meter API
// @version 1.0
// @description Scores how well time was spent from effort, skill growth and perceived value ratings.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	srv, err := newServer(cfg)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer srv.close()

	srv.memoryMonitor.Start()
	monitoring.TuneGC(128 * 1024 * 1024)

	healthCtx, cancelHealth := context.WithCancel(context.Background())
	defer cancelHealth()
	go srv.degradation.StartHealthChecks(healthCtx)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.routes(),
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
