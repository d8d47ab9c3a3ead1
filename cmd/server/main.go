package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api"
	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/cache"
	"github.com/steeveross-eng/huntiq-telemetry/internal/chat"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database"
	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
	"github.com/steeveross-eng/huntiq-telemetry/internal/groupshare"
	"github.com/steeveross-eng/huntiq-telemetry/internal/heading"
	"github.com/steeveross-eng/huntiq-telemetry/internal/logging"
	"github.com/steeveross-eng/huntiq-telemetry/internal/monitoring"
	"github.com/steeveross-eng/huntiq-telemetry/internal/proximity"
	"github.com/steeveross-eng/huntiq-telemetry/internal/push"
	"github.com/steeveross-eng/huntiq-telemetry/internal/realtime"
	"github.com/steeveross-eng/huntiq-telemetry/internal/scoring"
	"github.com/steeveross-eng/huntiq-telemetry/internal/service"
)

const (
	wqsCacheTTL         = 10 * time.Minute
	headingMirrorTTL    = 15 * time.Minute
	groupShareTTL       = 30 * time.Minute
	pushWorkers         = 4
	pushQueueSize       = 256
	healthCheckInterval = 5 * time.Minute
	healthCheckJobName  = "dependency_health_check"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(cfg.Server.GinMode)
	log.Logger = logging.Base

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	redisClient, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	if err := cache.HealthCheck(ctx, redisClient); err != nil {
		log.Fatal().Err(err).Msg("redis health check failed")
	}

	dedupLedger := cache.NewDedupLedger(redisClient)
	wqsCache := cache.NewWQSCache(redisClient, wqsCacheTTL)
	headingMirror := cache.NewHeadingMirror(redisClient, headingMirrorTTL)
	groupShareSnapshot := cache.NewGroupShareSnapshot(redisClient, groupShareTTL)

	authorizer := external.NewStaticAuthorizer()
	userDirectory := external.NewStaticUserDirectory(cfg.Server.UserEmailDomain)

	var mailer external.Mailer = external.NewNoopMailer()
	var weatherProvider external.WeatherProvider = external.NewStubWeatherProvider()
	if cfg.Weather.ProviderBaseURL != "" {
		weatherProvider = external.NewHTTPWeatherProvider(cfg.Weather)
	}

	var pushTransport external.PushTransport
	if cfg.Push.Enabled() {
		pushTransport = external.NewWebPushTransport(cfg.Push)
	} else {
		pushTransport = external.NewNoopPushTransport()
	}

	calculator := scoring.New(db.Waypoints(), db.Trips().Visits())
	waypointService := service.NewWaypointService(db.Waypoints(), calculator)

	proximityEngine := proximity.New(db.Waypoints(), calculator, wqsCache, dedupLedger, db.Alerts().Ledger(), cfg.Proximity)
	outbox := push.NewOutbox(db.Alerts().Notifications(), db.Alerts().Subscriptions(), pushTransport, pushWorkers, pushQueueSize)

	trackingService := service.NewTrackingService(db.Tracking().Sessions(), db.Tracking().Samples(), db, proximityEngine, outbox)
	tripService := service.NewTripService(db.Trips(), userDirectory, mailer)

	poiSource := heading.NewPOISource(db.Waypoints(), calculator, wqsCache)
	headingRegistry := heading.New(poiSource, weatherProvider, headingMirror, cfg.Heading)

	groupshareService := groupshare.New(groupShareSnapshot, db.Group().Positions())
	chatJournal := chat.New(db.Group().Chat())

	hub := realtime.NewHub()
	hubDone := make(chan struct{})
	go hub.Run(hubDone)
	defer close(hubDone)

	jobMonitor := monitoring.NewJobMonitor(db.Conn())
	healthDone := make(chan struct{})
	go runHealthCheckLoop(jobMonitor, db, redisClient, healthCheckInterval, healthDone)
	defer close(healthDone)

	handler := api.NewHandler(
		trackingService,
		tripService,
		waypointService,
		headingRegistry,
		groupshareService,
		chatJournal,
		hub,
		db.Alerts().Subscriptions(),
		authorizer,
	)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORS.AllowOrigins,
		AllowMethods:     cfg.Server.CORS.AllowMethods,
		AllowHeaders:     cfg.Server.CORS.AllowHeaders,
		ExposeHeaders:    cfg.Server.CORS.ExposeHeaders,
		AllowCredentials: cfg.Server.CORS.AllowCredentials,
		MaxAge:           cfg.Server.CORS.MaxAge,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.RegisterRoutes(router, handler, authorizer, cfg.RateLimit)

	log.Info().Str("port", cfg.Server.Port).Msg("starting huntiq telemetry server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// runHealthCheckLoop records a job_runs entry every interval covering a
// round-trip to Postgres and Redis, so an operator can see dependency
// outages in the job history instead of only in logs.
func runHealthCheckLoop(monitor *monitoring.JobMonitor, db *database.Database, redisClient *redis.Client, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			checkDependencyHealth(monitor, db, redisClient)
		}
	}
}

func checkDependencyHealth(monitor *monitoring.JobMonitor, db *database.Database, redisClient *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	job, err := monitor.StartJob(ctx, healthCheckJobName, "periodic", 2, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to start dependency health check job run")
		return
	}

	if err := db.Ping(ctx); err != nil {
		_ = monitor.FailJob(ctx, job.ID, "postgres ping: "+err.Error())
		log.Warn().Err(err).Msg("postgres health check failed")
		return
	}
	if err := cache.HealthCheck(ctx, redisClient); err != nil {
		_ = monitor.FailJob(ctx, job.ID, "redis ping: "+err.Error())
		log.Warn().Err(err).Msg("redis health check failed")
		return
	}

	_ = monitor.UpdateProgress(ctx, job.ID, 2, 2, 0)
	_ = monitor.CompleteJob(ctx, job.ID)
}
