package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/constancia-hub/backend/config"
	"github.com/constancia-hub/backend/internal/attendance"
	"github.com/constancia-hub/backend/internal/auth"
	"github.com/constancia-hub/backend/internal/certificates"
	"github.com/constancia-hub/backend/internal/courses"
	"github.com/constancia-hub/backend/internal/emaillog"
	"github.com/constancia-hub/backend/internal/institutions"
	"github.com/constancia-hub/backend/internal/middleware"
	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/internal/participants"
	"github.com/constancia-hub/backend/internal/portal"
	"github.com/constancia-hub/backend/internal/render"
	"github.com/constancia-hub/backend/internal/stats"
	"github.com/constancia-hub/backend/internal/surveys"
	"github.com/constancia-hub/backend/pkg/database"
	"github.com/constancia-hub/backend/pkg/mailer"
	redisclient "github.com/constancia-hub/backend/pkg/redis"
	"github.com/constancia-hub/backend/pkg/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	var media *storage.S3
	if cfg.AWS.Region != "" {
		media, err = storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			MediaBucket:     cfg.AWS.MediaBucket,
		}, logger)
		if err != nil {
			logger.Fatal("failed to create S3 client", zap.Error(err))
		}
	} else {
		logger.Warn("AWS_REGION not set, media storage disabled")
	}

	var sender mailer.Sender
	if cfg.Email.APIKey != "" {
		sender = mailer.NewSendgridSender(cfg.Email.APIKey, cfg.Email.FromName, cfg.Email.FromAddress, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, emails will be logged only")
		sender = mailer.NewLogSender(logger)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Repositories.
	authRepo := auth.NewRepository(pool)
	institutionsRepo := institutions.NewRepository(pool)
	coursesRepo := courses.NewRepository(pool)
	participantsRepo := participants.NewRepository(pool)
	certRepo := certificates.NewRepository(pool)
	surveysRepo := surveys.NewRepository(pool)
	emailLogRepo := emaillog.NewRepository(pool)
	statsRepo := stats.NewRepository(pool)

	// Services.
	var mediaStore render.MediaStore
	if media != nil {
		mediaStore = media
	}
	renderer := render.NewRenderer(render.NewFetcher(mediaStore), cfg.Render.BackgroundSource, logger)
	certService := certificates.NewService(pool, certRepo, coursesRepo, participantsRepo, institutionsRepo, authRepo, logger)
	delivery := certificates.NewDelivery(certRepo, renderer, sender, emailLogRepo, logger)
	staging := attendance.NewStaging(rdb.Client, time.Duration(cfg.Import.StagingTTLMin)*time.Minute)

	// Handlers.
	authHandler := auth.NewHandler(authRepo, jwtService, media, logger)
	institutionsHandler := institutions.NewHandler(institutionsRepo, logger)
	coursesHandler := courses.NewHandler(coursesRepo, logger)
	participantsHandler := participants.NewHandler(participantsRepo, certRepo, logger)
	certHandler := certificates.NewHandler(certService, delivery, certRepo, cfg.Portal.SurveyBaseURL, logger)
	importHandler := attendance.NewHandler(staging, certService, cfg.Import.MinMinutes, logger)
	surveysHandler := surveys.NewHandler(surveysRepo, certRepo, logger)
	portalHandler := portal.NewHandler(certRepo, delivery, cfg.Portal.LookupWindowDays, logger)
	emailLogHandler := emaillog.NewHandler(emailLogRepo, logger)
	statsHandler := stats.NewHandler(statsRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public, unauthenticated surface.
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	public := api.Group("/public")
	public.GET("/constancias", portalHandler.Lookup)
	public.POST("/constancias", portalHandler.Lookup)
	public.GET("/constancias/:id/pdf", portalHandler.Download)
	public.GET("/verify/:code", portalHandler.Verify)
	public.GET("/surveys/:token", surveysHandler.Show)
	public.POST("/surveys/:token", surveysHandler.Submit)

	// Evaluator console, JWT-protected.
	protected := api.Group("")
	protected.Use(middleware.JWT(jwtService))
	{
		protected.GET("/evaluators", authHandler.List)
		protected.POST("/profile/signature", authHandler.UploadSignature)
		protected.POST("/profile/photo", authHandler.UploadPhoto)

		protected.GET("/institutions", institutionsHandler.List)
		protected.POST("/institutions", institutionsHandler.Create)
		protected.GET("/courses", coursesHandler.List)
		protected.POST("/courses", coursesHandler.Create)

		protected.GET("/participants", participantsHandler.List)
		protected.POST("/participants", participantsHandler.Create)
		protected.GET("/participants/:id", participantsHandler.Get)
		protected.PUT("/participants/:id", participantsHandler.Update)
		protected.GET("/participants/:id/certificates", participantsHandler.History)

		protected.POST("/imports", importHandler.Upload)
		protected.POST("/imports/:id/confirm", importHandler.Confirm)

		protected.GET("/certificates", certHandler.List)
		protected.POST("/certificates/batch", certHandler.CreateBatch)
		protected.GET("/certificates/:id/pdf", certHandler.Download)
		protected.POST("/certificates/archive", certHandler.Archive)
		protected.POST("/certificates/send", certHandler.Send)

		protected.GET("/email-logs", emailLogHandler.List)
		protected.GET("/leads", surveysHandler.ListLeads)
		protected.GET("/stats", statsHandler.Overview)
	}

	// Admin-only operations.
	admin := api.Group("")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole(string(models.RoleAdmin)))
	{
		admin.PATCH("/evaluators/:id/manager", authHandler.SetManager)
		admin.DELETE("/certificates", certHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
