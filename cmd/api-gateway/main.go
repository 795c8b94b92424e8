package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/handler"
	"github.com/pimacad/academico-api/internal/middleware"
	"github.com/pimacad/academico-api/internal/repository"
	"github.com/pimacad/academico-api/internal/service"
	"github.com/pimacad/academico-api/internal/store"
	"github.com/pimacad/academico-api/pkg/config"
	"github.com/pimacad/academico-api/pkg/logger"
	corsmiddleware "github.com/pimacad/academico-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pimacad/academico-api/pkg/middleware/requestid"
	"github.com/pimacad/academico-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// A corrupt data file is fatal: refusing to start beats silently
	// resetting the academic records to empty.
	st, err := store.Open(cfg.Store.Path, logr)
	if err != nil {
		logr.Sugar().Fatalw("cannot open data store", "path", cfg.Store.Path, "error", err)
	}

	validate := validator.New()

	auditRepo := repository.NewAuditRepository(st)
	credRepo := repository.NewCredentialRepository(st)
	studentRepo := repository.NewStudentRepository(st, auditRepo, logr)
	classRepo := repository.NewClassRepository(st, auditRepo, logr)
	activityRepo := repository.NewActivityRepository(st, auditRepo, logr)

	authSvc := service.NewAuthService(credRepo, auditRepo, validate, logr, service.AuthConfig{
		SessionTTL: cfg.Auth.SessionTTL,
	})
	studentSvc := service.NewStudentService(studentRepo, classRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, validate, logr)
	querySvc := service.NewQuickQueryService(classRepo, activityRepo, logr)
	metricsSvc := service.NewMetricsService(authSvc.ActiveSessions)
	chatbotSvc := service.NewChatbotService(studentSvc, querySvc, metricsSvc, validate, logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("cannot prepare export storage", "dir", cfg.Reports.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(classRepo, studentRepo, activityRepo, exportStorage, signer, service.ReportConfig{
		APIPrefix:         cfg.APIPrefix,
		WorkerConcurrency: cfg.Reports.WorkerConcurrency,
		WorkerRetries:     cfg.Reports.WorkerRetries,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.SeedDemoData {
		seeder := service.NewSeeder(credRepo, studentRepo, classRepo, cfg.Auth.BcryptCost, logr)
		if err := seeder.Run(ctx); err != nil {
			logr.Sugar().Fatalw("seeding demo data failed", "error", err)
		}
	}

	authSvc.StartSweeper(ctx, cfg.Auth.SweepInterval)
	reportSvc.Start(ctx)
	defer reportSvc.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	registerRoutes(r, cfg, authSvc, metricsSvc,
		handler.NewAuthHandler(authSvc),
		handler.NewStudentHandler(studentSvc),
		handler.NewClassHandler(classSvc, activitySvc),
		handler.NewActivityHandler(activitySvc),
		handler.NewQuickQueryHandler(querySvc),
		handler.NewReportHandler(reportSvc),
		handler.NewChatbotHandler(chatbotSvc),
		handler.NewAuditHandler(auditRepo),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	authSvc *service.AuthService,
	metricsSvc *service.MetricsService,
	authHandler *handler.AuthHandler,
	studentHandler *handler.StudentHandler,
	classHandler *handler.ClassHandler,
	activityHandler *handler.ActivityHandler,
	queryHandler *handler.QuickQueryHandler,
	reportHandler *handler.ReportHandler,
	chatbotHandler *handler.ChatbotHandler,
	auditHandler *handler.AuditHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.SessionAuth(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/logout", authHandler.Logout)

	authed.POST("/chatbot/perguntar", chatbotHandler.Ask)
	authed.GET("/meu_status", studentHandler.MyStatus)

	alunos := authed.Group("/alunos")
	alunos.POST("", middleware.RequireAction(authz.ActionStudentCreate), studentHandler.Create)
	alunos.GET("", middleware.RequireAction(authz.ActionStudentList), studentHandler.List)
	alunos.GET("/:ra", studentHandler.Get)
	alunos.GET("/:ra/notas", studentHandler.Grades)
	alunos.PUT("/:ra/notas", middleware.RequireAction(authz.ActionStudentGrade), studentHandler.SetGrades)
	alunos.GET("/:ra/status", studentHandler.Status)
	alunos.DELETE("/:ra", middleware.RequireAction(authz.ActionStudentArchive), studentHandler.Archive)

	turmas := authed.Group("/turmas")
	turmas.POST("", middleware.RequireAction(authz.ActionClassCreate), classHandler.Create)
	turmas.GET("", middleware.RequireAction(authz.ActionClassList), classHandler.List)
	turmas.GET("/:codigo", classHandler.Get)
	turmas.POST("/:codigo/alunos", middleware.RequireAction(authz.ActionClassEnroll), classHandler.Enroll)
	turmas.GET("/:codigo/atividades", classHandler.Activities)

	atividades := authed.Group("/atividades")
	atividades.POST("", middleware.RequireAction(authz.ActionActivityCreate), activityHandler.Create)
	atividades.GET("/:id", activityHandler.Get)
	atividades.POST("/:id/entregas", activityHandler.Deliver)
	atividades.PUT("/:id/entregas/nota", middleware.RequireAction(authz.ActionActivityGrade), activityHandler.Grade)

	consulta := authed.Group("/consulta_rapida", middleware.RequireRoles(authz.RoleProfessor))
	consulta.GET("/atividades/:turma", queryHandler.ClassActivities)
	consulta.GET("/pendencias_entrega/:turma", queryHandler.DeliveryPendencies)
	consulta.GET("/pendencias_nota/:turma", queryHandler.GradePendencies)

	relatorios := authed.Group("/relatorios")
	relatorios.GET("/turma/:codigo", middleware.RequireAction(authz.ActionReportView), reportHandler.ClassReport)
	relatorios.POST("/turma/:codigo/export", middleware.RequireAction(authz.ActionReportExport), reportHandler.RequestExport)
	relatorios.GET("/export/:id", middleware.RequireAction(authz.ActionReportView), reportHandler.ExportJob)

	authed.GET("/auditoria", middleware.RequireAction(authz.ActionAuditRead), auditHandler.List)

	// Download is token-authorized; the signed URL must work without a
	// session header.
	api.GET("/relatorios/download/:token", reportHandler.Download)
}
