package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/app"
	"wellbeing-weather-service/internal/config"
	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/infra/memory"
	pgstore "wellbeing-weather-service/internal/infra/postgres"
	redisstore "wellbeing-weather-service/internal/infra/redis"
	"wellbeing-weather-service/internal/scoring"
	"wellbeing-weather-service/internal/stats"
	transport "wellbeing-weather-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	thresholds, err := cfg.Thresholds()
	if err != nil {
		return err
	}
	classifier := scoring.NewClassifier(thresholds)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	catalog := cfg.Questions.Catalog
	if len(catalog) == 0 {
		catalog = sampleQuestions()
	}
	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(catalog)
	var surveyRepo app.SurveyRepository = memory.NewSurveyStore()
	if pool != nil {
		pgLoader := pgstore.NewQuestionLoader(pool)
		if err := pgLoader.SeedQuestions(ctx, catalog); err != nil {
			return err
		}
		loader = pgLoader
		surveyRepo = pgstore.NewSurveyStore(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	var alertRepo app.AlertRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionRepository(redisClient, loader, questionTTL)
		alertRepo = redisstore.NewAlertStore(redisClient)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
		alertRepo = memory.NewAlertStore()
	}

	users := cfg.Users
	if len(users) == 0 {
		users = sampleUsers()
	}
	directory := memory.NewUserDirectory(users)

	windowDays := cfg.Stats.WindowDays
	if windowDays <= 0 {
		windowDays = stats.DefaultWindowDays
	}

	alertService := app.NewAlertService(alertRepo)
	detector := alerts.NewDetector(classifier, cfg.Alerts.ScoreDropDelta)
	surveyService := app.NewSurveyService(directory, questionRepo, surveyRepo, classifier, detector, alertService)
	teamService := app.NewTeamService(directory, surveyRepo, classifier, windowDays)

	router := transport.NewRouter(
		transport.NewAPI(surveyService, alertService, teamService),
		transport.NewWSHandler(alertService),
	)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		slog.Info("starting wellbeing weather service",
			"port", finalPort,
			"postgres", pool != nil,
			"redis", redisClient != nil,
			"low_min", thresholds.LowMin,
			"medium_min", thresholds.MediumMin)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions is the default daily check-in used when the config has no catalog.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "energy", Text: "How energized did you feel today?", Category: "energy", Weight: 1.0, IsActive: true},
		{ID: "workload", Text: "How manageable was your workload?", Category: "workload", Weight: 1.2, IsActive: true},
		{ID: "support", Text: "How supported did you feel by your team?", Category: "support", Weight: 1.0, IsActive: true},
		{ID: "focus", Text: "How well could you focus on meaningful work?", Category: "growth", Weight: 0.8, IsActive: true},
		{ID: "balance", Text: "How balanced were work and rest?", Category: "balance", Weight: 1.0, IsActive: true},
	}
}

func sampleUsers() []domain.User {
	return []domain.User{
		{ID: "admin", Name: "Admin", Department: "Operations", Role: domain.RoleAdmin, IsActive: true},
		{ID: "hr-1", Name: "Hana Ito", Department: "People", Role: domain.RoleHR, IsActive: true},
		{ID: "mgr-1", Name: "Mia Lopez", Department: "Engineering", Role: domain.RoleManager, IsActive: true},
		{ID: "emp-1", Name: "Ben Okafor", Department: "Engineering", ManagerID: "mgr-1", Role: domain.RoleEmployee, IsActive: true},
		{ID: "emp-2", Name: "Cleo Marsh", Department: "Design", ManagerID: "mgr-1", Role: domain.RoleEmployee, IsActive: true},
	}
}
