package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	httpapi "github.com/aureliov/medicall/internal/api/http"
	"github.com/aureliov/medicall/internal/config"
	"github.com/aureliov/medicall/internal/repository"
	"github.com/aureliov/medicall/internal/repository/model"
	"github.com/aureliov/medicall/internal/service"
	"github.com/aureliov/medicall/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	if cfg.Auth.JWTSecret == "" {
		log.Error("jwt secret is not configured")
		os.Exit(1)
	}

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	appointmentRepo := repository.NewPostgresAppointmentRepository(db)
	doctorRepo := repository.NewPostgresDoctorRepository(db)
	messageRepo := repository.NewPostgresMessageRepository(db)
	eventRepo := repository.NewPostgresCallEventRepository(db)

	authService := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	authorizer := service.NewAuthorizer(appointmentRepo, log)
	audit := service.NewAuditRecorder(eventRepo, log)
	callService := service.NewCallService(authorizer, messageRepo, audit, log)
	telemedicineService := service.NewTelemedicineService(authorizer, appointmentRepo, doctorRepo, messageRepo, cfg.WebRTC, log)

	callController := httpapi.NewCallController(authService, callService, log)
	telemedicineController := httpapi.NewTelemedicineController(telemedicineService)

	router := httpapi.SetupRouter(authService, callController, telemedicineController)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&model.Appointment{}, &model.Doctor{}, &model.TelemedicineMessage{}, &model.TelemedicineEvent{})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
