package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mreyes-dev/portfolio-site-backend/api"
	"github.com/mreyes-dev/portfolio-site-backend/config"
	"github.com/mreyes-dev/portfolio-site-backend/database"
	"github.com/mreyes-dev/portfolio-site-backend/models"
	"github.com/mreyes-dev/portfolio-site-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.New()

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetString(cfg, "DATABASE_HOST", "localhost"),
		config.GetString(cfg, "DATABASE_USER", "postgres"),
		config.GetString(cfg, "DATABASE_PASSWORD", ""),
		config.GetString(cfg, "DATABASE_NAME", "portfolio"),
		config.GetString(cfg, "DATABASE_PORT", "5432"),
		config.GetString(cfg, "DATABASE_SSLMODE", "require"),
	)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Printf("Error testing database connection: %v\n", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Item{},
		&models.LearningOutcome{},
		&models.Admin{},
		&models.ContactSubmission{},
		&models.Setting{},
	); err != nil {
		fmt.Printf("Error running migrations: %v\n", err)
		os.Exit(1)
	}

	currentDB := database.New(db)

	if err := seedAdmin(currentDB, cfg); err != nil {
		fmt.Printf("Error seeding admin account: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	storage, err := services.NewS3Storage(ctx, cfg)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	mailer, err := services.NewResendMailer(cfg)
	if err != nil {
		fmt.Printf("Error initializing mailer: %v\n", err)
		os.Exit(1)
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, storage, mailer)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			zlog.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// seedAdmin creates the first dashboard account from ADMIN_EMAIL and
// ADMIN_PASSWORD when the admins table is empty.
func seedAdmin(db database.Database, cfg map[string]string) error {
	count, err := db.AdminRepo().Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := config.GetString(cfg, "ADMIN_EMAIL", "")
	password := config.GetString(cfg, "ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		zlog.Warn().Msg("No admin account exists and ADMIN_EMAIL/ADMIN_PASSWORD are unset; admin routes will be unreachable")
		return nil
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := db.AdminRepo().Add(&admin); err != nil {
		return err
	}

	zlog.Info().Str("email", email).Msg("Seeded initial admin account")
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
