package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/encoreapp/encore/internal/config"
	"github.com/encoreapp/encore/internal/database"
	"github.com/encoreapp/encore/internal/handler"
	"github.com/encoreapp/encore/internal/repository"
	"github.com/encoreapp/encore/internal/router"
	"github.com/encoreapp/encore/internal/service"
	"github.com/encoreapp/encore/internal/session"
	"github.com/encoreapp/encore/internal/storage"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	// Schema is migrated once, before any route is registered, so request
	// paths never probe for tables or columns.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate failed: %v", err)
	}
	cancel()

	files := newBlobStore(cfg)

	accounts := repository.NewAccountRepo(db)
	profiles := repository.NewProfileRepo(db)
	media := repository.NewMediaRepo(db)

	sessions := session.NewStore(config.NewRedisClient(), time.Duration(cfg.SessionTTLH)*time.Hour)
	audit := &service.AuditPublisher{URL: cfg.AMQPURL}
	remover := &service.AccountRemover{
		Accounts: accounts,
		Profiles: profiles,
		Media:    media,
		Files:    files,
		Audit:    audit,
	}

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, accounts, sessions),
		Profile:   handler.NewProfileHandler(profiles, media, files),
		Media:     handler.NewMediaHandler(media, files, audit),
		Directory: handler.NewDirectoryHandler(profiles, media),
		Manager:   handler.NewManagerHandler(accounts, profiles, media, files, remover),
	}

	e := echo.New()
	router.Register(e, cfg, h, sessions, accounts)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// newBlobStore picks the upload backend from configuration.  Disk is the
// default; S3 is used when UPLOAD_DRIVER=s3 and credentials are present.
func newBlobStore(cfg config.Config) storage.BlobStore {
	if cfg.UploadDriver == "s3" {
		s, err := storage.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			log.Fatalf("s3 storage init failed: %v", err)
		}
		return s
	}
	s, err := storage.NewDiskStore(cfg.UploadRoot)
	if err != nil {
		log.Fatalf("disk storage init failed: %v", err)
	}
	return s
}
