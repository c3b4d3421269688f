package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/catalog"
	"github.com/avolkovs/clipstream/internal/clips/httpapi"
	"github.com/avolkovs/clipstream/internal/clips/identity"
	"github.com/avolkovs/clipstream/internal/clips/repository"
	"github.com/avolkovs/clipstream/internal/clips/upload"
	pg "github.com/avolkovs/clipstream/internal/storage/postgres"
	s3store "github.com/avolkovs/clipstream/internal/storage/s3"
)

func run(ctx context.Context) error {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	blobs, err := s3store.New(ctx, s3store.Config{
		Region:    envOr("S3_REGION", "us-east-1"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Bucket:    os.Getenv("S3_BUCKET"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
	})
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	// Без DATABASE_URL работаем на in-memory каталоге (dev mode).
	var repo repository.ClipRepository
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := pg.Connect(ctx, dsn)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		repo = pg.NewClipRepo(db, pg.NewOutboxRepo(db))
	} else {
		logger.Warn().Msg("DATABASE_URL is empty, using in-memory catalog")
		repo = repository.NewMemoryRepository()
	}

	// Real session management lives in front of this service; the dev
	// identity comes from the environment.
	who := identity.NewStatic(&identity.User{
		ID:          envOr("CLIPS_USER_ID", "dev"),
		DisplayName: envOr("CLIPS_USER_NAME", "Developer"),
	})

	cat := catalog.New(repo, logger)
	orch := upload.New(blobs, cat, who, logger)
	// No frame extractor is deployed alongside this service yet; clients
	// generate candidate stills themselves and POST the chosen one.
	h := httpapi.New(cat, orch, nil, logger)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              envOr("HTTP_ADDR", ":8081"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
