package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "watermark-camera/internal/broker/kafka"
	"watermark-camera/internal/config"
	captures_h "watermark-camera/internal/http-server/handler/captures"
	overlays_h "watermark-camera/internal/http-server/handler/overlays"
	"watermark-camera/internal/http-server/router"
	minio_repo "watermark-camera/internal/repository/photo/minio"
	"watermark-camera/internal/usecase/capture"
	"watermark-camera/internal/usecase/compositor"
	"watermark-camera/internal/usecase/orientation"
	"watermark-camera/internal/usecase/watermarks"

	capture_repo "watermark-camera/internal/repository/capture/db/postgres"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.ProducerClient
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fileRepo, err := minio_repo.NewMinIORepository(cfg, retries, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	capturesRepo := capture_repo.NewCapturesRepository(db, retries)

	producer := kafka_impl.NewTaskProducer(cfg)

	registry := watermarks.NewRegistry()
	monitor := orientation.NewMonitor(cfg.Pipeline.OrientationHysteresisDeg)

	captureUsecase := capture.NewUsecase(capturesRepo, fileRepo, producer, registry, monitor, logger, retries)

	engine := compositor.NewEngine(objectImageLoader(fileRepo), logger)

	h := &router.Handler{
		CaptureHandler:   captures_h.NewHandler(captureUsecase, logger),
		WatermarkHandler: overlays_h.NewHandler(registry, engine, logger),
	}

	mux := router.SetupRouter(h)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
	}, nil
}

// objectImageLoader resolves image watermark references against the object
// store, so a reference like "watermarks/logo.png" points into the bucket.
func objectImageLoader(repo *minio_repo.FileRepository) compositor.ImageLoader {
	return func(ref string) (image.Image, error) {
		reader, err := repo.GetObject(context.Background(), ref)
		if err != nil {
			return nil, err
		}
		defer reader.Close()

		img, _, err := image.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode watermark image %s: %w", ref, err)
		}
		return img, nil
	}
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		if a.db != nil && a.db.Master != nil {
			a.db.Master.Close()
		}

		if a.producer != nil {
			a.producer.Close()
		}

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
