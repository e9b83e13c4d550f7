package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"os/signal"
	"syscall"

	"watermark-camera/internal/broker"
	kafka_impl "watermark-camera/internal/broker/kafka"
	"watermark-camera/internal/config"
	"watermark-camera/internal/domain"
	minio_repo "watermark-camera/internal/repository/photo/minio"
	"watermark-camera/internal/usecase/compositor"
	"watermark-camera/internal/usecase/orientation"
	"watermark-camera/internal/usecase/pipeline"

	capture_repo "watermark-camera/internal/repository/capture/db/postgres"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// Worker drains capture tasks from the broker and drives each one through
// the persistence pipeline.
type Worker struct {
	cfg          *config.Config
	logger       *zlog.Zerolog
	db           *dbpg.DB
	consumer     broker.Consumer
	producer     broker.Producer
	fileRepo     *minio_repo.FileRepository
	orchestrator *pipeline.Orchestrator
	capturesRepo *capture_repo.CapturesRepository
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
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

	engine := compositor.NewEngine(objectImageLoader(fileRepo), logger)
	orchestrator := pipeline.NewOrchestrator(fileRepo, engine, orientation.NewReconciler(), logger)

	return &Worker{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		consumer:     kafka_impl.NewTaskConsumer(cfg),
		producer:     kafka_impl.NewOutcomeProducer(cfg),
		fileRepo:     fileRepo,
		orchestrator: orchestrator,
		capturesRepo: capture_repo.NewCapturesRepository(db, retries),
	}, nil
}

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

func (w *Worker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan kafka.Message, w.cfg.Worker.Concurrency)

	go w.consumer.StartConsuming(ctx, messages, w.cfg.DefaultRetryStrategy())

	for i := 0; i < w.cfg.Worker.Concurrency; i++ {
		go w.worker(ctx, i, messages)
	}

	w.logger.Info().Int("concurrency", w.cfg.Worker.Concurrency).Msg("Worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	w.logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	cancel()

	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close consumer")
	}
	if err := w.producer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close producer")
	}
	if w.db != nil && w.db.Master != nil {
		w.db.Master.Close()
	}

	return nil
}

func (w *Worker) worker(ctx context.Context, id int, messages <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Int("worker_id", id).Msg("Worker stopped")
			return
		case msg := <-messages:
			w.safeProcessMessage(ctx, id, msg)
		}
	}
}

// safeProcessMessage keeps a panicking task from taking the whole worker
// down with it.
func (w *Worker) safeProcessMessage(ctx context.Context, workerID int, msg kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Msg("Recovered from panic while processing task")
		}
	}()
	w.processMessage(ctx, workerID, msg)
}

func (w *Worker) processMessage(ctx context.Context, workerID int, msg kafka.Message) {
	var task domain.CaptureTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		w.logger.Error().Err(err).Int("worker_id", workerID).Msg("Failed to unmarshal capture task")
		return
	}

	w.logger.Info().
		Int("worker_id", workerID).
		Str("capture_id", task.ID).
		Int("watermarks", len(task.Watermarks)).
		Msg("Processing capture")

	raw, err := w.fetchStaged(ctx, task.StagedPath)
	if err != nil {
		w.logger.Error().Err(err).Str("capture_id", task.ID).Msg("Failed to fetch staged capture")
		w.recordOutcome(ctx, &domain.PersistenceOutcome{
			CaptureID: task.ID,
			State:     domain.StateFailed,
			Message:   fmt.Sprintf("staged capture could not be read: %v", err),
			Artifacts: map[domain.ArtifactKind]string{},
		})
		w.commit(ctx, task.ID, msg)
		return
	}

	capture := &domain.Capture{
		ID:         task.ID,
		Raw:        raw,
		Exif:       task.Exif,
		Device:     task.Device,
		Location:   task.Location,
		CapturedAt: task.CapturedAt,
		Watermarks: task.Watermarks,
	}

	outcome := w.orchestrator.Process(ctx, capture)

	w.recordOutcome(ctx, outcome)

	if err := w.fileRepo.RemoveObject(ctx, task.StagedPath); err != nil {
		w.logger.Warn().Err(err).Str("capture_id", task.ID).Msg("Failed to clean staged capture")
	}

	w.commit(ctx, task.ID, msg)

	w.logger.Info().
		Int("worker_id", workerID).
		Str("capture_id", task.ID).
		Str("state", string(outcome.State)).
		Msg("Capture processed")
}

func (w *Worker) fetchStaged(ctx context.Context, path string) ([]byte, error) {
	reader, err := w.fileRepo.GetObject(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// recordOutcome writes the terminal state to the database and publishes it
// for downstream consumers. Either failure is logged; the artifacts are
// already stored, so losing the bookkeeping must not fail the capture.
func (w *Worker) recordOutcome(ctx context.Context, outcome *domain.PersistenceOutcome) {
	if err := w.capturesRepo.SaveOutcome(ctx, outcome); err != nil {
		w.logger.Error().Err(err).Str("capture_id", outcome.CaptureID).Msg("Failed to save outcome")
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		w.logger.Error().Err(err).Str("capture_id", outcome.CaptureID).Msg("Failed to marshal outcome")
		return
	}
	if err := w.producer.Send(ctx, w.cfg.DefaultRetryStrategy(), []byte(outcome.CaptureID), payload); err != nil {
		w.logger.Error().Err(err).Str("capture_id", outcome.CaptureID).Msg("Failed to publish outcome")
	}
}

func (w *Worker) commit(ctx context.Context, captureID string, msg kafka.Message) {
	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.logger.Error().Err(err).Str("capture_id", captureID).Msg("Failed to commit message")
	}
}
