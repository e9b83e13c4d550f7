package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/repository/capture"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

// CapturesRepository persists per-capture pipeline state and artifact paths.
type CapturesRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewCapturesRepository(db *dbpg.DB, retries retry.Strategy) *CapturesRepository {
	return &CapturesRepository{
		db:      db,
		retries: retries,
	}
}

func (r *CapturesRepository) Save(ctx context.Context, id string, state domain.PersistenceState) error {
	query := `
		INSERT INTO captures (id, state, message, created_at, updated_at)
		VALUES ($1, $2, '', $3, $3)
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query, id, state, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}
	return nil
}

// SaveOutcome records the terminal state of one capture.
func (r *CapturesRepository) SaveOutcome(ctx context.Context, outcome *domain.PersistenceOutcome) error {
	query := `
		UPDATE captures
		SET state = $1, message = $2,
		    private_path = $3, original_path = $4, watermarked_path = $5,
		    updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query,
		outcome.State,
		outcome.Message,
		nullable(outcome.Artifacts[domain.ArtifactPrivateOriginal]),
		nullable(outcome.Artifacts[domain.ArtifactGalleryOriginal]),
		nullable(outcome.Artifacts[domain.ArtifactGalleryWatermarked]),
		time.Now(),
		outcome.CaptureID,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return capture.ErrCaptureNotFound
	}
	return nil
}

func (r *CapturesRepository) GetByID(ctx context.Context, id string) (*domain.CaptureRecord, error) {
	query := `
		SELECT id, state, message, private_path, original_path, watermarked_path, created_at, updated_at
		FROM captures
		WHERE id = $1
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query capture: %w", err)
	}

	var rec domain.CaptureRecord
	var private, original, watermarked sql.NullString
	err = row.Scan(
		&rec.ID,
		&rec.State,
		&rec.Message,
		&private,
		&original,
		&watermarked,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, capture.ErrCaptureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan capture: %w", err)
	}

	rec.Artifacts = make(map[domain.ArtifactKind]string)
	if private.Valid {
		rec.Artifacts[domain.ArtifactPrivateOriginal] = private.String
	}
	if original.Valid {
		rec.Artifacts[domain.ArtifactGalleryOriginal] = original.String
	}
	if watermarked.Valid {
		rec.Artifacts[domain.ArtifactGalleryWatermarked] = watermarked.String
	}
	return &rec, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
