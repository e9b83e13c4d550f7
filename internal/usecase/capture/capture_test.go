package capture

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/usecase/orientation"
	"watermark-camera/internal/usecase/watermarks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type fakeRepo struct {
	saved   map[string]domain.PersistenceState
	saveErr error
	records map[string]*domain.CaptureRecord
}

func (r *fakeRepo) Save(ctx context.Context, id string, state domain.PersistenceState) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[id] = state
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*domain.CaptureRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

type fakeFiles struct {
	objects map[string][]byte
	err     error
}

func (f *fakeFiles) SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[path] = payload
	return nil
}

type fakeProducer struct {
	messages [][]byte
	err      error
}

func (p *fakeProducer) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, value)
	return nil
}

type fixture struct {
	uc       *Usecase
	repo     *fakeRepo
	files    *fakeFiles
	producer *fakeProducer
	registry *watermarks.Registry
}

func newFixture() *fixture {
	zlog.Init()
	repo := &fakeRepo{saved: map[string]domain.PersistenceState{}, records: map[string]*domain.CaptureRecord{}}
	files := &fakeFiles{objects: map[string][]byte{}}
	producer := &fakeProducer{}
	registry := watermarks.NewRegistry()
	monitor := orientation.NewMonitor(orientation.DefaultHysteresisDegrees)

	uc := NewUsecase(repo, files, producer, registry, monitor, &zlog.Logger, retry.Strategy{Attempts: 1})
	return &fixture{uc: uc, repo: repo, files: files, producer: producer, registry: registry}
}

func submitInput() SubmitInput {
	return SubmitInput{
		Data:       strings.NewReader("raw-bytes"),
		Size:       9,
		Exif:       domain.ExifRotate90,
		Device:     domain.ReadingUpright,
		Location:   "Lisbon",
		CapturedAt: time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC),
	}
}

func TestSubmit_StagesRecordsAndEnqueues(t *testing.T) {
	f := newFixture()

	task, err := f.uc.Submit(context.Background(), submitInput())
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)

	assert.Equal(t, domain.StagedPath(task.ID), task.StagedPath)
	assert.Equal(t, []byte("raw-bytes"), f.files.objects[task.StagedPath])
	assert.Equal(t, domain.StateReceived, f.repo.saved[task.ID])
	require.Len(t, f.producer.messages, 1)

	var queued domain.CaptureTask
	require.NoError(t, json.Unmarshal(f.producer.messages[0], &queued))
	assert.Equal(t, task.ID, queued.ID)
	assert.Equal(t, domain.ExifRotate90, queued.Exif)
	assert.Equal(t, domain.ReadingUpright, queued.Device)
	assert.Equal(t, "Lisbon", queued.Location)
	assert.Len(t, queued.Watermarks, 2)
}

func TestSubmit_TaskCarriesWatermarkSnapshot(t *testing.T) {
	f := newFixture()

	task, err := f.uc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	// Edits after submission must not change the already-queued task.
	f.registry.Clear()
	assert.Len(t, task.Watermarks, 2)

	var queued domain.CaptureTask
	require.NoError(t, json.Unmarshal(f.producer.messages[0], &queued))
	assert.Len(t, queued.Watermarks, 2)
}

func TestSubmit_ZeroCapturedAtDefaultsToNow(t *testing.T) {
	f := newFixture()

	in := submitInput()
	in.CapturedAt = time.Time{}

	task, err := f.uc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, task.CapturedAt.IsZero())
}

func TestSubmit_StagingFailureAborts(t *testing.T) {
	f := newFixture()
	f.files.err = errors.New("storage unavailable")

	_, err := f.uc.Submit(context.Background(), submitInput())
	assert.Error(t, err)
	assert.Empty(t, f.repo.saved)
	assert.Empty(t, f.producer.messages)
}

func TestSubmit_EnqueueFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.producer.err = errors.New("broker down")

	_, err := f.uc.Submit(context.Background(), submitInput())
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	f := newFixture()
	f.repo.records["cap-1"] = &domain.CaptureRecord{ID: "cap-1", State: domain.StateCompleted}

	rec, err := f.uc.Get(context.Background(), "cap-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, rec.State)

	_, err = f.uc.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestObserveGravity(t *testing.T) {
	f := newFixture()

	assert.Equal(t, domain.ReadingUpright, f.uc.ObserveGravity(5))
	assert.Equal(t, domain.ReadingRotatedRight, f.uc.ObserveGravity(90))
	// Jitter inside the hysteresis band holds the reading.
	assert.Equal(t, domain.ReadingRotatedRight, f.uc.ObserveGravity(40))
}
