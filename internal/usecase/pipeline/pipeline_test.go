package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/usecase/compositor"
	"watermark-camera/internal/usecase/orientation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

// fakeStore records saved objects and fails any path matching a configured
// prefix.
type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failures []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) failOn(prefix string) {
	s.failures = append(s.failures, prefix)
}

func (s *fakeStore) SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	for _, prefix := range s.failures {
		if strings.HasPrefix(path, prefix) {
			return errors.New("storage unavailable")
		}
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = payload
	return nil
}

func newTestOrchestrator(store photoStore) *Orchestrator {
	zlog.Init()
	engine := compositor.NewEngine(nil, &zlog.Logger)
	return NewOrchestrator(store, engine, orientation.NewReconciler(), &zlog.Logger)
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func testCapture(t *testing.T, raw []byte) *domain.Capture {
	t.Helper()
	return &domain.Capture{
		ID:         "cap-1",
		Raw:        raw,
		Exif:       domain.ExifNormal,
		Device:     domain.ReadingUpright,
		CapturedAt: time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC),
		Watermarks: []domain.WatermarkSpec{
			{
				Kind:      domain.KindText,
				Content:   "test",
				PositionX: 0.1,
				PositionY: 0.9,
				Scale:     0.05,
				Opacity:   255,
				Enabled:   true,
			},
		},
	}
}

func TestProcess_AllSavesSucceed(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	capture := testCapture(t, encodeJPEG(t, 400, 300))

	outcome := o.Process(context.Background(), capture)

	assert.Equal(t, domain.StateCompleted, outcome.State)
	require.Len(t, outcome.Artifacts, 3)
	assert.Contains(t, store.objects, outcome.Artifacts[domain.ArtifactPrivateOriginal])
	assert.Contains(t, store.objects, outcome.Artifacts[domain.ArtifactGalleryOriginal])
	assert.Contains(t, store.objects, outcome.Artifacts[domain.ArtifactGalleryWatermarked])

	// The private copy is the raw bytes, untouched.
	assert.Equal(t, capture.Raw, store.objects[outcome.Artifacts[domain.ArtifactPrivateOriginal]])
}

func TestProcess_PrivateFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	store.failOn(domain.PathPrefixPrivate)
	o := newTestOrchestrator(store)

	outcome := o.Process(context.Background(), testCapture(t, encodeJPEG(t, 400, 300)))

	assert.Equal(t, domain.StateCompleted, outcome.State)
	assert.NotContains(t, outcome.Artifacts, domain.ArtifactPrivateOriginal)
	assert.Contains(t, outcome.Artifacts, domain.ArtifactGalleryOriginal)
	assert.Contains(t, outcome.Artifacts, domain.ArtifactGalleryWatermarked)
}

func TestProcess_WatermarkedSaveFailsDegrades(t *testing.T) {
	store := newFakeStore()
	store.failOn("gallery/watermarked/")
	o := newTestOrchestrator(store)

	outcome := o.Process(context.Background(), testCapture(t, encodeJPEG(t, 400, 300)))

	assert.Equal(t, domain.StateDegradedCompleted, outcome.State)
	assert.Contains(t, outcome.Artifacts, domain.ArtifactGalleryOriginal)
	assert.NotContains(t, outcome.Artifacts, domain.ArtifactGalleryWatermarked)
	assert.Contains(t, outcome.Message, "watermarking failed")
}

func TestProcess_OriginalSaveFailsDegrades(t *testing.T) {
	store := newFakeStore()
	store.failOn("gallery/original/")
	o := newTestOrchestrator(store)

	outcome := o.Process(context.Background(), testCapture(t, encodeJPEG(t, 400, 300)))

	assert.Equal(t, domain.StateDegradedCompleted, outcome.State)
	assert.NotContains(t, outcome.Artifacts, domain.ArtifactGalleryOriginal)
	assert.Contains(t, outcome.Artifacts, domain.ArtifactGalleryWatermarked)
}

func TestProcess_UndecodableFallsBackToRaw(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	capture := testCapture(t, []byte("not a jpeg"))

	outcome := o.Process(context.Background(), capture)

	assert.Equal(t, domain.StateDegradedCompleted, outcome.State)
	path := outcome.Artifacts[domain.ArtifactGalleryOriginal]
	require.NotEmpty(t, path)
	assert.Equal(t, capture.Raw, store.objects[path])
	assert.NotContains(t, outcome.Artifacts, domain.ArtifactGalleryWatermarked)
}

func TestProcess_BothGallerySavesFailFallsBackToRaw(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)
	capture := testCapture(t, encodeJPEG(t, 400, 300))

	// Fail both gallery saves, then let the raw fallback through.
	calls := 0
	failing := storeFunc(func(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
		if strings.HasPrefix(path, domain.PathPrefixGallery) {
			calls++
			if calls <= 2 {
				return errors.New("storage unavailable")
			}
		}
		return store.SaveObject(ctx, path, data, size, contentType)
	})
	o = newTestOrchestrator(failing)

	outcome := o.Process(context.Background(), capture)

	assert.Equal(t, domain.StateDegradedCompleted, outcome.State)
	assert.Equal(t, capture.Raw, store.objects[outcome.Artifacts[domain.ArtifactGalleryOriginal]])
}

func TestProcess_EverythingFails(t *testing.T) {
	store := newFakeStore()
	store.failOn("")
	o := newTestOrchestrator(store)

	outcome := o.Process(context.Background(), testCapture(t, encodeJPEG(t, 400, 300)))

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Empty(t, outcome.Artifacts)
	assert.NotEmpty(t, outcome.Message)
}

func TestProcess_RotatesLandscapeCaptureUpright(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)

	capture := testCapture(t, encodeJPEG(t, 400, 300))
	capture.Exif = domain.ExifRotate90
	capture.Device = domain.ReadingUpright

	outcome := o.Process(context.Background(), capture)
	require.Equal(t, domain.StateCompleted, outcome.State)

	saved, _, err := image.Decode(bytes.NewReader(store.objects[outcome.Artifacts[domain.ArtifactGalleryOriginal]]))
	require.NoError(t, err)
	assert.Equal(t, 300, saved.Bounds().Dx())
	assert.Equal(t, 400, saved.Bounds().Dy())

	watermarked, _, err := image.Decode(bytes.NewReader(store.objects[outcome.Artifacts[domain.ArtifactGalleryWatermarked]]))
	require.NoError(t, err)
	assert.Equal(t, saved.Bounds(), watermarked.Bounds())
}

func TestProcess_LandscapeReadingKeepsLandscape(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(store)

	capture := testCapture(t, encodeJPEG(t, 400, 300))
	capture.Exif = domain.ExifRotate90
	capture.Device = domain.ReadingRotatedLeft

	outcome := o.Process(context.Background(), capture)
	require.Equal(t, domain.StateCompleted, outcome.State)

	saved, _, err := image.Decode(bytes.NewReader(store.objects[outcome.Artifacts[domain.ArtifactGalleryOriginal]]))
	require.NoError(t, err)
	assert.Equal(t, 400, saved.Bounds().Dx())
	assert.Equal(t, 300, saved.Bounds().Dy())
}

type storeFunc func(ctx context.Context, path string, data io.Reader, size int64, contentType string) error

func (f storeFunc) SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	return f(ctx, path, data, size, contentType)
}
