package domain

import (
	"fmt"
	"time"
)

// Capture is one photo ready for the persistence pipeline: raw bytes as
// delivered by the capture hardware, the orientation inputs needed to make
// the stored pixels upright, and the watermark set snapshotted at capture
// time so concurrent edits never touch an in-flight photo.
type Capture struct {
	ID         string
	Raw        []byte
	Exif       ExifOrientation
	Device     OrientationReading
	Location   string
	CapturedAt time.Time
	Watermarks []WatermarkSpec
}

// CaptureTask is the broker payload for one capture. Raw bytes stay in the
// staging area of the object store; the task carries only their path.
type CaptureTask struct {
	ID         string             `json:"id"`
	StagedPath string             `json:"staged_path"`
	Exif       ExifOrientation    `json:"exif_orientation"`
	Device     OrientationReading `json:"device_orientation"`
	Location   string             `json:"location,omitempty"`
	CapturedAt time.Time          `json:"captured_at"`
	Watermarks []WatermarkSpec    `json:"watermarks"`
}

type PersistenceState string

const (
	StateReceived          PersistenceState = "received"
	StateCompleted         PersistenceState = "completed"
	StateDegradedCompleted PersistenceState = "degraded"
	StateFailed            PersistenceState = "failed"
)

type ArtifactKind string

const (
	ArtifactPrivateOriginal    ArtifactKind = "private_original"
	ArtifactGalleryOriginal    ArtifactKind = "gallery_original"
	ArtifactGalleryWatermarked ArtifactKind = "gallery_watermarked"
)

// PersistenceOutcome is the terminal report for one capture: which state the
// pipeline reached, which artifacts exist, and one human-readable message.
type PersistenceOutcome struct {
	CaptureID string                  `json:"capture_id"`
	State     PersistenceState        `json:"state"`
	Artifacts map[ArtifactKind]string `json:"artifacts"`
	Message   string                  `json:"message"`
}

// CaptureRecord is the persisted view of one capture's progress through the
// pipeline, as stored in the metadata database.
type CaptureRecord struct {
	ID        string                  `json:"id"`
	State     PersistenceState        `json:"state"`
	Message   string                  `json:"message"`
	Artifacts map[ArtifactKind]string `json:"artifacts"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// ArtifactTimeFormat names artifacts at second resolution; callers capturing
// faster than once per second must disambiguate upstream.
const ArtifactTimeFormat = "20060102_150405"

const (
	PathPrefixStaging = "staging/"
	PathPrefixPrivate = "private/original/"
	PathPrefixGallery = "gallery/"
)

func PrivateOriginalPath(capturedAt time.Time) string {
	return fmt.Sprintf("%s%s.jpg", PathPrefixPrivate, capturedAt.Format(ArtifactTimeFormat))
}

func GalleryOriginalPath(capturedAt time.Time) string {
	return fmt.Sprintf("%soriginal/Original_%s.jpg", PathPrefixGallery, capturedAt.Format(ArtifactTimeFormat))
}

func GalleryWatermarkedPath(capturedAt time.Time) string {
	return fmt.Sprintf("%swatermarked/Watermark_%s.jpg", PathPrefixGallery, capturedAt.Format(ArtifactTimeFormat))
}

func StagedPath(id string) string {
	return PathPrefixStaging + id + ".jpg"
}

const (
	DefaultJPEGQuality   = 85
	DefaultWatermarkText = "© WatermarkCamera"
	DefaultTimeLayout    = "2006-01-02 15:04:05"
)
