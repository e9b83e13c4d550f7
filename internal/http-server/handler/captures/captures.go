package captures

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/http-server/handler/captures/dto"
	capture_repo "watermark-camera/internal/repository/capture"
	capture_uc "watermark-camera/internal/usecase/capture"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

const maxMemory = 32 << 20

// Handler is the HTTP face of the capture collaborator: it receives one raw
// photo per request together with the orientation inputs the pipeline needs.
type Handler struct {
	usecase captureUsecase
	logger  *zlog.Zerolog
}

func NewHandler(usecase captureUsecase, logger *zlog.Zerolog) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// Submit accepts a multipart form with the raw capture under "file", the
// EXIF orientation under "exif_orientation" (1..8), the device orientation
// under "device_orientation" (or a raw "gravity_angle" in degrees, which is
// run through the hysteresis monitor), and optional "location" and
// "captured_at" (RFC 3339) fields.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxMemory)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	exif := domain.ExifNormal
	if v := r.FormValue("exif_orientation"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			h.respondError(w, http.StatusBadRequest, "exif_orientation must be an integer", convErr)
			return
		}
		exif, err = domain.ParseExifOrientation(n)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "exif_orientation must be in 1..8", err)
			return
		}
	}

	device, err := h.resolveDevice(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	capturedAt := time.Time{}
	if v := r.FormValue("captured_at"); v != "" {
		capturedAt, err = time.Parse(time.RFC3339, v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "captured_at must be RFC 3339", err)
			return
		}
	}

	task, err := h.usecase.Submit(ctx, capture_uc.SubmitInput{
		Data:       file,
		Size:       handler.Size,
		Exif:       exif,
		Device:     device,
		Location:   r.FormValue("location"),
		CapturedAt: capturedAt,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to submit capture")
		h.respondError(w, http.StatusInternalServerError, "Failed to submit capture", err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, dto.SubmitResponse{
		ID:         task.ID,
		State:      string(domain.StateReceived),
		Watermarks: len(task.Watermarks),
		CapturedAt: task.CapturedAt,
	})
}

// resolveDevice prefers an explicit device_orientation value and falls back
// to quantizing a raw gravity_angle sample.
func (h *Handler) resolveDevice(r *http.Request) (domain.OrientationReading, error) {
	if v := r.FormValue("device_orientation"); v != "" {
		reading, err := domain.ParseOrientationReading(v)
		if err != nil {
			return "", errors.New("device_orientation must be one of upright, rotated-left, upside-down, rotated-right")
		}
		return reading, nil
	}
	if v := r.FormValue("gravity_angle"); v != "" {
		angle, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", errors.New("gravity_angle must be a number of degrees")
		}
		return h.usecase.ObserveGravity(angle), nil
	}
	return "", errors.New("device_orientation or gravity_angle is required")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Capture ID is required", nil)
		return
	}

	rec, err := h.usecase.Get(ctx, id)
	if err != nil {
		if errors.Is(err, capture_repo.ErrCaptureNotFound) {
			h.respondError(w, http.StatusNotFound, "Capture not found", nil)
			return
		}
		h.logger.Error().Err(err).Str("capture_id", id).Msg("Failed to get capture")
		h.respondError(w, http.StatusInternalServerError, "Failed to get capture", err)
		return
	}

	artifacts := make(map[string]string, len(rec.Artifacts))
	for kind, path := range rec.Artifacts {
		artifacts[string(kind)] = path
	}

	h.respondJSON(w, http.StatusOK, dto.OutcomeResponse{
		ID:        rec.ID,
		State:     string(rec.State),
		Message:   rec.Message,
		Artifacts: artifacts,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := dto.ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	h.respondJSON(w, status, resp)
}
