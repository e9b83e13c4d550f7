package overlays

import (
	"encoding/json"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/http-server/handler/overlays/dto"
	"watermark-camera/internal/usecase/watermarks"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxPreviewMemory = 32 << 20

// Handler exposes the watermark set CRUD and the single-shot preview
// composite.
type Handler struct {
	registry watermarkRegistry
	engine   previewCompositor
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewHandler(registry watermarkRegistry, engine previewCompositor, logger *zlog.Zerolog) *Handler {
	return &Handler{
		registry: registry,
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	specs := h.registry.Active()
	out := make([]dto.SpecResponse, 0, len(specs))
	for i, s := range specs {
		out = append(out, toResponse(i, s))
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	spec, ok := h.decodeSpec(w, r)
	if !ok {
		return
	}
	// Clamp is idempotent, so the echoed spec matches what the registry
	// stores.
	spec = spec.Clamp()
	index, err := h.registry.Add(spec)
	if err != nil {
		h.handleRegistryError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toResponse(index, spec))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	spec, ok := h.decodeSpec(w, r)
	if !ok {
		return
	}
	spec = spec.Clamp()
	if err := h.registry.Update(index, spec); err != nil {
		h.handleRegistryError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toResponse(index, spec))
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	if err := h.registry.Remove(index); err != nil {
		h.handleRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	index, ok := h.parseIndex(w, r)
	if !ok {
		return
	}
	var req dto.EnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.registry.SetEnabled(index, req.Enabled); err != nil {
		h.handleRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.registry.ResetToDefault()
	h.respondJSON(w, http.StatusOK, dto.SummaryResponse{
		Total:        h.registry.Len(),
		EnabledCount: h.registry.EnabledCount(),
		HasEnabled:   h.registry.HasEnabled(),
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, dto.SummaryResponse{
		Total:        h.registry.Len(),
		EnabledCount: h.registry.EnabledCount(),
		HasEnabled:   h.registry.HasEnabled(),
	})
}

// Preview composites the current watermark set onto an uploaded image and
// streams back the result, without touching any persistence target.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewMemory)
	if err := r.ParseMultipartForm(maxPreviewMemory); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is not a decodable image", err)
		return
	}

	result := h.engine.Composite(img, h.registry.Active())

	w.Header().Set("Content-Type", "image/jpeg")
	if err := jpeg.Encode(w, result, &jpeg.Options{Quality: domain.DefaultJPEGQuality}); err != nil {
		h.logger.Error().Err(err).Msg("Failed to stream preview")
	}
}

func (h *Handler) decodeSpec(w http.ResponseWriter, r *http.Request) (domain.WatermarkSpec, bool) {
	var req dto.SpecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return domain.WatermarkSpec{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return domain.WatermarkSpec{}, false
	}
	return toDomain(req), true
}

func (h *Handler) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Index must be an integer", err)
		return 0, false
	}
	return index, true
}

func (h *Handler) handleRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watermarks.ErrIndexOutOfRange):
		h.respondError(w, http.StatusNotFound, "Watermark index out of range", nil)
	case errors.Is(err, domain.ErrInvalidSpec):
		h.respondError(w, http.StatusBadRequest, "Invalid watermark spec", err)
	default:
		h.logger.Error().Err(err).Msg("Watermark registry error")
		h.respondError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func toDomain(req dto.SpecRequest) domain.WatermarkSpec {
	return domain.WatermarkSpec{
		Kind:            domain.WatermarkKind(req.Kind),
		Content:         req.Content,
		PositionX:       req.PositionX,
		PositionY:       req.PositionY,
		Scale:           req.Scale,
		Opacity:         req.Opacity,
		RotationDegrees: req.RotationDegrees,
		Color:           domain.RGBA{R: req.Color.R, G: req.Color.G, B: req.Color.B, A: req.Color.A},
		ShadowColor:     domain.RGBA{R: req.ShadowColor.R, G: req.ShadowColor.G, B: req.ShadowColor.B, A: req.ShadowColor.A},
		HasShadow:       req.HasShadow,
		Enabled:         req.Enabled,
	}
}

func toResponse(index int, s domain.WatermarkSpec) dto.SpecResponse {
	return dto.SpecResponse{
		Index:           index,
		Kind:            string(s.Kind),
		Content:         s.Content,
		PositionX:       s.PositionX,
		PositionY:       s.PositionY,
		Scale:           s.Scale,
		Opacity:         s.Opacity,
		RotationDegrees: s.RotationDegrees,
		Color:           dto.Color{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: s.Color.A},
		ShadowColor:     dto.Color{R: s.ShadowColor.R, G: s.ShadowColor.G, B: s.ShadowColor.B, A: s.ShadowColor.A},
		HasShadow:       s.HasShadow,
		Enabled:         s.Enabled,
	}
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
