package watermarks

import (
	"sync"

	"watermark-camera/internal/domain"
)

// Registry holds the ordered watermark set for one capture session.
// Insertion order is paint order: later entries draw over earlier ones.
// It is owned by whoever owns the session and passed by reference; there is
// no package-level instance.
type Registry struct {
	mu    sync.RWMutex
	specs []domain.WatermarkSpec
}

// NewRegistry returns a registry bootstrapped with the default set:
// one text watermark and one timestamp watermark.
func NewRegistry() *Registry {
	return &Registry{specs: defaultSpecs()}
}

func defaultSpecs() []domain.WatermarkSpec {
	return []domain.WatermarkSpec{
		{
			Kind:        domain.KindText,
			Content:     domain.DefaultWatermarkText,
			PositionX:   0.05,
			PositionY:   0.95,
			Scale:       domain.DefaultScale,
			Opacity:     domain.DefaultOpacity,
			Color:       domain.RGBA{R: 255, G: 255, B: 255, A: 255},
			ShadowColor: domain.RGBA{R: 0, G: 0, B: 0, A: 255},
			HasShadow:   true,
			Enabled:     true,
		},
		{
			Kind:        domain.KindTimestamp,
			Content:     domain.DefaultTimeLayout,
			PositionX:   0.05,
			PositionY:   0.90,
			Scale:       domain.DefaultScale,
			Opacity:     domain.DefaultOpacity,
			Color:       domain.RGBA{R: 255, G: 255, B: 255, A: 255},
			ShadowColor: domain.RGBA{R: 0, G: 0, B: 0, A: 255},
			HasShadow:   true,
			Enabled:     true,
		},
	}
}

// Add inserts spec at the end of the paint order and returns its index.
// Out-of-range numeric fields are clamped first; a spec that still fails
// validation is rejected without mutating the set.
func (r *Registry) Add(spec domain.WatermarkSpec) (int, error) {
	spec = spec.Clamp()
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	return len(r.specs) - 1, nil
}

// Update replaces the spec at index, with the same validation gate as Add.
func (r *Registry) Update(index int, spec domain.WatermarkSpec) error {
	spec = spec.Clamp()
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.specs) {
		return ErrIndexOutOfRange
	}
	r.specs[index] = spec
	return nil
}

func (r *Registry) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.specs) {
		return ErrIndexOutOfRange
	}
	r.specs = append(r.specs[:index], r.specs[index+1:]...)
	return nil
}

func (r *Registry) SetEnabled(index int, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.specs) {
		return ErrIndexOutOfRange
	}
	r.specs[index].Enabled = enabled
	return nil
}

// Active returns a copy of the set in paint order. Callers can hold the
// snapshot for the duration of a composite without seeing concurrent edits.
func (r *Registry) Active() []domain.WatermarkSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.WatermarkSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// ResetToDefault discards all edits and restores the bootstrap set.
func (r *Registry) ResetToDefault() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = defaultSpecs()
}

// Clear removes every watermark from the set.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = nil
}

func (r *Registry) HasEnabled() bool {
	return r.EnabledCount() > 0
}

func (r *Registry) EnabledCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.specs {
		if s.Enabled {
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
