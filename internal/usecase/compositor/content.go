package compositor

import (
	"strings"
	"time"

	"watermark-camera/internal/domain"
)

// resolveContent turns a spec's content field into the string to draw.
// Dynamic kinds degrade instead of failing: a malformed timestamp layout
// falls back to the default layout, an unresolved location to the kind's
// display name.
func (e *Engine) resolveContent(spec domain.WatermarkSpec) string {
	switch spec.Kind {
	case domain.KindTimestamp:
		return formatTimestamp(spec.Content, e.now())
	case domain.KindLocation:
		// Geocoding happens outside the pipeline; an already-resolved
		// location string arrives as Content.
		if strings.TrimSpace(spec.Content) == "" {
			return spec.Kind.DisplayName()
		}
		return spec.Content
	default:
		return spec.Content
	}
}

// formatTimestamp formats now with the given Go reference layout. A layout
// containing no recognized reference elements renders as a constant string;
// that counts as malformed and falls back to the default layout.
func formatTimestamp(layout string, now time.Time) string {
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return now.Format(domain.DefaultTimeLayout)
	}
	rendered := now.Format(layout)
	if rendered == layout {
		return now.Format(domain.DefaultTimeLayout)
	}
	return rendered
}
