package orientation

import (
	"math"
	"sync"

	"watermark-camera/internal/domain"
)

// DefaultHysteresisDegrees is how far past a 90 degree sector boundary the
// gravity angle must travel before the reading changes. Real hardware
// jitters around boundaries, so the exact band is configurable rather than
// an invariant.
const DefaultHysteresisDegrees = 10.0

// Monitor quantizes a continuously updated gravity-vector angle into an
// OrientationReading with hysteresis: the reading only changes when the
// angle crosses clearly into a new 90 degree sector.
//
// Angle convention: 0 = device upright, growing clockwise, so 90 is
// rotated-right, 180 upside-down, 270 rotated-left.
type Monitor struct {
	mu         sync.Mutex
	hysteresis float64
	current    domain.OrientationReading
}

func NewMonitor(hysteresisDegrees float64) *Monitor {
	if hysteresisDegrees < 0 || hysteresisDegrees >= 45 {
		hysteresisDegrees = DefaultHysteresisDegrees
	}
	return &Monitor{
		hysteresis: hysteresisDegrees,
		current:    domain.ReadingUpright,
	}
}

// Update feeds one gravity angle sample and returns the (possibly
// unchanged) reading.
func (m *Monitor) Update(angleDegrees float64) domain.OrientationReading {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := normalizeAngle(angleDegrees)
	if angularDistance(a, sectorCenter(m.current)) > 45+m.hysteresis {
		m.current = readingForAngle(a)
	}
	return m.current
}

// Current returns the last registered reading.
func (m *Monitor) Current() domain.OrientationReading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func sectorCenter(r domain.OrientationReading) float64 {
	switch r {
	case domain.ReadingRotatedRight:
		return 90
	case domain.ReadingUpsideDown:
		return 180
	case domain.ReadingRotatedLeft:
		return 270
	default:
		return 0
	}
}

func readingForAngle(a float64) domain.OrientationReading {
	switch {
	case a >= 45 && a < 135:
		return domain.ReadingRotatedRight
	case a >= 135 && a < 225:
		return domain.ReadingUpsideDown
	case a >= 225 && a < 315:
		return domain.ReadingRotatedLeft
	default:
		return domain.ReadingUpright
	}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// angularDistance is the shortest distance between two angles, in [0, 180].
func angularDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
