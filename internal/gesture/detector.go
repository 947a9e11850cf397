package gesture

import (
	"math"
	"time"

	"fortunecookie/internal/domain"
)

// Detector thresholds used when the configuration leaves them unset.
const (
	DefaultLow        = 0.2
	DefaultHigh       = 0.4
	DefaultRefractory = 2 * time.Second
)

// Detector fires when two hands that were held close together are pulled
// apart. It remembers the previous distance; a trigger needs the previous
// distance below Low and the new one above High, outside the refractory
// window that follows every trigger.
type Detector struct {
	low        float64
	high       float64
	refractory time.Duration
	now        func() time.Time

	prev    float64
	hasPrev bool
	quiet   time.Time
}

// NewDetector returns a Detector. A nil now uses time.Now.
func NewDetector(low, high float64, refractory time.Duration, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{low: low, high: high, refractory: refractory, now: now}
}

// Observe records distance and reports whether it completes a pull-apart.
// The distance memory is updated whether or not it fires.
func (d *Detector) Observe(distance float64) bool {
	fire := false
	if d.hasPrev && d.prev < d.low && distance > d.high {
		now := d.now()
		if !now.Before(d.quiet) {
			fire = true
			d.quiet = now.Add(d.refractory)
		}
	}
	d.prev, d.hasPrev = distance, true
	return fire
}

// Reset forgets the previous distance and any refractory window.
func (d *Detector) Reset() {
	d.prev, d.hasPrev = 0, false
	d.quiet = time.Time{}
}

// Pair returns the reference points of exactly two hands. Hands without
// landmarks do not count.
func Pair(hands []domain.Hand) (a, b domain.Landmark, ok bool) {
	if len(hands) != 2 {
		return a, b, false
	}
	a, okA := hands[0].Reference()
	b, okB := hands[1].Reference()
	return a, b, okA && okB
}

// Distance is the planar Euclidean distance in normalized image coordinates.
func Distance(a, b domain.Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
