// Package lighting estimates ambient scene brightness from camera JPEG
// stills. Pupillometry uses the level to compensate the pupil light
// reflex before interpreting diameter changes.
package lighting

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Probe decodes stills and tracks a smoothed brightness level.
type Probe struct {
	mu sync.Mutex

	// Smoothing is the exponential weight of a new measurement.
	smoothing float64

	level    float64
	hasLevel bool
}

// NewProbe creates a brightness probe. smoothing in (0,1]; 1 disables
// smoothing.
func NewProbe(smoothing float64) *Probe {
	return &Probe{smoothing: smoothing}
}

// Measure decodes a JPEG still and folds its mean luminance into the
// smoothed level. Returns the raw measurement in [0,1].
func (p *Probe) Measure(jpeg []byte) (float64, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadGrayScale)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return 0, fmt.Errorf("empty image")
	}

	mean := img.Mean()
	raw := mean.Val1 / 255.0

	p.mu.Lock()
	if !p.hasLevel {
		p.level = raw
		p.hasLevel = true
	} else {
		p.level = p.smoothing*raw + (1-p.smoothing)*p.level
	}
	p.mu.Unlock()

	return raw, nil
}

// Level returns the smoothed brightness in [0,1], or -1 before the
// first measurement. The -1 sentinel matches the pupillometry contract
// for "no probe available".
func (p *Probe) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasLevel {
		return -1
	}
	return p.level
}
