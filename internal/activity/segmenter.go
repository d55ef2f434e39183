// Package activity implements the activity segmenter: stage 4 of the
// pipeline. It labels every frame active/rest from the driver angle's
// motion energy with hysteresis, falling back to a k-NN classifier
// (classifier.go) when the rule yields an implausible active fraction.
package activity

import (
	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/profile"
)

// motionWindow is the +-K neighbor window used for the motion-energy
// rule (K=3 per spec.md).
const motionWindow = 3

// fallbackLowFrac and fallbackHighFrac bound the plausible active
// fraction the rule-based label stream may produce before the k-NN
// fallback classifier is consulted instead.
const (
	fallbackLowFrac  = 0.30
	fallbackHighFrac = 0.95
)

// Segmenter labels every frame active/rest.
type Segmenter struct {
	cfg     coremodel.Config
	profile profile.ExerciseProfile
}

// New constructs a Segmenter bound to cfg and the exercise profile whose
// driver angle drives the motion-energy rule.
func New(cfg coremodel.Config, p profile.ExerciseProfile) *Segmenter {
	return &Segmenter{cfg: cfg, profile: p}
}

// Segment returns a per-frame active/rest label plus the filtering
// provenance record. Rest frames are excluded from scoring but kept for
// overlay.
func (s *Segmenter) Segment(angles []coremodel.AngleFrame) ([]bool, coremodel.FilteringInfo) {
	n := len(angles)
	driver := make([]float64, n)
	driverOK := make([]bool, n)
	normDriver := make([]float64, n)
	for i, af := range angles {
		deg, ok := s.profile.DriverAngleDegrees(af)
		driver[i] = deg
		driverOK[i] = ok
		if d, ok := s.profile.DriverAngle(af); ok {
			normDriver[i] = d
		}
	}

	energy := motionEnergy(driver, driverOK, motionWindow)
	active := applyHysteresis(energy, s.cfg.MotionThreshold, s.cfg.HysteresisOn, s.cfg.HysteresisOff)

	activeCount := countTrue(active)
	frac := 0.0
	if n > 0 {
		frac = float64(activeCount) / float64(n)
	}

	info := coremodel.FilteringInfo{Method: "rule", TotalFrames: n, ActiveCount: activeCount}

	if n > 0 && (frac < fallbackLowFrac || frac > fallbackHighFrac) {
		reason := "rule active fraction too low (static camera / minimal motion)"
		if frac > fallbackHighFrac {
			reason = "rule active fraction too high (noisy driver)"
		}
		fallback := classify(normDriver, driverOK)
		active = fallback
		info.Method = "classifier_fallback"
		info.Reason = reason
		info.ActiveCount = countTrue(active)
		s.cfg.LoggerOrDefault().Printf("activity segmenter: falling back to classifier (%s)", reason)
	}

	return active, info
}

// motionEnergy computes, for each frame, the sum of absolute differences
// between the driver angle at i and each neighbor within +-window,
// skipping comparisons where either sample is missing.
func motionEnergy(driver []float64, ok []bool, window int) []float64 {
	n := len(driver)
	energy := make([]float64, n)
	for i := 0; i < n; i++ {
		if !ok[i] {
			continue
		}
		var sum float64
		for k := -window; k <= window; k++ {
			if k == 0 {
				continue
			}
			j := i + k
			if j < 0 || j >= n || !ok[j] {
				continue
			}
			d := driver[i] - driver[j]
			if d < 0 {
				d = -d
			}
			sum += d
		}
		energy[i] = sum
	}
	return energy
}

// applyHysteresis converts a motion-energy stream into a binary
// active/rest label using a two-state hysteresis: entering "active"
// requires nOn consecutive above-threshold frames, leaving it requires
// nOff consecutive below-threshold frames.
func applyHysteresis(energy []float64, threshold float64, nOn, nOff int) []bool {
	n := len(energy)
	active := make([]bool, n)
	state := false
	aboveStreak, belowStreak := 0, 0

	for i := 0; i < n; i++ {
		if energy[i] > threshold {
			aboveStreak++
			belowStreak = 0
		} else {
			belowStreak++
			aboveStreak = 0
		}

		switch {
		case !state && aboveStreak >= nOn:
			state = true
		case state && belowStreak >= nOff:
			state = false
		}
		active[i] = state
	}
	return active
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
