// Package signalcond implements the signal conditioner: stage 3 of the
// pipeline. It normalizes raw pixel keypoints to [0,1], smooths each
// joint's time series with a causal Kalman filter adapted from the
// teacher's OptimizedKalmanFilter (per-object position/velocity
// covariance, here repurposed to per-joint-coordinate smoothing),
// imputes short gaps, and computes the angle series the rest of the
// pipeline consumes.
package signalcond

import "github.com/posecoach/core/internal/coremodel"

// Conditioner holds the config knobs (smoothing window) needed across
// the three processing steps.
type Conditioner struct {
	cfg coremodel.Config
}

// New constructs a Conditioner bound to cfg.
func New(cfg coremodel.Config) *Conditioner {
	return &Conditioner{cfg: cfg}
}

// Condition normalizes, smooths, and imputes every frame's keypoints,
// returning updated copies of the frames (the input slice is left
// untouched), and derives the angle series.
// width/height are the source frame resolution used for normalization.
func (c *Conditioner) Condition(frames []coremodel.Frame, width, height int) ([]coremodel.Frame, []coremodel.AngleFrame) {
	sets := make([]coremodel.KeypointSet, len(frames))
	for i, f := range frames {
		sets[i] = normalize(f.Keypoints, width, height)
	}

	sets = smoothKeypoints(sets, c.cfg.SmoothingWindow)
	sets = imputeKeypoints(sets)

	out := make([]coremodel.Frame, len(frames))
	copy(out, frames)
	for i := range out {
		out[i].Keypoints = sets[i]
	}

	angles := computeAngles(sets)
	return out, angles
}
