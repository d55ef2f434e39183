package signalcond

import (
	"gonum.org/v1/gonum/mat"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/filterpy"
)

// smoothKeypoints applies a per-joint, per-coordinate Kalman smoother
// across the frame sequence. Each joint's x and y series is smoothed
// independently; a missing sample (Vis below threshold) breaks the
// series into a new contiguous run rather than propagating through the
// gap, per the conditioner's "never propagate NaN across a missing
// value" requirement.
func smoothKeypoints(sets []coremodel.KeypointSet, window int) []coremodel.KeypointSet {
	n := len(sets)
	if n == 0 {
		return sets
	}
	out := make([]coremodel.KeypointSet, n)
	copy(out, sets)

	for j := coremodel.Joint(0); int(j) < coremodel.NumJoints; j++ {
		valid := make([]bool, n)
		xs := make([]float64, n)
		ys := make([]float64, n)
		for i, ks := range sets {
			kp := ks[j]
			valid[i] = !kp.Missing()
			xs[i] = kp.X
			ys[i] = kp.Y
		}
		sx := smoothRuns(xs, valid, window)
		sy := smoothRuns(ys, valid, window)
		for i := range out {
			if valid[i] {
				kp := out[i][j]
				kp.X, kp.Y = sx[i], sy[i]
				out[i][j] = kp
			}
		}
	}
	return out
}

// smoothRuns runs an independent Kalman smoother over each maximal
// contiguous run of valid==true positions in values, leaving invalid
// positions untouched.
func smoothRuns(values []float64, valid []bool, window int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)

	start := -1
	for i := 0; i <= len(values); i++ {
		isValid := i < len(values) && valid[i]
		if isValid && start == -1 {
			start = i
		}
		if (!isValid || i == len(values)) && start != -1 {
			smoothRun(out[start:i], window)
			start = -1
		}
	}
	return out
}

// smoothRun applies a 1D position+velocity Kalman filter to one
// contiguous run of a single coordinate series, in place.
func smoothRun(run []float64, window int) {
	if len(run) < 2 {
		return
	}
	kf := filterpy.NewKalmanFilter(2, 1)

	// Process noise scaled so a larger smoothing window damps faster
	// transitions more, matching spec.md's "window width ~= 5 samples"
	// framing without hardcoding an exact cutoff frequency.
	q := 1.0 / float64(window*window)
	kf.GetQ().Set(0, 0, q)
	kf.GetQ().Set(1, 1, q)
	kf.GetR().Set(0, 0, 1.0)

	kf.GetF().Set(0, 1, 1.0) // x_{t+1} = x_t + v_t

	x0 := mat.NewDense(2, 1, []float64{run[0], 0})
	kf.SetState(x0)
	kf.GetP().Set(0, 0, 1.0)
	kf.GetP().Set(1, 1, 1.0)

	smoothed := make([]float64, len(run))
	for i, v := range run {
		kf.Predict()
		z := mat.NewDense(1, 1, []float64{v})
		kf.Update(z, nil, nil)
		smoothed[i] = kf.GetX().At(0, 0)
	}
	copy(run, smoothed)
}
