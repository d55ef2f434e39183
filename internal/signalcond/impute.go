package signalcond

import (
	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/numpy"
)

// imputedVis marks a keypoint filled by interpolation rather than
// detected directly: above VisibilityThreshold so downstream geometry
// treats it as present, but distinguishable from a confident detection.
const imputedVis = 0.5

// maxImputeGap is the longest run of consecutive missing samples that
// gets linearly interpolated; longer gaps remain missing.
const maxImputeGap = 3

// imputeKeypoints fills gaps of at most maxImputeGap consecutive missing
// samples per joint coordinate by linear interpolation between the
// bounding valid samples, using numpy.Linspace the way the teacher's
// internal/numpy package is used elsewhere for evenly-spaced sampling.
// Longer gaps, and gaps with no valid sample on one side, are untouched.
func imputeKeypoints(sets []coremodel.KeypointSet) []coremodel.KeypointSet {
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

		i := 0
		for i < n {
			if valid[i] {
				i++
				continue
			}
			gapStart := i
			for i < n && !valid[i] {
				i++
			}
			gapEnd := i // exclusive
			gapLen := gapEnd - gapStart
			if gapLen > maxImputeGap || gapStart == 0 || gapEnd == n {
				continue // unbounded or too-long gap: leave missing
			}

			fillX := numpy.Linspace(xs[gapStart-1], xs[gapEnd], gapLen+2)
			fillY := numpy.Linspace(ys[gapStart-1], ys[gapEnd], gapLen+2)
			for k := 0; k < gapLen; k++ {
				idx := gapStart + k
				out[idx][j] = coremodel.Keypoint{X: fillX[k+1], Y: fillY[k+1], Vis: imputedVis}
			}
		}
	}
	return out
}
