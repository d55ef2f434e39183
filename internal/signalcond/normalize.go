package signalcond

import "github.com/posecoach/core/internal/coremodel"

// normalize divides every keypoint's pixel coordinates by the frame's
// (width, height), mapping them into [0,1] and decoupling the rest of
// the pipeline from capture resolution. Missing joints (Vis below the
// threshold) are left as-is; their coordinates are meaningless anyway.
func normalize(ks coremodel.KeypointSet, width, height int) coremodel.KeypointSet {
	if width <= 0 || height <= 0 {
		return ks
	}
	w, h := float64(width), float64(height)
	out := ks
	for j, kp := range ks {
		if kp.Missing() {
			continue
		}
		out[j] = coremodel.Keypoint{X: kp.X / w, Y: kp.Y / h, Vis: kp.Vis}
	}
	return out
}
