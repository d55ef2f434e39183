package signalcond

import (
	"math"

	"github.com/posecoach/core/internal/coremodel"
)

// computeAngles derives one AngleFrame per frame from its (by then
// normalized, smoothed, imputed) keypoint set. The angle at B for a
// joint triple (A,B,C) is the unsigned angle between vectors A-B and
// C-B in degrees; if any of the three joints is missing, the angle is
// missing for that frame.
func computeAngles(sets []coremodel.KeypointSet) []coremodel.AngleFrame {
	out := make([]coremodel.AngleFrame, len(sets))
	for i, ks := range sets {
		af := coremodel.NewAngleFrame(i)
		for _, triple := range coremodel.AngleTriples {
			a, b, c := ks.Get(triple.A), ks.Get(triple.B), ks.Get(triple.C)
			if a.Missing() || b.Missing() || c.Missing() {
				continue
			}
			deg, ok := vertexAngle(a, b, c)
			if ok {
				af.Values[triple.Name] = coremodel.AngleValue{Degrees: deg, OK: true}
			}
		}
		out[i] = af
	}
	return out
}

// vertexAngle computes the unsigned angle in degrees at vertex b between
// rays b->a and b->c.
func vertexAngle(a, b, c coremodel.Keypoint) (float64, bool) {
	ax, ay := a.X-b.X, a.Y-b.Y
	cx, cy := c.X-b.X, c.Y-b.Y

	magA := math.Hypot(ax, ay)
	magC := math.Hypot(cx, cy)
	if magA == 0 || magC == 0 {
		return 0, false
	}

	cosTheta := (ax*cx + ay*cy) / (magA * magC)
	cosTheta = math.Max(-1, math.Min(1, cosTheta))
	return math.Acos(cosTheta) * 180 / math.Pi, true
}
