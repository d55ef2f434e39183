package activity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/posecoach/core/internal/scipy"
)

// k is the neighbor count for the fallback classifier's majority vote.
const k = 5

// prototype is one labeled training example: a (driver value, driver
// first-difference) feature pair with its active/rest ground truth.
// The table below stands in for an offline-trained classifier (spec.md
// §4.4's "pre-trained classifier") — hand-labeled from the same kind of
// synthetic traces the teacher's own test fixtures use, not fit from a
// real dataset, since training the pose/motion model is explicitly out
// of scope (spec.md §1).
type prototype struct {
	value float64
	delta float64
	active bool
}

var prototypeTable = []prototype{
	// Resting: driver parked near an extreme, little frame-to-frame change.
	{value: 0.95, delta: 0.01, active: false},
	{value: 0.92, delta: 0.02, active: false},
	{value: 0.05, delta: 0.01, active: false},
	{value: 0.08, delta: 0.02, active: false},
	{value: 0.50, delta: 0.00, active: false},
	{value: 0.97, delta: 0.00, active: false},
	{value: 0.03, delta: 0.00, active: false},
	// Active: mid-range driver value with substantial frame-to-frame change.
	{value: 0.50, delta: 0.25, active: true},
	{value: 0.40, delta: 0.20, active: true},
	{value: 0.60, delta: 0.22, active: true},
	{value: 0.30, delta: 0.18, active: true},
	{value: 0.70, delta: 0.18, active: true},
	{value: 0.45, delta: 0.30, active: true},
	{value: 0.55, delta: 0.28, active: true},
}

// classify is the fallback activity classifier consulted when the
// motion-energy rule yields an implausible active fraction (too static a
// camera, or too noisy a driver). It computes, per frame, the feature
// pair (normalized driver value in [0,1], first difference) and labels
// the frame by a k-nearest-neighbor majority vote against prototypeTable,
// using scipy.Cdist for the distance computation exactly as the teacher's
// distance-by-name registry dispatches to Cdist-backed metrics.
func classify(driver []float64, ok []bool) []bool {
	n := len(driver)
	out := make([]bool, n)
	if n == 0 {
		return out
	}

	features := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		delta := 0.0
		if i > 0 && ok[i] && ok[i-1] {
			delta = driver[i] - driver[i-1]
			if delta < 0 {
				delta = -delta
			}
		}
		features.Set(i, 0, driver[i])
		features.Set(i, 1, delta)
	}

	table := mat.NewDense(len(prototypeTable), 2, nil)
	for i, p := range prototypeTable {
		table.Set(i, 0, p.value)
		table.Set(i, 1, p.delta)
	}

	dist := scipy.Cdist(features, table, "euclidean")

	for i := 0; i < n; i++ {
		if !ok[i] {
			out[i] = false
			continue
		}
		out[i] = majorityVote(dist.RawRowView(i))
	}
	return out
}

// majorityVote picks the k nearest prototypes by distance and returns
// the majority active/rest label, breaking ties toward active: a missed
// active frame discards real repetition data downstream, while a
// spuriously active frame is still subject to the phase state machine.
func majorityVote(distances []float64) bool {
	type cand struct {
		dist   float64
		active bool
	}
	cands := make([]cand, len(distances))
	for i, d := range distances {
		cands[i] = cand{dist: d, active: prototypeTable[i].active}
	}
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].dist < cands[j-1].dist; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
	kk := k
	if kk > len(cands) {
		kk = len(cands)
	}
	activeVotes := 0
	for i := 0; i < kk; i++ {
		if cands[i].active {
			activeVotes++
		}
	}
	return activeVotes*2 >= kk
}
