// Package dtwscore implements the optional DTW scorer: stage 7 of the
// pipeline. It aligns the user's per-rep, per-phase angle series
// against a reference video's (itself a product of stages 1-5) using
// Sakoe-Chiba-banded dynamic time warping, grounded directly on
// github.com/katalvlaran/lvlath's dtw package.
package dtwscore

import (
	"math"
	"sort"

	"github.com/katalvlaran/lvlath/dtw"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/phase"
)

// alpha maps a normalized DTW cost (in degrees) to a [0,1] score via
// exp(-alpha*cost). Picked so that a reference-vs-reference comparison
// (normalized cost near 0, only quantization/smoothing noise of a few
// degrees) clears 0.95, and a randomized-angle control (normalized cost
// of several tens of degrees) falls near 0.1, per spec.md §4.7.
const alpha = 0.045

// scoredPhaseOrder is the fixed phase iteration order for deterministic
// PerPhase output.
var scoredPhaseOrder = []coremodel.Phase{
	coremodel.PhaseDescending,
	coremodel.PhaseBottom,
	coremodel.PhaseAscending,
	coremodel.PhaseTop,
}

// Scorer computes phase-wise DTW similarity between a user stream and a
// reference stream.
type Scorer struct {
	cfg coremodel.Config
}

// New constructs a Scorer bound to cfg (consulted for DTWBandFrac).
func New(cfg coremodel.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the DTW result for a user stream against a reference
// stream. active is false (and result nil) when the reference yields
// zero completed repetitions, per spec.md §4.7's failure semantics —
// the caller should set dtw_active=false and proceed without failing
// the overall request.
func (s *Scorer) Score(userAngles, refAngles []coremodel.AngleFrame, userLabels, refLabels []phase.Label) (*coremodel.DTWResult, bool) {
	userReps := segmentReps(userAngles, userLabels)
	refReps := segmentReps(refAngles, refLabels)
	if len(refReps) == 0 || len(userReps) == 0 {
		return nil, false
	}

	pairCount := len(userReps)
	if len(refReps) < pairCount {
		pairCount = len(refReps)
	}
	if pairCount == 0 {
		return nil, false
	}

	jointTotals := make(map[coremodel.AngleName]*jointAccum)
	var perPhase []coremodel.PhaseDTWScore
	var weightedOverall, totalWeight float64

	for _, ph := range scoredPhaseOrder {
		var sumScore float64
		var reps int
		for i := 0; i < pairCount; i++ {
			userSeq := userReps[i].byPhase[ph]
			refSeq := refReps[i].byPhase[ph]
			if len(userSeq) == 0 || len(refSeq) == 0 {
				continue
			}
			score, ok := s.scoreRepPhase(userSeq, refSeq, jointTotals)
			if !ok {
				continue
			}
			sumScore += score
			reps++
		}
		if reps == 0 {
			continue
		}
		avg := sumScore / float64(reps)
		perPhase = append(perPhase, coremodel.PhaseDTWScore{Phase: ph, Score: avg})
		weightedOverall += avg * float64(reps)
		totalWeight += float64(reps)
	}

	if totalWeight == 0 {
		return nil, false
	}

	return &coremodel.DTWResult{
		OverallScore: weightedOverall / totalWeight,
		PerPhase:     perPhase,
		WorstJoints:  worstJoints(jointTotals, 4),
	}, true
}

type jointAccum struct {
	sum   float64
	count int
}

// scoreRepPhase computes one rep/phase pair's DTW score, summing
// per-channel normalized cost across every AngleName (the
// "concatenation of the triple angles" feature spec.md describes),
// and records each channel's mean |delta| into jointTotals for the
// worst-joints report.
func (s *Scorer) scoreRepPhase(userSeq, refSeq []coremodel.AngleFrame, jointTotals map[coremodel.AngleName]*jointAccum) (float64, bool) {
	var totalCost float64
	channels := 0

	for _, name := range coremodel.AllAngleNames() {
		a := channelSeries(userSeq, name)
		b := channelSeries(refSeq, name)
		if len(a) == 0 || len(b) == 0 {
			continue
		}

		longer := len(a)
		if len(b) > longer {
			longer = len(b)
		}
		band := int(math.Round(s.cfg.DTWBandFrac * float64(longer)))
		if band < 1 {
			band = 1
		}

		normalizedCost, meanAbsDelta, err := channelDTW(a, b, band)
		if err != nil {
			continue
		}

		totalCost += normalizedCost
		channels++

		acc, ok := jointTotals[name]
		if !ok {
			acc = &jointAccum{}
			jointTotals[name] = acc
		}
		acc.sum += meanAbsDelta
		acc.count++
	}

	if channels == 0 {
		return 0, false
	}
	normalizedCost := totalCost / float64(channels)
	return math.Exp(-alpha * normalizedCost), true
}

// channelDTW runs a band-limited DTW between two single-channel angle
// series and returns the path-length-normalized cost plus the mean
// absolute angle difference along the alignment path (used for the
// worst-joints report).
func channelDTW(a, b []float64, band int) (normalizedCost float64, meanAbsDelta float64, err error) {
	opts := &dtw.Options{
		Window:     band,
		MemoryMode: dtw.FullMatrix,
		ReturnPath: true,
	}
	dist, path, err := dtw.DTW(a, b, opts)
	if err != nil {
		return 0, 0, err
	}
	pathLen := len(path)
	if pathLen == 0 {
		return 0, 0, nil
	}
	var sumAbs float64
	for _, c := range path {
		sumAbs += math.Abs(a[c.I] - b[c.J])
	}
	return dist / float64(pathLen), sumAbs / float64(pathLen), nil
}

// channelSeries extracts the OK-valued samples of a named angle from a
// rep/phase's frame sequence, in frame order.
func channelSeries(frames []coremodel.AngleFrame, name coremodel.AngleName) []float64 {
	out := make([]float64, 0, len(frames))
	for _, af := range frames {
		if v, ok := af.Values[name]; ok && v.OK {
			out = append(out, v.Degrees)
		}
	}
	return out
}

// worstJoints returns the top-n AngleNames by mean |delta| across every
// aligned pair seen, descending.
func worstJoints(totals map[coremodel.AngleName]*jointAccum, n int) []coremodel.JointDelta {
	deltas := make([]coremodel.JointDelta, 0, len(totals))
	for name, acc := range totals {
		if acc.count == 0 {
			continue
		}
		deltas = append(deltas, coremodel.JointDelta{Angle: name, MeanAbsDeltaDeg: acc.sum / float64(acc.count)})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].MeanAbsDeltaDeg > deltas[j].MeanAbsDeltaDeg })
	if len(deltas) > n {
		deltas = deltas[:n]
	}
	return deltas
}
