package dtwscore

import (
	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/phase"
)

// rep is one repetition's angle frames grouped by scored phase.
type rep struct {
	byPhase  map[coremodel.Phase][]coremodel.AngleFrame
	complete bool // reached Top (or Finish, the relabeled final Top)
}

// segmentReps slices a labeled angle stream into per-repetition groups,
// one group per descending->bottom->ascending->top cycle, keyed by
// scored phase. A new rep starts at each transition into Descending
// from Ready, Top, or Finish — the same boundary the phase engine uses
// to begin a new cycle. Repetitions that never reach Top (or Finish)
// are dropped.
func segmentReps(angles []coremodel.AngleFrame, labels []phase.Label) []rep {
	byIdx := make(map[int]coremodel.AngleFrame, len(angles))
	for _, af := range angles {
		byIdx[af.FrameIdx] = af
	}

	var reps []rep
	var cur *rep
	prevPhase := coremodel.Phase(-1)

	for _, lbl := range labels {
		if lbl.Phase == coremodel.PhaseDescending && startsNewRep(prevPhase) {
			reps = append(reps, rep{byPhase: make(map[coremodel.Phase][]coremodel.AngleFrame)})
			cur = &reps[len(reps)-1]
		}
		if cur != nil && lbl.Phase.Scored() {
			if af, ok := byIdx[lbl.FrameIdx]; ok {
				cur.byPhase[lbl.Phase] = append(cur.byPhase[lbl.Phase], af)
			}
		}
		if cur != nil && (lbl.Phase == coremodel.PhaseTop || lbl.Phase == coremodel.PhaseFinish) {
			cur.complete = true
		}
		prevPhase = lbl.Phase
	}

	completed := reps[:0]
	for _, r := range reps {
		if r.complete {
			completed = append(completed, r)
		}
	}
	return completed
}

func startsNewRep(prev coremodel.Phase) bool {
	return prev != coremodel.PhaseDescending && prev != coremodel.PhaseBottom && prev != coremodel.PhaseAscending
}
