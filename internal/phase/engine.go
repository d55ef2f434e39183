// Package phase implements the phase + counter engine: stage 5 of the
// pipeline. It drives a five-state machine off the exercise profile's
// normalized driver value and derives both a per-active-frame phase
// label and the completed repetition count, grounded on
// tracked_object.go's explicit state-bookkeeping style (named fields, a
// single step method advancing one state at a time) adapted from
// per-object tracking lifecycle to per-rep kinematic phase.
package phase

import (
	"math"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/profile"
)

// Label is one active frame's phase assignment.
type Label struct {
	FrameIdx int
	Phase    coremodel.Phase
}

// Engine derives phase labels and the repetition count from an active
// segment's angle series.
type Engine struct {
	cfg     coremodel.Config
	profile profile.ExerciseProfile
}

// New constructs an Engine bound to cfg and the exercise profile whose
// driver angle (with its exercise-specific inversion already applied)
// drives the state machine.
func New(cfg coremodel.Config, p profile.ExerciseProfile) *Engine {
	return &Engine{cfg: cfg, profile: p}
}

// Process labels every active frame and returns the completed
// repetition count. Frames where active[i] is false are skipped
// entirely: spec.md's phase stream is defined only over the active
// region, never over resting frames.
func (e *Engine) Process(angles []coremodel.AngleFrame, active []bool) ([]Label, int) {
	minGapFrames := int(math.Ceil(e.cfg.TMinRep * float64(e.cfg.ExtractFPS)))
	if minGapFrames < 1 {
		minGapFrames = 1
	}

	const farPast = -(1 << 30)
	state := coremodel.PhaseReady
	count := 0
	lastBottomFrame := farPast
	lastTopFrame := farPast

	var labels []Label
	prevD := 0.0
	havePrev := false
	dHeld := 0.5
	haveD := false

	for i, af := range angles {
		if i >= len(active) || !active[i] {
			continue
		}

		if d, ok := e.profile.DriverAngle(af); ok {
			dHeld = d
			haveD = true
		}
		if !haveD {
			labels = append(labels, Label{FrameIdx: af.FrameIdx, Phase: coremodel.PhaseReady})
			continue
		}
		d := dHeld

		switch state {
		case coremodel.PhaseReady, coremodel.PhaseTop:
			if havePrev && prevD >= e.cfg.DTop && d < e.cfg.DTop {
				state = coremodel.PhaseDescending
			}
		case coremodel.PhaseDescending:
			if havePrev && d > prevD && prevD < e.cfg.DBot {
				if af.FrameIdx-lastBottomFrame >= minGapFrames {
					state = coremodel.PhaseBottom
					lastBottomFrame = af.FrameIdx
				}
			}
		case coremodel.PhaseBottom:
			if d > e.cfg.DBot {
				state = coremodel.PhaseAscending
			}
		case coremodel.PhaseAscending:
			if havePrev && d < prevD && prevD > e.cfg.DTop {
				if af.FrameIdx-lastTopFrame >= minGapFrames {
					state = coremodel.PhaseTop
					count++
					lastTopFrame = af.FrameIdx
				}
			}
		}

		labels = append(labels, Label{FrameIdx: af.FrameIdx, Phase: state})
		prevD = d
		havePrev = true
	}

	// A stream that ends mid-ascent above d_top ends on the rep's local
	// maximum: its last sample closes the repetition.
	if state == coremodel.PhaseAscending && havePrev && prevD > e.cfg.DTop && len(labels) > 0 {
		last := &labels[len(labels)-1]
		if last.FrameIdx-lastTopFrame >= minGapFrames {
			last.Phase = coremodel.PhaseTop
			count++
		}
	}

	markFinalTopAsFinish(labels)
	return labels, count
}

// markFinalTopAsFinish relabels the trailing run of Top-labeled frames
// (the portion of the active region after the last counted repetition
// that never descends again) as Finish, per spec.md §4.5: "After the
// final top, [active frames] are labeled finish."
func markFinalTopAsFinish(labels []Label) {
	for i := len(labels) - 1; i >= 0 && labels[i].Phase == coremodel.PhaseTop; i-- {
		labels[i].Phase = coremodel.PhaseFinish
	}
}
