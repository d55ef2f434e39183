// Package posture implements the posture evaluator: stage 6 of the
// pipeline. It scores every active, in-phase frame against the
// exercise profile's rule catalog, producing a soft [0,1] score and a
// deduplicated, severity-ordered fault list, grounded on distances.go's
// registry-by-name dispatch pattern (here: posture rule by name rather
// than distance metric by name).
package posture

import (
	"fmt"
	"sort"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/phase"
	"github.com/posecoach/core/internal/profile"
)

// Evaluator scores active, in-phase frames against a loaded exercise
// profile's rule catalog.
type Evaluator struct {
	cfg     coremodel.Config
	profile profile.ExerciseProfile
}

// New constructs an Evaluator bound to cfg and the rule catalog of p.
func New(cfg coremodel.Config, p profile.ExerciseProfile) *Evaluator {
	return &Evaluator{cfg: cfg, profile: p}
}

// neutralScore is used for a frame where every applicable rule's angle
// is missing: spec.md's "missing angle = rule skipped (not zero)" means
// an unscoreable frame is neither penalized nor rewarded.
const neutralScore = 1.0

// Evaluate produces one FrameScore per label whose phase is scored
// (spec.md's ready/finish bound the active region but are never
// scored), looking up each labeled frame's angles by FrameIdx.
func (e *Evaluator) Evaluate(angles []coremodel.AngleFrame, labels []phase.Label) []coremodel.FrameScore {
	byIdx := make(map[int]coremodel.AngleFrame, len(angles))
	for _, af := range angles {
		byIdx[af.FrameIdx] = af
	}

	rules := e.profile.Rules()
	scores := make([]coremodel.FrameScore, 0, len(labels))
	for _, lbl := range labels {
		if !lbl.Phase.Scored() {
			continue
		}
		af, ok := byIdx[lbl.FrameIdx]
		if !ok {
			continue
		}
		scores = append(scores, e.scoreFrame(af, lbl.Phase, rules))
	}
	return scores
}

type faultCandidate struct {
	message string
	rank    float64 // w_i * (1 - c_i), the ordering key
}

// scoreFrame evaluates every rule applicable to phase p on af, per
// spec.md §4.6's soft-scoring rule: status from the target band,
// contribution clamp(1-delta/hard, 0, 1), frame score as the
// weight-normalized mean of applicable contributions.
func (e *Evaluator) scoreFrame(af coremodel.AngleFrame, p coremodel.Phase, rules []coremodel.Rule) coremodel.FrameScore {
	details := make(map[string]coremodel.RuleDetail, len(rules))
	var faults []faultCandidate
	var weightedSum, weightSum float64

	for _, rule := range rules {
		if !rule.AppliesTo(p) {
			continue
		}
		theta, ok := af.Combined(string(rule.Angle))
		if !ok {
			continue // missing angle: rule skipped, not zero
		}

		status, delta := rule.Evaluate(theta, e.cfg.SoftDeg)
		c := contribution(delta, e.cfg.HardDeg)

		weightedSum += rule.Weight * c
		weightSum += rule.Weight

		feedback := ""
		switch status {
		case coremodel.RuleWarning:
			feedback = rule.WarnMsg
		case coremodel.RuleError:
			feedback = rule.ErrorMsg
		}

		details[rule.Name] = coremodel.RuleDetail{
			Status:   status,
			Value:    fmt.Sprintf("%.1f deg", theta),
			Feedback: feedback,
		}

		if status != coremodel.RuleOK && feedback != "" {
			faults = append(faults, faultCandidate{message: feedback, rank: rule.Weight * (1 - c)})
		}
	}

	score := neutralScore
	if weightSum > 0 {
		score = weightedSum / weightSum
	}

	return coremodel.FrameScore{
		FrameIdx: af.FrameIdx,
		Phase:    p,
		Score:    score,
		Errors:   dedupFaults(faults),
		Details:  details,
	}
}

// contribution maps a degree deviation to a soft [0,1] contribution:
// clamp(1 - delta/hardDeg, 0, 1).
func contribution(deltaDeg, hardDeg float64) float64 {
	if hardDeg <= 0 {
		return 0
	}
	c := 1 - deltaDeg/hardDeg
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// dedupFaults orders fault messages by descending rank (w_i*(1-c_i))
// and removes duplicate message text, per spec.md §4.6.
func dedupFaults(faults []faultCandidate) []string {
	if len(faults) == 0 {
		return nil
	}
	sort.SliceStable(faults, func(i, j int) bool { return faults[i].rank > faults[j].rank })

	seen := make(map[string]bool, len(faults))
	out := make([]string, 0, len(faults))
	for _, f := range faults {
		if seen[f.message] {
			continue
		}
		seen[f.message] = true
		out = append(out, f.message)
	}
	return out
}
