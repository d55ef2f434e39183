package coremodel

import "math"

// Rule is one posture-evaluator rule, declared by an exercise profile.
// It fires on a set of phases, measures one named angle, and maps
// deviation from a target band into a soft [0,1] contribution.
type Rule struct {
	Name     string
	Phases   map[Phase]bool
	Angle    AngleName
	LoDeg    float64
	HiDeg    float64
	Weight   float64
	WarnMsg  string
	ErrorMsg string
}

// AppliesTo reports whether this rule is evaluated on the given phase.
func (r Rule) AppliesTo(p Phase) bool {
	return r.Phases[p]
}

// Evaluate computes this rule's status and degree deviation (delta) for
// a measured angle theta, per spec.md §4.6's soft-scoring rule: ok
// inside [LoDeg,HiDeg], warning within softDeg of the band, error
// beyond it.
func (r Rule) Evaluate(theta, softDeg float64) (RuleStatus, float64) {
	if theta >= r.LoDeg && theta <= r.HiDeg {
		return RuleOK, 0
	}
	delta := math.Min(math.Abs(theta-r.LoDeg), math.Abs(theta-r.HiDeg))
	if delta <= softDeg {
		return RuleWarning, delta
	}
	return RuleError, delta
}

// PhaseSet builds a phase membership set from a variadic list, used by
// profile constructors to declare which phases a rule applies to.
func PhaseSet(phases ...Phase) map[Phase]bool {
	set := make(map[Phase]bool, len(phases))
	for _, p := range phases {
		set[p] = true
	}
	return set
}
