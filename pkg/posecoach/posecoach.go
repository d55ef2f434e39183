// Package posecoach is the public API for exercise-video analysis: a
// single Config record in, a single Report out. Everything under
// internal/ is reachable only through Analyze; external callers never
// construct a Frame or KeypointSet directly, the same boundary the
// teacher draws around its own Tracker entry point.
package posecoach

import "github.com/posecoach/core/internal/coremodel"

// Re-exported types. posecoach is a thin facade over internal/coremodel:
// every stage package already speaks coremodel, so aliasing here avoids
// a duplicate type family while keeping internal/ unimportable from
// outside the module.
type (
	Config        = coremodel.Config
	ExerciseType  = coremodel.ExerciseType
	GripType      = coremodel.GripType
	Report        = coremodel.Report
	FrameScore    = coremodel.FrameScore
	RuleDetail    = coremodel.RuleDetail
	RuleStatus    = coremodel.RuleStatus
	FilteringInfo = coremodel.FilteringInfo
	DTWResult     = coremodel.DTWResult
	PhaseDTWScore = coremodel.PhaseDTWScore
	JointDelta    = coremodel.JointDelta
	Grade         = coremodel.Grade
	Phase         = coremodel.Phase
	KeypointSet   = coremodel.KeypointSet
	ErrorKind     = coremodel.ErrorKind
	Error         = coremodel.Error
)

const (
	ExercisePushup = coremodel.ExercisePushup
	ExercisePullup = coremodel.ExercisePullup

	GripOverhand  = coremodel.GripOverhand
	GripUnderhand = coremodel.GripUnderhand
	GripWide      = coremodel.GripWide

	InputError          = coremodel.InputError
	DecodeError         = coremodel.DecodeError
	DetectionError      = coremodel.DetectionError
	InsufficientMotion  = coremodel.InsufficientMotion
	Cancelled           = coremodel.Cancelled

	RuleOK      = coremodel.RuleOK
	RuleWarning = coremodel.RuleWarning
	RuleError   = coremodel.RuleError

	GradeS = coremodel.GradeS
	GradeA = coremodel.GradeA
	GradeB = coremodel.GradeB
	GradeC = coremodel.GradeC
)

// DefaultConfig returns a Config with every documented default applied.
func DefaultConfig() Config {
	return coremodel.DefaultConfig()
}
