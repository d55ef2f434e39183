package coremodel

// RuleStatus is the outcome of evaluating one posture rule on one frame.
type RuleStatus string

const (
	RuleOK      RuleStatus = "ok"
	RuleWarning RuleStatus = "warning"
	RuleError   RuleStatus = "error"
)

// RuleDetail is one posture rule's outcome on one frame.
type RuleDetail struct {
	Status   RuleStatus
	Value    string // human-readable measured value, e.g. "163.2 deg"
	Feedback string
}

// FrameScore is the posture evaluator's record for one active, in-phase
// frame. Frames outside the active region have no FrameScore.
type FrameScore struct {
	FrameIdx int
	Phase    Phase
	Score    float64 // in [0,1]
	Errors   []string
	Details  map[string]RuleDetail // keyed by rule name
}

// FilteringInfo is the activity segmenter's provenance record: which
// method produced the active/rest labels and, on fallback, why.
type FilteringInfo struct {
	Method      string // "rule" or "classifier_fallback"
	Reason      string // populated only when Method is the fallback
	ActiveCount int
	TotalFrames int
}

// JointDelta is one entry in a DTWResult's worst-joints list.
type JointDelta struct {
	Angle          AngleName
	MeanAbsDeltaDeg float64
}

// PhaseDTWScore is the DTW similarity for one phase.
type PhaseDTWScore struct {
	Phase Phase
	Score float64
}

// DTWResult is the optional stage-7 output. Present only when a reference
// video was supplied and yielded at least one completed repetition.
type DTWResult struct {
	OverallScore float64
	PerPhase     []PhaseDTWScore
	WorstJoints  []JointDelta
}

// Grade is the letter grade derived from the final combined score.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Report is the single immutable output of the pipeline. Every field is
// produced once by its owning stage and never mutated afterward.
type Report struct {
	VideoName    string
	ExerciseType ExerciseType
	GripType     GripType

	Duration    float64 // seconds
	FPS         float64 // source fps
	TotalFrames int

	ExerciseCount int

	FrameScores []FrameScore
	ErrorFrames []FrameScore // subset of FrameScores with non-empty Errors

	Keypoints []KeypointSet // one per frame, in frame order, for overlay rendering

	SelectedFrameIndices []int

	Filtering FilteringInfo

	DTWActive bool
	DTWResult *DTWResult

	AvgScore float64
	Grade    Grade

	// Warning is non-empty when the report is a warning-level report
	// (currently only the InsufficientMotion case from spec.md §7).
	Warning string
}
