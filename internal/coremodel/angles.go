package coremodel

// AngleName identifies one of the per-side joint-triple angles computed by
// the signal conditioner. Each corresponds to one of the four joint
// triples spec'd for the posture evaluator (shoulder-elbow-wrist,
// hip-shoulder-elbow, hip-knee-ankle, shoulder-hip-knee), split left/right.
type AngleName string

const (
	AngleLeftElbow    AngleName = "left_elbow"    // left shoulder-elbow-wrist
	AngleRightElbow   AngleName = "right_elbow"   // right shoulder-elbow-wrist
	AngleLeftShoulder AngleName = "left_shoulder" // left hip-shoulder-elbow
	AngleRightShoulder AngleName = "right_shoulder"
	AngleLeftKnee     AngleName = "left_knee" // left hip-knee-ankle
	AngleRightKnee    AngleName = "right_knee"
	AngleLeftHip      AngleName = "left_hip" // left shoulder-hip-knee (torso alignment)
	AngleRightHip     AngleName = "right_hip"
)

// AllAngleNames lists every per-side angle the signal conditioner computes.
func AllAngleNames() []AngleName {
	return []AngleName{
		AngleLeftElbow, AngleRightElbow,
		AngleLeftShoulder, AngleRightShoulder,
		AngleLeftKnee, AngleRightKnee,
		AngleLeftHip, AngleRightHip,
	}
}

// JointTriple names the three joints whose included angle at B defines one
// named angle, per side.
type JointTriple struct {
	A, B, C Joint
	Name    AngleName
}

// AngleTriples is the fixed set of (A,B,C) triples the signal conditioner
// evaluates, one per AngleName.
var AngleTriples = []JointTriple{
	{LeftShoulder, LeftElbow, LeftWrist, AngleLeftElbow},
	{RightShoulder, RightElbow, RightWrist, AngleRightElbow},
	{LeftHip, LeftShoulder, LeftElbow, AngleLeftShoulder},
	{RightHip, RightShoulder, RightElbow, AngleRightShoulder},
	{LeftHip, LeftKnee, LeftAnkle, AngleLeftKnee},
	{RightHip, RightKnee, RightAnkle, AngleRightKnee},
	{LeftShoulder, LeftHip, LeftKnee, AngleLeftHip},
	{RightShoulder, RightHip, RightKnee, AngleRightHip},
}

// AngleValue is a single angle measurement in degrees, or a missing marker
// when one of its three joints was missing or insufficiently visible.
type AngleValue struct {
	Degrees float64
	OK      bool
}

// AngleFrame carries every named angle for one frame, plus the frame it
// was computed from.
type AngleFrame struct {
	FrameIdx int
	Values   map[AngleName]AngleValue
}

// NewAngleFrame returns an AngleFrame with every angle marked missing.
func NewAngleFrame(frameIdx int) AngleFrame {
	values := make(map[AngleName]AngleValue, len(AllAngleNames()))
	for _, n := range AllAngleNames() {
		values[n] = AngleValue{OK: false}
	}
	return AngleFrame{FrameIdx: frameIdx, Values: values}
}

// Combined averages the left/right sides of a driver concept ("elbow",
// "shoulder", "knee", "hip") when both sides are present, and falls back
// to whichever single side is present. Returns ok=false only when both
// sides are missing.
func (af AngleFrame) Combined(base string) (float64, bool) {
	left, leftOK := af.Values[AngleName("left_"+base)]
	right, rightOK := af.Values[AngleName("right_"+base)]
	leftOK = leftOK && left.OK
	rightOK = rightOK && right.OK
	switch {
	case leftOK && rightOK:
		return (left.Degrees + right.Degrees) / 2, true
	case leftOK:
		return left.Degrees, true
	case rightOK:
		return right.Degrees, true
	default:
		return 0, false
	}
}
