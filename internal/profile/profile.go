package profile

import (
	"fmt"

	"github.com/posecoach/core/internal/coremodel"
)

// ExerciseProfile is the single interface the pipeline dispatches on for
// exercise-specific behavior: the driver-angle definition (with
// inversion baked in), the rule catalog, and the set of scored phases.
// Dispatch is one lookup at pipeline entry (Load); nothing downstream
// branches on exercise type again.
type ExerciseProfile interface {
	Name() string
	// DriverAngle maps an AngleFrame to the normalized driver d in
	// [0,1], where d=1 is "top of rep" and d=0 is "bottom of rep".
	// ok is false when the underlying angle is missing for this frame.
	DriverAngle(af coremodel.AngleFrame) (d float64, ok bool)
	// DriverAngleDegrees returns the same underlying angle before
	// min/max normalization, in degrees — used by the activity
	// segmenter's motion-energy rule, which is specified in deg/sample.
	DriverAngleDegrees(af coremodel.AngleFrame) (deg float64, ok bool)
	Rules() []coremodel.Rule
	ScoredPhases() []coremodel.Phase
}

// dataProfile is the one ExerciseProfile implementation; pushup and
// pullup differ only in the data fed into it.
type dataProfile struct {
	name   string
	driver driverSpec
	rules  []coremodel.Rule
}

func (p *dataProfile) Name() string { return p.name }

func (p *dataProfile) Rules() []coremodel.Rule { return p.rules }

func (p *dataProfile) ScoredPhases() []coremodel.Phase {
	return []coremodel.Phase{
		coremodel.PhaseDescending,
		coremodel.PhaseBottom,
		coremodel.PhaseAscending,
		coremodel.PhaseTop,
	}
}

func (p *dataProfile) DriverAngleDegrees(af coremodel.AngleFrame) (float64, bool) {
	return af.Combined(p.driver.base)
}

func (p *dataProfile) DriverAngle(af coremodel.AngleFrame) (float64, bool) {
	deg, ok := af.Combined(p.driver.base)
	if !ok {
		return 0, false
	}
	span := p.driver.maxDeg - p.driver.minDeg
	if span == 0 {
		return 0, false
	}
	d := (deg - p.driver.minDeg) / span
	if p.driver.invert {
		d = 1 - d
	}
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	return d, true
}

// Load looks up the ExerciseProfile named by cfg.ExerciseType (and, for
// pull-ups, cfg.GripType), the single exercise-conditioned branch in the
// pipeline.
func Load(cfg coremodel.Config) (ExerciseProfile, error) {
	t, err := loadTable()
	if err != nil {
		return nil, coremodel.NewError(coremodel.InputError, "loading exercise profile table", err)
	}

	switch cfg.ExerciseType {
	case coremodel.ExercisePushup:
		return &dataProfile{
			name:   "pushup",
			driver: t.driver("pushup"),
			rules:  t.rules("pushup", ""),
		}, nil
	case coremodel.ExercisePullup:
		override := "pullup." + string(cfg.GripType)
		return &dataProfile{
			name:   "pullup_" + string(cfg.GripType),
			driver: t.overriddenDriver("pullup", override),
			rules:  t.rules("pullup", override),
		}, nil
	default:
		return nil, coremodel.NewError(coremodel.InputError, fmt.Sprintf("unknown exercise type %q", cfg.ExerciseType), nil)
	}
}
