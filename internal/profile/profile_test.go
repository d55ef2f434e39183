package profile

import (
	"testing"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/testutil"
)

func baseCfg(exercise coremodel.ExerciseType, grip coremodel.GripType) coremodel.Config {
	cfg := coremodel.DefaultConfig()
	cfg.ExerciseType = exercise
	cfg.GripType = grip
	return cfg
}

func TestLoad_PushupHasThreeRules(t *testing.T) {
	p, err := Load(baseCfg(coremodel.ExercisePushup, ""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := len(p.Rules()); got != 3 {
		t.Errorf("expected 3 rules, got %d", got)
	}
}

func TestLoad_UnknownExerciseFails(t *testing.T) {
	if _, err := Load(baseCfg("jumping_jack", "")); err == nil {
		t.Error("expected an error for an unrecognized exercise type")
	}
}

func TestDriverAngle_PushupExtendedIsTop(t *testing.T) {
	p, err := Load(baseCfg(coremodel.ExercisePushup, ""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	af := coremodel.NewAngleFrame(0)
	af.Values[coremodel.AngleLeftElbow] = coremodel.AngleValue{Degrees: 170, OK: true}
	af.Values[coremodel.AngleRightElbow] = coremodel.AngleValue{Degrees: 170, OK: true}

	d, ok := p.DriverAngle(af)
	if !ok {
		t.Fatal("expected a valid driver value")
	}
	if d < 0.9 {
		t.Errorf("expected extended elbow to read as near-top (d close to 1), got %v", d)
	}
}

func TestDriverAngle_PullupFlexedIsTop(t *testing.T) {
	p, err := Load(baseCfg(coremodel.ExercisePullup, coremodel.GripOverhand))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	af := coremodel.NewAngleFrame(0)
	af.Values[coremodel.AngleLeftElbow] = coremodel.AngleValue{Degrees: 40, OK: true}
	af.Values[coremodel.AngleRightElbow] = coremodel.AngleValue{Degrees: 40, OK: true}

	d, ok := p.DriverAngle(af)
	if !ok {
		t.Fatal("expected a valid driver value")
	}
	if d < 0.9 {
		t.Errorf("expected a flexed elbow (pull-up top) to read as near-top, got %v", d)
	}
}

func TestDriverAngle_MissingAngleIsNotOK(t *testing.T) {
	p, err := Load(baseCfg(coremodel.ExercisePushup, ""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	af := coremodel.NewAngleFrame(0)
	if _, ok := p.DriverAngle(af); ok {
		t.Error("expected a missing elbow angle to yield ok=false")
	}
}

func TestLoad_WideGripRelaxesPullHeightBand(t *testing.T) {
	overhand, err := Load(baseCfg(coremodel.ExercisePullup, coremodel.GripOverhand))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	wide, err := Load(baseCfg(coremodel.ExercisePullup, coremodel.GripWide))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	var overhandHi, wideHi float64
	for _, r := range overhand.Rules() {
		if r.Name == "pull_height" {
			overhandHi = r.HiDeg
		}
	}
	for _, r := range wide.Rules() {
		if r.Name == "pull_height" {
			wideHi = r.HiDeg
		}
	}
	if wideHi <= overhandHi {
		t.Errorf("expected wide grip to relax the pull_height band beyond overhand's %v, got %v", overhandHi, wideHi)
	}
	testutil.AssertAlmostEqual(t, overhandHi, 60.0, 1e-9, "overhand pull_height.hi_deg")
}
