package phase

import (
	"testing"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/profile"
)

func pushupCfg() coremodel.Config {
	cfg := coremodel.DefaultConfig()
	cfg.ExerciseType = coremodel.ExercisePushup
	cfg.ExtractFPS = 10
	return cfg
}

// triangleWaveAngles builds a synthetic elbow-angle series tracing
// reps*2 linear ramps between 170 (top) and 70 (bottom) deg, stepSize
// samples per half-ramp.
func triangleWaveAngles(reps, stepSize int) []coremodel.AngleFrame {
	var degs []float64
	deg := 170.0
	degs = append(degs, deg)
	for r := 0; r < reps; r++ {
		for i := 0; i < stepSize; i++ {
			deg -= 100.0 / float64(stepSize)
			degs = append(degs, deg)
		}
		for i := 0; i < stepSize; i++ {
			deg += 100.0 / float64(stepSize)
			degs = append(degs, deg)
		}
	}
	out := make([]coremodel.AngleFrame, len(degs))
	for i, d := range degs {
		af := coremodel.NewAngleFrame(i)
		af.Values[coremodel.AngleLeftElbow] = coremodel.AngleValue{Degrees: d, OK: true}
		af.Values[coremodel.AngleRightElbow] = coremodel.AngleValue{Degrees: d, OK: true}
		out[i] = af
	}
	return out
}

func allActive(n int) []bool {
	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	return active
}

func TestProcess_ThreeCleanRepsCountsThree(t *testing.T) {
	cfg := pushupCfg()
	p, err := profile.Load(cfg)
	if err != nil {
		t.Fatalf("profile.Load: %v", err)
	}
	e := New(cfg, p)

	angles := triangleWaveAngles(3, 20)
	labels, count := e.Process(angles, allActive(len(angles)))

	if count != 3 {
		t.Errorf("expected 3 reps, got %d", count)
	}
	if len(labels) != len(angles) {
		t.Fatalf("expected one label per active frame, got %d for %d frames", len(labels), len(angles))
	}
}

func TestProcess_TrailingTopBecomesFinish(t *testing.T) {
	cfg := pushupCfg()
	p, err := profile.Load(cfg)
	if err != nil {
		t.Fatalf("profile.Load: %v", err)
	}
	e := New(cfg, p)

	angles := triangleWaveAngles(2, 20)
	labels, _ := e.Process(angles, allActive(len(angles)))

	last := labels[len(labels)-1]
	if last.Phase != coremodel.PhaseFinish {
		t.Errorf("expected final frame to be labeled finish, got %v", last.Phase)
	}
}

func TestProcess_InactiveFramesExcluded(t *testing.T) {
	cfg := pushupCfg()
	p, err := profile.Load(cfg)
	if err != nil {
		t.Fatalf("profile.Load: %v", err)
	}
	e := New(cfg, p)

	angles := triangleWaveAngles(1, 20)
	active := allActive(len(angles))
	active[0] = false
	active[1] = false

	labels, _ := e.Process(angles, active)
	if len(labels) != len(angles)-2 {
		t.Errorf("expected %d labels (2 frames excluded), got %d", len(angles)-2, len(labels))
	}
}

func TestProcess_SpuriousWiggleNearTopDoesNotDoubleCount(t *testing.T) {
	cfg := pushupCfg()
	p, err := profile.Load(cfg)
	if err != nil {
		t.Fatalf("profile.Load: %v", err)
	}
	e := New(cfg, p)

	angles := triangleWaveAngles(1, 20)
	// Splice a small residual dip (two frames at 165 deg, still above
	// d_top) right after the rep's peak, well within t_min_rep (0.4s = 4
	// frames at 10fps), simulating detector jitter at full extension.
	wiggle := []coremodel.AngleFrame{}
	for i := 0; i < 2; i++ {
		af := coremodel.NewAngleFrame(0)
		af.Values[coremodel.AngleLeftElbow] = coremodel.AngleValue{Degrees: 165, OK: true}
		af.Values[coremodel.AngleRightElbow] = coremodel.AngleValue{Degrees: 165, OK: true}
		wiggle = append(wiggle, af)
	}
	spliced := append(append([]coremodel.AngleFrame{}, angles...), wiggle...)
	for i := range spliced {
		spliced[i].FrameIdx = i
	}

	_, count := e.Process(spliced, allActive(len(spliced)))
	if count != 1 {
		t.Errorf("expected the dip after the peak not to add a repetition, got count=%d", count)
	}
}
