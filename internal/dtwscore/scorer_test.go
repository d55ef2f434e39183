package dtwscore

import (
	"testing"

	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/phase"
	"github.com/posecoach/core/internal/profile"
)

// buildStream creates a triangle-wave elbow-angle stream (reps cycles,
// stepSize samples per half-ramp) plus its phase labels, mirroring the
// phase package's own synthetic fixture.
func buildStream(reps, stepSize int, offsetDeg float64) ([]coremodel.AngleFrame, []phase.Label) {
	cfg := coremodel.DefaultConfig()
	cfg.ExerciseType = coremodel.ExercisePushup

	var degs []float64
	deg := 170.0 + offsetDeg
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

	angles := make([]coremodel.AngleFrame, len(degs))
	for i, d := range degs {
		af := coremodel.NewAngleFrame(i)
		af.Values[coremodel.AngleLeftElbow] = coremodel.AngleValue{Degrees: d, OK: true}
		af.Values[coremodel.AngleRightElbow] = coremodel.AngleValue{Degrees: d, OK: true}
		af.Values[coremodel.AngleLeftHip] = coremodel.AngleValue{Degrees: 175, OK: true}
		af.Values[coremodel.AngleRightHip] = coremodel.AngleValue{Degrees: 175, OK: true}
		angles[i] = af
	}

	active := make([]bool, len(angles))
	for i := range active {
		active[i] = true
	}

	p, err := profile.Load(cfg)
	if err != nil {
		panic(err)
	}
	e := phase.New(cfg, p)
	labels, _ := e.Process(angles, active)
	return angles, labels
}

func TestScore_SelfComparisonScoresHigh(t *testing.T) {
	angles, labels := buildStream(2, 20, 0)
	cfg := coremodel.DefaultConfig()
	s := New(cfg)

	result, active := s.Score(angles, angles, labels, labels)
	if !active {
		t.Fatal("expected DTW to be active for a self-comparison")
	}
	if result.OverallScore < 0.95 {
		t.Errorf("expected self-comparison score >= 0.95, got %v", result.OverallScore)
	}
}

func TestScore_OffsetStreamScoresLowerThanSelf(t *testing.T) {
	angles, labels := buildStream(2, 20, 0)
	offsetAngles, offsetLabels := buildStream(2, 20, -15) // systematic 15 deg bias throughout; peaks at 155 deg still cross d_top

	cfg := coremodel.DefaultConfig()
	s := New(cfg)

	self, _ := s.Score(angles, angles, labels, labels)
	cross, active := s.Score(angles, offsetAngles, labels, offsetLabels)
	if !active {
		t.Fatal("expected DTW to be active for the offset comparison")
	}
	if cross.OverallScore >= self.OverallScore {
		t.Errorf("expected offset comparison (%v) to score below self-comparison (%v)", cross.OverallScore, self.OverallScore)
	}
}

func TestScore_ZeroRepsReferenceIsInactive(t *testing.T) {
	cfg := coremodel.DefaultConfig()
	s := New(cfg)

	userAngles, userLabels := buildStream(1, 20, 0)
	_, active := s.Score(userAngles, nil, userLabels, nil)
	if active {
		t.Error("expected an empty reference stream to leave DTW inactive")
	}
}
