package posecoach

import (
	"testing"

	"github.com/posecoach/core/internal/coremodel"
)

func TestMeanScore_EmptyIsZero(t *testing.T) {
	if got := meanScore(nil); got != 0 {
		t.Errorf("meanScore(nil) = %v, want 0", got)
	}
}

func TestMeanScore_Averages(t *testing.T) {
	scores := []coremodel.FrameScore{{Score: 0.8}, {Score: 1.0}, {Score: 0.6}}
	got := meanScore(scores)
	want := 0.8
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("meanScore = %v, want %v", got, want)
	}
}

func TestErrorFrames_OnlyKeepsFramesWithErrors(t *testing.T) {
	scores := []coremodel.FrameScore{
		{FrameIdx: 0, Errors: nil},
		{FrameIdx: 1, Errors: []string{"hip sag"}},
		{FrameIdx: 2, Errors: nil},
	}
	got := errorFrames(scores)
	if len(got) != 1 || got[0].FrameIdx != 1 {
		t.Errorf("errorFrames = %+v, want one entry at frame 1", got)
	}
}

func TestComputeGrade_NoDTWUsesAvgAlone(t *testing.T) {
	if g := computeGrade(0.95, nil, false); g != coremodel.GradeS {
		t.Errorf("grade = %v, want S", g)
	}
	if g := computeGrade(0.6, nil, false); g != coremodel.GradeB {
		t.Errorf("grade = %v, want B", g)
	}
	if g := computeGrade(0.3, nil, false); g != coremodel.GradeC {
		t.Errorf("grade = %v, want C", g)
	}
}

func TestComputeGrade_BlendsDTWWhenActive(t *testing.T) {
	// avg=0.8, dtw=0.5 -> 0.8*0.7 + 0.5*0.3 = 0.71 -> grade A
	result := &coremodel.DTWResult{OverallScore: 0.5}
	if g := computeGrade(0.8, result, true); g != coremodel.GradeA {
		t.Errorf("grade = %v, want A", g)
	}
}
