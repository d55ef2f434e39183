package posecoach

import (
	"context"
	"sync"

	"gocv.io/x/gocv"

	"github.com/posecoach/core/internal/activity"
	"github.com/posecoach/core/internal/coremodel"
	"github.com/posecoach/core/internal/dtwscore"
	"github.com/posecoach/core/internal/frame"
	"github.com/posecoach/core/internal/overlay"
	"github.com/posecoach/core/internal/phase"
	"github.com/posecoach/core/internal/posedetect"
	"github.com/posecoach/core/internal/posture"
	"github.com/posecoach/core/internal/profile"
	"github.com/posecoach/core/internal/signalcond"
)

// Analyze runs the full seven-stage pipeline against videoPath and
// returns the resulting Report. videoName is carried through to the
// report for the caller's own bookkeeping; it need not be a filesystem
// path. If cfg.ReferencePath is set, the same pipeline runs a second
// time against it and DTW scoring runs against the user stream once
// both streams have phase labels.
//
// Analyze returns a non-nil Report alongside a non-nil error only for
// InsufficientMotion, per spec.md §7: the report is warning-level, with
// ExerciseCount=0 and empty FrameScores. Every other error kind returns
// a nil Report.
func Analyze(ctx context.Context, videoName, videoPath string, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prof, err := profile.Load(cfg)
	if err != nil {
		return nil, err
	}

	stream, err := runPipeline(ctx, videoPath, cfg, prof)
	if err != nil {
		return nil, err
	}

	if stream.repCount == 0 {
		stream.closeImages()
		return &Report{
			VideoName:     videoName,
			ExerciseType:  cfg.ExerciseType,
			GripType:      cfg.GripType,
			Duration:      stream.duration(),
			FPS:           stream.meta.SourceFPS,
			TotalFrames:   stream.meta.SourceFrameCount,
			ExerciseCount: 0,
			Keypoints:     stream.keypoints(),
			Filtering:     stream.filtering,
			Warning:       "activity segmenter found fewer than one complete repetition",
		}, coremodel.NewError(coremodel.InsufficientMotion, "fewer than one complete repetition detected", nil)
	}

	var refStream *pipelineStream
	if cfg.ReferencePath != "" {
		rs, rerr := runPipeline(ctx, cfg.ReferencePath, cfg, prof)
		if rerr == nil {
			refStream = rs
		} else {
			cfg.LoggerOrDefault().Printf("posecoach: reference video failed, disabling DTW: %v", rerr)
		}
	}

	var frameScores []coremodel.FrameScore
	var dtwResult *coremodel.DTWResult
	var dtwActive bool

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frameScores = posture.New(cfg, prof).Evaluate(stream.angles, stream.labels)
	}()
	if refStream != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, active := dtwscore.New(cfg).Score(stream.angles, refStream.angles, stream.labels, refStream.labels)
			if active {
				dtwResult = result
				dtwActive = true
			}
		}()
	}
	wg.Wait()

	if cfg.ThumbnailDir != "" {
		renderOverlays(stream, frameScores)
	}
	stream.closeImages()
	if refStream != nil {
		refStream.closeImages()
	}

	avg := meanScore(frameScores)
	grade := computeGrade(avg, dtwResult, dtwActive)

	return &Report{
		VideoName:            videoName,
		ExerciseType:         cfg.ExerciseType,
		GripType:             cfg.GripType,
		Duration:             stream.duration(),
		FPS:                  stream.meta.SourceFPS,
		TotalFrames:          stream.meta.SourceFrameCount,
		ExerciseCount:        stream.repCount,
		FrameScores:          frameScores,
		ErrorFrames:          errorFrames(frameScores),
		Keypoints:            stream.keypoints(),
		SelectedFrameIndices: stream.selectedIndices(),
		Filtering:            stream.filtering,
		DTWActive:            dtwActive,
		DTWResult:            dtwResult,
		AvgScore:             avg,
		Grade:                grade,
	}, nil
}

// pipelineStream is the intermediate state shared by the main and
// reference runs of stages 1-5, kept together so the two callers
// (direct scoring, DTW) don't each re-derive it.
type pipelineStream struct {
	meta      frame.Meta
	extracted []frame.Extracted
	frames    []coremodel.Frame
	angles    []coremodel.AngleFrame
	active    []bool
	filtering coremodel.FilteringInfo
	labels    []phase.Label
	repCount  int
}

func (s *pipelineStream) duration() float64 {
	if s.meta.SourceFPS <= 0 {
		return 0
	}
	return float64(s.meta.SourceFrameCount) / s.meta.SourceFPS
}

func (s *pipelineStream) keypoints() []coremodel.KeypointSet {
	out := make([]coremodel.KeypointSet, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Keypoints
	}
	return out
}

func (s *pipelineStream) selectedIndices() []int {
	var out []int
	for i, af := range s.angles {
		if i < len(s.active) && s.active[i] {
			out = append(out, af.FrameIdx)
		}
	}
	return out
}

func (s *pipelineStream) closeImages() {
	for _, e := range s.extracted {
		e.Image.Close()
	}
}

// runPipeline executes stages 1-5 (extract, detect, condition, segment,
// phase+counter) against one video, independent of any reference
// comparison. It is used for both the user's video and an optional
// reference video.
func runPipeline(ctx context.Context, videoPath string, cfg coremodel.Config, prof profile.ExerciseProfile) (*pipelineStream, error) {
	extracted, meta, err := frame.New(cfg).Extract(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	frames := make([]coremodel.Frame, len(extracted))
	images := make([]gocv.Mat, len(extracted))
	for i, e := range extracted {
		frames[i] = e.Frame
		images[i] = e.Image
	}

	detector, err := posedetect.New(cfg.PoseModelPath, cfg)
	if err != nil {
		closeAll(extracted)
		return nil, err
	}
	defer detector.Close()

	detectedFrames, err := detector.Detect(ctx, frames, images)
	if err != nil {
		closeAll(extracted)
		return nil, err
	}

	conditioned, angles := signalcond.New(cfg).Condition(detectedFrames, meta.Width, meta.Height)

	active, filtering := activity.New(cfg, prof).Segment(angles)
	labels, repCount := phase.New(cfg, prof).Process(angles, active)

	for i := range extracted {
		extracted[i].Frame = conditioned[i]
	}

	return &pipelineStream{
		meta:      meta,
		extracted: extracted,
		frames:    conditioned,
		angles:    angles,
		active:    active,
		filtering: filtering,
		labels:    labels,
		repCount:  repCount,
	}, nil
}

func errorFrames(scores []coremodel.FrameScore) []coremodel.FrameScore {
	var out []coremodel.FrameScore
	for _, s := range scores {
		if len(s.Errors) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func meanScore(scores []coremodel.FrameScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s.Score
	}
	return sum / float64(len(scores))
}

// computeGrade maps the combined score to the S/A/B/C bands spec.md
// §4.6 defines, using avg*0.7+dtw*0.3 when DTW ran and avg alone
// otherwise.
func computeGrade(avg float64, dtwResult *coremodel.DTWResult, dtwActive bool) coremodel.Grade {
	combined := avg
	if dtwActive && dtwResult != nil {
		combined = avg*0.7 + dtwResult.OverallScore*0.3
	}
	switch {
	case combined >= 0.9:
		return coremodel.GradeS
	case combined >= 0.7:
		return coremodel.GradeA
	case combined >= 0.5:
		return coremodel.GradeB
	default:
		return coremodel.GradeC
	}
}

// renderOverlays draws the skeleton/phase/score overlay onto each
// extracted frame that has a thumbnail path, and rewrites the
// thumbnail with the overlay baked in. It is invoked only when
// ThumbnailDir is set and never affects scoring.
func renderOverlays(stream *pipelineStream, scores []coremodel.FrameScore) {
	byFrame := make(map[int]coremodel.FrameScore, len(scores))
	for _, s := range scores {
		byFrame[s.FrameIdx] = s
	}
	labelByFrame := make(map[int]phase.Label, len(stream.labels))
	for _, l := range stream.labels {
		labelByFrame[l.FrameIdx] = l
	}

	skel := overlay.New()
	for _, e := range stream.extracted {
		if e.Frame.ThumbnailPath == "" {
			continue
		}
		score := 1.0
		ph := coremodel.PhaseReady
		if s, ok := byFrame[e.Frame.FrameIdx]; ok {
			score = s.Score
			ph = s.Phase
		} else if l, ok := labelByFrame[e.Frame.FrameIdx]; ok {
			ph = l.Phase
		}
		skel.Draw(&e.Image, e.Frame.Keypoints, ph, score)
		gocv.IMWrite(e.Frame.ThumbnailPath, e.Image)
	}
}

func closeAll(extracted []frame.Extracted) {
	for _, e := range extracted {
		e.Image.Close()
	}
}
