// Command posecoach analyzes an exercise video and prints the resulting
// report as JSON, the one CLI surface this module ships around the
// pkg/posecoach library.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/posecoach/core/pkg/posecoach"
)

func main() {
	cfg := posecoach.DefaultConfig()

	var (
		exercise   = flag.String("exercise", "pushup", "exercise type: pushup or pullup")
		grip       = flag.String("grip", "overhand", "grip type, only used when -exercise=pullup")
		video      = flag.String("video", "", "path to the video to analyze (required)")
		reference  = flag.String("reference", "", "optional path to a reference video for DTW scoring")
		modelPath  = flag.String("model", "", "path to the ONNX pose model (required)")
		thumbDir   = flag.String("thumbnails", "", "optional directory to write annotated frame thumbnails")
		extractFPS = flag.Int("extract-fps", cfg.ExtractFPS, "frame sampling rate")
	)
	flag.Parse()

	if *video == "" || *modelPath == "" {
		fmt.Fprintln(os.Stderr, "usage: posecoach -video path.mp4 -model pose.onnx [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg.ExerciseType = posecoach.ExerciseType(*exercise)
	cfg.GripType = posecoach.GripType(*grip)
	cfg.ReferencePath = *reference
	cfg.PoseModelPath = *modelPath
	cfg.ThumbnailDir = *thumbDir
	cfg.ExtractFPS = *extractFPS
	cfg.Logger = log.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := posecoach.Analyze(ctx, *video, *video, cfg)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			log.Fatalf("posecoach: failed to encode report: %v", encErr)
		}
	}
	if err != nil {
		log.Fatalf("posecoach: %v", err)
	}
}
