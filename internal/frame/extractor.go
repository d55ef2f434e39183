// Package frame implements the frame extractor: stage 1 of the pipeline.
// It decodes a source video at a target sampling rate into an ordered
// sequence of frames, grounded on the teacher repo's Video type
// (progress-bar-driven gocv.VideoCapture reader) but resampled to
// extract_fps instead of reading every source frame.
package frame

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
	"golang.org/x/term"

	"github.com/posecoach/core/internal/coremodel"
)

// Extracted is one decoded, resampled frame plus its image. Image is
// always populated, whether or not thumbnails were requested, since
// downstream detection needs it.
type Extracted struct {
	Frame coremodel.Frame
	Image gocv.Mat
}

// Meta carries the source video's decoding parameters, needed by the
// report assembler (duration, fps, total_frames) but not by any
// per-frame downstream stage.
type Meta struct {
	SourceFPS        float64
	SourceFrameCount int
	Width, Height    int
}

// Extractor decodes a video file at a target sampling rate.
type Extractor struct {
	cfg coremodel.Config
}

// New constructs an Extractor bound to the given config.
func New(cfg coremodel.Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract decodes path at cfg.ExtractFPS, returning frames in source
// order. The caller owns closing every returned gocv.Mat.
//
// Frame i of the source stream is kept iff
// floor(i*r_tgt/r_src) > floor((i-1)*r_tgt/r_src), per the target-rate
// resampling rule. Individual decode failures are dropped and logged; if
// more than half the source frames fail to decode the stage fails with
// a DecodeError.
func (e *Extractor) Extract(ctx context.Context, path string) ([]Extracted, Meta, error) {
	cap, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, Meta{}, coremodel.NewError(coremodel.InputError, fmt.Sprintf("cannot open video %q", path), err)
	}
	defer cap.Close()

	srcFPS := cap.Get(gocv.VideoCaptureFPS)
	sourceCount := int(cap.Get(gocv.VideoCaptureFrameCount))
	meta := Meta{
		SourceFPS:        srcFPS,
		SourceFrameCount: sourceCount,
		Width:            int(cap.Get(gocv.VideoCaptureFrameWidth)),
		Height:           int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}
	if srcFPS <= 0 || sourceCount <= 0 {
		return nil, Meta{}, coremodel.NewError(coremodel.InputError, fmt.Sprintf("video %q has zero duration or unknown frame rate", path), nil)
	}

	tgtFPS := float64(e.cfg.ExtractFPS)
	bar := e.newProgressBar(path, sourceCount)

	var results []Extracted
	decodeFailures := 0
	sourceSeen := 0
	keptIdx := 0

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			e.closeAll(results)
			return nil, Meta{}, coremodel.NewError(coremodel.Cancelled, "extraction cancelled", ctx.Err())
		default:
		}

		img := gocv.NewMat()
		if ok := cap.Read(&img); !ok || img.Empty() {
			img.Close()
			if i >= sourceCount {
				break
			}
			decodeFailures++
			e.cfg.LoggerOrDefault().Printf("frame extractor: dropping source frame %d (decode failed)", i)
			continue
		}
		sourceSeen++
		_ = bar.Add(1)

		if !shouldSample(i, tgtFPS, srcFPS) {
			img.Close()
			continue
		}

		if img.Empty() {
			decodeFailures++
			img.Close()
			continue
		}

		ts := time.Duration(float64(i) / srcFPS * float64(time.Second))
		fr := coremodel.Frame{
			FrameIdx:  keptIdx,
			Timestamp: ts,
		}
		if e.cfg.ThumbnailDir != "" {
			thumbPath := filepath.Join(e.cfg.ThumbnailDir, fmt.Sprintf("frame_%06d.jpg", keptIdx))
			if ok := gocv.IMWrite(thumbPath, img); ok {
				fr.ThumbnailPath = thumbPath
			}
		}
		results = append(results, Extracted{Frame: fr, Image: img})
		keptIdx++
	}

	if sourceSeen == 0 && decodeFailures == 0 {
		return nil, Meta{}, coremodel.NewError(coremodel.InputError, fmt.Sprintf("video %q yielded no frames", path), nil)
	}
	if float64(decodeFailures) > 0.5*float64(sourceSeen+decodeFailures) {
		e.closeAll(results)
		return nil, Meta{}, coremodel.NewError(coremodel.DecodeError, fmt.Sprintf("%d/%d source frames failed to decode", decodeFailures, sourceSeen+decodeFailures), nil)
	}

	e.cfg.LoggerOrDefault().Printf("frame extractor: kept %d of %d source frames at %.1f fps (source %.1f fps)", len(results), sourceSeen, tgtFPS, srcFPS)
	meta.SourceFrameCount = sourceSeen
	return results, meta, nil
}

// shouldSample decides whether source frame i is kept when resampling
// from rSrc to rTgt.
func shouldSample(i int, rTgt, rSrc float64) bool {
	return math.Floor(float64(i)*rTgt/rSrc) > math.Floor(float64(i-1)*rTgt/rSrc)
}

func (e *Extractor) closeAll(results []Extracted) {
	for _, r := range results {
		r.Image.Close()
	}
}

func (e *Extractor) newProgressBar(path string, total int) *progressbar.ProgressBar {
	desc := truncateDescription(filepath.Base(path))
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("fps"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// truncateDescription shortens desc to fit the terminal width, mirroring
// the teacher's approach of reserving columns for the bar itself.
func truncateDescription(desc string) string {
	cols, _, err := term.GetSize(1)
	if err != nil || cols <= 0 {
		cols = 80
	}
	maxLen := cols - 25
	if len(desc) <= maxLen || maxLen <= 10 {
		return desc
	}
	start := desc[:maxLen/2-2]
	end := desc[len(desc)-(maxLen/2-3):]
	return start + " ... " + end
}
