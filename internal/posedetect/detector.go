// Package posedetect implements the pose detector: stage 2 of the
// pipeline. It batches frames through a gocv DNN network and annotates
// each with its keypoint set, extending the teacher repo's detection.go
// (a gonum-backed Detection wrapper) from "externally supplied detection
// matrix" to "owns the inference call" via gocv's own DNN module — the
// same dependency the teacher already uses for decode, not a new bridge.
package posedetect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/posecoach/core/internal/coremodel"
)

// netInputSize is the square input resolution most COCO-keypoint ONNX
// pose models expect.
const netInputSize = 256

// Detector wraps a loaded gocv DNN network and runs it in fixed-size
// batches, preserving input ordering on output as the spec requires.
type Detector struct {
	net       gocv.Net
	batchSize int
	cfg       coremodel.Config
}

// New loads the ONNX pose model at modelPath. The caller must call
// Close when done.
func New(modelPath string, cfg coremodel.Config) (*Detector, error) {
	net, err := gocv.ReadNetFromONNX(modelPath)
	if err != nil {
		return nil, coremodel.NewError(coremodel.InputError, fmt.Sprintf("cannot load pose model %q", modelPath), err)
	}
	if net.Empty() {
		return nil, coremodel.NewError(coremodel.InputError, fmt.Sprintf("pose model %q loaded empty", modelPath), nil)
	}
	return &Detector{net: net, batchSize: cfg.BatchSize, cfg: cfg}, nil
}

// Close releases the underlying network.
func (d *Detector) Close() error {
	return d.net.Close()
}

// Detect annotates every frame with its keypoint set, preserving order.
// images[i] corresponds to frames[i]; images are not closed by Detect.
func (d *Detector) Detect(ctx context.Context, frames []coremodel.Frame, images []gocv.Mat) ([]coremodel.Frame, error) {
	if len(frames) != len(images) {
		return nil, coremodel.NewError(coremodel.InputError, "frame/image count mismatch", nil)
	}

	out := make([]coremodel.Frame, len(frames))
	copy(out, frames)

	missing := 0
	for start := 0; start < len(images); start += d.batchSize {
		select {
		case <-ctx.Done():
			return nil, coremodel.NewError(coremodel.Cancelled, "pose detection cancelled", ctx.Err())
		default:
		}

		end := start + d.batchSize
		if end > len(images) {
			end = len(images)
		}
		batch := images[start:end]

		sets, err := d.inferBatch(batch)
		if err != nil {
			return nil, coremodel.NewError(coremodel.DetectionError, "pose inference failed", err)
		}
		for i, ks := range sets {
			out[start+i].Keypoints = ks
			out[start+i].HasKeypoints = true
			if ks.AllMissing() {
				missing++
			}
		}
	}

	if len(out) > 0 && float64(missing) > 0.8*float64(len(out)) {
		return nil, coremodel.NewError(coremodel.DetectionError, fmt.Sprintf("%d/%d frames had no valid detection", missing, len(out)), nil)
	}
	d.cfg.LoggerOrDefault().Printf("pose detector: %d/%d frames missing a detection", missing, len(out))
	return out, nil
}

// inferBatch runs one forward pass over a batch of images and decodes
// the network's output tensor into one KeypointSet per image, rescaled
// from the network's fixed input resolution back to each image's native
// pixel space.
func (d *Detector) inferBatch(batch []gocv.Mat) ([]coremodel.KeypointSet, error) {
	blob := gocv.BlobFromImages(batch, 1.0/255.0, image.Pt(netInputSize, netInputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false, gocv.MatTypeCV32F)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	sets, err := decodeOutput(output, len(batch), netInputSize, netInputSize)
	if err != nil {
		return nil, err
	}
	for i, ks := range sets {
		sets[i] = rescaleToNative(ks, netInputSize, netInputSize, batch[i].Cols(), batch[i].Rows())
	}
	return sets, nil
}

// rescaleToNative maps a KeypointSet's (x,y) coordinates from the
// network's fixed inW x inH input space to an image's native nativeW x
// nativeH pixel space, preserving signalcond.normalize's contract that
// keypoint coordinates arrive in the original frame's own pixel grid.
func rescaleToNative(ks coremodel.KeypointSet, inW, inH, nativeW, nativeH int) coremodel.KeypointSet {
	if inW <= 0 || inH <= 0 || nativeW <= 0 || nativeH <= 0 {
		return ks
	}
	sx := float64(nativeW) / float64(inW)
	sy := float64(nativeH) / float64(inH)
	out := ks
	for j, kp := range ks {
		if kp.Missing() {
			continue
		}
		out[j] = coremodel.Keypoint{X: kp.X * sx, Y: kp.Y * sy, Vis: kp.Vis}
	}
	return out
}

// decodeOutput expects a tensor shaped [batch, NumJoints, 3] (x, y, vis),
// with x/y in the network's fixed inW x inH input-resolution pixel space.
func decodeOutput(output gocv.Mat, batchLen, inW, inH int) ([]coremodel.KeypointSet, error) {
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("reading detector output: %w", err)
	}

	stride := coremodel.NumJoints * 3
	if len(data) < batchLen*stride {
		return nil, fmt.Errorf("detector output too small: got %d floats, want at least %d", len(data), batchLen*stride)
	}

	sets := make([]coremodel.KeypointSet, batchLen)
	for b := 0; b < batchLen; b++ {
		base := b * stride
		var ks coremodel.KeypointSet
		for j := 0; j < coremodel.NumJoints; j++ {
			off := base + j*3
			ks[j] = coremodel.Keypoint{
				X:   float64(data[off]),
				Y:   float64(data[off+1]),
				Vis: float64(data[off+2]),
			}
		}
		sets[b] = ks
	}
	return sets, nil
}
