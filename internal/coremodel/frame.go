package coremodel

import "time"

// Frame is one sampled instant of the source video. FrameIdx is a
// monotonically increasing index starting at 0, assigned by the frame
// extractor and never reassigned by a later stage.
type Frame struct {
	FrameIdx      int
	Timestamp     time.Duration
	ThumbnailPath string // opaque outside the core; "" if thumbnails are disabled
	Keypoints     KeypointSet
	HasKeypoints  bool // false until stage 2 has run
}
