package coremodel

import "log"

// ExerciseType selects which ExerciseProfile drives phase detection and
// posture scoring. Profiles are data, looked up once at pipeline entry;
// no stage branches on ExerciseType directly past that lookup.
type ExerciseType string

const (
	ExercisePushup ExerciseType = "pushup"
	ExercisePullup ExerciseType = "pullup"
)

// GripType further distinguishes a pull-up's rule thresholds. It has no
// meaning for push-ups and is ignored when ExerciseType is ExercisePushup.
type GripType string

const (
	GripOverhand  GripType = "overhand"
	GripUnderhand GripType = "underhand"
	GripWide      GripType = "wide"
)

// Config carries every tunable knob the pipeline needs. It is constructed
// once per request and passed explicitly to every stage; the core holds
// no package-level state.
type Config struct {
	ExerciseType  ExerciseType
	GripType      GripType // only consulted when ExerciseType == ExercisePullup
	ReferencePath string   // optional DTW reference video
	ThumbnailDir  string   // optional; "" disables thumbnail/overlay writing
	PoseModelPath string   // path to the ONNX pose model loaded by internal/posedetect

	ExtractFPS      int     // 1..30, default 10
	BatchSize       int     // >=1, default 8
	SmoothingWindow int     // >=1, default 5
	MotionThreshold float64 // deg/sample, default 1.5
	HysteresisOn    int     // default 3
	HysteresisOff   int     // default 5
	DTop            float64 // default 0.80
	DBot            float64 // default 0.20
	TMinRep         float64 // seconds, default 0.4
	SoftDeg         float64 // default 8
	HardDeg         float64 // default 20
	DTWBandFrac     float64 // default 0.15

	Logger *log.Logger // defaults to log.Default() in DefaultConfig
}

// DefaultConfig returns a Config with every default from the spec's
// configuration table already applied, leaving only ExerciseType (and,
// for pull-ups, GripType) for the caller to set.
func DefaultConfig() Config {
	return Config{
		ExtractFPS:      10,
		BatchSize:       8,
		SmoothingWindow: 5,
		MotionThreshold: 1.5,
		HysteresisOn:    3,
		HysteresisOff:   5,
		DTop:            0.80,
		DBot:            0.20,
		TMinRep:         0.4,
		SoftDeg:         8,
		HardDeg:         20,
		DTWBandFrac:     0.15,
		Logger:          log.Default(),
	}
}

// Validate enforces the ranges the spec gives for every knob, returning
// an InputError describing the first violation found.
func (c Config) Validate() error {
	switch c.ExerciseType {
	case ExercisePushup, ExercisePullup:
	default:
		return NewError(InputError, "unknown exercise_type: "+string(c.ExerciseType), nil)
	}
	if c.ExerciseType == ExercisePullup {
		switch c.GripType {
		case GripOverhand, GripUnderhand, GripWide:
		default:
			return NewError(InputError, "unknown grip_type: "+string(c.GripType), nil)
		}
	}
	if c.ExtractFPS < 1 || c.ExtractFPS > 30 {
		return NewError(InputError, "extract_fps out of range [1,30]", nil)
	}
	if c.BatchSize < 1 {
		return NewError(InputError, "batch_size must be >= 1", nil)
	}
	if c.SmoothingWindow < 1 {
		return NewError(InputError, "smoothing_window must be >= 1", nil)
	}
	if c.HysteresisOn < 1 || c.HysteresisOff < 1 {
		return NewError(InputError, "hysteresis_on/off must be >= 1", nil)
	}
	if c.DTop <= c.DBot || c.DTop > 1 || c.DBot < 0 {
		return NewError(InputError, "d_top/d_bot out of range or inverted", nil)
	}
	if c.TMinRep <= 0 {
		return NewError(InputError, "t_min_rep must be > 0", nil)
	}
	if c.SoftDeg <= 0 || c.HardDeg <= c.SoftDeg {
		return NewError(InputError, "soft_deg/hard_deg out of range or inverted", nil)
	}
	if c.DTWBandFrac <= 0 || c.DTWBandFrac > 1 {
		return NewError(InputError, "dtw_band_frac out of range (0,1]", nil)
	}
	if c.PoseModelPath == "" {
		return NewError(InputError, "pose_model_path must be set", nil)
	}
	return nil
}

// logger returns c.Logger, or the standard logger if unset.
func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// LoggerOrDefault exposes the configured logger (defaulting to the standard
// logger) for stages that need to emit diagnostics.
func (c Config) LoggerOrDefault() *log.Logger {
	return c.logger()
}
