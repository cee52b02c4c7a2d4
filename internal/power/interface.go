package power

import "io"

// Controller is the surface the host power service drives.
type Controller interface {
	// Lifecycle
	Init()
	Close() error

	// Screen state
	SetInteractive(on bool)

	// Hints and features
	PowerHint(hint Hint, data *int32)
	GetFeature(feature Feature) int32
	SetFeature(feature Feature, state int32)

	Status() Status
}

// NodeIO is the kernel node access the controllers need.
type NodeIO interface {
	Read(path string, maxLen int) (string, error)
	Write(path, value string) error
	Exists(path string) bool
	OpenWriter(path string) (io.WriteCloser, error)
}

// Hint identifies a power hint. Values follow the host HAL ABI.
type Hint uint32

const (
	HintVsync       Hint = 0x00000001
	HintInteraction Hint = 0x00000002
	HintVideoEncode Hint = 0x00000003
	HintVideoDecode Hint = 0x00000004
	HintLowPower    Hint = 0x00000005
	HintCPUBoost    Hint = 0x00000110
	HintLaunchBoost Hint = 0x00000111
	HintAudio       Hint = 0x00000112
	HintSetProfile  Hint = 0x00000113
)

// Feature identifies a queryable or settable HAL feature.
type Feature uint32

const (
	FeatureDoubleTapToWake   Feature = 0x00000001
	FeatureSupportedProfiles Feature = 0x00001000
)

const (
	supportedProfileCount = 3
	featureUnsupported    = -1
)
