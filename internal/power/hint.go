package power

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/metrics"
)

var hintNames = map[Hint]string{
	HintVsync:       "vsync",
	HintInteraction: "interaction",
	HintVideoEncode: "video_encode",
	HintVideoDecode: "video_decode",
	HintLowPower:    "low_power",
	HintCPUBoost:    "cpu_boost",
	HintLaunchBoost: "launch_boost",
	HintAudio:       "audio",
	HintSetProfile:  "set_profile",
}

func (h Hint) String() string {
	if name, ok := hintNames[h]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(h))
}

// ParseHint accepts a hint name or a numeric code (decimal or 0x hex).
func ParseHint(value string) (Hint, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for hint, name := range hintNames {
		if value == name {
			return hint, nil
		}
	}

	code, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, errors.New().WithData(ErrInvalidHint, value)
	}

	return Hint(code), nil
}

// PowerHint routes a hint. Only interaction and set-profile hints act;
// the rest are accepted and ignored.
func (m *Module) PowerHint(hint Hint, data *int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch hint {
	case HintInteraction:
		if m.boost.trigger(m.profile.current) {
			m.record(metrics.KindBoost, "")
		}
	case HintVsync:
		m.logger.Debug().Msg("Vsync hint ignored")
	case HintSetProfile:
		if data == nil {
			m.logger.Warn().Msg("Set profile hint without payload ignored")
			return
		}
		requested := Profile(*data)
		if !requested.Valid() {
			m.logger.Warn().Int32("profile", *data).Msg("Set profile hint with unknown profile ignored")
			return
		}
		if m.profile.apply(requested) {
			m.record(metrics.KindProfile, requested.String())
		}
	default:
		m.logger.Debug().Str("hint", hint.String()).Msg("Hint not handled")
	}
}

var featureNames = map[Feature]string{
	FeatureDoubleTapToWake:   "double_tap_to_wake",
	FeatureSupportedProfiles: "supported_profiles",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(f))
}

// ParseFeature accepts a feature name or a numeric code.
func ParseFeature(value string) (Feature, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for feature, name := range featureNames {
		if value == name {
			return feature, nil
		}
	}

	code, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, errors.New().WithData(ErrInvalidFeature, value)
	}

	return Feature(code), nil
}
