package power

import (
	"strings"

	"codeberg.org/mutker/powerhald/internal/cpufreq"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
)

// Profile caps the maximum CPU frequency.
type Profile int32

const (
	PowerSave Profile = iota
	Balanced
	HighPerformance
)

var profileNames = map[Profile]string{
	PowerSave:       "powersave",
	Balanced:        "balanced",
	HighPerformance: "performance",
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether p is one of the defined profiles.
func (p Profile) Valid() bool {
	_, ok := profileNames[p]
	return ok
}

// ParseProfile accepts a profile name or its numeric value.
func ParseProfile(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for profile, known := range profileNames {
		if name == known {
			return profile, nil
		}
	}

	switch name {
	case "0", "power_save", "power-save":
		return PowerSave, nil
	case "1":
		return Balanced, nil
	case "2", "high_performance", "high-performance":
		return HighPerformance, nil
	}

	return 0, errors.New().WithData(ErrInvalidProfile, name)
}

// profileController caps scaling_max_freq according to the current
// profile. Callers hold Module.mu.
type profileController struct {
	nodes   NodeIO
	limits  cpufreq.FrequencyLimits
	current Profile
	logger  logger.Logger
}

func newProfileController(nodes NodeIO, log logger.Logger) *profileController {
	return &profileController{
		nodes:   nodes,
		current: HighPerformance,
		logger:  log,
	}
}

func (pc *profileController) frequencyFor(profile Profile) string {
	switch profile {
	case PowerSave:
		return pc.limits.Min
	case Balanced:
		return pc.limits.Hispeed
	default:
		return pc.limits.Max
	}
}

// apply switches to requested and reports whether anything changed.
// The new profile is kept even when the node write fails.
func (pc *profileController) apply(requested Profile) bool {
	if requested == pc.current {
		return false
	}

	value := pc.frequencyFor(requested)
	if err := pc.nodes.Write(cpufreq.ScalingMaxFreqPath, value); err != nil {
		pc.logger.Debug().Err(err).Str("profile", requested.String()).Msg("Max frequency not applied")
	}

	pc.logger.Debug().
		Str("from", pc.current.String()).
		Str("to", requested.String()).
		Str("max_freq", strings.TrimSpace(value)).
		Msg("Power profile set")

	pc.current = requested

	return true
}
