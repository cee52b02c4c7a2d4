// Package cpufreq resolves the active governor's tunable nodes and
// snapshots the CPU frequency limits once at startup.
package cpufreq

import (
	"strings"

	"codeberg.org/mutker/powerhald/internal/errors"
)

const (
	ScalingGovernorPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor"
	CPUMaxFreqPath      = "/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq"
	ScalingMaxFreqPath  = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_max_freq"
	ScalingMinFreqPath  = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_min_freq"

	governorRoot = "/sys/devices/system/cpu/cpufreq"

	governorBufferSize  = 20
	frequencyBufferSize = 10
)

const ErrGovernorUnreadable = errors.ErrorCode("cpufreq_governor_unreadable")

// Recognized governor families, matched as case-sensitive prefixes.
var families = []string{"interactive", "intelliactive"}

// NodeReader reads a node, returning at most maxLen-1 bytes.
type NodeReader interface {
	Read(path string, maxLen int) (string, error)
}

// GovernorPaths holds the tunables of the active governor family. All
// paths are empty when the governor is not recognized.
type GovernorPaths struct {
	Governor    string
	Family      string
	HispeedFreq string
	IOIsBusy    string
	BoostPulse  string
}

// Resolved reports whether a recognized governor family was found.
func (p GovernorPaths) Resolved() bool {
	return p.Family != ""
}

// FrequencyLimits are the frequency strings exactly as the kernel
// reported them. They are never parsed.
type FrequencyLimits struct {
	Min     string
	Hispeed string
	Max     string
}

// ResolveGovernor reads the active governor and derives its tunable
// paths. An unrecognized governor yields empty paths and no error; an
// unreadable governor node yields empty paths and an error.
func ResolveGovernor(r NodeReader) (GovernorPaths, error) {
	raw, err := r.Read(ScalingGovernorPath, governorBufferSize)
	if err != nil {
		return GovernorPaths{}, errors.New().Wrap(ErrGovernorUnreadable, err)
	}

	return PathsFor(strings.TrimRight(raw, "\r\n")), nil
}

// PathsFor maps a governor name onto its family's tunable paths.
func PathsFor(governor string) GovernorPaths {
	paths := GovernorPaths{Governor: governor}

	for _, family := range families {
		if !strings.HasPrefix(governor, family) {
			continue
		}
		base := governorRoot + "/" + family
		paths.Family = family
		paths.HispeedFreq = base + "/hispeed_freq"
		paths.IOIsBusy = base + "/io_is_busy"
		paths.BoostPulse = base + "/boostpulse"
		break
	}

	return paths
}

// Snapshot reads the min, hispeed and max frequencies once. A field
// whose node cannot be read is left empty.
func Snapshot(r NodeReader, paths GovernorPaths) FrequencyLimits {
	read := func(path string) string {
		value, err := r.Read(path, frequencyBufferSize)
		if err != nil {
			return ""
		}
		return value
	}

	return FrequencyLimits{
		Min:     read(ScalingMinFreqPath),
		Hispeed: read(paths.HispeedFreq),
		Max:     read(CPUMaxFreqPath),
	}
}
