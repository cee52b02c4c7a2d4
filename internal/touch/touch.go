// Package touch locates the enable nodes of the touchscreen and the
// touch-key input devices.
package touch

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/powerhald/internal/errors"
)

const (
	DefaultInputRoot       = "/sys/class/input"
	DefaultScanCount       = 20
	DefaultTouchKeyName    = "sec_touchkey"
	DefaultTouchscreenName = "sec_touchscreen"

	nameBufferSize = 20
)

const ErrDiscoveryIncomplete = errors.ErrorCode("touch_discovery_incomplete")

// NodeReader is the node access discovery needs.
type NodeReader interface {
	Read(path string, maxLen int) (string, error)
	Exists(path string) bool
}

// Options selects where and what to look for.
type Options struct {
	InputRoot       string
	ScanCount       int
	TouchKeyName    string
	TouchscreenName string
}

// DefaultOptions returns the stock input layout.
func DefaultOptions() Options {
	return Options{
		InputRoot:       DefaultInputRoot,
		ScanCount:       DefaultScanCount,
		TouchKeyName:    DefaultTouchKeyName,
		TouchscreenName: DefaultTouchscreenName,
	}
}

// Paths are the enable nodes found. An empty path means the device was
// not found and every later operation on it is skipped.
type Paths struct {
	Touchscreen string
	TouchKey    string
}

// Discover scans input0..input<ScanCount-1> in order and records the
// "enabled" node of the first device whose name starts with each
// identifier. Devices whose name node exists but cannot be read are
// skipped; they are listed in the returned error while the paths found
// so far are still returned.
func Discover(r NodeReader, opts Options) (Paths, error) {
	var paths Paths
	var unreadable []string

	for i := 0; i < opts.ScanCount; i++ {
		dir := fmt.Sprintf("%s/input%d", opts.InputRoot, i)
		namePath := dir + "/name"
		if !r.Exists(namePath) {
			continue
		}

		name, err := r.Read(namePath, nameBufferSize)
		if err != nil {
			unreadable = append(unreadable, namePath)
			continue
		}

		enabled := dir + "/enabled"
		switch {
		case matches(name, opts.TouchKeyName) && paths.TouchKey == "":
			paths.TouchKey = enabled
		case matches(name, opts.TouchscreenName) && paths.Touchscreen == "":
			paths.Touchscreen = enabled
		}
	}

	if len(unreadable) > 0 {
		return paths, errors.New().WithData(ErrDiscoveryIncomplete, strings.Join(unreadable, ", "))
	}

	return paths, nil
}

func matches(name, identifier string) bool {
	return identifier != "" && strings.HasPrefix(name, identifier)
}
