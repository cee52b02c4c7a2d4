// Package panel reads the display backlight as an on/off signal.
package panel

import "codeberg.org/mutker/powerhald/internal/logger"

const (
	BrightnessPath = "/sys/class/backlight/panel/brightness"

	// brightness ranges 0-255, three characters at most
	brightnessBufferSize = 4
)

// NodeReader reads a node, returning at most maxLen-1 bytes.
type NodeReader interface {
	Read(path string, maxLen int) (string, error)
}

// Magnitude sums the value of every decimal digit in raw. "255" gives
// 12, not 255. Only zero versus non-zero is meaningful.
func Magnitude(raw string) uint {
	var sum uint
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			sum += uint(c - '0')
		}
	}

	return sum
}

// Reader samples the backlight node.
type Reader struct {
	nodes  NodeReader
	path   string
	logger logger.Logger
}

// NewReader returns a Reader for the stock backlight node.
func NewReader(nodes NodeReader, log logger.Logger) *Reader {
	return &Reader{nodes: nodes, path: BrightnessPath, logger: log}
}

// IsLit reports whether the backlight is on. An unreadable node counts
// as lit so that input devices stay enabled when in doubt.
func (r *Reader) IsLit() bool {
	raw, err := r.nodes.Read(r.path, brightnessBufferSize)
	if err != nil {
		r.logger.Error().Str("path", r.path).Err(err).Msg("Failed to read panel brightness")
		return true
	}

	magnitude := Magnitude(raw)
	r.logger.Debug().Uint("magnitude", magnitude).Msg("Panel brightness")

	return magnitude > 0
}
