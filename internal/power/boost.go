package power

import (
	"io"

	"codeberg.org/mutker/powerhald/internal/logger"
)

// boostPulse owns the governor's boostpulse handle. It is opened on
// first use and kept open. Callers hold Module.mu.
type boostPulse struct {
	nodes  NodeIO
	path   string
	handle io.WriteCloser
	warned bool
	logger logger.Logger
}

func newBoostPulse(nodes NodeIO, log logger.Logger) *boostPulse {
	return &boostPulse{nodes: nodes, logger: log}
}

// open returns whether a usable handle is held. Only the first failed
// open is logged.
func (bp *boostPulse) open() bool {
	if bp.handle != nil {
		return true
	}
	if bp.path == "" {
		return false
	}

	handle, err := bp.nodes.OpenWriter(bp.path)
	if err != nil {
		if !bp.warned {
			bp.logger.Error().Str("path", bp.path).Err(err).Msg("Error opening boost pulse node")
			bp.warned = true
		}
		return false
	}

	bp.handle = handle

	return true
}

// trigger requests a boost unless the current profile is PowerSave.
// A failed write keeps the handle.
func (bp *boostPulse) trigger(current Profile) bool {
	if current == PowerSave {
		return false
	}
	if !bp.open() {
		return false
	}

	if _, err := io.WriteString(bp.handle, "1"); err != nil {
		bp.logger.Error().Str("path", bp.path).Err(err).Msg("Error writing boost pulse node")
		return false
	}

	return true
}

func (bp *boostPulse) isOpen() bool {
	return bp.handle != nil
}

func (bp *boostPulse) close() error {
	if bp.handle == nil {
		return nil
	}
	err := bp.handle.Close()
	bp.handle = nil

	return err
}
