package power

import (
	"sync"

	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/touch"
)

const touchKeyBufferSize = 2

type brightnessReader interface {
	IsLit() bool
}

// interactivity toggles input devices and io_is_busy on screen
// transitions. It keeps its own lock; Module.mu may be held when it is
// taken, never the other way round.
type interactivity struct {
	mu              sync.Mutex
	nodes           NodeIO
	panel           brightnessReader
	touch           touch.Paths
	ioBusyPath      string
	interactive     bool
	touchKeyBlocked bool
	logger          logger.Logger
}

func newInteractivity(nodes NodeIO, panel brightnessReader, log logger.Logger) *interactivity {
	return &interactivity{
		nodes:       nodes,
		panel:       panel,
		interactive: true,
		logger:      log,
	}
}

// set runs one transition and returns the resulting touch-key block
// state. io_is_busy is written exactly once per call.
func (ic *interactivity) set(on bool) bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.interactive = on

	if !on && ic.panel.IsLit() {
		ic.logger.Debug().Msg("Moving to non-interactive state, but screen is still on, not disabling input devices")
	} else {
		ic.toggleInputs(on)
	}

	ic.nodes.Write(ic.ioBusyPath, nodeBool(on))

	return ic.touchKeyBlocked
}

func (ic *interactivity) toggleInputs(on bool) {
	ic.nodes.Write(ic.touch.Touchscreen, nodeBool(on))

	if !ic.nodes.Exists(ic.touch.TouchKey) {
		return
	}

	if on {
		if !ic.touchKeyBlocked {
			ic.nodes.Write(ic.touch.TouchKey, "1")
		}
		return
	}

	raw, err := ic.nodes.Read(ic.touch.TouchKey, touchKeyBufferSize)
	if err != nil {
		return
	}

	// Keys already off were disabled by another component and must stay
	// off after resume.
	if raw != "" && raw[0] == '0' {
		ic.touchKeyBlocked = true
		ic.logger.Debug().Str("path", ic.touch.TouchKey).Msg("Touch keys disabled externally, leaving them blocked")
		return
	}

	ic.touchKeyBlocked = false
	ic.nodes.Write(ic.touch.TouchKey, "0")
}

func (ic *interactivity) snapshot() (interactive, blocked bool) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	return ic.interactive, ic.touchKeyBlocked
}

func nodeBool(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
