// Package power maps screen transitions, hints and profiles onto
// cpufreq and input-device nodes.
package power

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/powerhald/internal/cpufreq"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/metrics"
	"codeberg.org/mutker/powerhald/internal/panel"
	"codeberg.org/mutker/powerhald/internal/touch"
)

// Options configures a Module.
type Options struct {
	Touch         touch.Options
	TapToWakeNode string
	Recorder      metrics.EventRecorder
	Logger        logger.Logger
}

// DefaultOptions returns stock paths, no tap-to-wake node and no
// journal.
func DefaultOptions() Options {
	return Options{
		Touch:    touch.DefaultOptions(),
		Recorder: metrics.Noop(),
		Logger:   logger.Default(),
	}
}

// Status is a point-in-time view of the controller.
type Status struct {
	Profile         Profile
	Interactive     bool
	TouchKeyBlocked bool
	BoostPulseOpen  bool
	Governor        cpufreq.GovernorPaths
	Limits          cpufreq.FrequencyLimits
	Touch           touch.Paths
	TapToWakeNode   string
}

// Module is the power controller. mu serializes the profile and the
// boost pulse handle; interactivity has its own lock.
type Module struct {
	mu            sync.Mutex
	nodes         NodeIO
	opts          Options
	governor      cpufreq.GovernorPaths
	profile       *profileController
	boost         *boostPulse
	interactivity *interactivity
	recorder      metrics.EventRecorder
	logger        logger.Logger
}

var _ Controller = (*Module)(nil)

// New returns a Module over nodes. Call Init before use.
func New(nodes NodeIO, opts Options) *Module {
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Noop()
	}
	if opts.Touch.ScanCount == 0 && opts.Touch.InputRoot == "" {
		opts.Touch = touch.DefaultOptions()
	}

	log := opts.Logger

	return &Module{
		nodes:         nodes,
		opts:          opts,
		profile:       newProfileController(nodes, log),
		boost:         newBoostPulse(nodes, log),
		interactivity: newInteractivity(nodes, panel.NewReader(nodes, log), log),
		recorder:      opts.Recorder,
		logger:        log,
	}
}

// Init resolves the governor, snapshots frequency limits and discovers
// the touch nodes. Failures leave the affected paths empty.
func (m *Module) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()

	governor, err := cpufreq.ResolveGovernor(m.nodes)
	if err != nil {
		m.logger.WarnWithCode(asCoded(err)).Msg("Governor not readable, governor tunables disabled")
	} else if !governor.Resolved() {
		m.logger.Warn().Str("governor", governor.Governor).Msg("Governor not recognized, governor tunables disabled")
	}
	m.governor = governor

	limits := cpufreq.Snapshot(m.nodes, governor)
	m.profile.limits = limits
	m.boost.path = governor.BoostPulse

	paths, err := touch.Discover(m.nodes, m.opts.Touch)
	if err != nil {
		m.logger.WarnWithCode(asCoded(err)).Msg("Touch node discovery incomplete")
	}
	if paths.Touchscreen == "" {
		m.logger.Warn().Str("name", m.opts.Touch.TouchscreenName).Msg("Touchscreen not found")
	}
	if paths.TouchKey == "" {
		m.logger.Info().Str("name", m.opts.Touch.TouchKeyName).Msg("Touch keys not found")
	}

	m.interactivity.mu.Lock()
	m.interactivity.touch = paths
	m.interactivity.ioBusyPath = governor.IOIsBusy
	m.interactivity.mu.Unlock()

	m.logger.Info().
		Str("governor", governor.Governor).
		Str("min_freq", trim(limits.Min)).
		Str("hispeed_freq", trim(limits.Hispeed)).
		Str("max_freq", trim(limits.Max)).
		Str("touchscreen", paths.Touchscreen).
		Str("touchkey", paths.TouchKey).
		Dur("took", time.Since(start)).
		Msg("Power module initialized")
}

// SetInteractive runs the screen on/off transition.
func (m *Module) SetInteractive(on bool) {
	m.logger.Debug().Bool("on", on).Msg("Set interactive")

	m.interactivity.set(on)

	m.mu.Lock()
	m.record(metrics.KindInteractive, nodeBool(on))
	m.mu.Unlock()
}

// GetFeature reports the number of supported profiles, and -1 for
// anything else.
func (*Module) GetFeature(feature Feature) int32 {
	if feature == FeatureSupportedProfiles {
		return supportedProfileCount
	}
	return featureUnsupported
}

// SetFeature toggles double-tap-to-wake when a node for it is
// configured; everything else is ignored.
func (m *Module) SetFeature(feature Feature, state int32) {
	if feature != FeatureDoubleTapToWake || m.opts.TapToWakeNode == "" {
		m.logger.Debug().Str("feature", feature.String()).Msg("Feature not supported")
		return
	}

	value := nodeBool(state > 0)
	m.logger.Debug().Str("value", value).Msg("Set double tap to wake")
	m.nodes.Write(m.opts.TapToWakeNode, value)

	m.mu.Lock()
	m.record(metrics.KindFeature, fmt.Sprintf("double_tap_to_wake=%s", value))
	m.mu.Unlock()
}

// Status returns the current controller state.
func (m *Module) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	interactive, blocked := m.interactivity.snapshot()

	m.interactivity.mu.Lock()
	paths := m.interactivity.touch
	m.interactivity.mu.Unlock()

	return Status{
		Profile:         m.profile.current,
		Interactive:     interactive,
		TouchKeyBlocked: blocked,
		BoostPulseOpen:  m.boost.isOpen(),
		Governor:        m.governor,
		Limits:          m.profile.limits,
		Touch:           paths,
		TapToWakeNode:   m.opts.TapToWakeNode,
	}
}

// Close releases the boost pulse handle.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.boost.close(); err != nil {
		return errors.New().Wrap(errors.ErrShutdownFailed, err)
	}
	return nil
}

// record journals a state change. Callers hold m.mu.
func (m *Module) record(kind metrics.EventKind, detail string) {
	interactive, blocked := m.interactivity.snapshot()

	event := &metrics.Event{
		Timestamp:       time.Now(),
		Kind:            kind,
		Profile:         m.profile.current.String(),
		Interactive:     interactive,
		TouchKeyBlocked: blocked,
		Detail:          detail,
	}
	if err := m.recorder.Record(context.Background(), event); err != nil {
		m.logger.Debug().Err(err).Str("kind", string(kind)).Msg("Failed to journal event")
	}
}

func asCoded(err error) errors.Error {
	var coded errors.Error
	if errors.As(err, &coded) {
		return coded
	}
	return errors.New().Wrap(errors.ErrInternal, err)
}

func trim(freq string) string {
	return strings.TrimRight(freq, "\r\n")
}
