package control_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/powerhald/internal/control"
	"codeberg.org/mutker/powerhald/internal/cpufreq"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/power"
	"codeberg.org/mutker/powerhald/internal/touch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hintCall struct {
	hint power.Hint
	data *int32
}

type fakeController struct {
	mu          sync.Mutex
	interactive []bool
	hints       []hintCall
	features    map[power.Feature]int32
}

func (*fakeController) Init()        {}
func (*fakeController) Close() error { return nil }

func (f *fakeController) SetInteractive(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactive = append(f.interactive, on)
}

func (f *fakeController) PowerHint(hint power.Hint, data *int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hints = append(f.hints, hintCall{hint: hint, data: data})
}

func (*fakeController) GetFeature(feature power.Feature) int32 {
	if feature == power.FeatureSupportedProfiles {
		return 3
	}
	return -1
}

func (f *fakeController) SetFeature(feature power.Feature, state int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.features[feature] = state
}

func (*fakeController) Status() power.Status {
	return power.Status{
		Profile:     power.Balanced,
		Interactive: true,
		Governor:    cpufreq.PathsFor("interactive"),
		Limits:      cpufreq.FrequencyLimits{Min: "768000\n", Hispeed: "1000000\n", Max: "1300000\n"},
		Touch:       touch.Paths{Touchscreen: "/sys/class/input/input0/enabled"},
	}
}

// startServer serves a fake controller and returns a client for it.
// Unix socket paths are length limited, so a short temp dir is used.
func startServer(t *testing.T) (*control.Client, *fakeController, string) {
	t.Helper()

	dir, err := os.MkdirTemp("", "phd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "ctl.sock")
	ctrl := &fakeController{features: map[power.Feature]int32{}}

	server := control.NewServer(socket, logger.Nop())
	control.Register(server, ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	require.Eventually(t, func() bool {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond)

	return control.NewClient(socket), ctrl, socket
}

func TestSetInteractive(t *testing.T) {
	client, ctrl, _ := startServer(t)
	ctx := context.Background()

	require.NoError(t, client.SetInteractive(ctx, false))
	require.NoError(t, client.SetInteractive(ctx, true))

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	assert.Equal(t, []bool{false, true}, ctrl.interactive)
}

func TestPowerHint(t *testing.T) {
	client, ctrl, _ := startServer(t)
	ctx := context.Background()

	require.NoError(t, client.PowerHint(ctx, uint32(power.HintInteraction), nil))
	profile := int32(power.PowerSave)
	require.NoError(t, client.PowerHint(ctx, uint32(power.HintSetProfile), &profile))

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	require.Len(t, ctrl.hints, 2)
	assert.Equal(t, power.HintInteraction, ctrl.hints[0].hint)
	assert.Nil(t, ctrl.hints[0].data)
	assert.Equal(t, power.HintSetProfile, ctrl.hints[1].hint)
	require.NotNil(t, ctrl.hints[1].data)
	assert.Equal(t, int32(0), *ctrl.hints[1].data)
}

func TestFeatures(t *testing.T) {
	client, ctrl, _ := startServer(t)
	ctx := context.Background()

	value, err := client.GetFeature(ctx, uint32(power.FeatureSupportedProfiles))
	require.NoError(t, err)
	assert.Equal(t, int32(3), value)

	value, err = client.GetFeature(ctx, 0x42)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), value)

	require.NoError(t, client.SetFeature(ctx, uint32(power.FeatureDoubleTapToWake), 1))

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	assert.Equal(t, int32(1), ctrl.features[power.FeatureDoubleTapToWake])
}

func TestStatus(t *testing.T) {
	client, _, _ := startServer(t)

	st, err := client.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "balanced", st.Profile)
	assert.True(t, st.Interactive)
	assert.Equal(t, "interactive", st.GovernorFamily)
	assert.Equal(t, "1000000\n", st.HispeedFreq)
	assert.Equal(t, "/sys/class/input/input0/enabled", st.Touchscreen)
	assert.Empty(t, st.TouchKey)
}

func TestRequestErrors(t *testing.T) {
	client, ctrl, _ := startServer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		action string
		fields map[string]any
		want   string
	}{
		{"unknown action", "reboot", nil, "control_unknown_action"},
		{"missing on", control.ActionSetInteractive, nil, "control_missing_field: on"},
		{"missing hint", control.ActionPowerHint, map[string]any{"data": 1}, "control_missing_field: hint"},
		{"missing state", control.ActionSetFeature, map[string]any{"feature": 1}, "control_missing_field: state"},
		{"wrong type", control.ActionSetInteractive, map[string]any{"on": "yes"}, "control_invalid_request"},
	}

	for _, tt := range tests {
		err := client.Call(ctx, tt.action, tt.fields, nil)
		var serviceErr *control.ServiceError
		require.ErrorAs(t, err, &serviceErr, tt.name)
		assert.Equal(t, tt.action, serviceErr.Action, tt.name)
		assert.Contains(t, serviceErr.Message, tt.want, tt.name)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	assert.Empty(t, ctrl.interactive)
	assert.Empty(t, ctrl.hints)
	assert.Empty(t, ctrl.features)
}

func TestServeReplacesStaleSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "phd")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	socket := filepath.Join(dir, "ctl.sock")
	require.NoError(t, os.WriteFile(socket, nil, 0o600))

	server := control.NewServer(socket, logger.Nop())
	control.Register(server, &fakeController{features: map[power.Feature]int32{}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	client := control.NewClient(socket)
	require.Eventually(t, func() bool {
		_, err := client.Status(context.Background())
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	_, err = os.Stat(socket)
	assert.True(t, os.IsNotExist(err))
}

func TestCallWithoutDaemon(t *testing.T) {
	client := control.NewClient(filepath.Join(t.TempDir(), "missing.sock"))

	err := client.SetInteractive(context.Background(), true)
	require.Error(t, err)

	assert.True(t, errors.HasCode(err, control.ErrCall))
}
