package touch_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/sysfs"
	"codeberg.org/mutker/powerhald/internal/touch"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputTree(t *testing.T, names map[int]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for index, name := range names {
		dir := fmt.Sprintf("/sys/class/input/input%d", index)
		require.NoError(t, afero.WriteFile(fs, dir+"/name", []byte(name+"\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, dir+"/enabled", []byte("1\n"), 0o644))
	}
	return fs
}

func TestDiscoverBothDevices(t *testing.T) {
	fs := inputTree(t, map[int]string{
		0: "gpio-keys",
		3: "sec_touchkey",
		7: "sec_touchscreen",
	})

	paths, err := touch.Discover(sysfs.New(fs, logger.Nop()), touch.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "/sys/class/input/input3/enabled", paths.TouchKey)
	assert.Equal(t, "/sys/class/input/input7/enabled", paths.Touchscreen)
}

func TestDiscoverUnmatched(t *testing.T) {
	fs := inputTree(t, map[int]string{
		1: "sec_touch",
		2: "accelerometer",
	})

	paths, err := touch.Discover(sysfs.New(fs, logger.Nop()), touch.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, paths.TouchKey)
	assert.Empty(t, paths.Touchscreen)
}

func TestDiscoverFirstMatchWins(t *testing.T) {
	fs := inputTree(t, map[int]string{
		2:  "sec_touchscreen",
		5:  "sec_touchscreen",
		11: "sec_touchkey",
		19: "sec_touchkey",
	})

	paths, err := touch.Discover(sysfs.New(fs, logger.Nop()), touch.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "/sys/class/input/input2/enabled", paths.Touchscreen)
	assert.Equal(t, "/sys/class/input/input11/enabled", paths.TouchKey)
}

func TestDiscoverHonorsScanRange(t *testing.T) {
	fs := inputTree(t, map[int]string{
		20: "sec_touchscreen",
	})

	paths, err := touch.Discover(sysfs.New(fs, logger.Nop()), touch.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, paths.Touchscreen)
}

func TestDiscoverCustomIdentifiers(t *testing.T) {
	fs := inputTree(t, map[int]string{
		0: "synaptics_dsx",
		1: "cypress_touchkey",
	})

	opts := touch.DefaultOptions()
	opts.TouchscreenName = "synaptics"
	opts.TouchKeyName = "cypress_touchkey"

	paths, err := touch.Discover(sysfs.New(fs, logger.Nop()), opts)
	require.NoError(t, err)
	assert.Equal(t, "/sys/class/input/input0/enabled", paths.Touchscreen)
	assert.Equal(t, "/sys/class/input/input1/enabled", paths.TouchKey)
}

type flakyReader struct {
	*sysfs.Nodes
	broken string
}

func (f flakyReader) Read(path string, maxLen int) (string, error) {
	if path == f.broken {
		return "", errors.New().New(sysfs.ErrReadFailed)
	}
	return f.Nodes.Read(path, maxLen)
}

func TestDiscoverPartialResult(t *testing.T) {
	fs := inputTree(t, map[int]string{
		0: "sec_touchkey",
		4: "sec_touchscreen",
	})

	reader := flakyReader{Nodes: sysfs.New(fs, logger.Nop()), broken: "/sys/class/input/input0/name"}

	paths, err := touch.Discover(reader, touch.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, touch.ErrDiscoveryIncomplete))
	assert.Contains(t, err.Error(), "/sys/class/input/input0/name")
	assert.Empty(t, paths.TouchKey)
	assert.Equal(t, "/sys/class/input/input4/enabled", paths.Touchscreen)
}
