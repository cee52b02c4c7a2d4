package power

import (
	"io"
	"sync"

	"codeberg.org/mutker/powerhald/internal/cpufreq"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/panel"
)

var interactivePaths = cpufreq.PathsFor("interactive")

const (
	touchscreenNode = "/sys/class/input/input0/enabled"
	touchKeyNode    = "/sys/class/input/input1/enabled"
	tapToWakeNode   = "/sys/android_touch/doubletap2wake"
)

type nodeWrite struct {
	path  string
	value string
}

// fakeNodes is an in-memory node tree that records every write and
// open. Writes and opens never create nodes.
type fakeNodes struct {
	mu       sync.Mutex
	files    map[string]string
	writes   []nodeWrite
	opens    map[string]int
	failOpen  map[string]bool
	failRead  map[string]bool
	failWrite map[string]bool
}

func newFakeNodes(files map[string]string) *fakeNodes {
	return &fakeNodes{
		files:    files,
		opens:    map[string]int{},
		failOpen:  map[string]bool{},
		failRead:  map[string]bool{},
		failWrite: map[string]bool{},
	}
}

// stockNodes is an interactive-governor device with both touch devices
// and a dark panel.
func stockNodes() *fakeNodes {
	return newFakeNodes(map[string]string{
		cpufreq.ScalingGovernorPath:    "interactive\n",
		cpufreq.CPUMaxFreqPath:         "1300000\n",
		cpufreq.ScalingMinFreqPath:     "768000\n",
		cpufreq.ScalingMaxFreqPath:     "1300000\n",
		interactivePaths.HispeedFreq:   "1000000\n",
		interactivePaths.IOIsBusy:      "1",
		interactivePaths.BoostPulse:    "0",
		panel.BrightnessPath:           "0",
		"/sys/class/input/input0/name": "sec_touchscreen\n",
		touchscreenNode:                "1",
		"/sys/class/input/input1/name": "sec_touchkey\n",
		touchKeyNode:                   "1",
		tapToWakeNode:                  "0",
	})
}

func (f *fakeNodes) Read(path string, maxLen int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.files[path]
	if !ok || f.failRead[path] {
		return "", errors.New().WithData(errors.ErrResourceNotFound, path)
	}
	if len(value) > maxLen-1 {
		value = value[:maxLen-1]
	}

	return value, nil
}

func (f *fakeNodes) Write(path, value string) error {
	if path == "" || value == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.files[path]; !ok {
		return errors.New().WithData(errors.ErrResourceNotFound, path)
	}
	f.files[path] = value
	f.writes = append(f.writes, nodeWrite{path: path, value: value})

	return nil
}

func (f *fakeNodes) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.files[path]
	return path != "" && ok
}

func (f *fakeNodes) OpenWriter(path string) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.opens[path]++
	if _, ok := f.files[path]; !ok || f.failOpen[path] {
		return nil, errors.New().WithData(errors.ErrResourceNotFound, path)
	}

	return &fakeHandle{nodes: f, path: path}, nil
}

func (f *fakeNodes) setFailure(failures map[string]bool, path string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	failures[path] = fail
}

func (f *fakeNodes) set(path, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = value
}

func (f *fakeNodes) get(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path]
}

func (f *fakeNodes) writesTo(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var values []string
	for _, w := range f.writes {
		if w.path == path {
			values = append(values, w.value)
		}
	}

	return values
}

func (f *fakeNodes) allWrites() []nodeWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nodeWrite(nil), f.writes...)
}

func (f *fakeNodes) openCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

func (f *fakeNodes) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
	f.opens = map[string]int{}
}

type fakeHandle struct {
	nodes  *fakeNodes
	path   string
	closed bool
}

func (h *fakeHandle) Write(p []byte) (int, error) {
	h.nodes.mu.Lock()
	defer h.nodes.mu.Unlock()

	if h.nodes.failWrite[h.path] {
		return 0, errors.New().WithData(errors.ErrOperationFailed, h.path)
	}
	h.nodes.files[h.path] = string(p)
	h.nodes.writes = append(h.nodes.writes, nodeWrite{path: h.path, value: string(p)})

	return len(p), nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}
