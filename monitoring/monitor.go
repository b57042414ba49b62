// Package monitoring serves the state of running racetrack devices over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/skrm/monitoring/web"
	"github.com/sarchlab/skrm/racetrack"
	"github.com/sarchlab/skrm/sim/id"
	"github.com/sarchlab/skrm/sim/naming"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Device is what the monitor can show about a racetrack.
type Device interface {
	naming.Named

	// Summarize returns the cost report of the device.
	Summarize() racetrack.CostReport

	// Render draws the storage of the device.
	Render() string

	// Inspect calls fn with the object to serialize as the device state.
	// Implementations hold their locks while fn runs.
	Inspect(fn func(state any))
}

// Monitor can turn an experiment into a server and allows external
// inspection of its devices.
type Monitor struct {
	portNumber int
	idGen      id.IDGenerator

	devicesLock sync.RWMutex
	devices     []Device

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		idGen: id.NewIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterDevice registers a device to be monitored. Registering a second
// device with the same name panics.
func (m *Monitor) RegisterDevice(d Device) {
	m.devicesLock.Lock()
	defer m.devicesLock.Unlock()

	for _, existing := range m.devices {
		if existing.Name() == d.Name() {
			panic(fmt.Sprintf("device %s already registered", d.Name()))
		}
	}

	m.devices = append(m.devices, d)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(m.idGen.Generate(), name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fs := web.Assets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/list_devices", m.listDevices)
	r.HandleFunc("/api/device/{name}", m.listDeviceDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/report/{name}", m.reportDevice)
	r.HandleFunc("/api/render/{name}", m.renderDevice)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring experiment with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Handler())
		dieOnErr(err)
	}()

	return url, nil
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	m.devicesLock.RLock()
	names := make([]string, 0, len(m.devices))
	for _, d := range m.devices {
		names = append(names, d.Name())
	}
	m.devicesLock.RUnlock()

	writeJSON(w, names)
}

func (m *Monitor) listDeviceDetails(w http.ResponseWriter, r *http.Request) {
	device := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if device == nil {
		return
	}

	if err := serializeState(w, device, nil); err != nil {
		log.Panic(err)
	}
}

// fieldReq selects a field of a device state, such as "storage.bits".
type fieldReq struct {
	DeviceName string `json:"device_name,omitempty"`
	FieldName  string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	var req fieldReq
	if err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req); err != nil {
		badRequest(w, err)
		return
	}

	device := m.findDeviceOr404(w, req.DeviceName)
	if device == nil {
		return
	}

	path := strings.Split(req.FieldName, ".")
	if err := serializeState(w, device, path); err != nil {
		badRequest(w, err)
	}
}

// serializeState writes one level of the device state, starting at the
// field path when one is given.
func serializeState(w io.Writer, device Device, path []string) error {
	var err error

	device.Inspect(func(state any) {
		s := goseth.NewSerializer()
		s.SetRoot(state)
		s.SetMaxDepth(1)

		if len(path) > 0 {
			if err = s.SetEntryPoint(path); err != nil {
				return
			}
		}

		err = s.Serialize(w)
	})

	return err
}

func badRequest(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Error: %s", err)
}

func (m *Monitor) reportDevice(w http.ResponseWriter, r *http.Request) {
	device := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if device == nil {
		return
	}

	report := device.Summarize()

	writeJSON(w, struct {
		racetrack.CostReport
		TotalLatency float64 `json:"total_latency"`
		TotalEnergy  float64 `json:"total_energy"`
	}{report, report.TotalLatency(), report.TotalEnergy()})
}

func (m *Monitor) renderDevice(w http.ResponseWriter, r *http.Request) {
	device := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if device == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(device.Render()))
	dieOnErr(err)
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) Device {
	m.devicesLock.RLock()
	defer m.devicesLock.RUnlock()

	for _, d := range m.devices {
		if d.Name() == name {
			return d
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Device not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
