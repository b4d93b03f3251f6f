// Package observability aggregates runtime gauges and counters for the
// monitor worker, the debug server and the ops viewer.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Snapshot is the point-in-time view served by the debug endpoint.
type Snapshot struct {
	LiveRooms            int     `json:"live_rooms"`
	Connections          int     `json:"connections"`
	RoomsCreated         uint64  `json:"rooms_created"`
	RoomsDisposed        uint64  `json:"rooms_disposed"`
	EventsDispatched     uint64  `json:"events_dispatched"`
	EventsDropped        uint64  `json:"events_dropped"`
	MintsCompleted       uint64  `json:"mints_completed"`
	SettlementsCompleted uint64  `json:"settlements_completed"`
	AllocMemMb           uint64  `json:"alloc_mem_mb"`
	NumGC                uint32  `json:"num_gc"`
	RssBytes             uint64  `json:"rss_bytes"`
	CPUPercent           float64 `json:"cpu_percent"`
	UpdatedAt            string  `json:"updated_at"`
}

// Manager keeps counters as atomics so hot paths never take its lock;
// the lock only guards the assembled snapshot.
type Manager struct {
	log *slog.Logger

	mu     sync.RWMutex
	latest Snapshot

	roomsCreated     uint64
	roomsDisposed    uint64
	eventsDispatched uint64
	eventsDropped    uint64
	mints            uint64
	settlements      uint64

	liveRooms   func() int
	connections func() int
	proc        *process.Process
}

func NewManager(log *slog.Logger, liveRooms, connections func() int) *Manager {
	// Process handle failures only cost us RSS/CPU readings.
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Self process stats unavailable", "error", err)
		proc = nil
	}
	return &Manager{
		log:         log,
		liveRooms:   liveRooms,
		connections: connections,
		proc:        proc,
	}
}

func (m *Manager) IncrRoomsCreated()  { atomic.AddUint64(&m.roomsCreated, 1) }
func (m *Manager) IncrRoomsDisposed() { atomic.AddUint64(&m.roomsDisposed, 1) }
func (m *Manager) IncrDispatched()    { atomic.AddUint64(&m.eventsDispatched, 1) }
func (m *Manager) IncrDropped()       { atomic.AddUint64(&m.eventsDropped, 1) }
func (m *Manager) IncrMints()         { atomic.AddUint64(&m.mints, 1) }
func (m *Manager) IncrSettlements()   { atomic.AddUint64(&m.settlements, 1) }

// Refresh recomputes the snapshot from counters, callbacks and process
// metrics. Called periodically by the monitor worker.
func (m *Manager) Refresh() {
	snap := Snapshot{
		RoomsCreated:         atomic.LoadUint64(&m.roomsCreated),
		RoomsDisposed:        atomic.LoadUint64(&m.roomsDisposed),
		EventsDispatched:     atomic.LoadUint64(&m.eventsDispatched),
		EventsDropped:        atomic.LoadUint64(&m.eventsDropped),
		MintsCompleted:       atomic.LoadUint64(&m.mints),
		SettlementsCompleted: atomic.LoadUint64(&m.settlements),
		UpdatedAt:            time.Now().UTC().Format(time.RFC3339),
	}
	if m.liveRooms != nil {
		snap.LiveRooms = m.liveRooms()
	}
	if m.connections != nil {
		snap.Connections = m.connections()
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snap.AllocMemMb = ms.Alloc / 1024 / 1024
	snap.NumGC = ms.NumGC

	if m.proc != nil {
		if info, err := m.proc.MemoryInfo(); err == nil {
			snap.RssBytes = info.RSS
		}
		if cpu, err := m.proc.CPUPercent(); err == nil {
			snap.CPUPercent = cpu
		}
	}

	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()
}

func (m *Manager) GetLatest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
