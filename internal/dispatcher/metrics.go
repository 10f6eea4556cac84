package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/scenedit/internal/binding"
)

// Metrics collects per-command binding outcome statistics.
// Reads may come from a UI or debug goroutine, so access is locked.
type Metrics struct {
	mu sync.RWMutex

	commands map[string]*CommandMetrics

	totalEvents   uint64
	totalConsumed uint64
}

// CommandMetrics holds outcome counts for one command.
type CommandMetrics struct {
	Name        string
	Consumed    uint64
	Handled     uint64
	Filtered    uint64
	Rejected    uint64
	LastOutcome binding.Outcome
	LastEvent   time.Time
}

// Total returns the number of recorded outcomes.
func (cm CommandMetrics) Total() uint64 {
	return cm.Consumed + cm.Handled + cm.Filtered + cm.Rejected
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commands: make(map[string]*CommandMetrics),
	}
}

// Record records one binding outcome for the named command.
func (m *Metrics) Record(name string, out binding.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalEvents++

	cm := m.commands[name]
	if cm == nil {
		cm = &CommandMetrics{Name: name}
		m.commands[name] = cm
	}
	switch out {
	case binding.Consumed:
		cm.Consumed++
		m.totalConsumed++
	case binding.Handled:
		cm.Handled++
	case binding.Filtered:
		cm.Filtered++
	case binding.Rejected:
		cm.Rejected++
	}
	cm.LastOutcome = out
	cm.LastEvent = time.Now()
}

// TotalEvents returns the number of recorded outcomes.
func (m *Metrics) TotalEvents() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalEvents
}

// TotalConsumed returns the number of consumed outcomes.
func (m *Metrics) TotalConsumed() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalConsumed
}

// CommandStats returns a copy of the metrics for name, or nil.
func (m *Metrics) CommandStats(name string) *CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm := m.commands[name]
	if cm == nil {
		return nil
	}
	c := *cm
	return &c
}

// TopCommands returns the n commands with the most recorded outcomes.
func (m *Metrics) TopCommands(n int) []CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]CommandMetrics, 0, len(m.commands))
	for _, cm := range m.commands {
		all = append(all, *cm)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Total() != all[j].Total() {
			return all[i].Total() > all[j].Total()
		}
		return all[i].Name < all[j].Name
	})
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = make(map[string]*CommandMetrics)
	m.totalEvents = 0
	m.totalConsumed = 0
}
