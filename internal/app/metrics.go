package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks frame and input timing.
type Metrics struct {
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	inputCount    atomic.Uint64
	inputConsumed atomic.Uint64
	inputTotalNs  atomic.Int64

	reloads  atomic.Uint64
	captures atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records the time spent rendering and presenting a frame.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMinNs.Load()
		if ns >= old || m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordInput records one dispatched input event.
func (m *Metrics) RecordInput(duration time.Duration, consumed bool) {
	m.inputCount.Add(1)
	m.inputTotalNs.Add(duration.Nanoseconds())
	if consumed {
		m.inputConsumed.Add(1)
	}
}

// RecordReload records an applied configuration reload.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// RecordCapture records a frame written by the capturer.
func (m *Metrics) RecordCapture() {
	m.captures.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frameCount := m.frameCount.Load()
	inputCount := m.inputCount.Load()

	var avgFrameNs int64
	if frameCount > 0 {
		avgFrameNs = m.frameTotalNs.Load() / int64(frameCount)
	}
	var avgInputNs int64
	if inputCount > 0 {
		avgInputNs = m.inputTotalNs.Load() / int64(inputCount)
	}
	minFrameNs := m.frameMinNs.Load()
	if minFrameNs == 1<<63-1 {
		minFrameNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		FrameCount:     frameCount,
		AvgFrameTimeNs: avgFrameNs,
		MinFrameTimeNs: minFrameNs,
		MaxFrameTimeNs: m.frameMaxNs.Load(),
		LastFrameNs:    m.lastFrameNs.Load(),
		InputCount:     inputCount,
		InputConsumed:  m.inputConsumed.Load(),
		AvgInputTimeNs: avgInputNs,
		Reloads:        m.reloads.Load(),
		Captures:       m.captures.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	FrameCount     uint64
	AvgFrameTimeNs int64
	MinFrameTimeNs int64
	MaxFrameTimeNs int64
	LastFrameNs    int64
	InputCount     uint64
	InputConsumed  uint64
	AvgInputTimeNs int64
	Reloads        uint64
	Captures       uint64
}

// AvgFPS returns the frame rate implied by the average frame time.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.AvgFrameTimeNs <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.AvgFrameTimeNs)
}
