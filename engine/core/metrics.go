package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// Metrics tracks load outcomes and a rolling average of decode time over the last AVG_COUNT loads.
type Metrics struct {
	mu sync.Mutex

	avgCounter uint8
	samples    uint8
	mstimes    [AVG_COUNT]float64
	msavg      float64

	loads    uint64
	failures uint64
	bytes    uint64
}

// MetricsSnapshot is a copy of the counters at one point in time.
type MetricsSnapshot struct {
	Loads     uint64
	Failures  uint64
	Bytes     uint64
	AverageMS float64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update records one load that took elapsed and viewed size bytes.
func (m *Metrics) Update(elapsed time.Duration, size int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads++
	if err != nil {
		m.failures++
		return
	}
	m.bytes += uint64(size)

	ms := float64(elapsed) / float64(time.Millisecond)
	m.mstimes[m.avgCounter] = ms
	m.avgCounter++
	m.avgCounter %= AVG_COUNT
	if m.samples < AVG_COUNT {
		m.samples++
	}

	sum := float64(0)
	for i := uint8(0); i < m.samples; i++ {
		sum += m.mstimes[i]
	}
	m.msavg = sum / float64(m.samples)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Loads:     m.loads,
		Failures:  m.failures,
		Bytes:     m.bytes,
		AverageMS: m.msavg,
	}
}
