package observability

import (
	"sync"
	"time"
)

type routeKey struct {
	path   string
	method string
}

type routeStats struct {
	requests  int64
	durations time.Duration
	statuses  map[int]int64
	errors    map[string]int64
}

// Metrics keeps in-process request and error counters per route.
type Metrics struct {
	mu     sync.Mutex
	routes map[routeKey]*routeStats
}

func NewMetrics() *Metrics {
	return &Metrics{routes: make(map[routeKey]*routeStats)}
}

func (m *Metrics) stats(path, method string) *routeStats {
	key := routeKey{path: path, method: method}
	stats, ok := m.routes[key]
	if !ok {
		stats = &routeStats{
			statuses: make(map[int]int64),
			errors:   make(map[string]int64),
		}
		m.routes[key] = stats
	}
	return stats
}

// RecordRequest counts a completed request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stats(path, method)
	stats.requests++
	stats.durations += duration
	stats.statuses[status]++
}

// RecordError counts an error by its domain code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats(path, method).errors[code]++
}
