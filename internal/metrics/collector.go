// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated timings for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	Errors    int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	Errors      int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot is the full session telemetry at a point in time.
type Snapshot struct {
	UptimeSeconds    float64
	Turns            int64
	StateWarnings    int64
	CreativeTriggers int64
	LLMGenerate      *OperationSnapshot
	CreativeGenerate *OperationSnapshot
	DBSave           *OperationSnapshot
	DBLoad           *OperationSnapshot
}

// Operation names for the collector.
const (
	OpLLMGenerate      = "llm_generate"
	OpCreativeGenerate = "creative_generate"
	OpDBSave           = "db_save"
	OpDBLoad           = "db_load"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu               sync.RWMutex
	startTime        time.Time
	ops              map[string]*OperationMetrics
	turns            int64
	stateWarnings    int64
	creativeTriggers int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an
// operation. Caller must hold the write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records a completed operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordError counts a failed operation without timing it.
func (c *Collector) RecordError(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getOrCreate(op).Errors++
}

// RecordTurn counts a completed conversation turn.
func (c *Collector) RecordTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns++
}

// RecordStateWarning counts a rejected homeostatic update.
func (c *Collector) RecordStateWarning() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateWarnings++
}

// RecordCreativeTrigger counts a turn that entered creative mode.
func (c *Collector) RecordCreativeTrigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creativeTriggers++
}

// snapshotOp creates a snapshot for an operation, nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || (m.Count == 0 && m.Errors == 0) {
		return nil
	}

	snap := &OperationSnapshot{
		Count:  m.Count,
		Errors: m.Errors,
	}
	if m.Count > 0 {
		snap.TotalTimeMs = m.TotalTime.Milliseconds()
		snap.AvgTimeMs = float64(m.TotalTime.Milliseconds()) / float64(m.Count)
		snap.MinTimeMs = m.MinTime.Milliseconds()
		snap.MaxTimeMs = m.MaxTime.Milliseconds()
	}
	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:    time.Since(c.startTime).Seconds(),
		Turns:            c.turns,
		StateWarnings:    c.stateWarnings,
		CreativeTriggers: c.creativeTriggers,
		LLMGenerate:      snapshotOp(c.ops[OpLLMGenerate]),
		CreativeGenerate: snapshotOp(c.ops[OpCreativeGenerate]),
		DBSave:           snapshotOp(c.ops[OpDBSave]),
		DBLoad:           snapshotOp(c.ops[OpDBLoad]),
	}
}
