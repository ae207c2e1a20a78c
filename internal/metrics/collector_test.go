package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySnapshot(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()

	assert.Nil(t, snap.LLMGenerate)
	assert.Nil(t, snap.DBSave)
	assert.Zero(t, snap.Turns)
}

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpLLMGenerate, 100*time.Millisecond)
	c.RecordTiming(OpLLMGenerate, 300*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.LLMGenerate)
	assert.Equal(t, int64(2), snap.LLMGenerate.Count)
	assert.Equal(t, int64(100), snap.LLMGenerate.MinTimeMs)
	assert.Equal(t, int64(300), snap.LLMGenerate.MaxTimeMs)
	assert.InDelta(t, 200.0, snap.LLMGenerate.AvgTimeMs, 0.01)
}

func TestErrorsWithoutTimings(t *testing.T) {
	c := NewCollector()
	c.RecordError(OpDBSave)
	c.RecordError(OpDBSave)

	snap := c.Snapshot()
	require.NotNil(t, snap.DBSave)
	assert.Equal(t, int64(2), snap.DBSave.Errors)
	assert.Zero(t, snap.DBSave.Count)
}

func TestCounters(t *testing.T) {
	c := NewCollector()
	c.RecordTurn()
	c.RecordTurn()
	c.RecordStateWarning()
	c.RecordCreativeTrigger()

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.Turns)
	assert.Equal(t, int64(1), snap.StateWarnings)
	assert.Equal(t, int64(1), snap.CreativeTriggers)
}

func TestConcurrentAccess(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpLLMGenerate, time.Millisecond)
				c.RecordTurn()
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(800), snap.LLMGenerate.Count)
	assert.Equal(t, int64(800), snap.Turns)
}
