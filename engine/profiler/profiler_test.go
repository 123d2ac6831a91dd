package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/stretchr/testify/assert"
)

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler()
	p.SetUpdateInterval(time.Hour)
	assert.False(t, p.Tick())

	p.SetUpdateInterval(0)
	assert.True(t, p.Tick())
	assert.Zero(t, p.frameCount)
}

func TestRecordAccumulatesUntilLogged(t *testing.T) {
	p := NewProfiler()
	p.SetUpdateInterval(time.Hour)

	var frame uniform.Stats
	frame.Recomputes[uniform.EntryModelView] = 3
	frame.Invalidations[uniform.FieldModel] = 3
	p.Record(frame)
	p.Record(frame)

	got := p.UniformStats()
	assert.Equal(t, uint64(6), got.RecomputeCount(uniform.EntryModelView))
	assert.Equal(t, uint64(6), got.TotalInvalidations())

	p.SetUpdateInterval(0)
	p.Tick()
	assert.Zero(t, p.UniformStats().TotalRecomputes())
}

func TestBusiestEntry(t *testing.T) {
	var s uniform.Stats
	s.Recomputes[uniform.EntryNormal] = 2
	s.Recomputes[uniform.EntryModelViewProjection] = 5

	e, n := busiestEntry(s)
	assert.Equal(t, uniform.EntryModelViewProjection, e)
	assert.Equal(t, uint64(5), n)
}
