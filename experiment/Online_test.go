package experiment

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/environment/envconfig"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	"github.com/samuelfneumann/tabular/experiment/trackers"
	"github.com/samuelfneumann/tabular/metrics"
	"github.com/samuelfneumann/tabular/store/filestore"
	ts "github.com/samuelfneumann/tabular/timestep"
	"github.com/samuelfneumann/tabular/utils/progressbar"
)

func corridorConfig() Config {
	return Config{
		Type:     OnlineExp,
		MaxSteps: 2000,
		EnvConf: envconfig.Config{
			Environment:    envconfig.GridWorld,
			Task:           envconfig.Goal,
			EpisodeCutoff:  50,
			Discount:       1.0,
			Rows:           1,
			Cols:           5,
			GoalX:          []int{4},
			GoalY:          []int{0},
			TimeStepReward: -1,
		},
		AgentConf: qlearning.NewConfigList([]float64{0.5}, []float64{1.0},
			[]int{0}, []float64{0.1}),
	}
}

func TestOnlineRun(t *testing.T) {
	dir := t.TempDir()
	c := corridorConfig()
	c.OutputDir = dir
	c.applyDefaults()
	require.NoError(t, c.Validate())

	ret := trackers.NewReturn(filepath.Join(dir, "return.bin"))
	length := trackers.NewEpisodeLength(filepath.Join(dir, "length.bin"))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	exp, err := c.CreateExp(0, 1, []tracker.Tracker{ret, length,
		trackers.NewPrometheus(m)}, nil)
	require.NoError(t, err)
	exp.Instrument(m)

	var out bytes.Buffer
	exp.ShowProgress(progressbar.NewManualProgressBar(&out, 10,
		int(c.MaxSteps)))

	require.NoError(t, exp.Run(context.Background()))
	assert.Equal(t, c.MaxSteps, exp.Steps())
	assert.NotEmpty(t, out.String())

	// Late episodes should take the shortest path of 4 steps most of
	// the time
	returns := ret.Data()
	require.NotEmpty(t, returns)
	assert.Len(t, length.Data(), len(returns))
	assert.GreaterOrEqual(t, returns[len(returns)-1], -20.0)

	assert.Equal(t, float64(c.MaxSteps),
		testutil.ToFloat64(m.Updates.WithLabelValues(metrics.SourceExperiment)))
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "tabular_td_error" {
			assert.Equal(t, uint64(c.MaxSteps),
				f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}

	require.NoError(t, exp.Save())
	saved, err := tracker.LoadData(filepath.Join(dir, "return.bin"))
	require.NoError(t, err)
	assert.Equal(t, returns, saved)

	a := exp.Agent.(*qlearning.Agent)
	action, _ := a.Greedy(qlearning.StateOf(0, 0))
	assert.Equal(t, 1, action) // Right
}

func TestOnlineCheckpoints(t *testing.T) {
	dir := t.TempDir()
	c := corridorConfig()
	c.MaxSteps = 100

	env, a, err := c.Build(0, 0)
	require.NoError(t, err)
	q := a.(*qlearning.Agent)

	check := []checkpointer.Checkpointer{
		checkpointer.NewNStep(25, q, checkpointer.FilenameEnumerator(0,
			filepath.Join(dir, "q"), ".bin")),
		checkpointer.NewStore(context.Background(), 1, q,
			filestore.New(filepath.Join(dir, "table.gob"))),
	}
	exp := NewOnline(env, a, c.MaxSteps, nil, check)
	require.NoError(t, exp.Run(context.Background()))

	for i := 1; i <= 4; i++ {
		_, err := os.Stat(filepath.Join(dir, "q"+string(rune('0'+i))+".bin"))
		assert.NoError(t, err, "checkpoint %d", i)
	}
	_, err = os.Stat(filepath.Join(dir, "q5.bin"))
	assert.True(t, os.IsNotExist(err))

	loaded, err := qlearning.Load(filepath.Join(dir, "q4.bin"), 0)
	require.NoError(t, err)
	assert.Equal(t, q.Snapshot(), loaded.Snapshot())
}

// cancelAfter is a Tracker which cancels a context after a number of
// non-first steps
type cancelAfter struct {
	steps  int
	cancel context.CancelFunc
}

func (c *cancelAfter) Track(step ts.TimeStep) {
	if step.First() {
		return
	}
	c.steps--
	if c.steps == 0 {
		c.cancel()
	}
}

func (c *cancelAfter) Save() error { return nil }

func TestOnlineRunCancelled(t *testing.T) {
	dir := t.TempDir()
	c := corridorConfig()
	c.MaxSteps = 1000000

	env, a, err := c.Build(0, 0)
	require.NoError(t, err)
	q := a.(*qlearning.Agent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := &cancelAfter{steps: 30, cancel: cancel}
	exp := NewOnline(env, a, c.MaxSteps, []tracker.Tracker{stop}, nil)

	err = exp.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint(30), exp.Steps())
	assert.Greater(t, q.Len(), 0)

	// The cancelled context must not prevent the learned table from
	// being saved afterwards
	st := filestore.New(filepath.Join(dir, "table.gob"))
	saveCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, st.Save(saveCtx, q.Snapshot()))

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, q.Snapshot(), loaded)
}

func TestBuildOutOfRange(t *testing.T) {
	c := corridorConfig()
	_, _, err := c.Build(1, 0)
	assert.Error(t, err)
}
