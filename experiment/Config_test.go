package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/environment/envconfig"
	"github.com/samuelfneumann/tabular/errs"
)

const yamlConfig = `
MaxSteps: 500
OutputDir: /tmp/out
EnvConf:
  Environment: GridWorld
  Task: Goal
  EpisodeCutoff: 100
  Discount: 0.9
  Rows: 3
  Cols: 3
  GoalX: [2]
  GoalY: [2]
  TimeStepReward: -1
  GoalReward: 0
AgentConf:
  Type: EGreedyQLearning-Tabular
  ConfigList:
    LearningRate: [0.1, 0.5]
    Discount: [0.9]
    Actions: [4]
    Epsilon: [0.1]
Store:
  Kind: leveldb
  Path: /tmp/out/table.ldb
`

const jsonConfig = `{
  "MaxSteps": 500,
  "EnvConf": {
    "Environment": "GridWorld",
    "Task": "Goal",
    "Discount": 0.9,
    "Rows": 3,
    "Cols": 3,
    "GoalX": [2],
    "GoalY": [2]
  },
  "AgentConf": {
    "Type": "EGreedyQLearning-Tabular",
    "ConfigList": {
      "LearningRate": [0.1],
      "Discount": [0.9],
      "Actions": [0],
      "Epsilon": [0.05]
    }
  }
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfigYAML(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, "exp.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, OnlineExp, c.Type)
	assert.Equal(t, uint(500), c.MaxSteps)
	assert.Equal(t, envconfig.GridWorld, c.EnvConf.Environment)
	assert.Equal(t, []int{2}, c.EnvConf.GoalX)
	assert.Equal(t, agent.EGreedyQLearningTabular, c.AgentConf.Type)
	require.Equal(t, 2, c.AgentConf.Len())
	assert.Equal(t, qlearning.Config{LearningRate: 0.5, Discount: 0.9,
		Actions: 4, Epsilon: 0.1}, c.AgentConf.At(1))
	assert.Equal(t, StoreConfig{Kind: LevelDBStore,
		Path: "/tmp/out/table.ldb"}, c.Store)
	assert.Equal(t, "/tmp/out", c.Checkpoint.Dir)
}

func TestLoadConfigJSON(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, "exp.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, ".", c.OutputDir)
	assert.Equal(t, FileStore, c.Store.Kind)
	assert.Equal(t, "table.gob", c.Store.Path)

	_, a, err := c.Build(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, a.(*qlearning.Agent).Config().Actions)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name, filename, content string
	}{
		{"extension", "exp.toml", jsonConfig},
		{"yaml syntax", "exp.yaml", "MaxSteps: [1"},
		{"json syntax", "exp.json", "{"},
		{"no steps", "exp.json", `{"AgentConf": {"Type": ` +
			`"EGreedyQLearning-Tabular", "ConfigList": {}}}`},
		{"unregistered agent", "exp.json", `{"AgentConf": {"Type": "X"}}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, test.filename, test.content))
			assert.True(t, errs.Is(err, errs.InvalidConfiguration), "%v", err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errs.Is(err, errs.InvalidConfiguration))
}

func TestValidate(t *testing.T) {
	c := corridorConfig()
	c.applyDefaults()
	require.NoError(t, c.Validate())

	bad := c
	bad.Type = "Offline"
	assert.Error(t, bad.Validate())

	bad = c
	bad.Store = StoreConfig{Kind: "s3"}
	assert.Error(t, bad.Validate())

	bad = c
	bad.Store = StoreConfig{Kind: LevelDBStore}
	assert.Error(t, bad.Validate())

	bad = c
	bad.Checkpoint.Every = -1
	assert.Error(t, bad.Validate())

	bad = c
	bad.AgentConf.Type = "DeepQ"
	assert.Error(t, bad.Validate())

	bad = c
	bad.Checkpoint.Episodes = -1
	assert.Error(t, bad.Validate())

	bad = c
	bad.Checkpoint.Naming = "daily"
	assert.Error(t, bad.Validate())

	bad = c
	bad.EnvConf.Rows = 0
	assert.Error(t, bad.Validate())
}
