package qlearning

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero actions", func(c *Config) { c.Actions = 0 }, false},
		{"negative actions", func(c *Config) { c.Actions = -1 }, false},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }, false},
		{"unit learning rate", func(c *Config) { c.LearningRate = 1 }, true},
		{"large learning rate", func(c *Config) { c.LearningRate = 1.5 },
			false},
		{"NaN learning rate", func(c *Config) {
			c.LearningRate = math.NaN()
		}, false},
		{"zero discount", func(c *Config) { c.Discount = 0 }, true},
		{"negative discount", func(c *Config) { c.Discount = -0.1 }, false},
		{"large discount", func(c *Config) { c.Discount = 1.01 }, false},
		{"greedy", func(c *Config) { c.Epsilon = 0 }, true},
		{"random", func(c *Config) { c.Epsilon = 1 }, true},
		{"large epsilon", func(c *Config) { c.Epsilon = 2 }, false},
		{"NaN epsilon", func(c *Config) { c.Epsilon = math.NaN() }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.modify(&c)

			err := c.Validate()
			if test.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errs.Is(err, errs.InvalidConfiguration), "%v", err)

			_, err = New(c, 0)
			assert.True(t, errs.Is(err, errs.InvalidConfiguration))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 0.1, c.LearningRate)
	assert.Equal(t, 0.9, c.Discount)
	assert.Equal(t, 2, c.Actions)
	assert.Equal(t, 0.0, c.Epsilon)
	assert.Equal(t, agent.EGreedyQLearningTabular, c.Type())
}

func TestConfigListAt(t *testing.T) {
	list := ConfigList{
		LearningRate: []float64{0.1, 0.5},
		Discount:     []float64{0.9},
		Actions:      []int{2, 4},
		Epsilon:      []float64{0, 0.1, 0.2},
	}
	require.Equal(t, 12, list.Len())
	require.Equal(t, 4, list.NumFields())

	// The last field varies fastest
	assert.Equal(t, Config{0.1, 0.9, 2, 0}, agent.ConfigAt(0, list))
	assert.Equal(t, Config{0.1, 0.9, 2, 0.2}, agent.ConfigAt(2, list))
	assert.Equal(t, Config{0.1, 0.9, 4, 0}, agent.ConfigAt(3, list))
	assert.Equal(t, Config{0.5, 0.9, 2, 0.1}, agent.ConfigAt(7, list))
	assert.Equal(t, Config{0.5, 0.9, 4, 0.2}, agent.ConfigAt(11, list))

	assert.Panics(t, func() { agent.ConfigAt(12, list) })
	assert.Panics(t, func() { agent.ConfigAt(-1, list) })
}

func TestTypedConfigListJSON(t *testing.T) {
	configs := NewConfigList([]float64{0.1, 0.2}, []float64{0.9}, []int{4},
		[]float64{0.05})

	data, err := json.Marshal(configs)
	require.NoError(t, err)

	var decoded agent.TypedConfigList
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, agent.EGreedyQLearningTabular, decoded.Type)
	require.Equal(t, 2, decoded.Len())
	assert.Equal(t, Config{0.2, 0.9, 4, 0.05}, decoded.At(1))
}

func TestTypedConfigListUnregistered(t *testing.T) {
	var decoded agent.TypedConfigList

	err := json.Unmarshal([]byte(`{"Type": "Sarsa", "ConfigList": {}}`),
		&decoded)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"ConfigList": {}}`), &decoded)
	assert.Error(t, err)
}
