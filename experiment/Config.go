package experiment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/envconfig"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
)

// StoreKind names a backend for saving the final value table
type StoreKind string

const (
	FileStore    StoreKind = "file"
	LevelDBStore StoreKind = "leveldb"
	RedisStore   StoreKind = "redis"
)

// StoreConfig describes where the learned value table is saved
type StoreConfig struct {
	Kind   StoreKind
	Path   string // file name or LevelDB directory
	Addr   string // Redis address
	Prefix string // Redis key prefix
}

// CheckpointConfig describes how often the agent is checkpointed
type CheckpointConfig struct {
	// Every is the number of steps between checkpoint files, zero
	// disables file checkpoints
	Every int

	// Episodes is the number of episodes between snapshots saved to
	// the configured store, zero disables them
	Episodes int

	// Dir is the directory checkpoint files are written to
	Dir string

	// Naming selects how checkpoint files are named, defaulting to
	// checkpointer.UUID
	Naming checkpointer.Naming
}

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxSteps   uint
	EnvConf    envconfig.Config
	AgentConf  agent.TypedConfigList
	Checkpoint CheckpointConfig
	Store      StoreConfig

	// OutputDir is the directory tracker data is saved to
	OutputDir string
}

// LoadConfig reads a Config from a JSON or YAML file, chosen by the
// file extension. Defaults are applied and the Config is validated.
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, errs.Wrap(errs.InvalidConfiguration, err,
			"loadConfig: could not read %v", filename)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return Config{}, errs.Wrap(errs.InvalidConfiguration, err,
				"loadConfig: could not parse %v", filename)
		}
	case ".json":
	default:
		return Config{}, errs.New(errs.InvalidConfiguration, "loadConfig: "+
			"unknown config format %q", ext)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, errs.Wrap(errs.InvalidConfiguration, err,
			"loadConfig: could not decode %v", filename)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// yamlToJSON converts a YAML document to JSON so that types with custom
// JSON unmarshalling, such as agent.TypedConfigList, decode the same
// from either format
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "json")
	}
	return out, nil
}

// applyDefaults fills in unset fields
func (c *Config) applyDefaults() {
	if c.Type == "" {
		c.Type = OnlineExp
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Checkpoint.Dir == "" {
		c.Checkpoint.Dir = c.OutputDir
	}
	if c.Store.Kind == "" {
		c.Store.Kind = FileStore
	}
	if c.Store.Kind == FileStore && c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.OutputDir, "table.gob")
	}
}

// Validate ensures the Config is valid
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return errs.New(errs.InvalidConfiguration, "validate: no such "+
			"experiment type %q", c.Type)
	}
	if c.MaxSteps == 0 {
		return errs.New(errs.InvalidConfiguration,
			"validate: MaxSteps must be positive")
	}
	if err := c.EnvConf.Validate(); err != nil {
		return err
	}
	if !agent.Registered(c.AgentConf.Type) {
		return errs.New(errs.InvalidConfiguration, "validate: agent type "+
			"%q is not registered", c.AgentConf.Type)
	}
	if c.AgentConf.ConfigList == nil || c.AgentConf.Len() == 0 {
		return errs.New(errs.InvalidConfiguration,
			"validate: no agent configurations")
	}
	if c.Checkpoint.Every < 0 || c.Checkpoint.Episodes < 0 {
		return errs.New(errs.InvalidConfiguration,
			"validate: checkpoint intervals must not be negative")
	}
	if _, err := c.Checkpoint.Naming.Filenames("", ""); err != nil {
		return errs.Wrap(errs.InvalidConfiguration, err, "validate")
	}

	switch c.Store.Kind {
	case FileStore, LevelDBStore:
		if c.Store.Path == "" {
			return errs.New(errs.InvalidConfiguration,
				"validate: %v store needs a path", c.Store.Kind)
		}
	case RedisStore:
	default:
		return errs.New(errs.InvalidConfiguration, "validate: no such "+
			"store %q", c.Store.Kind)
	}
	return nil
}

// Build creates the environment and the agent described by the i-th
// agent configuration
func (c Config) Build(i int, seed uint64) (environment.Environment,
	agent.Agent, error) {
	if i < 0 || i >= c.AgentConf.Len() {
		return nil, nil, errs.New(errs.InvalidArgument, "build: agent "+
			"config %d out of range [0, %d)", i, c.AgentConf.Len())
	}

	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, nil, err
	}

	a, err := c.AgentConf.At(i).CreateAgent(env, seed)
	if err != nil {
		return nil, nil, err
	}
	return env, a, nil
}

// CreateExp creates the experiment described by the Config with the
// i-th agent configuration
func (c Config) CreateExp(i int, seed uint64, t []tracker.Tracker,
	check []checkpointer.Checkpointer) (*Online, error) {
	env, a, err := c.Build(i, seed)
	if err != nil {
		return nil, err
	}
	return NewOnline(env, a, c.MaxSteps, t, check), nil
}
