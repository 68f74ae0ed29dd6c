// Package redisstore implements a store.Store backed by Redis so that
// several processes can share one value table
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/store"
)

const defaultPrefix = "tabular"

// Config describes the connection to Redis
type Config struct {
	Address  string
	Password string
	DB       int
	Prefix   string // key prefix, defaults to "tabular"
}

// Store is a store.Store which keeps the Config of a snapshot as JSON
// under <prefix>:config and the action values in the hash
// <prefix>:values, one field per State.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New connects to Redis and returns a Store
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, errs.New(errs.InvalidConfiguration,
			"redis address must not be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.Storage, err, "could not connect to "+
			"redis at %v", cfg.Address)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient returns a Store using an existing client
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) configKey() string {
	return fmt.Sprintf("%s:config", s.prefix)
}

func (s *Store) valuesKey() string {
	return fmt.Sprintf("%s:values", s.prefix)
}

// Save implements store.Store. The previous snapshot is replaced
// atomically.
func (s *Store) Save(ctx context.Context, snap qlearning.Snapshot) error {
	cfg, err := json.Marshal(snap.Config)
	if err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not encode config")
	}

	fields := make(map[string]interface{}, len(snap.Values))
	for state, values := range snap.Values {
		v, err := json.Marshal(values)
		if err != nil {
			return errs.Wrap(errs.Storage, err, "save: could not encode "+
				"values of %q", state)
		}
		fields[string(state)] = v
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.valuesKey())
		if len(fields) > 0 {
			pipe.HSet(ctx, s.valuesKey(), fields)
		}
		pipe.Set(ctx, s.configKey(), cfg, 0)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.Storage, err, "save: redis transaction failed")
	}

	glog.V(1).Infof("saved %d states to redis %v", len(snap.Values),
		s.valuesKey())
	return nil
}

// Load implements store.Store
func (s *Store) Load(ctx context.Context) (qlearning.Snapshot, error) {
	cfg, err := s.client.Get(ctx, s.configKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return qlearning.Snapshot{}, store.NotFound("load: %v",
			s.configKey())
	} else if err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not read %v", s.configKey())
	}

	var snap qlearning.Snapshot
	if err := json.Unmarshal(cfg, &snap.Config); err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not decode config")
	}

	fields, err := s.client.HGetAll(ctx, s.valuesKey()).Result()
	if err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not read %v", s.valuesKey())
	}

	snap.Values = make(map[qlearning.State][]float64, len(fields))
	for state, encoded := range fields {
		var values []float64
		if err := json.Unmarshal([]byte(encoded), &values); err != nil {
			return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
				"load: corrupt values for %q", state)
		}
		snap.Values[qlearning.State(state)] = values
	}

	if err := snap.Validate(); err != nil {
		return qlearning.Snapshot{}, err
	}
	return snap, nil
}

// Close implements store.Store
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
