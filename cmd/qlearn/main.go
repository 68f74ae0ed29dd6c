// Command qlearn runs a tabular Q-learning experiment described by a
// JSON or YAML configuration file.
//
// Usage:
//
//	qlearn -config exp.yaml [-agent i] [-seed n] [-metrics :9090]
//
// Tracker data and checkpoints are written to the configured output
// directory, and the learned value table is saved to the configured
// store, also when the run is stopped early with SIGINT or SIGTERM.
// TABULAR_REDIS_ADDR overrides the address of a Redis store.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/experiment"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	"github.com/samuelfneumann/tabular/experiment/trackers"
	"github.com/samuelfneumann/tabular/metrics"
	"github.com/samuelfneumann/tabular/utils/progressbar"
)

var (
	configFile  = flag.String("config", "experiment.yaml", "Experiment configuration file (JSON or YAML)")
	agentIndex  = flag.Int("agent", 0, "Index of the agent configuration to run")
	seed        = flag.Uint64("seed", 1, "Random seed")
	metricsAddr = flag.String("metrics", "", "Address to serve Prometheus metrics on, e.g. :9090")
	progress    = flag.Bool("progress", true, "Display a progress bar")
)

const saveTimeout = 30 * time.Second

func main() {
	flag.Parse()
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		glog.Errorf("qlearn: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := experiment.LoadConfig(*configFile)
	if err != nil {
		return err
	}
	if addr := os.Getenv("TABULAR_REDIS_ADDR"); addr != "" &&
		cfg.Store.Kind == experiment.RedisStore {
		cfg.Store.Addr = addr
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg)
	}

	var bar *progressbar.ManualProgressBar
	if *progress {
		bar = progressbar.NewManualProgressBar(os.Stdout, 50,
			int(cfg.MaxSteps))
	}

	q, err := train(ctx, cfg, *agentIndex, *seed, m, bar)
	if err != nil {
		return err
	}
	glog.Infof("learned %d states", q.Len())
	return nil
}

// train runs the i-th agent of cfg until the step budget is exhausted
// or ctx is done, then saves tracker data and the learned table. An
// interrupted run is not an error: whatever was learned is still
// saved.
func train(ctx context.Context, cfg experiment.Config, i int, seed uint64,
	m *metrics.Collectors, bar *progressbar.ManualProgressBar) (
	*qlearning.Agent, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Checkpoint.Dir, 0o755); err != nil {
		return nil, err
	}

	env, a, err := cfg.Build(i, seed)
	if err != nil {
		return nil, err
	}
	q, ok := a.(*qlearning.Agent)
	if !ok {
		return nil, fmt.Errorf("agent config %d does not describe a "+
			"tabular agent", i)
	}
	glog.Infof("running %v on %v for %d steps", q.Config(), env, cfg.MaxSteps)

	openCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	st, err := cfg.Store.Open(openCtx)
	cancel()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ret := trackers.NewReturn(filepath.Join(cfg.OutputDir, "return.bin"))
	t := []tracker.Tracker{
		ret,
		trackers.NewEpisodeLength(filepath.Join(cfg.OutputDir, "length.bin")),
		trackers.NewPrometheus(m),
	}

	var check []checkpointer.Checkpointer
	if cfg.Checkpoint.Every > 0 {
		filenames, err := cfg.Checkpoint.Naming.Filenames(
			filepath.Join(cfg.Checkpoint.Dir, "checkpoint"), ".bin")
		if err != nil {
			return nil, err
		}
		check = append(check, checkpointer.NewNStep(cfg.Checkpoint.Every, q,
			filenames))
	}
	if cfg.Checkpoint.Episodes > 0 {
		check = append(check, checkpointer.NewStore(ctx,
			cfg.Checkpoint.Episodes, q, st))
	}

	exp := experiment.NewOnline(env, q, cfg.MaxSteps, t, check)
	exp.Instrument(m)
	if bar != nil {
		exp.ShowProgress(bar)
	}

	err = exp.Run(ctx)
	if bar != nil {
		fmt.Println()
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		glog.Warningf("interrupted after %d steps, saving what was learned",
			exp.Steps())
	} else if err != nil {
		return nil, err
	}

	if err := exp.Save(); err != nil {
		return nil, err
	}

	// ctx may already be done, so the final save gets its own deadline
	saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := st.Save(saveCtx, q.Snapshot()); err != nil {
		return nil, err
	}

	returns := ret.Data()
	if n := len(returns); n > 10 {
		returns = returns[n-10:]
	}
	glog.Infof("last returns: %v", returns)
	return q, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	glog.Infof("serving metrics on %v", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		glog.Errorf("metrics server: %v", err)
	}
}
