// Command qdecide scores an input vector with a decider described by a
// YAML file.
//
// Usage:
//
//	qdecide -config decider.yaml 0.5 1 2
//
// TABULAR_RPC_URL overrides the JSON-RPC endpoint of a chain decider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/tabular/decision"
	"github.com/samuelfneumann/tabular/errs"
)

var (
	configFile = flag.String("config", "decider.yaml", "Decider configuration file")
	timeout    = flag.Duration("timeout", 10*time.Second, "Timeout of remote calls")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	score, err := run(flag.Args())
	if err != nil {
		glog.Errorf("qdecide: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	fmt.Println(score)
}

func run(args []string) (float64, error) {
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return 0, err
	}
	if url := os.Getenv("TABULAR_RPC_URL"); url != "" {
		cfg.Chain.RPCURL = url
	}

	input, err := parseInput(args)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	d, err := decision.New(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer decision.Close(d)

	return d.Decide(ctx, input)
}

func loadConfig(filename string) (decision.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return decision.Config{}, errs.Wrap(errs.InvalidConfiguration, err,
			"could not read %v", filename)
	}

	var cfg decision.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return decision.Config{}, errs.Wrap(errs.InvalidConfiguration, err,
			"could not parse %v", filename)
	}
	return cfg, nil
}

func parseInput(args []string) ([]float64, error) {
	input := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, err,
				"input %d is not a number", i)
		}
		input[i] = v
	}
	return input, nil
}
