package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
)

var (
	errUnknownCommand = errors.New("[rbtreectl] unknown command")
	errInvalidFlag    = errors.New("[rbtreectl] invalid flag")
)

const (
	metricsNone       = "none"
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"
)

var traverseOrders = map[string]tree.TraverseOrder{
	"preorder":  tree.PreOrder,
	"inorder":   tree.InOrder,
	"postorder": tree.PostOrder,
	"bfs":       tree.BreadthFirst,
}

// globalConfig is shared by all the sub commands.
type globalConfig struct {
	encoder string
	metrics string
}

func (cfg *globalConfig) bind(fs *flag.FlagSet) {
	fs.StringVar(&cfg.encoder, "encoder", "json", "log encoder, json|text")
	fs.StringVar(&cfg.metrics, "metrics", metricsNone, "metrics exporter, none|console|prometheus")
}

func (cfg *globalConfig) validate() error {
	if !lo.Contains([]string{"json", "text"}, cfg.encoder) {
		return fmt.Errorf("%w: encoder %q", errInvalidFlag, cfg.encoder)
	}
	if !lo.Contains([]string{metricsNone, metricsConsole, metricsPrometheus}, cfg.metrics) {
		return fmt.Errorf("%w: metrics %q", errInvalidFlag, cfg.metrics)
	}
	return nil
}

func (cfg *globalConfig) logEncoder() xlog.XLoggerOption {
	if cfg.encoder == "text" {
		return xlog.WithXLoggerEncoder(xlog.PlainText)
	}
	return xlog.WithXLoggerEncoder(xlog.JSON)
}

type runConfig struct {
	globalConfig
	inserts []int64
	removes []int64
	order   tree.TraverseOrder
	desc    bool
}

type stressConfig struct {
	globalConfig
	workers int
	rounds  int
	size    int
	seed    uint64
}

func parseKeys(s string) ([]int64, error) {
	parts := lo.Filter(strings.Split(s, ","), func(part string, _ int) bool {
		return strings.TrimSpace(part) != ""
	})
	keys := make([]int64, 0, len(parts))
	for _, part := range parts {
		key, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q, %w", errInvalidFlag, part, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseRunConfig(args []string, out io.Writer) (*runConfig, error) {
	cfg := &runConfig{}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(out)
	cfg.bind(fs)
	inserts := fs.String("insert", "", "comma separated keys to insert in order")
	removes := fs.String("remove", "", "comma separated keys to remove in order")
	order := fs.String("order", "inorder", "traversal order, inorder|preorder|postorder|bfs")
	fs.BoolVar(&cfg.desc, "desc", false, "reverse the key order")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var err error
	if cfg.inserts, err = parseKeys(*inserts); err != nil {
		return nil, err
	}
	if cfg.removes, err = parseKeys(*removes); err != nil {
		return nil, err
	}
	o, ok := traverseOrders[strings.ToLower(*order)]
	if !ok {
		return nil, fmt.Errorf("%w: order %q", errInvalidFlag, *order)
	}
	cfg.order = o
	return cfg, nil
}

func parseStressConfig(args []string, out io.Writer) (*stressConfig, error) {
	cfg := &stressConfig{}
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	fs.SetOutput(out)
	cfg.bind(fs)
	fs.IntVar(&cfg.workers, "workers", 8, "worker pool size")
	fs.IntVar(&cfg.rounds, "rounds", 64, "number of independent trees")
	fs.IntVar(&cfg.size, "size", 2000, "operations per tree")
	fs.Uint64Var(&cfg.seed, "seed", 0, "random seed, 0 picks one")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.workers <= 0 || cfg.rounds <= 0 || cfg.size <= 0 {
		return nil, fmt.Errorf("%w: workers %d, rounds %d, size %d must be positive",
			errInvalidFlag, cfg.workers, cfg.rounds, cfg.size)
	}
	return cfg, nil
}

// parseCommand returns the command for "run" or "stress".
func parseCommand(args []string, out io.Writer) (command, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: missing, expected run|stress", errUnknownCommand)
	}
	switch args[0] {
	case "run":
		cfg, err := parseRunConfig(args[1:], out)
		if err != nil {
			return nil, err
		}
		return &runCommand{cfg: cfg}, nil
	case "stress":
		cfg, err := parseStressConfig(args[1:], out)
		if err != nil {
			return nil, err
		}
		return &stressCommand{cfg: cfg}, nil
	default:
	}
	return nil, fmt.Errorf("%w: %q, expected run|stress", errUnknownCommand, args[0])
}
