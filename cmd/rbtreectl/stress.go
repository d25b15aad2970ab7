package main

import (
	"context"
	"fmt"
	randv2 "math/rand/v2"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
)

type stressCommand struct {
	cfg *stressConfig
}

func (c *stressCommand) name() string {
	return "stress"
}

func (c *stressCommand) config() *globalConfig {
	return &c.cfg.globalConfig
}

// execute runs the rounds on a worker pool. Each round owns its tree,
// nothing is shared between the workers except the error list.
func (c *stressCommand) execute(ctx context.Context, env *cmdEnv) error {
	seed := c.cfg.seed
	if seed == 0 {
		seed = randv2.Uint64()
	}

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		errs error
	)
	appendErr := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		errs = multierr.Append(errs, err)
	}

	pool, err := ants.NewPool(
		c.cfg.workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(env.logger)),
		ants.WithPanicHandler(func(p any) {
			appendErr(fmt.Errorf("[rbtreectl] stress round panic: %v", p))
		}),
	)
	if err != nil {
		return err
	}
	defer pool.Release()

	for round := 0; round < c.cfg.rounds; round++ {
		if err = ctx.Err(); err != nil {
			appendErr(err)
			break
		}
		r := round
		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			if err := stressRound(seed, r, c.cfg.size, env.mp); err != nil {
				appendErr(fmt.Errorf("round %d: %w", r, err))
			}
		})
		if err != nil {
			wg.Done()
			appendErr(err)
		}
	}
	wg.Wait()

	failed := len(multierr.Errors(errs))
	env.logger.Info("[rbtreectl] stress finished",
		zap.Uint64("seed", seed),
		zap.Int("rounds", c.cfg.rounds),
		zap.Int("failed", failed),
	)
	_, err = fmt.Fprintf(env.out, "seed=%d workers=%d rounds=%d size=%d failed=%d\n",
		seed, c.cfg.workers, c.cfg.rounds, c.cfg.size, failed)
	return multierr.Append(errs, err)
}

// stressRound mixes inserts and removes on a small key range so that
// duplicate keys are common, then drains the tree by RemoveMin.
func stressRound(seed uint64, round, size int, mp metric.MeterProvider) error {
	rng := randv2.New(randv2.NewPCG(seed, uint64(round)))
	rbtree, err := tree.NewRBTree[int, int](tree.WithRBTreeStats[int, int]("stress", mp))
	if err != nil {
		return err
	}
	defer rbtree.Release()

	keyRange := size/2 + 1
	checkpoint := size/16 + 1
	counts := make(map[int]int, keyRange)
	total := int64(0)
	for i := 0; i < size; i++ {
		key := rng.IntN(keyRange)
		if rng.IntN(3) > 0 {
			if err = rbtree.Insert(key, i); err != nil {
				return err
			}
			counts[key]++
			total++
		} else {
			_, ok := rbtree.Remove(key)
			if ok != (counts[key] > 0) {
				return fmt.Errorf("op %d: remove %d reports %v, expected %v", i, key, ok, counts[key] > 0)
			}
			if ok {
				counts[key]--
				total--
			}
		}
		if i%checkpoint == 0 {
			if err = tree.Validate[int, int](rbtree); err != nil {
				return fmt.Errorf("op %d: %w", i, err)
			}
		}
	}
	if rbtree.Len() != total {
		return fmt.Errorf("len %d, expected %d", rbtree.Len(), total)
	}
	if err = tree.Validate[int, int](rbtree); err != nil {
		return err
	}

	prev := -1
	for rbtree.Len() > 0 {
		x, err := rbtree.RemoveMin()
		if err != nil {
			return err
		}
		if x.Key() < prev {
			return fmt.Errorf("remove min %d after %d", x.Key(), prev)
		}
		prev = x.Key()
	}
	return tree.Validate[int, int](rbtree)
}
