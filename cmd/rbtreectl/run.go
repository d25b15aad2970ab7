package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/tree"
)

type runCommand struct {
	cfg *runConfig
}

func (c *runCommand) name() string {
	return "run"
}

func (c *runCommand) config() *globalConfig {
	return &c.cfg.globalConfig
}

// execute builds one tree from the insert keys, removes the remove keys
// and prints the tree in the traversal order, one node per line.
func (c *runCommand) execute(ctx context.Context, env *cmdEnv) error {
	opts := []tree.RBTreeOpt[int64, int]{
		tree.WithRBTreeLogger[int64, int](env.logger),
		tree.WithRBTreeStats[int64, int](c.name(), env.mp),
	}
	if c.cfg.desc {
		opts = append(opts, tree.WithRBTreeDesc[int64, int]())
	}
	rbtree, err := tree.NewRBTree[int64, int](opts...)
	if err != nil {
		return err
	}
	defer rbtree.Release()

	for i, key := range c.cfg.inserts {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = rbtree.Insert(key, i); err != nil {
			return err
		}
	}
	for _, key := range c.cfg.removes {
		if _, ok := rbtree.Remove(key); !ok {
			env.logger.Warn("[rbtreectl] remove absent key", zap.Int64("key", key))
		}
	}
	if err = tree.Validate[int64, int](rbtree); err != nil {
		return err
	}

	_, err = fmt.Fprintf(env.out, "len=%d height=%d order=%s\n", rbtree.Len(), rbtree.Height(), c.cfg.order)
	if err != nil {
		return err
	}
	for item := range rbtree.Traverse(c.cfg.order) {
		_, err = fmt.Fprintf(env.out, "%s%d %s\n", strings.Repeat("  ", item.Depth), item.Key, item.Color)
		if err != nil {
			return err
		}
	}
	return nil
}
