package tree

import (
	"context"
	"fmt"
	"strconv"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xtree/rbtree"
)

type rbTreeStats struct {
	insertCount   metric.Int64Counter
	removeCount   metric.Int64Counter
	rotationCount metric.Int64Counter
	fixupCount    metric.Int64Counter
	size          metric.Int64UpDownCounter
}

func (stats *rbTreeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseRemoveCount() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), -1)
}

func (stats *rbTreeStats) RecordReleased(count int64) {
	if stats == nil || count <= 0 {
		return
	}
	stats.size.Add(context.Background(), -count)
}

func (stats *rbTreeStats) IncreaseRotationCount(dir RBDirection) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("direction", dir.String()),
	)
	stats.rotationCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func (stats *rbTreeStats) IncreaseFixupCount(phase string, fixCase int) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("phase", phase),
		attribute.String("case", strconv.Itoa(fixCase)),
	)
	stats.fixupCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

// WithRBTreeStats records the tree operations on meter "xtree/rbtree/<name>".
// The global meter provider is used if mp is not present.
func WithRBTreeStats[K infra.OrderedKey, V any](name string, mp ...metric.MeterProvider) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) error {
		provider := otel.GetMeterProvider()
		if len(mp) > 0 && mp[0] != nil {
			provider = mp[0]
		}
		tree.stats = newRBTreeStats(provider, name)
		return nil
	}
}

func newRBTreeStats(mp metric.MeterProvider, name string) *rbTreeStats {
	if name == "" {
		name = "default"
	}
	meter := mp.Meter(fmt.Sprintf("%s/%s", RBTreeStatsName, name))
	return &rbTreeStats{
		insertCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.insert.count",
				metric.WithDescription("The number of elements inserted into the rbtree."),
			),
		),
		removeCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.remove.count",
				metric.WithDescription("The number of elements removed from the rbtree."),
			),
		),
		rotationCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.rotation.count",
				metric.WithDescription("The number of rotations done by the rbtree rebalance."),
			),
		),
		fixupCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.fixup.count",
				metric.WithDescription("The number of fix-up cases applied by the rbtree rebalance."),
			),
		),
		size: lo.Must[metric.Int64UpDownCounter](meter.
			Int64UpDownCounter(
				"rbtree.size",
				metric.WithDescription("The number of elements in the rbtree."),
			),
		),
	}
}
